package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/config"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/harvest"
	"github.com/GriffinCanCode/sheetguard/internal/loader"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/monitoring"
	"github.com/GriffinCanCode/sheetguard/internal/server"
	"github.com/GriffinCanCode/sheetguard/internal/stylesheet"
)

func main() {
	pageURL := flag.String("url", "", "Page to scan")
	serve := flag.Bool("serve", false, "Run the diagnostic HTTP server")
	configPath := flag.String("config", "", "YAML config file")
	port := flag.String("port", "", "Server port (overrides PORT)")
	dev := flag.Bool("dev", false, "Development logging")
	gzipOut := flag.Bool("gzip", false, "Write the payload gzip-compressed")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetguard: %v\n", err)
		os.Exit(2)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetguard: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve:
		err = runServer(ctx, cfg, logger)
	case *pageURL != "":
		err = runScan(ctx, cfg, logger, *pageURL, *gzipOut)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("sheetguard failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func runServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	var metrics *monitoring.Metrics
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics()
	}
	srv := server.New(cfg, logger, metrics, fetch.NewClient(cfg.Fetch, logger))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ScanTimeout+5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func runScan(ctx context.Context, cfg *config.Config, logger *logging.Logger, pageURL string, gzipOut bool) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ScanTimeout)
	defer cancel()

	client := fetch.NewClient(cfg.Fetch, logger)
	doc, err := loader.New(client, logger).Load(ctx, pageURL)
	if err != nil {
		return err
	}

	eval := stylesheet.New(doc, client,
		stylesheet.WithLogger(logger),
		stylesheet.WithContext(ctx),
	)
	payload, err := harvest.New(doc, eval, logger, harvest.WithURL(pageURL)).Flush(ctx)
	if err != nil {
		return err
	}

	var out []byte
	if gzipOut {
		out, err = payload.Encode()
	} else {
		out, err = payload.JSON()
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
