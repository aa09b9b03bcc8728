package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/config"
	"github.com/GriffinCanCode/sheetguard/internal/fetch"
	"github.com/GriffinCanCode/sheetguard/internal/loader"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/monitoring"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	fetcher *fetch.Client
	loader  *loader.Loader
	logger  *logging.Logger
	metrics *monitoring.Metrics
	config  *config.Config
}

// New creates a server. metrics may be nil.
func New(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, fetcher *fetch.Client) *Server {
	logger = logger.Named("server")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(CORS(DefaultCORSConfig()))
	if cfg.Server.RateLimitRPS > 0 {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.Server.RateLimitRPS),
			zap.Int("burst", cfg.Server.RateLimitBurst),
		)
		router.Use(RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}

	s := &Server{
		router:  router,
		fetcher: fetcher,
		loader:  loader.New(fetcher, logger),
		logger:  logger,
		metrics: metrics,
		config:  cfg,
	}

	router.GET("/healthz", s.health)
	if cfg.Metrics.Enabled && metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/v1")
	v1.GET("/breakers", s.breakers)
	v1.POST("/scan", s.scan)

	s.http = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight scans.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
