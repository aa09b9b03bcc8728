package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sheetguard/internal/harvest"
	"github.com/GriffinCanCode/sheetguard/internal/stylesheet"
)

// ScanRequest is the body of POST /v1/scan.
type ScanRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) breakers(c *gin.Context) {
	states := make(map[string]string)
	for origin, state := range s.fetcher.BreakerStates() {
		states[origin] = state.String()
	}
	c.JSON(http.StatusOK, gin.H{"breakers": states})
}

func (s *Server) scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if u, err := url.Parse(req.URL); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.Server.ScanTimeout)
	defer cancel()
	logger := requestLogger(c, s.logger)

	doc, err := s.loader.Load(ctx, req.URL)
	if err != nil {
		logger.Warn("page load failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	eval := stylesheet.New(doc, s.fetcher,
		stylesheet.WithLogger(logger),
		stylesheet.WithMetrics(s.metrics),
		stylesheet.WithContext(ctx),
	)
	payload, err := harvest.New(doc, eval, logger, harvest.WithURL(req.URL)).Flush(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if acceptsGzip(c.GetHeader("Accept-Encoding")) {
		data, err := payload.Encode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Encoding", "gzip")
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := payload.JSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// acceptsGzip reports whether an Accept-Encoding value admits gzip. An
// explicit gzip entry wins over a "*" wildcard; q=0 refuses.
func acceptsGzip(header string) bool {
	wildcard := false
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))

		q := 1.0
		for _, param := range strings.Split(params, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
				continue
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				parsed = 0
			}
			q = parsed
		}

		switch coding {
		case "gzip", "x-gzip":
			return q > 0
		case "*":
			wildcard = q > 0
		}
	}
	return wildcard
}
