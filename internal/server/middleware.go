package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/sheetguard/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates or assigns a request ID and logs each request with it.
func RequestID(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Error(c.Errors.Last()))
		}
		logger.Debug("request", fields...)
	}
}

// requestLogger returns logger annotated with the request's ID.
func requestLogger(c *gin.Context, logger *logging.Logger) *logging.Logger {
	if rid := c.GetString(requestIDKey); rid != "" {
		return logger.With(zap.String("request_id", rid))
	}
	return logger
}

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// DefaultCORSConfig allows any origin to call the read-only diagnostic API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Accept",
			"Origin",
		},
		MaxAge: 12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: cfg.AllowHeaders,
		MaxAge:       cfg.MaxAge,
	})
}

// limiterIdleTTL is how long an IP's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

// RateLimit creates a per-IP rate limiting middleware. Each scan fans out
// into page and sheet fetches, so the limit protects the fetched origins as
// much as the server.
func RateLimit(rps, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(rps, burst, limiterIdleTTL, time.Now)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters holds one limiter per client IP. Entries idle for longer than
// ttl are swept, at most once per ttl, so the map only holds IPs seen within
// the last two ttl periods.
type ipLimiters struct {
	rps   int
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newIPLimiters(rps, burst int, ttl time.Duration, now func() time.Time) *ipLimiters {
	return &ipLimiters{
		rps:       rps,
		burst:     burst,
		ttl:       ttl,
		now:       now,
		visitors:  make(map[string]*visitor),
		lastSweep: now(),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.ttl {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
