package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/sheetguard/internal/config"
	"github.com/GriffinCanCode/sheetguard/internal/cssom"
	"github.com/GriffinCanCode/sheetguard/internal/logging"
	"github.com/GriffinCanCode/sheetguard/internal/resilience"
)

// errUpstream marks a 5xx answer: a failure for the origin's breaker, but
// still a response for the caller.
var errUpstream = errors.New("upstream server error")

// Client fetches resources with rate limiting and per-origin breakers.
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	logger   *logging.Logger
}

// NewClient creates a client from fetch configuration.
func NewClient(cfg config.FetchConfig, logger *logging.Logger) *Client {
	logger = logger.Named("fetch")

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	breakers := resilience.NewGroup(resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		OnStateChange: func(origin string, from, to resilience.State) {
			logger.Warn("origin breaker changed state",
				zap.String("origin", origin),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	return &Client{
		resty:    restyClient,
		limiter:  limiter,
		breakers: breakers,
		logger:   logger,
	}
}

// Fetch GETs href.
func (c *Client) Fetch(ctx context.Context, href string) (*Response, error) {
	return c.FetchWithHeaders(ctx, href, nil)
}

// FetchWithHeaders GETs href with extra request headers.
func (c *Client) FetchWithHeaders(ctx context.Context, href string, headers map[string]string) (*Response, error) {
	target, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", href, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", target.Scheme)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	origin := cssom.Origin(target)
	start := time.Now()

	var resp *resty.Response
	err = c.breakers.Get(origin).Do(func() error {
		var reqErr error
		resp, reqErr = c.resty.R().
			SetContext(ctx).
			SetHeaders(headers).
			Get(href)
		if reqErr != nil {
			return reqErr
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return errUpstream
		}
		return nil
	})
	if err != nil && !errors.Is(err, errUpstream) {
		c.logger.Debug("fetch failed",
			zap.String("url", href),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch %s: %w", href, err)
	}

	c.logger.Debug("fetched",
		zap.String("url", href),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", time.Since(start)),
	)

	return NewResponse(href, resp.StatusCode(), resp.Header(), resp.Body()), nil
}

// BreakerStates reports the breaker state of every origin seen so far.
func (c *Client) BreakerStates() map[string]resilience.State {
	return c.breakers.States()
}
