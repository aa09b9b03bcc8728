// Package server provides the sheetguard diagnostic HTTP server.
//
// Routes:
//   - GET  /healthz       liveness
//   - GET  /metrics       Prometheus exposition (when enabled)
//   - GET  /v1/breakers   per-origin circuit breaker states of the fetch client
//   - POST /v1/scan       load a page, run one harvest cycle, return the payload
//
// A scan request body is {"url": "https://..."}. The response is the harvest
// payload as JSON, gzip-compressed when the client sends
// "Accept-Encoding: gzip".
//
// Middleware stack: recovery, request IDs (X-Request-ID), request metrics,
// CORS, and an optional per-IP rate limit.
//
// Example Usage:
//
//	srv := server.New(cfg, logger, metrics, fetch.NewClient(cfg.Fetch, logger))
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
