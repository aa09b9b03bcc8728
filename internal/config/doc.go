// Package config provides 12-factor configuration for sheetguard.
//
// Configuration is loaded from environment variables with defaults. An
// optional YAML file can be layered on top with LoadFile.
//
// Configuration Sections:
//   - Server: diagnostic HTTP server (address, scan timeout, rate limit)
//   - Fetch: style sheet re-fetch client (timeout, retries, rate limit, user agent)
//   - Logging: log level and output format
//   - Metrics: Prometheus exposition
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	client := fetch.NewClient(cfg.Fetch, logger)
//
// Environment Variables:
//   - PORT, HOST, SCAN_TIMEOUT, SERVER_RATE_LIMIT_RPS, SERVER_RATE_LIMIT_BURST
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_RETRY_WAIT, FETCH_RETRY_MAX_WAIT
//   - FETCH_RATE_LIMIT_RPS, FETCH_USER_AGENT
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_ENABLED
package config
