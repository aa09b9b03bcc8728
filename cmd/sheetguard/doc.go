// Package main is the sheetguard command.
//
// It loads a page, finds the style sheets a session-replay recorder could
// not read, repairs them by re-fetching, and prints the resulting harvest
// payload. With -serve it runs the diagnostic HTTP server instead.
//
// Configuration:
//   - Environment variables (see internal/config)
//   - Optional YAML file (-config), overriding the environment
//   - CLI flags override both
//
// Usage:
//
//	# One-shot scan, payload on stdout
//	./sheetguard -url https://example.com/
//
//	# Diagnostic server
//	./sheetguard -serve -port 8080
//
//	# Development mode (console logs, debug level)
//	./sheetguard -dev -url https://example.com/
//
// Signals:
//   - SIGINT, SIGTERM: cancel the scan or shut the server down gracefully
package main
