// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components receive a *Logger and derive a named child from it:
//
//	logger := logging.NewDefault()
//	eval := logger.Named("stylesheet")
//	eval.Info("repair finished", zap.String("href", href))
//
// Tests use logging.NewNop().
package logging
