// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Example Usage:
//
//	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Storage initialized", zap.String("dir", dir))
//	logger.Warn("Renaming storage directory", zap.String("from", old), zap.String("to", dir))
package logging
