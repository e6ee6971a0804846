// Package logger provides a structured logging facility based on Zap.
//
// The level selects the development (debug) or production configuration,
// and the format picks console or json encoding. When a file is configured
// every entry is also written as JSON to a lumberjack rotated file.
//
// WithRayID attaches the request id set by the rayid middleware so that all
// logs of one HTTP request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Sync cycle started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
