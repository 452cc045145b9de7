// Package logger provides a structured logging facility based on Zap.
//
// It builds a configured logger instance for either development (console)
// or production (json) use and integrates with the Fiber web framework.
//
// # Request Correlation
//
// Every incoming request gets a ray id assigned by the rayid middleware.
// The WithRayID helper reads it back from the Fiber context and attaches it
// to the returned logger, so all log lines produced while serving a request
// can be correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
