// Package logger provides structured logging for authbridge
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("session")
//	log.Info("session adopted", logger.Fields("provider", "enterprise"))
package logger
