// Package logger provides structured logging for smartsearch using zerolog.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("capture")
//	log.Info("recording started", logger.Fields("session_id", id))
package logger
