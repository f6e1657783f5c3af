// Package logger provides structured logging for yeet using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying run identifiers.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("runner").WithRunID(id)
//	log.Info("run stopped", logger.Fields("step", 3))
package logger
