// Package logger provides structured logging for Timekeep.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, JSON/text handlers, runtime level
//   - context.go: request ID propagation
//   - redact.go: masking of session tokens and sensitive fields
//
// The level is held in a package-wide slog.LevelVar so SetLevel takes
// effect on every logger created by New, including after a config reload.
package logger
