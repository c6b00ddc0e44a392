// Package logger provides structured logging for respkv.
//
//   - logger.go: slog-backed Logger, global level control
//   - context.go: context propagation of the logger and connection ID
//   - redact.go: redaction of stored values and credentials
package logger
