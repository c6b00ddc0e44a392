package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the process logger handed out by New.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config mirrors the log section of the server configuration.
type Config struct {
	Level  string    // debug, info, warn or error
	Format string    // json, text or console
	Output io.Writer // nil means os.Stderr
}

// levels maps accepted level names, including the "warning" alias.
var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// runtimeLevel is shared by every handler New builds, so a reload or an
// admin request changes verbosity everywhere at once.
var runtimeLevel = new(slog.LevelVar)

// handle adapts *slog.Logger to Logger.
type handle struct {
	*slog.Logger
}

func (h handle) With(args ...any) Logger {
	return handle{h.Logger.With(args...)}
}

// New builds a Logger writing to cfg.Output and resets the runtime level
// to cfg.Level. Values under sensitive keys are redacted.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: runtimeLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	runtimeLevel.Set(parseLevel(cfg.Level))
	return handle{slog.New(h)}, nil
}

// SetLevel changes the level of every logger created by New.
// Unknown names fall back to info.
func SetLevel(level string) {
	runtimeLevel.Set(parseLevel(level))
}

// GetLevel returns the current runtime level name.
func GetLevel() string {
	return strings.ToLower(runtimeLevel.Level().String())
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	_, ok := levels[strings.ToLower(level)]
	return ok
}

func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Slog returns the *slog.Logger behind l, for components that take a
// plain slog logger. Foreign Logger implementations get slog.Default().
func Slog(l Logger) *slog.Logger {
	if h, ok := l.(handle); ok {
		return h.Logger
	}
	return slog.Default()
}

// SetDefault installs l as the slog default, so FromContext on a bare
// context and third-party slog users share its output and redaction.
func SetDefault(l Logger) {
	if h, ok := l.(handle); ok {
		slog.SetDefault(h.Logger)
	}
}
