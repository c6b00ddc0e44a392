package main

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/yndnr/respkv-go/internal/infra/confloader"
	"github.com/yndnr/respkv-go/internal/server/config"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
)

// rateSetter is the part of the RESP server a reload can change.
type rateSetter interface {
	SetRateLimit(perSecond int)
}

// reloader re-reads the config file and applies the settings that a
// running server can take.
type reloader struct {
	loader *confloader.Loader
	rates  rateSetter
	logger *slog.Logger

	mu sync.Mutex
	// running mirrors what the process actually uses. Only live fields are
	// ever updated, so restart-only edits keep being reported.
	running *config.ServerConfig
}

func newReloader(loader *confloader.Loader, running *config.ServerConfig, rates rateSetter, log *slog.Logger) *reloader {
	cp := *running
	return &reloader{
		loader:  loader,
		rates:   rates,
		logger:  log,
		running: &cp,
	}
}

// reload loads the file again and returns what changed. A config that
// fails to load or verify is rejected as a whole.
func (r *reloader) reload() (config.Changes, error) {
	next := config.Default()
	if err := r.loader.Reload(next); err != nil {
		return config.Changes{}, fmt.Errorf("reload config: %w", err)
	}
	if err := config.Verify(next); err != nil {
		return config.Changes{}, fmt.Errorf("invalid config: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch := config.Diff(r.running, next)
	if ch.LogLevel {
		logger.SetLevel(next.Log.Level)
		r.running.Log.Level = next.Log.Level
		r.logger.Info("log level changed", "level", next.Log.Level)
	}
	if ch.RateLimit {
		r.rates.SetRateLimit(next.Server.Redis.RateLimit)
		r.running.Server.Redis.RateLimit = next.Server.Redis.RateLimit
		r.logger.Info("rate limit changed", "per_second", next.Server.Redis.RateLimit)
	}
	if len(ch.Restart) > 0 {
		r.logger.Warn("config changes require restart", "keys", ch.Restart)
	}
	return ch, nil
}

// watch starts a file watcher that calls reload on every change.
func (r *reloader) watch(path string) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(r.logger))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		if _, err := r.reload(); err != nil {
			r.logger.Error("config reload failed", "error", err)
		}
	})
	w.StartAsync()
	return w, nil
}
