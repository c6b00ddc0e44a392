package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/respkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Metrics is served on /metrics when set.
	Metrics *metric.Registry

	Conns  handler.ConnCounter
	Keys   handler.KeyCounter
	Logger *slog.Logger
}

// NewRouter builds the admin handler with its middleware chain:
// Recover -> RequestID -> AccessLog -> routes.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New(handler.Deps{
		Conns:  cfg.Conns,
		Keys:   cfg.Keys,
		Logger: logger,
	})
	if cfg.Metrics != nil {
		h.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Chain(h,
		Recover(logger),
		RequestID(),
		AccessLog(logger),
	)
}
