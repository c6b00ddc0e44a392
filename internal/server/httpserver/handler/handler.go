// Package handler provides the admin HTTP endpoints of respkv-server.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ConnCounter reports open client connections.
type ConnCounter interface {
	ActiveConnections() int
}

// KeyCounter reports how many entries the store holds.
type KeyCounter interface {
	Len() int
}

// Deps are the components the handlers read from.
type Deps struct {
	Conns  ConnCounter
	Keys   KeyCounter
	Logger *slog.Logger
}

// Handler serves the admin API.
type Handler struct {
	conns   ConnCounter
	keys    KeyCounter
	logger  *slog.Logger
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler.
func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		conns:   deps.Conns,
		keys:    deps.Keys,
		logger:  logger,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /admin/log-level", h.handleGetLogLevel)
	h.mux.HandleFunc("PUT /admin/log-level", h.handleSetLogLevel)
}

// Handle mounts an additional handler, such as /metrics.
func (h *Handler) Handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
