package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Connections   int    `json:"connections"`
	Keys          int    `json:"keys"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Version:       buildinfo.Get().Version,
		UptimeSeconds: int64(time.Since(h.started) / time.Second),
	}
	if h.conns != nil {
		resp.Connections = h.conns.ActiveConnections()
	}
	if h.keys != nil {
		resp.Keys = h.keys.Len()
	}
	h.writeJSON(w, http.StatusOK, resp)
}
