package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
)

// LogLevel is the body of the /admin/log-level endpoints.
type LogLevel struct {
	Level string `json:"level"`
}

func (h *Handler) handleGetLogLevel(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, LogLevel{Level: logger.GetLevel()})
}

func (h *Handler) handleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req LogLevel
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !logger.ValidLevel(req.Level) {
		h.writeError(w, http.StatusBadRequest, "level must be one of debug, info, warn, error")
		return
	}

	logger.SetLevel(req.Level)
	logger.FromContext(r.Context()).Info("log level changed", "level", logger.GetLevel())
	h.writeJSON(w, http.StatusOK, LogLevel{Level: logger.GetLevel()})
}
