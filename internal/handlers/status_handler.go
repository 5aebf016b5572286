package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tickerpulse/internal/common"
)

// StatusHandler serves liveness and version information.
type StatusHandler struct {
	logger arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{logger: logger}
}

// HealthHandler handles GET /api/health. Fixed response, no side effects.
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
	})
}
