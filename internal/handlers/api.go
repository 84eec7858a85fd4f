package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
)

// APIHandler serves system-level endpoints
type APIHandler struct {
	startTime time.Time
	logger    arbor.ILogger
}

// NewAPIHandler creates the system API handler
func NewAPIHandler(logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthHandler returns service health: GET /api/health
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"background_spawns": common.GetGoroutineCount(),
	})
}

// VersionHandler returns build information: GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
