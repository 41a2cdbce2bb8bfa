package handler

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds the storage ping of /ready.
const readyTimeout = 2 * time.Second

// Health handles GET /health. It only reports that the process serves.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /ready. It is 503 while storage does not answer.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
			h.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
