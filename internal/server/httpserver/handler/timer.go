package handler

import (
	"net/http"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// ListTimers handles GET /api/timers?isActive=true|false.
func (h *Handler) ListTimers(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if !query.Has("isActive") {
		h.writeError(w, r, domain.ErrMissingArgument.WithDetails("isActive"))
		return
	}
	var active bool
	switch query.Get("isActive") {
	case "true":
		active = true
	case "false":
		active = false
	default:
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("isActive must be true or false"))
		return
	}

	timers, err := h.timerSvc.List(r.Context(), caller, active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]TimerResponse, 0, len(timers))
	for _, ts := range timers {
		items = append(items, NewTimerResponse(ts))
	}
	h.writeJSON(w, http.StatusOK, items)
}

// CreateTimer handles POST /api/timers.
func (h *Handler) CreateTimer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateTimerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	timer, err := h.timerSvc.Start(r.Context(), caller, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreateTimerResponse{ID: timer.ID})
}

// GetTimer handles GET /api/timers/{id}.
func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	ts, err := h.timerSvc.Get(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, NewTimerResponse(ts))
}

// StopTimer handles POST /api/timers/{id}/stop.
func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	if _, err := h.timerSvc.Stop(r.Context(), caller, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
