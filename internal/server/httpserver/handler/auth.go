package handler

import (
	"errors"
	"net/http"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/telemetry/logger"
)

// Login handles POST /login.
//
// Wrong credentials are not an HTTP error: the response is 200 with an
// error message and no sessionId.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authSvc.Login(r.Context(), &service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.writeJSON(w, http.StatusOK, ErrorResponse{Error: domain.ErrInvalidCredentials.Message})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("user logged in", "user_id", result.Identity.UserID)
	h.writeJSON(w, http.StatusOK, SessionResponse{SessionID: result.Token})
}

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authSvc.Signup(r.Context(), &service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("user signed up", "user_id", result.Identity.UserID)
	h.writeJSON(w, http.StatusOK, SessionResponse{SessionID: result.Token})
}

// Logout handles GET /logout. Logging out without a session succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context(), r.Header.Get(SessionHeader)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct{}{})
}
