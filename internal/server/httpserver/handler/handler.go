package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/timekeep-go/internal/core/domain"
	"github.com/yndnr/timekeep-go/internal/core/service"
	"github.com/yndnr/timekeep-go/internal/telemetry/logger"
)

// SessionHeader carries the session token on protected requests.
const SessionHeader = "X-SessionId"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Pinger checks a dependency for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the HTTP API.
type Handler struct {
	authSvc  *service.AuthService
	timerSvc *service.TimerService
	storage  Pinger
	logger   *slog.Logger
}

// New creates a Handler. storage may be nil, in which case /ready only
// reports the process as up.
func New(authSvc *service.AuthService, timerSvc *service.TimerService, storage Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		authSvc:  authSvc,
		timerSvc: timerSvc,
		storage:  storage,
		logger:   logger,
	}
}

type identityKey struct{}

// WithIdentity stores the resolved caller in ctx. A nil identity marks the
// request as anonymous.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller resolved by the session
// middleware, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return id
}

// writeJSON writes data as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError converts err into an error response. Domain errors keep
// their code; anything else is logged and reported as an internal error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de := domain.AsDomainError(err)
	if de == nil || strings.HasPrefix(de.Code, "TK-SYS-5") {
		logger.L(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", domain.GetErrorCode(err),
			"error", err,
		)
		if de == nil {
			de = domain.ErrInternalServer
		}
		// Storage details stay in the log.
		de = domain.NewDomainError(de.Code, de.Message)
	}
	WriteError(w, ErrorCodeToHTTPStatus(de.Code), de.Code, de.PublicMessage())
}

// WriteError writes the error envelope with the X-Error-Code header. It
// is also used by middleware that fails before a handler runs.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code != "" {
		w.Header().Set("X-Error-Code", code)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(code, "TK-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.ErrBadRequest.WithDetails("request body too large")
		}
		return domain.ErrBadRequest.WithDetails("invalid JSON body")
	}
	return nil
}

// requireIdentity returns the caller or writes 401.
func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	id := IdentityFromContext(r.Context())
	if id == nil {
		h.writeError(w, r, domain.ErrUnauthorized)
		return nil, false
	}
	return id, true
}
