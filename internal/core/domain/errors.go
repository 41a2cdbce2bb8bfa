package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes have the form TK-<AREA>-<NNNN>. The last four digits follow HTTP
// semantics (4040 not found, 4090 conflict, ...) so transports can map a
// code to a status without knowing every error.
type DomainError struct {
	Code    string // Error code (e.g., "TK-TIMR-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// PublicMessage returns the message without the code prefix, suitable
// for showing to API clients.
func (e *DomainError) PublicMessage() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// AsDomainError returns the first DomainError in err's chain, or nil.
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates a protected operation was called without a valid session.
	ErrUnauthorized = NewDomainError("TK-AUTH-4010", "authentication required")

	// ErrInvalidCredentials indicates a username/password mismatch.
	// Login reports it as a normal "no session" outcome, never as a failure.
	ErrInvalidCredentials = NewDomainError("TK-AUTH-4011", "user or password not found")
)

// ============================================================================
// User Errors (USER)
// ============================================================================

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = NewDomainError("TK-USER-4040", "user not found")

	// ErrUsernameTaken indicates signup with an existing username.
	ErrUsernameTaken = NewDomainError("TK-USER-4090", "username already exists")

	// ErrUserValidation indicates user data validation failed.
	ErrUserValidation = NewDomainError("TK-USER-4001", "user validation failed")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrSessionNotFound indicates no session matches the presented token.
	ErrSessionNotFound = NewDomainError("TK-SESS-4040", "session not found")

	// ErrSessionExpired indicates the session lifetime has elapsed.
	ErrSessionExpired = NewDomainError("TK-SESS-4041", "session expired")

	// ErrSessionConflict indicates the session ID or token hash already exists.
	ErrSessionConflict = NewDomainError("TK-SESS-4090", "session conflict")

	// ErrSessionValidation indicates session data validation failed.
	ErrSessionValidation = NewDomainError("TK-SESS-4001", "session validation failed")
)

// ============================================================================
// Timer Errors (TIMR)
// ============================================================================

var (
	// ErrTimerNotFound indicates the timer does not exist (or is not visible to the caller).
	ErrTimerNotFound = NewDomainError("TK-TIMR-4040", "timer not found")

	// ErrTimerValidation indicates timer data validation failed.
	ErrTimerValidation = NewDomainError("TK-TIMR-4001", "timer validation failed")

	// ErrTimerNotModified indicates a stop did not change any record:
	// the timer was already stopped or a concurrent stop won the race.
	ErrTimerNotModified = NewDomainError("TK-TIMR-4002", "timer not updated")

	// ErrTimerConflict indicates the timer ID already exists.
	ErrTimerConflict = NewDomainError("TK-TIMR-4090", "timer id conflict")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TK-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("TK-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("TK-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("TK-SYS-4000", "bad request")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TK-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("TK-ARG-1002", "missing required argument")
)
