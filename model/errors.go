package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest         = "BAD_REQUEST"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrForbidden          = "FORBIDDEN"
	ErrNotFound           = "NOT_FOUND"
	ErrConflict           = "CONFLICT"
	ErrRateLimited        = "RATE_LIMITED"
	ErrInternalError      = "INTERNAL_ERROR"
	ErrBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrBackendTimeout     = "BACKEND_TIMEOUT"
)

// Navigation-specific error codes.
const (
	ErrRouteNotFound      = "ROUTE_NOT_FOUND"
	ErrNavigationInFlight = "NAVIGATION_IN_FLIGHT"
	ErrSessionExpired     = "SESSION_EXPIRED"
)

// ErrorEnvelope is the standard typed error of the console core. Errors that
// originate from a Remails API response additionally carry the upstream HTTP
// status so callers can special-case authentication failures.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Status is the upstream HTTP status for backend errors, 0 otherwise.
	Status int `json:"status,omitempty"`
	// Detail is the structured error body the backend returned, if any.
	Detail map[string]any `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAuth reports whether the error indicates a missing or expired session.
func (e *ErrorEnvelope) IsAuth() bool {
	return e.Code == ErrUnauthorized || e.Code == ErrSessionExpired
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUnauthorized, Message: msg}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrForbidden, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrConflict, Message: msg}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewBackendUnavailableError returns a BACKEND_UNAVAILABLE error.
func NewBackendUnavailableError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendUnavailable,
		Message: "The Remails API is temporarily unreachable",
	}
}

// NewBackendTimeoutError returns a BACKEND_TIMEOUT error.
func NewBackendTimeoutError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrBackendTimeout,
		Message: "The Remails API did not respond in time",
	}
}

// NewRouteNotFoundError returns a ROUTE_NOT_FOUND error. The navigation
// controller recovers from it by committing the designated not-found route.
func NewRouteNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrRouteNotFound, Message: msg}
}

// NewNavigationInFlightError signals that a navigation request was dropped
// because another navigation is still in progress.
func NewNavigationInFlightError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrNavigationInFlight,
		Message: "A navigation is already in progress",
	}
}

// NewSessionExpiredError returns a SESSION_EXPIRED error.
func NewSessionExpiredError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrSessionExpired,
		Message: "The session has expired, sign in again",
	}
}

// APIErrorFromStatus wraps a non-2xx Remails API response into a typed error
// carrying the HTTP status and the structured error body when present.
func APIErrorFromStatus(status int, message string, detail map[string]any) *ErrorEnvelope {
	code := ErrInternalError
	switch {
	case status == 400:
		code = ErrBadRequest
	case status == 401:
		code = ErrUnauthorized
	case status == 403:
		code = ErrForbidden
	case status == 404:
		code = ErrNotFound
	case status == 409:
		code = ErrConflict
	case status == 429:
		code = ErrRateLimited
	case status == 504:
		code = ErrBackendTimeout
	case status >= 500:
		code = ErrBackendUnavailable
	}
	if message == "" {
		message = fmt.Sprintf("Remails API returned status %d", status)
	}
	return &ErrorEnvelope{Code: code, Message: message, Status: status, Detail: detail}
}
