package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeForbidden             = "FORBIDDEN"
	CodeIdentityLookupFailed  = "IDENTITY_LOOKUP_FAILED"
	CodeAllowListUnavailable  = "ALLOW_LIST_UNAVAILABLE"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodePlayerDisconnected    = "PLAYER_DISCONNECTED"
	CodeInvalidCommand        = "INVALID_COMMAND"
	CodeCommandDeliveryFailed = "COMMAND_DELIVERY_FAILED"
	CodeTimeNotFound          = "TIME_NOT_FOUND"
	CodeOperatorNotFound      = "OPERATOR_NOT_FOUND"
	CodeLoginUnavailable      = "LOGIN_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Authorization
	case errors.Is(err, model.ErrIdentityLookupFailed):
		return &httpError{http.StatusBadGateway, APIError{CodeIdentityLookupFailed, "Identity provider lookup failed"}}
	case errors.Is(err, model.ErrAllowListUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeAllowListUnavailable, "Allow-list is unavailable"}}
	case errors.Is(err, model.ErrOperatorNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeOperatorNotFound, "Operator not found"}}

	// Registry and commands
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerDisconnected):
		return &httpError{http.StatusConflict, APIError{CodePlayerDisconnected, "Player has no live connection"}}
	case errors.Is(err, model.ErrInvalidCommand):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCommand, "Command must not be empty"}}
	case errors.Is(err, model.ErrCommandDeliveryFailed):
		return &httpError{http.StatusBadGateway, APIError{CodeCommandDeliveryFailed, "Command could not be delivered"}}

	// Time records
	case errors.Is(err, model.ErrTimeNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTimeNotFound, "Time not found"}}
	case errors.Is(err, model.ErrTrailRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Trail name is required"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthenticatedError is returned when no usable credential was presented
func NewUnauthenticatedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthenticated, "Authentication required"}}
}

// NewForbiddenError is returned when the caller is known but not on the allow-list
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not authorized for this action"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewLoginUnavailableError is returned when no OAuth client is configured
func NewLoginUnavailableError() error {
	return &httpError{http.StatusServiceUnavailable, APIError{CodeLoginUnavailable, "Login is not configured"}}
}
