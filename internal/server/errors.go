package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/blctm/gigagreen/internal/session"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"-"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

var (
	errSessionNotFound = NewAPIError(http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	errNoFiles         = NewAPIError(http.StatusBadRequest, "NO_FILES", "Request carries no file parts")
	errInternal        = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// invalidUpload creates a bad request error for an unreadable multipart body
func invalidUpload(err error) *APIError {
	e := NewAPIError(http.StatusBadRequest, "INVALID_UPLOAD", "Invalid multipart upload")
	e.Details = err.Error()
	return e
}

// renderError writes err as JSON, mapping known errors to API errors
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, session.ErrNotFound):
		apiErr = errSessionNotFound
	default:
		apiErr = errInternal
	}
	_ = render.Render(w, r, apiErr)
}
