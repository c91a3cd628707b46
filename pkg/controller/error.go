// Package controller adapts application results and errors to HTTP responses.
package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/sabormap/sabormap/pkg/middleware"
)

// AppError is the single application error contract shared across layers.
// Repositories return it, handlers pass it to Error, MapError turns it into
// a status code and JSON body.
type AppError struct {
	Code    string
	Status  int
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorResponse is the JSON body of every error response.
// Message is always present; Error carries the underlying detail on
// internal failures only.
type ErrorResponse struct {
	Message   string                 `json:"message"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NewValidationError creates a 400 error for missing or malformed input.
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Code:    "validation.failed",
		Status:  http.StatusBadRequest,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    "resource.not_found",
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewInternalError creates a 500 error wrapping its cause.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Code:    "internal.error",
		Status:  http.StatusInternalServerError,
		Message: message,
		Cause:   cause,
	}
}

// MapError maps any error to an HTTP status and response body.
// Errors that are not AppError become opaque 500s.
func MapError(ctx context.Context, err error) (int, ErrorResponse) {
	requestID := getRequestID(ctx)

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Message:   "ocurrió un error inesperado",
			Error:     err.Error(),
			RequestID: requestID,
		}
	}

	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestID,
	}
	if status >= 500 && appErr.Cause != nil {
		// Diagnostic detail only; clients should not depend on it.
		resp.Error = appErr.Cause.Error()
	}

	return status, resp
}

func getRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
