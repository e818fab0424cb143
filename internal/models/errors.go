package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes form the whole failure taxonomy crossing the API boundary.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeBackendTimeout     = "BACKEND_TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the standardized API error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AppError is the application error type. Message is safe for clients; Err
// carries internal detail for logs only and never crosses the boundary.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a missing or malformed caller-supplied field.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewConflictError reports a duplicate unique field on insert.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

// NewNotFoundError reports a missing record. A wrong id and a record owned by
// someone else are deliberately indistinguishable.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// NewUnauthorizedError reports a missing, malformed, or expired credential.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewBackendUnavailableError reports that the active store cannot be reached.
func NewBackendUnavailableError(err error) *AppError {
	return &AppError{Code: CodeBackendUnavailable, Message: "Storage backend unavailable", Err: err}
}

// NewBackendTimeoutError reports that a store call exceeded its latency bound.
func NewBackendTimeoutError(err error) *AppError {
	return &AppError{Code: CodeBackendTimeout, Message: "Storage backend timed out", Err: err}
}

// NewInternalError wraps an unexpected error behind a generic message.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// ErrorCode extracts the taxonomy code from err, or CodeInternal for foreign
// errors.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps a taxonomy code to its response status.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict:
		return fiber.StatusConflict
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeBackendUnavailable:
		return fiber.StatusServiceUnavailable
	case CodeBackendTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized error body for err. Internal
// detail (wrapped errors, SQL text) stays out of the response.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}
	return c.Status(HTTPStatus(appErr)).JSON(ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}
