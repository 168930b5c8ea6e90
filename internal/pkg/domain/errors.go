package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies application errors for transport mapping.
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the shared error type for all domain and application failures.
type AppError struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *AppError) Unwrap() error { return e.cause }

// HTTPStatus maps the error code to an HTTP status code.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation, ErrCodeInvalidState:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates an error for malformed or missing input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// NewUnauthorizedError creates an error for missing or invalid credentials.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// NewForbiddenError creates an error for an actor lacking permission.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewConflictError creates an error for a request conflicting with current state.
func NewConflictError(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// NewInvalidStateError creates an error for a disallowed status transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewInternalError wraps an unexpected failure that is fatal to the request.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, cause: cause}
}

// AsAppError extracts an *AppError from an error chain, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
