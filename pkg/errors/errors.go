package errors

import (
	"errors"
	"net/http"
)

// Standard error types for the order coordination core
var (
	ErrValidation        = errors.New("validation failed")
	ErrMissingFiles      = errors.New("uploaded-files order requires at least one file")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderTerminal     = errors.New("order is in a terminal status")
	ErrPersistence       = errors.New("persistence failed")
	ErrEmptyMessage      = errors.New("message body is empty")
	ErrTemporaryFailure  = errors.New("temporary failure")
	ErrTimeout           = errors.New("timeout")
	ErrRateLimited       = errors.New("rate limited")
)

// AppError represents a structured application error with context
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	Retryable  bool
	Context    map[string]interface{}
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new AppError with the given parameters
func NewAppError(err error, message string, statusCode int, retryable bool) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Context:    make(map[string]interface{}),
	}
}

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.Retryable
	}

	return errors.Is(err, ErrTemporaryFailure) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// StatusCode returns the HTTP status code for an error, defaulting to 500
func StatusCode(err error) int {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingFiles), errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOrderTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrTemporaryFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrValidation, message, http.StatusBadRequest, false)
}

// NewMissingFilesError creates a missing files error
func NewMissingFilesError(message string) *AppError {
	return NewAppError(ErrMissingFiles, message, http.StatusBadRequest, false)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, http.StatusNotFound, false)
}

// NewInvalidTransitionError creates an invalid transition error
func NewInvalidTransitionError(message string) *AppError {
	return NewAppError(ErrInvalidTransition, message, http.StatusConflict, false)
}

// NewOrderTerminalError creates a terminal order error
func NewOrderTerminalError(message string) *AppError {
	return NewAppError(ErrOrderTerminal, message, http.StatusConflict, false)
}

// NewPersistenceError creates a persistence error
func NewPersistenceError(message string) *AppError {
	return NewAppError(ErrPersistence, message, http.StatusInternalServerError, true)
}

// NewEmptyMessageError creates an empty message error
func NewEmptyMessageError(message string) *AppError {
	return NewAppError(ErrEmptyMessage, message, http.StatusBadRequest, false)
}

// NewTemporaryError creates a temporary error
func NewTemporaryError(message string) *AppError {
	return NewAppError(ErrTemporaryFailure, message, http.StatusServiceUnavailable, true)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string) *AppError {
	return NewAppError(ErrTimeout, message, http.StatusGatewayTimeout, true)
}

// NewRateLimitedError creates a rate limited error
func NewRateLimitedError(message string) *AppError {
	return NewAppError(ErrRateLimited, message, http.StatusTooManyRequests, true)
}
