package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryNetworkError   ErrorCategory = "network_error"
	CategorySystemError    ErrorCategory = "system_error"
	CategoryRateLimited    ErrorCategory = "rate_limited"
	CategoryUnauthorized   ErrorCategory = "unauthorized"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategoryInvalidReply   ErrorCategory = "invalid_response"
)

// APIError is a failed call to the payments API. It never describes a
// payment outcome, only why no outcome could be read.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	Category    ErrorCategory
	IsRetriable bool
	Err         error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (http %d)", e.Code, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, category ErrorCategory, retriable bool) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
	}
}

// NewNetworkError wraps a transport failure
func NewNetworkError(err error) *APIError {
	e := NewAPIError("NETWORK_ERROR", "failed to reach payments API", CategoryNetworkError, true)
	e.Err = err
	return e
}

// FromStatusCode maps a non-2xx HTTP status to an API error
func FromStatusCode(statusCode int, message string) *APIError {
	var e *APIError
	switch {
	case statusCode == http.StatusTooManyRequests:
		e = NewAPIError("RATE_LIMITED", "payments API rate limit exceeded", CategoryRateLimited, true)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e = NewAPIError("UNAUTHORIZED", "client key was rejected", CategoryUnauthorized, false)
	case statusCode >= 500:
		e = NewAPIError("API_ERROR", "payments API error", CategorySystemError, true)
	default:
		e = NewAPIError("REQUEST_ERROR", "invalid request to payments API", CategoryInvalidRequest, false)
	}
	if message != "" {
		e.Message = message
	}
	e.StatusCode = statusCode
	return e
}

// IsRetriable reports whether err is an API error worth trying again.
// Context cancellation is not.
func IsRetriable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetriable
	}
	return false
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
