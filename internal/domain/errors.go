package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Polling Errors (POLLING_*)
	ErrorCodePollingTimeout        ErrorCode = "POLLING_TIMEOUT"
	ErrorCodePollingInvalidSession ErrorCode = "POLLING_INVALID_SESSION"

	// Action Errors (ACTION_*)
	ErrorCodeActionNotCompleted ErrorCode = "ACTION_NOT_COMPLETED"
	ErrorCodeActionUnsupported  ErrorCode = "ACTION_UNSUPPORTED"

	// Challenge Errors (CHALLENGE_*)
	ErrorCodeChallengeFailed ErrorCode = "CHALLENGE_FAILED"

	// Payload Errors (PAYLOAD_*)
	ErrorCodePayloadInvalid ErrorCode = "PAYLOAD_INVALID"

	// Configuration Errors (CONFIG_*)
	ErrorCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Status Endpoint Errors (STATUS_*)
	ErrorCodeStatusUnavailable ErrorCode = "STATUS_UNAVAILABLE"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsFatalPollingError checks if an error ends a polling session
func IsFatalPollingError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePollingTimeout ||
		code == ErrorCodePollingInvalidSession
}

// IsActionError checks if an error came from handling an action
func IsActionError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeActionNotCompleted ||
		code == ErrorCodeActionUnsupported ||
		code == ErrorCodeChallengeFailed
}

var (
	ErrPollingTimeout        = NewDomainError(ErrorCodePollingTimeout, "status requesting timed out with no result")
	ErrPollingInvalidSession = NewDomainError(ErrorCodePollingInvalidSession, "client key and payment data are required")

	ErrActionNotCompleted = NewDomainError(ErrorCodeActionNotCompleted, "payment was not completed")
	ErrActionUnsupported  = NewDomainError(ErrorCodeActionUnsupported, "unsupported action")

	ErrChallengeFailed = NewDomainError(ErrorCodeChallengeFailed, "challenge failed")

	ErrPayloadInvalid = NewDomainError(ErrorCodePayloadInvalid, "payment details are not valid")

	ErrConfigInvalid = NewDomainError(ErrorCodeConfigInvalid, "invalid configuration")

	ErrStatusUnavailable = NewDomainError(ErrorCodeStatusUnavailable, "status endpoint unavailable")
)
