package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestDomainErrors_Messages tests that every sentinel error carries its code and message
func TestDomainErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		code     ErrorCode
		contains string
	}{
		{
			name:     "polling_timeout",
			err:      ErrPollingTimeout,
			code:     ErrorCodePollingTimeout,
			contains: "timed out",
		},
		{
			name:     "polling_invalid_session",
			err:      ErrPollingInvalidSession,
			code:     ErrorCodePollingInvalidSession,
			contains: "payment data are required",
		},
		{
			name:     "action_not_completed",
			err:      ErrActionNotCompleted,
			code:     ErrorCodeActionNotCompleted,
			contains: "not completed",
		},
		{
			name:     "challenge_failed",
			err:      ErrChallengeFailed,
			code:     ErrorCodeChallengeFailed,
			contains: "challenge failed",
		},
		{
			name:     "config_invalid",
			err:      ErrConfigInvalid,
			code:     ErrorCodeConfigInvalid,
			contains: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("error message %q does not contain %q", tt.err.Error(), tt.contains)
			}
			if !strings.HasPrefix(tt.err.Error(), string(tt.code)) {
				t.Errorf("error message %q does not start with code %s", tt.err.Error(), tt.code)
			}
		})
	}
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrorCodeStatusUnavailable, "status request failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("poller: %w", WrapError(ErrorCodePollingTimeout, "elapsed 15m1s", nil))

	if !errors.Is(err, ErrPollingTimeout) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, ErrActionNotCompleted) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ErrActionUnsupported); code != ErrorCodeActionUnsupported {
		t.Errorf("expected %s, got %s", ErrorCodeActionUnsupported, code)
	}
	if code := GetErrorCode(errors.New("plain")); code != "" {
		t.Errorf("expected empty code, got %s", code)
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsFatalPollingError(ErrPollingTimeout) {
		t.Error("timeout should be a fatal polling error")
	}
	if IsFatalPollingError(ErrActionNotCompleted) {
		t.Error("action errors are not polling errors")
	}
	if !IsActionError(ErrChallengeFailed) {
		t.Error("challenge failure should be an action error")
	}
	if !IsDomainError(fmt.Errorf("wrap: %w", ErrPayloadInvalid), ErrorCodePayloadInvalid) {
		t.Error("expected IsDomainError through wrapping")
	}
}

func TestWithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodeActionNotCompleted, "payment was not completed").
		WithDetail("result_code", "refused")

	if err.Details["result_code"] != "refused" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}
