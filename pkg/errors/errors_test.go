package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		category  ErrorCategory
		retriable bool
	}{
		{http.StatusBadRequest, "REQUEST_ERROR", CategoryInvalidRequest, false},
		{http.StatusUnauthorized, "UNAUTHORIZED", CategoryUnauthorized, false},
		{http.StatusForbidden, "UNAUTHORIZED", CategoryUnauthorized, false},
		{http.StatusUnprocessableEntity, "REQUEST_ERROR", CategoryInvalidRequest, false},
		{http.StatusTooManyRequests, "RATE_LIMITED", CategoryRateLimited, true},
		{http.StatusInternalServerError, "API_ERROR", CategorySystemError, true},
		{http.StatusBadGateway, "API_ERROR", CategorySystemError, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatusCode(tt.status, "")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.retriable, err.IsRetriable)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.retriable, IsRetriable(fmt.Errorf("status request: %w", err)))
		})
	}
}

func TestFromStatusCode_KeepsServerMessage(t *testing.T) {
	err := FromStatusCode(http.StatusUnprocessableEntity, "Invalid payment data")
	assert.Equal(t, "REQUEST_ERROR: Invalid payment data (http 422)", err.Error())
}

func TestNetworkError(t *testing.T) {
	err := NewNetworkError(context.DeadlineExceeded)
	assert.True(t, IsRetriable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "NETWORK_ERROR")
}

func TestIsRetriable_OtherErrors(t *testing.T) {
	assert.False(t, IsRetriable(context.Canceled))
	assert.False(t, IsRetriable(nil))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("client_key", "must start with test_ or live_")
	assert.Equal(t, "validation error on field 'client_key': must start with test_ or live_", err.Error())
}
