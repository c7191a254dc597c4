package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

// MockStatusChecker is a testify mock of ports.StatusChecker
type MockStatusChecker struct {
	mock.Mock
}

// CheckStatus records the call and returns the configured response
func (m *MockStatusChecker) CheckStatus(ctx context.Context, clientKey, paymentData string) (*domain.StatusResponse, error) {
	args := m.Called(ctx, clientKey, paymentData)
	status, _ := args.Get(0).(*domain.StatusResponse)
	return status, args.Error(1)
}
