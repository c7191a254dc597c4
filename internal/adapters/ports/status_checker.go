package ports

import (
	"context"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

// StatusChecker asks the payments API for the status of an asynchronous
// payment action. A returned error is a transport or API failure, never a
// payment outcome.
type StatusChecker interface {
	CheckStatus(ctx context.Context, clientKey, paymentData string) (*domain.StatusResponse, error)
}
