package ports

import (
	"context"
	"errors"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

// ErrSessionNotFound is returned when no polling session is stored
var ErrSessionNotFound = errors.New("polling session not found")

// SessionStore persists the snapshot of the active polling session so a
// restarted process can resume it. At most one session is stored per
// poller name.
type SessionStore interface {
	Save(ctx context.Context, name string, session *domain.PollingSession) error
	Load(ctx context.Context, name string) (*domain.PollingSession, error)
	Delete(ctx context.Context, name string) error
}
