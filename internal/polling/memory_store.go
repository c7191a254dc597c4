package polling

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
)

// MemorySessionStore keeps session snapshots in process memory
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.PollingSession
}

// NewMemorySessionStore creates an empty in-memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*domain.PollingSession)}
}

// Save implements ports.SessionStore
func (m *MemorySessionStore) Save(_ context.Context, name string, session *domain.PollingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[name] = session.Clone()
	return nil
}

// Load implements ports.SessionStore
func (m *MemorySessionStore) Load(_ context.Context, name string) (*domain.PollingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[name]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Delete implements ports.SessionStore
func (m *MemorySessionStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
	return nil
}
