package secrets

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
)

// secretCache keeps secrets in memory until their TTL runs out
type secretCache struct {
	mu      sync.Mutex
	clock   clockz.Clock
	entries map[string]cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

func newSecretCache(enabled bool, ttl time.Duration, clock clockz.Clock) *secretCache {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &secretCache{
		clock:   clock,
		entries: make(map[string]cacheEntry),
		enabled: enabled && ttl > 0,
		ttl:     ttl,
	}
}

func (c *secretCache) get(key string) *ports.Secret {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return entry.secret
}

func (c *secretCache) set(key string, secret *ports.Secret) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		secret:    secret,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}
