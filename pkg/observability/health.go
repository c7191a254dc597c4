package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/pkg/resilience"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const checkTimeout = 2 * time.Second

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// CheckFunc reports a component as unhealthy by returning an error
type CheckFunc func(ctx context.Context) error

// Pinger is anything with a connectivity check, e.g. the database adapter
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// BreakerState is implemented by resilience.CircuitBreaker
type BreakerState interface {
	State() resilience.CircuitState
}

// HealthChecker manages health checks for the service
type HealthChecker struct {
	clock clockz.Clock

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewHealthChecker creates a HealthChecker without checks
func NewHealthChecker(clock clockz.Clock) *HealthChecker {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &HealthChecker{
		clock:  clock,
		checks: make(map[string]CheckFunc),
	}
}

// Register adds or replaces a named check
func (h *HealthChecker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RegisterPinger adds a check backed by p.HealthCheck
func (h *HealthChecker) RegisterPinger(name string, p Pinger) {
	h.Register(name, p.HealthCheck)
}

// RegisterBreaker adds a check that fails while the breaker is open
func (h *HealthChecker) RegisterBreaker(name string, breaker BreakerState) {
	h.Register(name, func(context.Context) error {
		if state := breaker.State(); state == resilience.StateOpen {
			return fmt.Errorf("circuit %s", state)
		}
		return nil
	})
}

// Check runs every check with a per-check timeout
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make(map[string]string, len(names))
	overallStatus := StatusHealthy

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := checks[name](checkCtx)
		cancel()

		if err != nil {
			results[name] = StatusUnhealthy + ": " + err.Error()
			overallStatus = StatusUnhealthy
		} else {
			results[name] = StatusHealthy
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: h.clock.Now(),
		Checks:    results,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(status)
	}
}
