package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines timeout values for the kit's timeout hierarchy
//
// Timeout Hierarchy (from outermost to innermost):
//
//	CLI command (20m, outlives the polling ceiling)
//	  ↓
//	Status request (10s, one poll)
//	  ↓
//	Session store write (2s)
//
// A status request must finish before the next fast-tier poll is due
// more often than not, and never outlive the slow-tier delay.
type TimeoutConfig struct {
	Command       time.Duration // Whole CLI invocation (default: 20m)
	StatusRequest time.Duration // Single status request (default: 10s)
	SessionStore  time.Duration // Snapshot save/load/delete (default: 2s)
	Shutdown      time.Duration // Graceful shutdown budget (default: 10s)
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:       20 * time.Minute,
		StatusRequest: 10 * time.Second,
		SessionStore:  2 * time.Second,
		Shutdown:      10 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:       30 * time.Second,
		StatusRequest: 2 * time.Second,
		SessionStore:  500 * time.Millisecond,
		Shutdown:      1 * time.Second,
	}
}

// CommandContext creates a context with timeout for a CLI command
func (tc *TimeoutConfig) CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Command)
}

// StatusRequestContext creates a context for a single status request
func (tc *TimeoutConfig) StatusRequestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.StatusRequest)
}

// SessionStoreContext creates a context for a session store operation
func (tc *TimeoutConfig) SessionStoreContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.SessionStore)
}

// ShutdownContext creates a context bounding graceful shutdown
func (tc *TimeoutConfig) ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Shutdown)
}
