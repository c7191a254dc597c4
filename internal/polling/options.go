package polling

import (
	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/pkg/resilience"
)

// DefaultName is the session store key used when no name is configured
const DefaultName = "default"

// Option configures a StatusPoller.
type Option func(*StatusPoller)

// WithClock sets the clock driving delays and the polling ceiling.
func WithClock(clock clockz.Clock) Option {
	return func(p *StatusPoller) { p.clock = clock }
}

// WithSchedule replaces the default two tier polling schedule.
func WithSchedule(schedule resilience.DelaySchedule) Option {
	return func(p *StatusPoller) { p.schedule = schedule }
}

// WithTimeouts sets the per request and session store timeouts.
func WithTimeouts(timeouts *resilience.TimeoutConfig) Option {
	return func(p *StatusPoller) { p.timeouts = timeouts }
}

// WithMetrics sets the recorder for poll and session events.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(p *StatusPoller) { p.metrics = metrics }
}

// WithSessionStore sets where session snapshots are kept.
func WithSessionStore(store ports.SessionStore) Option {
	return func(p *StatusPoller) { p.store = store }
}

// WithName sets the key under which this poller's session is stored,
// e.g. the environment the poller talks to.
func WithName(name string) Option {
	return func(p *StatusPoller) { p.name = name }
}
