package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkout"

// PollerMetrics records status poller activity in Prometheus. It satisfies
// polling.MetricsRecorder.
type PollerMetrics struct {
	polls          *prometheus.CounterVec
	pollDuration   *prometheus.HistogramVec
	activeSessions prometheus.Gauge
	sessionsEnded  *prometheus.CounterVec
}

// NewPollerMetrics registers the poller metrics with reg. A nil reg uses
// the default registry.
func NewPollerMetrics(reg prometheus.Registerer) *PollerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PollerMetrics{
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_polls_total",
			Help:      "Total number of payment status polls",
		}, []string{
			"outcome", // pending, final, failed
		}),

		pollDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "status_poll_duration_seconds",
			Help:      "Duration of payment status requests in seconds",
			// Buckets: 50ms to 10s (status endpoint plus retries)
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "polling_sessions_active",
			Help:      "Number of polling sessions currently running",
		}),

		sessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polling_sessions_ended_total",
			Help:      "Total polling sessions ended by reason",
		}, []string{
			"reason", // final, timeout, stopped, replaced, closed
		}),
	}
}

// RecordPoll records one completed status request
func (m *PollerMetrics) RecordPoll(outcome string, duration time.Duration) {
	m.polls.WithLabelValues(outcome).Inc()
	m.pollDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SessionStarted records a new polling session
func (m *PollerMetrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionEnded records the end of a polling session
func (m *PollerMetrics) SessionEnded(reason string) {
	m.activeSessions.Dec()
	m.sessionsEnded.WithLabelValues(reason).Inc()
}
