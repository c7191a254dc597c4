// Package shutdown stops registered components in reverse order when the
// process is asked to exit.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Func shuts down one component
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager coordinates graceful shutdown. Components shut down one at a
// time in reverse registration order, so register the database before
// the poller that writes to it.
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration

	componentDuration *prometheus.HistogramVec
	componentErrors   *prometheus.CounterVec

	mu         sync.Mutex
	components []component
	once       sync.Once
	err        error
}

// NewManager creates a shutdown manager. Metrics are registered with reg;
// a nil reg keeps them unexported.
func NewManager(logger *zap.Logger, timeout time.Duration, reg prometheus.Registerer) *Manager {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Manager{
		logger:  logger,
		timeout: timeout,
		componentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "component_shutdown_duration_seconds",
			Help:      "Time taken to shutdown individual components",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"component"}),
		componentErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "shutdown_errors_total",
			Help:      "Total number of shutdown errors by component",
		}, []string{"component"}),
	}
}

// Register adds a shutdown function
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component{name: name, fn: fn})

	m.logger.Debug("Registered shutdown component",
		zap.String("component", name),
		zap.Int("registration_order", len(m.components)),
	)
}

// RegisterCloser registers a component with a Close() error method
func (m *Manager) RegisterCloser(name string, closer interface{ Close() error }) {
	m.Register(name, func(context.Context) error {
		return closer.Close()
	})
}

// RegisterNoErr registers a shutdown function that cannot fail
func (m *Manager) RegisterNoErr(name string, fn func()) {
	m.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Shutdown stops all components and returns their joined errors. Later
// calls return the result of the first.
func (m *Manager) Shutdown() error {
	m.once.Do(func() {
		m.err = m.shutdown()
	})
	return m.err
}

func (m *Manager) shutdown() error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	m.logger.Info("Starting graceful shutdown",
		zap.Int("component_count", len(components)),
		zap.Duration("timeout", m.timeout),
	)

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		compStart := time.Now()

		if err := comp.fn(ctx); err != nil {
			m.componentErrors.WithLabelValues(comp.name).Inc()
			m.logger.Error("Component shutdown failed",
				zap.String("component", comp.name),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(compStart)),
			)
			errs = append(errs, fmt.Errorf("%s: %w", comp.name, err))
		} else {
			m.logger.Debug("Component shut down",
				zap.String("component", comp.name),
				zap.Duration("elapsed", time.Since(compStart)),
			)
		}
		m.componentDuration.WithLabelValues(comp.name).Observe(time.Since(compStart).Seconds())
	}

	err := errors.Join(errs...)
	if err != nil {
		m.logger.Error("Graceful shutdown completed with errors",
			zap.Int("error_count", len(errs)),
			zap.Duration("elapsed", time.Since(start)),
		)
	} else {
		m.logger.Info("Graceful shutdown completed",
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return err
}
