package mocks

import (
	"sync"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
)

// MockLogger is a mock implementation of Logger for testing.
// It is safe for use from the poller's goroutines.
type MockLogger struct {
	mu         sync.Mutex
	infoCalls  []LogCall
	errorCalls []LogCall
	warnCalls  []LogCall
	debugCalls []LogCall
}

// LogCall represents a captured log call
type LogCall struct {
	Message string
	Fields  []ports.Field
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Info logs an info message
func (m *MockLogger) Info(msg string, fields ...ports.Field) {
	m.record(&m.infoCalls, msg, fields)
}

// Error logs an error message
func (m *MockLogger) Error(msg string, fields ...ports.Field) {
	m.record(&m.errorCalls, msg, fields)
}

// Warn logs a warning message
func (m *MockLogger) Warn(msg string, fields ...ports.Field) {
	m.record(&m.warnCalls, msg, fields)
}

// Debug logs a debug message
func (m *MockLogger) Debug(msg string, fields ...ports.Field) {
	m.record(&m.debugCalls, msg, fields)
}

func (m *MockLogger) record(calls *[]LogCall, msg string, fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*calls = append(*calls, LogCall{Message: msg, Fields: fields})
}

// InfoCalls returns a copy of the captured info calls
func (m *MockLogger) InfoCalls() []LogCall { return m.snapshot(m.infoCalls) }

// ErrorCalls returns a copy of the captured error calls
func (m *MockLogger) ErrorCalls() []LogCall { return m.snapshot(m.errorCalls) }

// WarnCalls returns a copy of the captured warn calls
func (m *MockLogger) WarnCalls() []LogCall { return m.snapshot(m.warnCalls) }

// DebugCalls returns a copy of the captured debug calls
func (m *MockLogger) DebugCalls() []LogCall { return m.snapshot(m.debugCalls) }

// HasMessage reports whether any level captured msg
func (m *MockLogger) HasMessage(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, calls := range [][]LogCall{m.infoCalls, m.errorCalls, m.warnCalls, m.debugCalls} {
		for _, c := range calls {
			if c.Message == msg {
				return true
			}
		}
	}
	return false
}

func (m *MockLogger) snapshot(calls []LogCall) []LogCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogCall(nil), calls...)
}

// Reset clears all captured calls
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoCalls = nil
	m.errorCalls = nil
	m.warnCalls = nil
	m.debugCalls = nil
}
