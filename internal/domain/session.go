package domain

import (
	"time"

	"github.com/google/uuid"
)

// PollingSession is the state of one in-flight status polling run.
// Two sessions are the same iff ClientKey and PaymentData match.
type PollingSession struct {
	ID           uuid.UUID       `json:"id"`
	ClientKey    string          `json:"clientKey"`
	PaymentData  string          `json:"paymentData"`
	StartedAt    time.Time       `json:"startedAt"`
	CurrentDelay time.Duration   `json:"currentDelay"`
	LastStatus   *StatusResponse `json:"lastStatus,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewPollingSession creates a session started at startedAt
func NewPollingSession(clientKey, paymentData string, startedAt time.Time) *PollingSession {
	return &PollingSession{
		ID:          uuid.New(),
		ClientKey:   clientKey,
		PaymentData: paymentData,
		StartedAt:   startedAt,
		UpdatedAt:   startedAt,
	}
}

// Matches returns true if the session polls for the given action
func (s *PollingSession) Matches(clientKey, paymentData string) bool {
	return s != nil && s.ClientKey == clientKey && s.PaymentData == paymentData
}

// Elapsed returns how long the session has been polling at now
func (s *PollingSession) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// Clone returns a deep copy safe to hand out of the poller
func (s *PollingSession) Clone() *PollingSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastStatus != nil {
		status := *s.LastStatus
		c.LastStatus = &status
	}
	return &c
}
