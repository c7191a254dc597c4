package polling

import "time"

// Poll outcomes reported to MetricsRecorder
const (
	OutcomePending = "pending"
	OutcomeFinal   = "final"
	OutcomeFailed  = "failed"
)

// Reasons a session ends
const (
	EndReasonFinal    = "final"
	EndReasonTimeout  = "timeout"
	EndReasonStopped  = "stopped"
	EndReasonReplaced = "replaced"
	EndReasonClosed   = "closed"
)

// MetricsRecorder receives poller events. Implementations must be safe
// for concurrent use and must not block.
type MetricsRecorder interface {
	RecordPoll(outcome string, duration time.Duration)
	SessionStarted()
	SessionEnded(reason string)
}

type noopMetrics struct{}

func (noopMetrics) RecordPoll(string, time.Duration) {}
func (noopMetrics) SessionStarted()                  {}
func (noopMetrics) SessionEnded(string)              {}
