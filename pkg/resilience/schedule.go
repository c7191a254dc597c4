package resilience

import (
	"errors"
	"time"
)

// ErrInvalidSchedule is returned when schedule durations are inconsistent
var ErrInvalidSchedule = errors.New("invalid delay schedule")

// DelaySchedule decides when the next attempt of a long running operation happens
type DelaySchedule interface {
	// NextDelay returns the delay before the next attempt given the time
	// elapsed since the operation started. ok is false once the operation
	// has run out of time and must give up.
	NextDelay(elapsed time.Duration) (delay time.Duration, ok bool)
}

// PollingSchedule is a two tier schedule with a hard ceiling
//
// Schedule with defaults:
//   - elapsed <= 60s: every 2s
//   - elapsed <= 15m: every 10s
//   - elapsed > 15m: give up
//
// The ceiling is compared against absolute elapsed time, so the final
// attempt may land up to one slow delay before the ceiling.
type PollingSchedule struct {
	FastDelay   time.Duration // Delay while inside FastWindow (default: 2s)
	SlowDelay   time.Duration // Delay after FastWindow (default: 10s)
	FastWindow  time.Duration // How long the fast tier lasts (default: 60s)
	MaxDuration time.Duration // Ceiling after which polling stops (default: 15m)
}

// DefaultPollingSchedule returns the production polling schedule
func DefaultPollingSchedule() *PollingSchedule {
	return &PollingSchedule{
		FastDelay:   2 * time.Second,
		SlowDelay:   10 * time.Second,
		FastWindow:  60 * time.Second,
		MaxDuration: 15 * time.Minute,
	}
}

// NextDelay implements DelaySchedule
func (ps *PollingSchedule) NextDelay(elapsed time.Duration) (time.Duration, bool) {
	switch {
	case elapsed > ps.MaxDuration:
		return 0, false
	case elapsed <= ps.FastWindow:
		return ps.FastDelay, true
	default:
		return ps.SlowDelay, true
	}
}

// Validate checks the schedule is usable
func (ps *PollingSchedule) Validate() error {
	switch {
	case ps.FastDelay <= 0 || ps.SlowDelay <= 0:
		return ErrInvalidSchedule
	case ps.FastWindow < 0 || ps.MaxDuration <= 0:
		return ErrInvalidSchedule
	case ps.FastWindow > ps.MaxDuration:
		return ErrInvalidSchedule
	default:
		return nil
	}
}

// FixedSchedule repeats the same delay until MaxDuration has elapsed
type FixedSchedule struct {
	Delay       time.Duration
	MaxDuration time.Duration
}

// NextDelay implements DelaySchedule
func (fs *FixedSchedule) NextDelay(elapsed time.Duration) (time.Duration, bool) {
	if elapsed > fs.MaxDuration {
		return 0, false
	}
	return fs.Delay, true
}
