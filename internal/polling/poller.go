// Package polling polls the payments API for the outcome of asynchronous
// payment actions.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/pkg/resilience"
)

// ErrPollerClosed is returned by calls made after Close
var ErrPollerClosed = errors.New("status poller is closed")

// Session is the snapshot of the active polling session
type Session = domain.PollingSession

type commandKind int

const (
	cmdStart commandKind = iota
	cmdUpdate
	cmdStop
	cmdResume
	cmdSnapshot
)

type command struct {
	kind        commandKind
	clientKey   string
	paymentData string
	resumed     *domain.PollingSession
	reply       chan commandReply
}

type commandReply struct {
	session *domain.PollingSession
	applied bool
}

type pollResult struct {
	generation uint64
	status     *domain.StatusResponse
	err        error
	duration   time.Duration
}

// StatusPoller polls one payment action at a time.
//
// All session state is owned by a single loop goroutine. Public methods
// hand their work to the loop and return once it has been applied, so a
// StopPolling that has returned guarantees no later tick touches state.
// Status requests run on their own goroutines and their results are
// dropped if the session they belong to has ended.
type StatusPoller struct {
	checker  ports.StatusChecker
	logger   ports.Logger
	clock    clockz.Clock
	schedule resilience.DelaySchedule
	timeouts *resilience.TimeoutConfig
	metrics  MetricsRecorder
	store    ports.SessionStore
	name     string

	status *Stream[domain.StatusResponse]
	errs   *Stream[error]

	commands  chan command
	results   chan pollResult
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStatusPoller creates a poller and starts its loop. Close releases it.
func NewStatusPoller(checker ports.StatusChecker, logger ports.Logger, opts ...Option) *StatusPoller {
	p := &StatusPoller{
		checker:  checker,
		logger:   logger,
		clock:    clockz.RealClock,
		schedule: resilience.DefaultPollingSchedule(),
		timeouts: resilience.DefaultTimeoutConfig(),
		metrics:  noopMetrics{},
		store:    NewMemorySessionStore(),
		name:     DefaultName,
		status:   NewStream[domain.StatusResponse](),
		errs:     NewStream[error](),
		commands: make(chan command),
		results:  make(chan pollResult),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	l := &loop{p: p}
	go l.run()

	return p
}

// Status is the stream of the latest status response; absent after a stop
func (p *StatusPoller) Status() *Stream[domain.StatusResponse] {
	return p.status
}

// Errors is the stream of fatal polling errors; absent after a stop
func (p *StatusPoller) Errors() *Stream[error] {
	return p.errs
}

// StartPolling starts polling for the given action and polls immediately.
// It is a no-op if that action is already being polled; any other active
// session is replaced. ctx bounds the call, not the session.
func (p *StatusPoller) StartPolling(ctx context.Context, clientKey, paymentData string) error {
	if clientKey == "" || paymentData == "" {
		return domain.ErrPollingInvalidSession
	}
	_, err := p.send(ctx, command{kind: cmdStart, clientKey: clientKey, paymentData: paymentData})
	return err
}

// UpdateStatus polls right away instead of waiting out the current delay.
// It does nothing when no session is active.
func (p *StatusPoller) UpdateStatus(ctx context.Context) error {
	_, err := p.send(ctx, command{kind: cmdUpdate})
	return err
}

// StopPolling ends the active session, drops its stored snapshot and
// resets both streams to absent.
func (p *StatusPoller) StopPolling(ctx context.Context) error {
	_, err := p.send(ctx, command{kind: cmdStop})
	return err
}

// Resume restarts polling from the stored snapshot, keeping its original
// start time so the polling ceiling still applies. It returns false when
// nothing was stored or another session is already active.
func (p *StatusPoller) Resume(ctx context.Context) (bool, error) {
	storeCtx, cancel := p.timeouts.SessionStoreContext(ctx)
	defer cancel()

	stored, err := p.store.Load(storeCtx, p.name)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load polling session: %w", err)
	}

	reply, err := p.send(ctx, command{kind: cmdResume, resumed: stored})
	if err != nil {
		return false, err
	}
	return reply.applied, nil
}

// Session returns a copy of the active session, nil when idle
func (p *StatusPoller) Session(ctx context.Context) (*Session, error) {
	reply, err := p.send(ctx, command{kind: cmdSnapshot})
	if err != nil {
		return nil, err
	}
	return reply.session, nil
}

// Close stops the loop and closes every stream subscription. The stored
// snapshot is kept so a new poller can Resume it.
func (p *StatusPoller) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		<-p.done
		p.status.Close()
		p.errs.Close()
	})
}

func (p *StatusPoller) send(ctx context.Context, cmd command) (commandReply, error) {
	cmd.reply = make(chan commandReply, 1)

	select {
	case p.commands <- cmd:
	case <-p.quit:
		return commandReply{}, ErrPollerClosed
	case <-ctx.Done():
		return commandReply{}, ctx.Err()
	}

	// Once accepted the loop always replies, even if it is quitting
	return <-cmd.reply, nil
}

// loop holds the state only the loop goroutine may touch
type loop struct {
	p          *StatusPoller
	session    *domain.PollingSession
	generation uint64
	timer      <-chan time.Time
	ctx        context.Context
	cancel     context.CancelFunc
}

func (l *loop) run() {
	defer close(l.p.done)

	for {
		select {
		case <-l.p.quit:
			if l.session != nil {
				l.endSession(EndReasonClosed, false)
			}
			return
		case cmd := <-l.p.commands:
			cmd.reply <- l.handle(cmd)
		case res := <-l.p.results:
			l.handleResult(res)
		case <-l.timer:
			l.timer = nil
			l.tick()
		}
	}
}

func (l *loop) handle(cmd command) commandReply {
	switch cmd.kind {
	case cmdStart:
		if l.session.Matches(cmd.clientKey, cmd.paymentData) {
			return commandReply{}
		}
		if l.session != nil {
			l.endSession(EndReasonReplaced, true)
		}
		l.p.status.Reset()
		l.p.errs.Reset()
		l.begin(domain.NewPollingSession(cmd.clientKey, cmd.paymentData, l.p.clock.Now()))
		return commandReply{applied: true}

	case cmdUpdate:
		if l.session == nil {
			return commandReply{}
		}
		l.timer = nil
		l.tick()
		return commandReply{applied: true}

	case cmdStop:
		if l.session != nil {
			l.endSession(EndReasonStopped, true)
		}
		l.p.status.Reset()
		l.p.errs.Reset()
		return commandReply{applied: true}

	case cmdResume:
		if l.session != nil {
			return commandReply{}
		}
		l.p.errs.Reset()
		if cmd.resumed.LastStatus != nil {
			l.p.status.Publish(*cmd.resumed.LastStatus)
		} else {
			l.p.status.Reset()
		}
		l.begin(cmd.resumed)
		return commandReply{applied: true}

	case cmdSnapshot:
		return commandReply{session: l.session.Clone()}

	default:
		return commandReply{}
	}
}

func (l *loop) begin(session *domain.PollingSession) {
	l.generation++
	l.session = session
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.p.metrics.SessionStarted()

	l.p.logger.Info("Status polling started",
		ports.String("session_id", session.ID.String()),
		ports.Duration("elapsed", l.p.clock.Since(session.StartedAt)))

	l.save()
	l.tick()
}

// tick schedules the next poll before issuing this one
func (l *loop) tick() {
	elapsed := l.p.clock.Since(l.session.StartedAt)

	delay, ok := l.p.schedule.NextDelay(elapsed)
	if !ok {
		l.p.logger.Warn("Status polling timed out",
			ports.String("session_id", l.session.ID.String()),
			ports.Duration("elapsed", elapsed))

		l.p.errs.Publish(domain.WrapError(domain.ErrorCodePollingTimeout, domain.ErrPollingTimeout.Message, nil).
			WithDetail("elapsed", elapsed.String()))
		l.endSession(EndReasonTimeout, true)
		return
	}

	l.session.CurrentDelay = delay
	l.timer = l.p.clock.After(delay)
	l.launch()
}

func (l *loop) launch() {
	p := l.p
	generation := l.generation
	ctx := l.ctx
	clientKey, paymentData := l.session.ClientKey, l.session.PaymentData
	started := p.clock.Now()

	go func() {
		reqCtx, cancel := p.timeouts.StatusRequestContext(ctx)
		defer cancel()

		status, err := p.checker.CheckStatus(reqCtx, clientKey, paymentData)
		if err == nil && status == nil {
			err = domain.ErrStatusUnavailable
		}

		res := pollResult{generation: generation, status: status, err: err, duration: p.clock.Since(started)}
		select {
		case p.results <- res:
		case <-p.quit:
		}
	}()
}

func (l *loop) handleResult(res pollResult) {
	if l.session == nil || res.generation != l.generation {
		return
	}

	if res.err != nil {
		// The schedule is the retry, a single failed poll is not reported
		l.p.metrics.RecordPoll(OutcomeFailed, res.duration)
		l.p.logger.Debug("Status request failed",
			ports.String("session_id", l.session.ID.String()),
			ports.Err(res.err))
		return
	}

	status := *res.status
	l.session.LastStatus = &status
	l.session.UpdatedAt = l.p.clock.Now()
	l.p.status.Publish(status)

	if !status.IsFinal() {
		l.p.metrics.RecordPoll(OutcomePending, res.duration)
		l.save()
		return
	}

	l.p.metrics.RecordPoll(OutcomeFinal, res.duration)
	l.p.logger.Info("Status polling finished",
		ports.String("session_id", l.session.ID.String()),
		ports.String("result_code", status.ResultCode))
	l.endSession(EndReasonFinal, true)
}

// endSession cancels the timer and in-flight requests. Stream values are
// left to the caller: a final status or timeout error stays observable.
func (l *loop) endSession(reason string, dropSnapshot bool) {
	l.timer = nil
	l.cancel()
	l.generation++
	l.p.metrics.SessionEnded(reason)

	l.p.logger.Debug("Status polling session ended",
		ports.String("session_id", l.session.ID.String()),
		ports.String("reason", reason))

	if dropSnapshot {
		ctx, cancel := l.p.timeouts.SessionStoreContext(context.Background())
		defer cancel()
		if err := l.p.store.Delete(ctx, l.p.name); err != nil {
			l.p.logger.Warn("Failed to delete polling session", ports.Err(err))
		}
	}
	l.session = nil
}

func (l *loop) save() {
	ctx, cancel := l.p.timeouts.SessionStoreContext(context.Background())
	defer cancel()
	if err := l.p.store.Save(ctx, l.p.name, l.session); err != nil {
		l.p.logger.Warn("Failed to save polling session",
			ports.String("session_id", l.session.ID.String()),
			ports.Err(err))
	}
}
