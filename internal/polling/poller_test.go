package polling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/test/mocks"
)

const (
	testClientKey = "test_CLIENTKEY"
	waitTimeout   = time.Second
	quietPeriod   = 50 * time.Millisecond
)

type checkCall struct {
	clientKey   string
	paymentData string
}

// fakeChecker signals every call on calls before answering with respond
type fakeChecker struct {
	calls   chan checkCall
	mu      sync.Mutex
	n       int
	respond func(n int, paymentData string) (*domain.StatusResponse, error)
}

func newFakeChecker(respond func(n int, paymentData string) (*domain.StatusResponse, error)) *fakeChecker {
	return &fakeChecker{calls: make(chan checkCall, 100), respond: respond}
}

func alwaysPending(int, string) (*domain.StatusResponse, error) {
	return &domain.StatusResponse{Type: "complete", ResultCode: domain.ResultCodePending}, nil
}

func (f *fakeChecker) CheckStatus(_ context.Context, clientKey, paymentData string) (*domain.StatusResponse, error) {
	f.mu.Lock()
	f.n++
	n := f.n
	f.mu.Unlock()

	f.calls <- checkCall{clientKey: clientKey, paymentData: paymentData}
	return f.respond(n, paymentData)
}

func waitCall(t *testing.T, f *fakeChecker) checkCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("expected a status request")
		return checkCall{}
	}
}

func expectNoCall(t *testing.T, f *fakeChecker) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected status request for %q", c.paymentData)
	case <-time.After(quietPeriod):
	}
}

// waitPresent reads updates until one carries a value
func waitPresent[T any](t *testing.T, ch <-chan Update[T]) T {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case u, ok := <-ch:
			require.True(t, ok, "stream closed")
			if u.Present {
				return u.Value
			}
		case <-deadline:
			t.Fatal("expected a value on the stream")
			var zero T
			return zero
		}
	}
}

func advance(clock *clockz.FakeClock, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
}

type recordingMetrics struct {
	mu      sync.Mutex
	polls   map[string]int
	started int
	endings []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{polls: make(map[string]int)}
}

func (r *recordingMetrics) RecordPoll(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[outcome]++
}

func (r *recordingMetrics) SessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingMetrics) SessionEnded(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endings = append(r.endings, reason)
}

func (r *recordingMetrics) snapshot() (map[string]int, int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	polls := make(map[string]int, len(r.polls))
	for k, v := range r.polls {
		polls[k] = v
	}
	return polls, r.started, append([]string(nil), r.endings...)
}

func newTestPoller(t *testing.T, checker ports.StatusChecker, opts ...Option) (*StatusPoller, *clockz.FakeClock) {
	t.Helper()
	clock := clockz.NewFakeClock()
	p := NewStatusPoller(checker, mocks.NewMockLogger(), append([]Option{WithClock(clock)}, opts...)...)
	t.Cleanup(p.Close)
	return p, clock
}

func TestStartPolling_PollsImmediately(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, _ := newTestPoller(t, checker)

	require.NoError(t, p.StartPolling(context.Background(), testClientKey, "Ab02b4c0"))

	call := waitCall(t, checker)
	assert.Equal(t, testClientKey, call.clientKey)
	assert.Equal(t, "Ab02b4c0", call.paymentData)
}

func TestStartPolling_SameSessionIsNoop(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, clock := newTestPoller(t, checker)
	ctx := context.Background()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)
	first, err := p.Session(ctx)
	require.NoError(t, err)

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	expectNoCall(t, checker)

	second, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Only one schedule is running
	advance(clock, 2*time.Second)
	waitCall(t, checker)
	expectNoCall(t, checker)
}

func TestStartPolling_RequiresIdentifiers(t *testing.T) {
	p, _ := newTestPoller(t, newFakeChecker(alwaysPending))

	err := p.StartPolling(context.Background(), "", "Ab02b4c0")
	assert.ErrorIs(t, err, domain.ErrPollingInvalidSession)

	err = p.StartPolling(context.Background(), testClientKey, "")
	assert.ErrorIs(t, err, domain.ErrPollingInvalidSession)
}

func TestStartPolling_ReplacesSessionAndDropsStaleResults(t *testing.T) {
	release := make(chan struct{})
	checker := newFakeChecker(func(_ int, paymentData string) (*domain.StatusResponse, error) {
		if paymentData == "first" {
			<-release
			return &domain.StatusResponse{ResultCode: domain.ResultCodeAuthorised, Payload: "stale"}, nil
		}
		return &domain.StatusResponse{ResultCode: domain.ResultCodePending}, nil
	})
	p, _ := newTestPoller(t, checker)
	ctx := context.Background()

	statusCh, unsubscribe := p.Status().Subscribe()
	defer unsubscribe()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "first"))
	assert.Equal(t, "first", waitCall(t, checker).paymentData)

	require.NoError(t, p.StartPolling(ctx, testClientKey, "second"))
	assert.Equal(t, "second", waitCall(t, checker).paymentData)
	assert.Equal(t, domain.ResultCodePending, waitPresent(t, statusCh).ResultCode)

	close(release)
	time.Sleep(quietPeriod)

	latest, ok := p.Status().Latest()
	require.True(t, ok)
	assert.Equal(t, domain.ResultCodePending, latest.ResultCode)

	session, err := p.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "second", session.PaymentData)
}

func TestPolling_DelayTiers(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, clock := newTestPoller(t, checker)
	ctx := context.Background()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)

	session, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, session.CurrentDelay)

	// Nothing happens before the fast delay has elapsed
	advance(clock, time.Second)
	expectNoCall(t, checker)

	advance(clock, time.Second)
	waitCall(t, checker)

	// Past the fast window the next tick switches to the slow tier
	advance(clock, time.Minute)
	waitCall(t, checker)

	session, err = p.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, session.CurrentDelay)

	advance(clock, 9*time.Second)
	expectNoCall(t, checker)
	advance(clock, time.Second)
	waitCall(t, checker)
}

func TestUpdateStatus_PollsOutOfSchedule(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, clock := newTestPoller(t, checker)
	ctx := context.Background()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)

	require.NoError(t, p.UpdateStatus(ctx))
	waitCall(t, checker)

	// The schedule restarts from the out of schedule poll
	advance(clock, 2*time.Second)
	waitCall(t, checker)
	expectNoCall(t, checker)
}

func TestUpdateStatus_IdleIsNoop(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, _ := newTestPoller(t, checker)

	require.NoError(t, p.UpdateStatus(context.Background()))
	expectNoCall(t, checker)
}

func TestStopPolling_ResetsStreamsAndStopsTicks(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	store := NewMemorySessionStore()
	p, clock := newTestPoller(t, checker, WithSessionStore(store))
	ctx := context.Background()

	statusCh, unsubscribe := p.Status().Subscribe()
	defer unsubscribe()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)
	require.Eventually(t, func() bool {
		_, ok := p.Status().Latest()
		return ok
	}, waitTimeout, time.Millisecond)

	require.NoError(t, p.StopPolling(ctx))

	_, ok := p.Status().Latest()
	assert.False(t, ok)
	_, ok = p.Errors().Latest()
	assert.False(t, ok)

	select {
	case u := <-statusCh:
		assert.False(t, u.Present, "next observed status must be absent")
	case <-time.After(waitTimeout):
		t.Fatal("expected an update after stop")
	}

	advance(clock, 3*time.Second)
	expectNoCall(t, checker)

	session, err := p.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = store.Load(ctx, DefaultName)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestStopPolling_LateSubscriberSeesAbsent(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	p, _ := newTestPoller(t, checker)
	ctx := context.Background()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)
	require.NoError(t, p.StopPolling(ctx))

	ch, unsubscribe := p.Status().Subscribe()
	defer unsubscribe()

	u := <-ch
	assert.False(t, u.Present)
}

func TestPolling_TimeoutAfterCeiling(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	metrics := newRecordingMetrics()
	p, clock := newTestPoller(t, checker, WithMetrics(metrics))
	ctx := context.Background()

	errCh, unsubscribe := p.Errors().Subscribe()
	defer unsubscribe()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)

	advance(clock, 15*time.Minute+time.Second)

	err := waitPresent(t, errCh)
	assert.ErrorIs(t, err, domain.ErrPollingTimeout)
	assert.True(t, domain.IsFatalPollingError(err))

	// No further ticks and no second error
	advance(clock, time.Hour)
	expectNoCall(t, checker)
	select {
	case u := <-errCh:
		t.Fatalf("unexpected error stream update: %+v", u)
	case <-time.After(quietPeriod):
	}

	session, sessionErr := p.Session(ctx)
	require.NoError(t, sessionErr)
	assert.Nil(t, session)

	_, _, endings := metrics.snapshot()
	assert.Equal(t, []string{EndReasonTimeout}, endings)
}

func TestPolling_TransportFailureIsSwallowed(t *testing.T) {
	checker := newFakeChecker(func(n int, _ string) (*domain.StatusResponse, error) {
		if n == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return &domain.StatusResponse{ResultCode: domain.ResultCodePending}, nil
	})
	logger := mocks.NewMockLogger()
	clock := clockz.NewFakeClock()
	p := NewStatusPoller(checker, logger, WithClock(clock))
	t.Cleanup(p.Close)
	ctx := context.Background()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)

	require.Eventually(t, func() bool {
		return logger.HasMessage("Status request failed")
	}, waitTimeout, time.Millisecond)

	_, ok := p.Errors().Latest()
	assert.False(t, ok, "transport failures must not reach the error stream")

	advance(clock, 2*time.Second)
	waitCall(t, checker)
}

func TestPolling_FinalStatusStops(t *testing.T) {
	checker := newFakeChecker(func(int, string) (*domain.StatusResponse, error) {
		return &domain.StatusResponse{Type: "complete", ResultCode: "Authorised", Payload: "Ab02b4c0!BQABAgA"}, nil
	})
	metrics := newRecordingMetrics()
	p, clock := newTestPoller(t, checker, WithMetrics(metrics))
	ctx := context.Background()

	statusCh, unsubscribe := p.Status().Subscribe()
	defer unsubscribe()

	require.NoError(t, p.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)

	status := waitPresent(t, statusCh)
	assert.True(t, status.IsFinal())
	assert.Equal(t, "Ab02b4c0!BQABAgA", status.Payload)

	require.Eventually(t, func() bool {
		session, err := p.Session(ctx)
		return err == nil && session == nil
	}, waitTimeout, time.Millisecond)

	advance(clock, 2*time.Second)
	expectNoCall(t, checker)

	// The final status stays observable after the session ended
	latest, ok := p.Status().Latest()
	require.True(t, ok)
	assert.Equal(t, "Authorised", latest.ResultCode)

	polls, started, endings := metrics.snapshot()
	assert.Equal(t, 1, polls[OutcomeFinal])
	assert.Equal(t, 1, started)
	assert.Equal(t, []string{EndReasonFinal}, endings)
}

func TestResume_FromStoredSession(t *testing.T) {
	checker := newFakeChecker(alwaysPending)
	store := NewMemorySessionStore()
	clock := clockz.NewFakeClock()
	ctx := context.Background()

	first := NewStatusPoller(checker, mocks.NewMockLogger(), WithClock(clock), WithSessionStore(store), WithName("test"))
	require.NoError(t, first.StartPolling(ctx, testClientKey, "Ab02b4c0"))
	waitCall(t, checker)
	original, err := first.Session(ctx)
	require.NoError(t, err)
	first.Close()

	second := NewStatusPoller(checker, mocks.NewMockLogger(), WithClock(clock), WithSessionStore(store), WithName("test"))
	t.Cleanup(second.Close)

	resumed, err := second.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, "Ab02b4c0", waitCall(t, checker).paymentData)

	session, err := second.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, original.ID, session.ID)
	assert.True(t, original.StartedAt.Equal(session.StartedAt))

	// An active session is not replaced by a resume
	resumed, err = second.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
}

func TestResume_NothingStored(t *testing.T) {
	p, _ := newTestPoller(t, newFakeChecker(alwaysPending))

	resumed, err := p.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
}

func TestClose_RejectsFurtherCalls(t *testing.T) {
	p := NewStatusPoller(newFakeChecker(alwaysPending), mocks.NewMockLogger(), WithClock(clockz.NewFakeClock()))
	ch, _ := p.Status().Subscribe()

	p.Close()
	p.Close()

	_, open := <-ch
	assert.False(t, open)
	assert.ErrorIs(t, p.StartPolling(context.Background(), testClientKey, "Ab02b4c0"), ErrPollerClosed)
	assert.ErrorIs(t, p.StopPolling(context.Background()), ErrPollerClosed)
}
