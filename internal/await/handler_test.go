package await

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/internal/polling"
	"github.com/kevin07696/checkout-kit/pkg/resilience"
	"github.com/kevin07696/checkout-kit/test/mocks"
)

const testClientKey = "test_CLIENTKEY"

// fakePoller publishes whatever the test tells it to
type fakePoller struct {
	mu      sync.Mutex
	started []string
	updates int
	stopped int

	status *polling.Stream[domain.StatusResponse]
	errs   *polling.Stream[error]
}

func newFakePoller() *fakePoller {
	return &fakePoller{
		status: polling.NewStream[domain.StatusResponse](),
		errs:   polling.NewStream[error](),
	}
}

func (f *fakePoller) StartPolling(_ context.Context, _, paymentData string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, paymentData)
	f.status.Reset()
	f.errs.Reset()
	return nil
}

func (f *fakePoller) UpdateStatus(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return nil
}

func (f *fakePoller) StopPolling(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	f.status.Reset()
	f.errs.Reset()
	return nil
}

func (f *fakePoller) Status() *polling.Stream[domain.StatusResponse] { return f.status }
func (f *fakePoller) Errors() *polling.Stream[error]                 { return f.errs }

func awaitAction(paymentData string) domain.AwaitAction {
	return domain.AwaitAction{
		Type:              domain.ActionTypeAwait,
		PaymentMethodType: "blik",
		PaymentData:       paymentData,
	}
}

func nextEvent(t *testing.T, h *Handler) Event {
	t.Helper()
	select {
	case ev := <-h.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an await event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, h *Handler) {
	t.Helper()
	select {
	case ev := <-h.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandler_FinalStatusWithPayloadEmitsDetails(t *testing.T) {
	tests := []struct {
		name       string
		resultCode string
	}{
		{"authorised", domain.ResultCodeAuthorised},
		{"refused still reports details", domain.ResultCodeRefused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poller := newFakePoller()
			h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
			defer h.Close(context.Background())

			require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))
			assert.Equal(t, []string{"Ab02b4c0"}, poller.started)

			poller.status.Publish(domain.StatusResponse{ResultCode: domain.ResultCodePending})
			expectNoEvent(t, h)

			poller.status.Publish(domain.StatusResponse{Type: "complete", ResultCode: tt.resultCode, Payload: "Ab02b4c0!BQABAgA"})

			ev := nextEvent(t, h)
			require.NoError(t, ev.Err)
			require.NotNil(t, ev.Details)
			assert.Equal(t, map[string]string{PayloadDetailsKey: "Ab02b4c0!BQABAgA"}, ev.Details.Details)
			assert.Equal(t, "Ab02b4c0", ev.Details.PaymentData)
			assert.Nil(t, h.Action())

			out, ok := h.Output().Latest()
			require.True(t, ok)
			assert.Equal(t, OutputData{IsValid: true, PaymentMethodType: "blik"}, out)
		})
	}
}

func TestHandler_FinalStatusWithoutPayloadEmitsError(t *testing.T) {
	poller := newFakePoller()
	h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
	defer h.Close(context.Background())

	require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))
	poller.status.Publish(domain.StatusResponse{ResultCode: domain.ResultCodeRefused})

	ev := nextEvent(t, h)
	assert.Nil(t, ev.Details)
	require.Error(t, ev.Err)
	assert.ErrorIs(t, ev.Err, domain.ErrActionNotCompleted)
	assert.Contains(t, ev.Err.Error(), "payment was not completed - refused")
}

func TestHandler_PollingTimeoutIsForwarded(t *testing.T) {
	poller := newFakePoller()
	h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
	defer h.Close(context.Background())

	require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))
	poller.errs.Publish(domain.ErrPollingTimeout)

	ev := nextEvent(t, h)
	assert.ErrorIs(t, ev.Err, domain.ErrPollingTimeout)
	assert.Nil(t, h.Action())
}

func TestHandler_RejectsBadActions(t *testing.T) {
	tests := []struct {
		name   string
		action domain.AwaitAction
		want   *domain.DomainError
	}{
		{"unsupported type", domain.AwaitAction{Type: "redirect", PaymentData: "Ab02b4c0"}, domain.ErrActionUnsupported},
		{"missing payment data", domain.AwaitAction{Type: domain.ActionTypeAwait}, domain.ErrPayloadInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poller := newFakePoller()
			h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
			defer h.Close(context.Background())

			err := h.Handle(context.Background(), tt.action)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, nextEvent(t, h).Err, tt.want)
			assert.Empty(t, poller.started)
		})
	}
}

func TestHandler_StaleStatusFromReplacedActionIsIgnored(t *testing.T) {
	poller := newFakePoller()
	h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
	defer h.Close(context.Background())

	require.NoError(t, h.Handle(context.Background(), awaitAction("first")))
	require.NoError(t, h.Handle(context.Background(), awaitAction("second")))
	assert.Equal(t, []string{"first", "second"}, poller.started)

	poller.status.Publish(domain.StatusResponse{ResultCode: domain.ResultCodeAuthorised, Payload: "p"})

	ev := nextEvent(t, h)
	require.NotNil(t, ev.Details)
	assert.Equal(t, "second", ev.Details.PaymentData)
	expectNoEvent(t, h)
}

func TestHandler_Refresh(t *testing.T) {
	poller := newFakePoller()
	h := NewHandler(poller, testClientKey, mocks.NewMockLogger())
	defer h.Close(context.Background())

	// Nothing to refresh yet
	require.NoError(t, h.Refresh(context.Background()))
	assert.Equal(t, 0, poller.updates)

	require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))
	require.NoError(t, h.Refresh(context.Background()))
	assert.Equal(t, 1, poller.updates)
}

func TestHandler_Close(t *testing.T) {
	poller := newFakePoller()
	h := NewHandler(poller, testClientKey, mocks.NewMockLogger())

	require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))
	require.NoError(t, h.Close(context.Background()))
	require.NoError(t, h.Close(context.Background()))
	assert.Equal(t, 1, poller.stopped)

	_, open := <-h.Events()
	assert.False(t, open)

	assert.ErrorIs(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")), polling.ErrPollerClosed)
}

func TestHandler_WithStatusPoller(t *testing.T) {
	checker := new(mocks.MockStatusChecker)
	checker.On("CheckStatus", mock.Anything, testClientKey, "Ab02b4c0").
		Return(&domain.StatusResponse{Type: "complete", ResultCode: domain.ResultCodeAuthorised, Payload: "Ab02b4c0!BQABAgA"}, nil).
		Once()

	logger := mocks.NewMockLogger()
	poller := polling.NewStatusPoller(checker, logger, polling.WithTimeouts(resilience.TestTimeoutConfig()))
	defer poller.Close()

	h := NewHandler(poller, testClientKey, logger)
	defer h.Close(context.Background())

	require.NoError(t, h.Handle(context.Background(), awaitAction("Ab02b4c0")))

	ev := nextEvent(t, h)
	require.NotNil(t, ev.Details)
	assert.Equal(t, "Ab02b4c0!BQABAgA", ev.Details.Details[PayloadDetailsKey])
	checker.AssertExpectations(t)
}
