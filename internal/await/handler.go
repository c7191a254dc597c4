// Package await handles await actions: the shopper confirms the payment
// out of band (e.g. in a banking app) while the status is polled.
package await

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/internal/polling"
)

// PayloadDetailsKey is the details key carrying the status payload
const PayloadDetailsKey = "payload"

const eventBuffer = 4

// Poller is the part of polling.StatusPoller the handler drives
type Poller interface {
	StartPolling(ctx context.Context, clientKey, paymentData string) error
	UpdateStatus(ctx context.Context) error
	StopPolling(ctx context.Context) error
	Status() *polling.Stream[domain.StatusResponse]
	Errors() *polling.Stream[error]
}

// OutputData is what a UI shows while waiting
type OutputData struct {
	IsValid           bool   `json:"isValid" yaml:"isValid"`
	PaymentMethodType string `json:"paymentMethodType,omitempty" yaml:"paymentMethodType,omitempty"`
}

// Event is the outcome of one await action. Exactly one field is set.
type Event struct {
	Details *domain.ActionComponentData
	Err     error
}

// Handler turns polled statuses of an await action into details or an error
type Handler struct {
	poller    Poller
	logger    ports.Logger
	clientKey string

	output *polling.Stream[OutputData]
	events chan Event

	mu     sync.Mutex
	action *domain.AwaitAction
	stop   context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewHandler creates a handler polling with clientKey
func NewHandler(poller Poller, clientKey string, logger ports.Logger) *Handler {
	h := &Handler{
		poller:    poller,
		logger:    logger,
		clientKey: clientKey,
		output:    polling.NewStream[OutputData](),
		events:    make(chan Event, eventBuffer),
	}
	h.output.Publish(OutputData{})
	return h
}

// Events delivers details or errors; it is closed by Close
func (h *Handler) Events() <-chan Event {
	return h.events
}

// Output is the stream of UI output data
func (h *Handler) Output() *polling.Stream[OutputData] {
	return h.output
}

// Action returns the action being handled, nil once it has an outcome
func (h *Handler) Action() *domain.AwaitAction {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.action == nil {
		return nil
	}
	action := *h.action
	return &action
}

// Handle starts polling for action. An action already being handled is
// replaced. Problems with the action itself are both returned and emitted.
func (h *Handler) Handle(ctx context.Context, action domain.AwaitAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return polling.ErrPollerClosed
	}

	if action.Type != domain.ActionTypeAwait {
		err := domain.NewDomainError(domain.ErrorCodeActionUnsupported, domain.ErrActionUnsupported.Message).
			WithDetail("type", action.Type)
		h.emitLocked(Event{Err: err})
		return err
	}
	if action.PaymentData == "" {
		h.logger.Error("Await action has no payment data")
		err := domain.NewDomainError(domain.ErrorCodePayloadInvalid, "payment data is missing")
		h.emitLocked(Event{Err: err})
		return err
	}

	h.stopWatchingLocked()
	h.action = &action
	h.output.Publish(OutputData{PaymentMethodType: action.PaymentMethodType})

	// Streams are reset by a new session, so subscribe only after starting
	if err := h.poller.StartPolling(ctx, h.clientKey, action.PaymentData); err != nil {
		h.action = nil
		return err
	}

	statusCh, unsubscribeStatus := h.poller.Status().Subscribe()
	errCh, unsubscribeErrs := h.poller.Errors().Subscribe()

	watchCtx, cancel := context.WithCancel(context.Background())
	h.stop = cancel
	h.done = make(chan struct{})

	go func(action domain.AwaitAction, done chan struct{}) {
		defer close(done)
		defer unsubscribeStatus()
		defer unsubscribeErrs()
		h.watch(watchCtx, action, statusCh, errCh)
	}(action, h.done)

	h.logger.Info("Await action started",
		ports.String("payment_method_type", action.PaymentMethodType))
	return nil
}

// Refresh requests a status right away, e.g. when the shopper returns
// from the banking app.
func (h *Handler) Refresh(ctx context.Context) error {
	if h.Action() == nil {
		return nil
	}
	return h.poller.UpdateStatus(ctx)
}

// Close stops polling and closes Events and Output
func (h *Handler) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	done := h.stopWatchingLocked()
	h.action = nil
	h.mu.Unlock()

	if done != nil {
		<-done
	}
	err := h.poller.StopPolling(ctx)
	h.output.Close()
	close(h.events)
	return err
}

func (h *Handler) watch(ctx context.Context, action domain.AwaitAction, statusCh <-chan polling.Update[domain.StatusResponse], errCh <-chan polling.Update[error]) {
	for {
		select {
		case <-ctx.Done():
			return

		case u, ok := <-statusCh:
			if !ok {
				return
			}
			if !u.Present {
				continue
			}
			status := u.Value
			h.logger.Debug("Await status changed", ports.String("result_code", status.ResultCode))
			h.output.Publish(OutputData{IsValid: status.IsFinal(), PaymentMethodType: action.PaymentMethodType})
			if status.IsFinal() {
				h.finish(ctx, outcome(status, action.PaymentData))
				return
			}

		case u, ok := <-errCh:
			if !ok {
				return
			}
			if !u.Present {
				continue
			}
			h.logger.Error("Error while polling status", ports.Err(u.Value))
			h.finish(ctx, Event{Err: u.Value})
			return
		}
	}
}

// finish emits the outcome unless the watch was cancelled meanwhile
func (h *Handler) finish(ctx context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	h.action = nil
	h.emitLocked(ev)
}

// outcome maps a final status to details. A refused payment that carries
// a payload still yields details so the merchant can fetch the reason.
func outcome(status domain.StatusResponse, paymentData string) Event {
	if status.IsFinal() && status.HasPayload() {
		return Event{Details: &domain.ActionComponentData{
			Details:     map[string]string{PayloadDetailsKey: status.Payload},
			PaymentData: paymentData,
		}}
	}
	err := domain.NewDomainError(domain.ErrorCodeActionNotCompleted, domain.ErrActionNotCompleted.Message+" - "+status.ResultCode).
		WithDetail("result_code", status.ResultCode)
	return Event{Err: err}
}

func (h *Handler) emitLocked(ev Event) {
	if h.closed {
		return
	}
	select {
	case h.events <- ev:
	default:
		h.logger.Warn("Await event dropped, nobody is reading events")
	}
}

// stopWatchingLocked cancels the watcher and returns its done channel.
// The watcher may be blocked on h.mu in finish, so only wait on it after
// releasing the lock.
func (h *Handler) stopWatchingLocked() chan struct{} {
	if h.stop == nil {
		return nil
	}
	h.stop()
	done := h.done
	h.stop = nil
	h.done = nil
	return done
}
