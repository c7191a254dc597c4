// Package challenge turns the callbacks of a 3-D Secure 2 challenge flow
// into action details or an error.
package challenge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
)

// ChallengeResultKey is the details key carrying the encoded result
const ChallengeResultKey = "threeds2.challengeResult"

// ProtocolErrorEvent is reported when the issuer's messages are malformed
type ProtocolErrorEvent struct {
	TransactionID    string
	ErrorCode        string
	ErrorDescription string
	ErrorDetails     string
}

// RuntimeErrorEvent is reported when the challenge SDK itself fails
type RuntimeErrorEvent struct {
	ErrorCode    string
	ErrorMessage string
}

// StatusReceiver receives the terminal event of one challenge
type StatusReceiver interface {
	Completed(transStatus string)
	Cancelled()
	TimedOut()
	ProtocolError(event ProtocolErrorEvent)
	RuntimeError(event RuntimeErrorEvent)
}

// Listener is told the outcome of the challenge
type Listener interface {
	OnSuccess(data domain.ActionComponentData)
	OnFailure(err error)
}

// Handler implements StatusReceiver. Only the first terminal event of a
// challenge is forwarded.
type Handler struct {
	listener    Listener
	logger      ports.Logger
	paymentData string

	once sync.Once
}

// NewHandler creates a receiver for one challenge of the payment
// identified by paymentData
func NewHandler(listener Listener, paymentData string, logger ports.Logger) *Handler {
	return &Handler{
		listener:    listener,
		logger:      logger,
		paymentData: paymentData,
	}
}

var _ StatusReceiver = (*Handler)(nil)

// Completed implements StatusReceiver
func (h *Handler) Completed(transStatus string) {
	h.once.Do(func() {
		result, err := EncodeChallengeResult(transStatus)
		if err != nil {
			h.fail(wrap("challenge result creation failure", err))
			return
		}
		h.logger.Info("Challenge completed", ports.String("trans_status", transStatus))
		h.listener.OnSuccess(domain.ActionComponentData{
			Details:     map[string]string{ChallengeResultKey: result},
			PaymentData: h.paymentData,
		})
	})
}

// Cancelled implements StatusReceiver
func (h *Handler) Cancelled() {
	h.once.Do(func() { h.fail(wrap("challenge was cancelled", nil)) })
}

// TimedOut implements StatusReceiver
func (h *Handler) TimedOut() {
	h.once.Do(func() { h.fail(wrap("challenge timed out", nil)) })
}

// ProtocolError implements StatusReceiver
func (h *Handler) ProtocolError(event ProtocolErrorEvent) {
	h.once.Do(func() {
		msg := fmt.Sprintf("protocol error [code: %s, description: %s, details: %s]",
			event.ErrorCode, event.ErrorDescription, event.ErrorDetails)
		h.fail(wrap(msg, nil).WithDetail("error_code", event.ErrorCode))
	})
}

// RuntimeError implements StatusReceiver
func (h *Handler) RuntimeError(event RuntimeErrorEvent) {
	h.once.Do(func() {
		msg := fmt.Sprintf("runtime error [code: %s, message: %s]", event.ErrorCode, event.ErrorMessage)
		h.fail(wrap(msg, nil).WithDetail("error_code", event.ErrorCode))
	})
}

func (h *Handler) fail(err *domain.DomainError) {
	h.logger.Warn("Challenge failed", ports.Err(err))
	h.listener.OnFailure(err)
}

func wrap(message string, err error) *domain.DomainError {
	return domain.WrapError(domain.ErrorCodeChallengeFailed, message, err)
}

type challengeResult struct {
	TransStatus string `json:"transStatus"`
}

// EncodeChallengeResult encodes transStatus the way the payments API
// expects it in the challenge result details
func EncodeChallengeResult(transStatus string) (string, error) {
	if transStatus == "" {
		return "", fmt.Errorf("trans status is empty")
	}
	raw, err := json.Marshal(challengeResult{TransStatus: transStatus})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeChallengeResult reverses EncodeChallengeResult
func DecodeChallengeResult(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode challenge result: %w", err)
	}
	var result challengeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode challenge result: %w", err)
	}
	return result.TransStatus, nil
}
