package checkout

import (
	"github.com/google/uuid"
)

// PaymentRequest is the body of a payment request
type PaymentRequest struct {
	PaymentMethod any    `json:"paymentMethod" yaml:"paymentMethod"`
	Amount        Amount `json:"amount" yaml:"amount"`
	Reference     string `json:"reference" yaml:"reference"`
}

// NewPaymentRequest creates a request; an empty reference gets a random one
func NewPaymentRequest(method any, amount Amount, reference string) (*PaymentRequest, error) {
	if _, err := amount.MinorUnits(); err != nil {
		return nil, err
	}
	if reference == "" {
		reference = uuid.NewString()
	}
	return &PaymentRequest{
		PaymentMethod: method,
		Amount:        amount,
		Reference:     reference,
	}, nil
}
