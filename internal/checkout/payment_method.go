package checkout

import (
	"fmt"
	"strings"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/internal/iban"
	"github.com/kevin07696/checkout-kit/internal/validation"
	pkgerrors "github.com/kevin07696/checkout-kit/pkg/errors"
)

// Payment method types
const (
	PaymentMethodScheme          = "scheme"
	PaymentMethodSEPADirectDebit = "sepadirectdebit"
)

// CardPaymentMethod is the payment method payload of a card payment
type CardPaymentMethod struct {
	Type        string `json:"type" yaml:"type"`
	Number      string `json:"number" yaml:"number"`
	ExpiryMonth string `json:"expiryMonth" yaml:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear" yaml:"expiryYear"`
	CVC         string `json:"cvc,omitempty" yaml:"cvc,omitempty"`
	HolderName  string `json:"holderName,omitempty" yaml:"holderName,omitempty"`
	Brand       string `json:"brand,omitempty" yaml:"brand,omitempty"`
}

// SEPAPaymentMethod is the payment method payload of a SEPA direct debit
type SEPAPaymentMethod struct {
	Type      string `json:"type" yaml:"type"`
	OwnerName string `json:"sepa.ownerName" yaml:"sepa.ownerName"`
	IBAN      string `json:"sepa.ibanNumber" yaml:"sepa.ibanNumber"`
}

// BuildCardPaymentMethod builds the payload from a card whose fields are
// all valid. Anything else is rejected naming the first bad field.
func BuildCardPaymentMethod(card validation.CardValidation) (*CardPaymentMethod, error) {
	switch {
	case !card.Number.Validity.IsValid():
		return nil, invalidField("number")
	case !card.ExpiryDate.Validity.IsValid() || card.ExpiryDate.Month == nil || card.ExpiryDate.Year == nil:
		return nil, invalidField("expiry_date")
	case !card.SecurityCode.Validity.IsValid():
		return nil, invalidField("security_code")
	case !card.HolderName.Validity.IsValid():
		return nil, invalidField("holder_name")
	}

	return &CardPaymentMethod{
		Type:        PaymentMethodScheme,
		Number:      card.Number.Value,
		ExpiryMonth: fmt.Sprintf("%02d", *card.ExpiryDate.Month),
		ExpiryYear:  fmt.Sprintf("%04d", *card.ExpiryDate.Year),
		CVC:         card.SecurityCode.Value,
		HolderName:  card.HolderName.Value,
		Brand:       string(card.Brand),
	}, nil
}

// BuildSEPAPaymentMethod builds a SEPA direct debit payload. The IBAN is
// parsed leniently, so short BBAN groups are zero padded.
func BuildSEPAPaymentMethod(ownerName, value string) (*SEPAPaymentMethod, error) {
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		return nil, invalidField("owner_name")
	}

	parsed, ok := iban.ParseByAddingMissingZeros(value)
	if !ok {
		return nil, invalidField("iban")
	}
	if !parsed.IsSEPA() {
		return nil, pkgerrors.NewValidationError("iban", "country does not take part in SEPA")
	}

	return &SEPAPaymentMethod{
		Type:      PaymentMethodSEPADirectDebit,
		OwnerName: ownerName,
		IBAN:      parsed.Value,
	}, nil
}

func invalidField(field string) error {
	return fmt.Errorf("%w: %w", domain.ErrPayloadInvalid, pkgerrors.NewValidationError(field, "is not valid"))
}
