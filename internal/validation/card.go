package validation

import (
	"github.com/kevin07696/checkout-kit/internal/domain"
)

// CardInput is the raw card form input
type CardInput struct {
	Number       string
	ExpiryDate   string
	SecurityCode string
	HolderName   string

	// Brand overrides brand detection from the number when set
	Brand domain.CardBrand

	SecurityCodeRequired bool
	HolderNameRequired   bool
}

// CardValidation is the per-field result of validating a CardInput
type CardValidation struct {
	Number       domain.ValidationResult `json:"number" yaml:"number"`
	ExpiryDate   domain.ExpiryDateResult `json:"expiry_date" yaml:"expiry_date"`
	SecurityCode domain.ValidationResult `json:"security_code" yaml:"security_code"`
	HolderName   domain.ValidationResult `json:"holder_name" yaml:"holder_name"`
	Brand        domain.CardBrand        `json:"brand,omitempty" yaml:"brand,omitempty"`
}

// IsValid reports whether every field is VALID, i.e. the card can be submitted
func (c CardValidation) IsValid() bool {
	return c.Number.Validity.IsValid() &&
		c.ExpiryDate.Validity.IsValid() &&
		c.SecurityCode.Validity.IsValid() &&
		c.HolderName.Validity.IsValid()
}

// ValidateCard validates a card with the default validator.
func ValidateCard(input CardInput) CardValidation {
	return defaultValidator.ValidateCard(input)
}

// ValidateCard validates every field of the input at once.
func (v *Validator) ValidateCard(input CardInput) CardValidation {
	brand := input.Brand
	if !brand.IsKnown() {
		brand = DetectBrand(normalize(input.Number, v.numberSeparator))
	}

	return CardValidation{
		Number:       v.ValidateCardNumber(input.Number),
		ExpiryDate:   v.ValidateExpiryDate(input.ExpiryDate),
		SecurityCode: v.ValidateSecurityCode(input.SecurityCode, input.SecurityCodeRequired, brand),
		HolderName:   v.ValidateHolderName(input.HolderName, input.HolderNameRequired),
		Brand:        brand,
	}
}
