package validation

import (
	"strings"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

// ValidateSecurityCode validates a security code with the default validator.
func ValidateSecurityCode(securityCode string, required bool, brand domain.CardBrand) domain.ValidationResult {
	return defaultValidator.ValidateSecurityCode(securityCode, required, brand)
}

// ValidateSecurityCode checks the code length against the brand. American
// Express needs four digits, every other known brand three; an unknown
// brand accepts either.
func (v *Validator) ValidateSecurityCode(securityCode string, required bool, brand domain.CardBrand) domain.ValidationResult {
	normalized := normalize(securityCode)
	length := len(normalized)

	switch {
	case !isDigitsOnly(normalized):
		return domain.Invalid()
	case length > SecurityCodeMaximumLength:
		return domain.Invalid()
	case length == 0:
		if required {
			return domain.Invalid()
		}
		return domain.Valid("")
	case length < SecurityCodeMinimumLength:
		return domain.Partial(normalized)
	}

	switch {
	case brand == domain.CardBrandAmericanExpress:
		if length == brand.SecurityCodeLength() {
			return domain.Valid(normalized)
		}
		return domain.Partial(normalized)
	case brand.IsKnown():
		if length == brand.SecurityCodeLength() {
			return domain.Valid(normalized)
		}
		return domain.Invalid()
	default:
		return domain.Valid(normalized)
	}
}

// ValidateHolderName validates a holder name with the default validator.
func ValidateHolderName(holderName string, required bool) domain.ValidationResult {
	return defaultValidator.ValidateHolderName(holderName, required)
}

// ValidateHolderName trims the name; an empty name is only valid when optional.
func (v *Validator) ValidateHolderName(holderName string, required bool) domain.ValidationResult {
	trimmed := strings.TrimSpace(holderName)
	if trimmed == "" {
		if required {
			return domain.Invalid()
		}
		return domain.Valid("")
	}
	return domain.Valid(trimmed)
}
