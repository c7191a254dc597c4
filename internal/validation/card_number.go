package validation

import (
	"strings"
	"unicode"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

// ValidateCardNumber validates a card number with the default validator.
func ValidateCardNumber(number string) domain.ValidationResult {
	return defaultValidator.ValidateCardNumber(number)
}

// ValidateCardNumber strips whitespace and the number separator, then
// classifies the digits by length and Luhn checksum.
//
// A number failing Luhn below the maximum length is PARTIAL, even at
// lengths no real card can extend from.
func (v *Validator) ValidateCardNumber(number string) domain.ValidationResult {
	normalized := normalize(number, v.numberSeparator)
	length := len(normalized)

	switch {
	case !isDigitsOnly(normalized):
		return domain.Invalid()
	case length > NumberMaximumLength:
		return domain.Invalid()
	case length < NumberMinimumLength:
		return domain.Partial(normalized)
	case IsLuhnValid(normalized):
		return domain.Valid(normalized)
	case length == NumberMaximumLength:
		return domain.Invalid()
	default:
		return domain.Partial(normalized)
	}
}

// IsLuhnValid reports whether a digit string passes the Luhn checksum.
// Callers must pass digits only.
func IsLuhnValid(digits string) bool {
	sum := 0
	for i := 0; i < len(digits); i++ {
		digit := int(digits[len(digits)-1-i] - '0')
		if i%2 == 0 {
			sum += digit
			continue
		}
		sum += 2 * digit
		if digit >= 5 {
			sum -= 9
		}
	}
	return sum%10 == 0
}

// normalize removes whitespace and every extra rune from value.
func normalize(value string, extra ...rune) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		for _, e := range extra {
			if r == e {
				return -1
			}
		}
		return r
	}, value)
}

// isDigitsOnly reports whether value consists of ASCII digits only.
func isDigitsOnly(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
