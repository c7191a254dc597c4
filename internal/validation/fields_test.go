package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/pkg/timeutil"
)

func TestValidateSecurityCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		required bool
		brand    domain.CardBrand
		expected domain.ValidationResult
	}{
		{name: "empty optional", code: "", expected: domain.Valid("")},
		{name: "empty required", code: "", required: true, expected: domain.Invalid()},
		{name: "whitespace only optional", code: "  ", expected: domain.Valid("")},
		{name: "one digit", code: "1", required: true, expected: domain.Partial("1")},
		{name: "two digits", code: "12", required: true, brand: domain.CardBrandVisa, expected: domain.Partial("12")},
		{name: "three digits unknown brand", code: "123", expected: domain.Valid("123")},
		{name: "four digits unknown brand", code: "1234", expected: domain.Valid("1234")},
		{name: "three digits visa", code: "123", brand: domain.CardBrandVisa, expected: domain.Valid("123")},
		{name: "four digits visa", code: "1234", brand: domain.CardBrandVisa, expected: domain.Invalid()},
		{name: "three digits amex", code: "123", brand: domain.CardBrandAmericanExpress, expected: domain.Partial("123")},
		{name: "four digits amex", code: "1234", brand: domain.CardBrandAmericanExpress, expected: domain.Valid("1234")},
		{name: "five digits", code: "12345", expected: domain.Invalid()},
		{name: "letters", code: "12a", expected: domain.Invalid()},
		{name: "spaces stripped", code: " 1 2 3 ", brand: domain.CardBrandMastercard, expected: domain.Valid("123")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSecurityCode(tt.code, tt.required, tt.brand))
		})
	}
}

func TestValidateHolderName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		required bool
		expected domain.ValidationResult
	}{
		{name: "trimmed", input: "  J. Smith ", required: true, expected: domain.Valid("J. Smith")},
		{name: "empty optional", input: "", expected: domain.Valid("")},
		{name: "blank required", input: " \t ", required: true, expected: domain.Invalid()},
		{name: "inner spaces kept", input: "Jan  de Vries", expected: domain.Valid("Jan  de Vries")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateHolderName(tt.input, tt.required))
		})
	}
}

func TestValidateCard(t *testing.T) {
	clock := clockz.NewFakeClock()
	v := NewValidator(WithClock(clock))
	expiry := expiryFor(clock.Now(), 24)

	t.Run("complete visa", func(t *testing.T) {
		result := v.ValidateCard(CardInput{
			Number:               "4111 1111 1111 1111",
			ExpiryDate:           expiry,
			SecurityCode:         "737",
			HolderName:           "J. Smith",
			SecurityCodeRequired: true,
		})
		assert.True(t, result.IsValid())
		assert.Equal(t, domain.CardBrandVisa, result.Brand)
	})

	t.Run("amex needs four digit code", func(t *testing.T) {
		result := v.ValidateCard(CardInput{
			Number:               "378282246310005",
			ExpiryDate:           expiry,
			SecurityCode:         "737",
			SecurityCodeRequired: true,
		})
		assert.False(t, result.IsValid())
		assert.Equal(t, domain.ValidityPartial, result.SecurityCode.Validity)
	})

	t.Run("explicit brand overrides detection", func(t *testing.T) {
		result := v.ValidateCard(CardInput{
			Number:       "4111111111111111",
			ExpiryDate:   expiry,
			SecurityCode: "7373",
			Brand:        domain.CardBrandAmericanExpress,
		})
		assert.True(t, result.IsValid())
		assert.Equal(t, domain.CardBrandAmericanExpress, result.Brand)
	})

	t.Run("expired card", func(t *testing.T) {
		past := timeutil.AddMonths(clock.Now(), -12)
		result := v.ValidateCard(CardInput{
			Number:     "4111111111111111",
			ExpiryDate: past.Format("01/06"),
		})
		assert.False(t, result.IsValid())
		assert.Equal(t, domain.ValidityInvalid, result.ExpiryDate.Validity)
	})

	t.Run("required holder name missing", func(t *testing.T) {
		result := v.ValidateCard(CardInput{
			Number:             "4111111111111111",
			ExpiryDate:         expiry,
			HolderNameRequired: true,
		})
		assert.False(t, result.IsValid())
	})
}
