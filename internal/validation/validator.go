// Package validation classifies raw card input into valid, partial or
// invalid results as the user types.
package validation

import (
	"github.com/zoobzio/clockz"
)

const (
	// DefaultNumberSeparator is the grouping character accepted in card numbers
	DefaultNumberSeparator = ' '
	// DefaultExpiryDateSeparator separates month and year in expiry dates
	DefaultExpiryDateSeparator = '/'

	NumberMinimumLength = 8
	NumberMaximumLength = 19

	SecurityCodeMinimumLength = 3
	SecurityCodeMaximumLength = 4

	// MaximumExpiredMonths is how far back an expiry date may lie and still be accepted
	MaximumExpiredMonths = 3
	// MaximumYearsInFuture is how far ahead an expiry date may lie and still be accepted
	MaximumYearsInFuture = 20
)

// Validator validates card fields. The zero value is not usable, use NewValidator.
// Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	clock               clockz.Clock
	numberSeparator     rune
	expiryDateSeparator rune
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithNumberSeparator sets the grouping character stripped from card numbers.
func WithNumberSeparator(sep rune) ValidatorOption {
	return func(v *Validator) { v.numberSeparator = sep }
}

// WithExpiryDateSeparator sets the month/year separator.
func WithExpiryDateSeparator(sep rune) ValidatorOption {
	return func(v *Validator) { v.expiryDateSeparator = sep }
}

// WithClock sets the clock used as "now" for expiry checks.
func WithClock(clock clockz.Clock) ValidatorOption {
	return func(v *Validator) { v.clock = clock }
}

// NewValidator creates a validator with a space number separator, a slash
// expiry separator and the real clock unless overridden.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		numberSeparator:     DefaultNumberSeparator,
		expiryDateSeparator: DefaultExpiryDateSeparator,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// getClock returns the clock to use.
func (v *Validator) getClock() clockz.Clock {
	if v.clock == nil {
		return clockz.RealClock
	}
	return v.clock
}

// ExpiryDateSeparator returns the configured month/year separator.
func (v *Validator) ExpiryDateSeparator() rune {
	return v.expiryDateSeparator
}

var defaultValidator = NewValidator()

// Default returns the package-level validator backed by the real clock.
func Default() *Validator {
	return defaultValidator
}
