package domain

// Validity is the tri-state outcome of validating a single input field
type Validity string

const (
	// ValidityValid - input is complete and correct
	ValidityValid Validity = "valid"
	// ValidityPartial - input is incomplete but could still become valid
	ValidityPartial Validity = "partial"
	// ValidityInvalid - input cannot become valid without being corrected
	ValidityInvalid Validity = "invalid"
)

func (v Validity) String() string {
	return string(v)
}

// IsValid returns true if the validity is VALID
func (v Validity) IsValid() bool {
	return v == ValidityValid
}

// ValidationResult is the result of validating one input field.
// Value holds the normalized input and is empty when Validity is INVALID.
type ValidationResult struct {
	Validity Validity `json:"validity" yaml:"validity"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Valid creates a VALID result carrying the normalized value
func Valid(value string) ValidationResult {
	return ValidationResult{Validity: ValidityValid, Value: value}
}

// Partial creates a PARTIAL result carrying the normalized value
func Partial(value string) ValidationResult {
	return ValidationResult{Validity: ValidityPartial, Value: value}
}

// Invalid creates an INVALID result, which never carries a value
func Invalid() ValidationResult {
	return ValidationResult{Validity: ValidityInvalid}
}

// ExpiryDateResult is the result of validating an expiry date.
// Month and Year are nil when they could not be parsed from the input.
type ExpiryDateResult struct {
	Validity Validity `json:"validity" yaml:"validity"`
	Month    *int     `json:"month,omitempty" yaml:"month,omitempty"`
	Year     *int     `json:"year,omitempty" yaml:"year,omitempty"`
}
