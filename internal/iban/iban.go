// Package iban parses, validates and formats International Bank Account Numbers.
package iban

import (
	"strings"
	"unicode"

	"github.com/kevin07696/checkout-kit/internal/domain"
)

const (
	// BlockSize is the number of characters per display group
	BlockSize = 4

	countryCodeSize = 2
	checksumModulus = 97
)

// IBAN is a parsed account number. It only exists for values that matched
// their country structure and passed the mod-97 checksum.
type IBAN struct {
	Value       string `json:"value" yaml:"value"`
	CountryCode string `json:"country_code" yaml:"country_code"`
	CheckDigits string `json:"check_digits" yaml:"check_digits"`
	BBAN        string `json:"bban" yaml:"bban"`
}

func newIBAN(value string) *IBAN {
	return &IBAN{
		Value:       value,
		CountryCode: value[:countryCodeSize],
		CheckDigits: value[countryCodeSize:BlockSize],
		BBAN:        value[BlockSize:],
	}
}

// IsSEPA returns true if the IBAN belongs to a SEPA country
func (i *IBAN) IsSEPA() bool {
	d, ok := countryDetails[i.CountryCode]
	return ok && d.sepa
}

// Formatted returns the value in groups of four
func (i *IBAN) Formatted() string {
	return Format(i.Value)
}

// Masked returns the value with everything but the first and last group hidden
func (i *IBAN) Masked() string {
	return Mask(i.Value)
}

// Parse normalizes the value and returns the IBAN when it is complete and valid.
func Parse(value string) (*IBAN, bool) {
	normalized := normalize(value)
	d, ok := lookup(normalized)
	if !ok || !d.isFullMatch(normalized) || !isChecksumValid(normalized) {
		return nil, false
	}
	return newIBAN(normalized), true
}

// ParseByAddingMissingZeros parses the value after left-padding its final
// run of digits with the zeros needed to reach the country length, e.g.
// "NL91 ABNA 4171 6430 0" is read as "NL91 ABNA 0417 1643 00". Up to three
// zeros are added.
func ParseByAddingMissingZeros(value string) (*IBAN, bool) {
	normalized := normalize(value)
	d, ok := lookup(normalized)
	if !ok {
		return nil, false
	}

	padded := zeroPadded(normalized, d)
	if !d.isFullMatch(padded) || !isChecksumValid(padded) {
		return nil, false
	}
	return newIBAN(padded), true
}

// IsPartial reports whether the value is a prefix of some IBAN, i.e. more
// input could still make it valid.
func IsPartial(value string) bool {
	normalized := normalize(value)
	if len(normalized) < countryCodeSize {
		for code := range countryDetails {
			if strings.HasPrefix(code, normalized) {
				return true
			}
		}
		return false
	}

	d, ok := lookup(normalized)
	return ok && d.isPotentialMatchWithMoreInput(normalized)
}

// StartsWithSEPACountryCode reports whether the value starts with, or is a
// prefix of, the country code of a SEPA country.
func StartsWithSEPACountryCode(value string) bool {
	normalized := normalize(value)
	if len(normalized) < countryCodeSize {
		for code, d := range countryDetails {
			if d.sepa && strings.HasPrefix(code, normalized) {
				return true
			}
		}
		return false
	}

	d, ok := lookup(normalized)
	return ok && d.sepa
}

// FormattedMaxLength returns the longest length a formatted IBAN can have.
func FormattedMaxLength() int {
	maxLength := 0
	for _, d := range countryDetails {
		if d.length > maxLength {
			maxLength = d.length
		}
	}
	return maxLength + maxLength/BlockSize - 1
}

// Format normalizes the value and groups it in blocks of four separated by spaces.
func Format(value string) string {
	normalized := normalize(value)

	blocks := make([]string, 0, len(normalized)/BlockSize+1)
	for len(normalized) > BlockSize {
		blocks = append(blocks, normalized[:BlockSize])
		normalized = normalized[BlockSize:]
	}
	if normalized != "" {
		blocks = append(blocks, normalized)
	}
	return strings.Join(blocks, " ")
}

// Mask normalizes the value and keeps only its first and last four characters.
// Values too short to hide anything are returned normalized.
func Mask(value string) string {
	normalized := normalize(value)
	if len(normalized) <= 2*BlockSize {
		return normalized
	}
	return normalized[:BlockSize] + " … " + normalized[len(normalized)-BlockSize:]
}

// Validate classifies an IBAN as it is being typed.
func Validate(value string) domain.ValidationResult {
	if parsed, ok := Parse(value); ok {
		return domain.Valid(parsed.Value)
	}
	if IsPartial(value) {
		return domain.Partial(normalize(value))
	}
	return domain.Invalid()
}

func lookup(normalized string) (details, bool) {
	if len(normalized) < countryCodeSize {
		return details{}, false
	}
	d, ok := countryDetails[normalized[:countryCodeSize]]
	return d, ok
}

// normalize strips whitespace and upper-cases the value.
func normalize(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, value)
}

// isChecksumValid moves the first block to the end, reads letters as
// 10..35 and checks the resulting number mod 97 equals 1. The remainder
// is folded per character so no big integer is needed.
func isChecksumValid(normalized string) bool {
	rearranged := normalized[BlockSize:] + normalized[:BlockSize]

	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % checksumModulus
		case c >= 'A' && c <= 'Z':
			remainder = (remainder*100 + int(c-'A') + 10) % checksumModulus
		default:
			return false
		}
	}
	return remainder == 1
}

// zeroPadded inserts the missing zeros in front of the trailing digit run,
// which must start after the check digits.
func zeroPadded(normalized string, d details) string {
	missing := d.length - len(normalized)
	if missing < 1 || missing > 3 {
		return normalized
	}

	lastDigitIndex := -1
	for i := len(normalized) - 1; i > BlockSize; i-- {
		if normalized[i] < '0' || normalized[i] > '9' {
			break
		}
		lastDigitIndex = i
	}
	if lastDigitIndex < 0 {
		return normalized
	}

	return normalized[:lastDigitIndex] + strings.Repeat("0", missing) + normalized[lastDigitIndex:]
}
