package validation

import (
	"strconv"
	"strings"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/pkg/timeutil"
)

// ValidateExpiryDate validates an expiry date with the default validator.
func ValidateExpiryDate(expiryDate string) domain.ExpiryDateResult {
	return defaultValidator.ValidateExpiryDate(expiryDate)
}

// ValidateExpiryDate accepts MM<sep>YY or MM<sep>YYYY, month with an
// optional leading zero and a four digit year starting with "20".
//
// A complete date is VALID when it lies after three months ago and no
// later than twenty years from the current month. Input that is still a
// prefix of a complete date is PARTIAL and carries the month once the
// separator has been typed.
func (v *Validator) ValidateExpiryDate(expiryDate string) domain.ExpiryDateResult {
	normalized := normalize(expiryDate)
	sep := string(v.expiryDateSeparator)

	monthPart, yearPart, hasSeparator := strings.Cut(normalized, sep)

	if !hasSeparator {
		// "", "0" and any complete month can still be followed by the separator
		if monthPart == "" || monthPart == "0" || isMonth(monthPart) {
			return domain.ExpiryDateResult{Validity: domain.ValidityPartial}
		}
		return domain.ExpiryDateResult{Validity: domain.ValidityInvalid}
	}

	if !isMonth(monthPart) || !isDigitsOnly(yearPart) {
		return domain.ExpiryDateResult{Validity: domain.ValidityInvalid}
	}

	month, _ := strconv.Atoi(monthPart)

	if isYear(yearPart) {
		year := fourDigitYear(yearPart)
		validity := domain.ValidityInvalid
		if v.isAcceptedForTransaction(month, year) {
			validity = domain.ValidityValid
		}
		return domain.ExpiryDateResult{Validity: validity, Month: &month, Year: &year}
	}

	if isYearPrefix(yearPart) {
		return domain.ExpiryDateResult{Validity: domain.ValidityPartial, Month: &month}
	}

	return domain.ExpiryDateResult{Validity: domain.ValidityInvalid}
}

func (v *Validator) isAcceptedForTransaction(month, year int) bool {
	current := timeutil.MonthIndexOf(v.getClock().Now())
	expiry := timeutil.MonthIndex(year, month)
	limit := current + MaximumYearsInFuture*timeutil.MonthsInYear

	return expiry > current-MaximumExpiredMonths && expiry <= limit
}

// isMonth matches 0?[1-9]|1[0-2].
func isMonth(s string) bool {
	switch len(s) {
	case 1:
		return s[0] >= '1' && s[0] <= '9'
	case 2:
		if s[0] == '0' {
			return s[1] >= '1' && s[1] <= '9'
		}
		return s[0] == '1' && s[1] >= '0' && s[1] <= '2'
	default:
		return false
	}
}

// isYear matches (20)?\d{2} on a digit string.
func isYear(digits string) bool {
	return len(digits) == 2 || (len(digits) == 4 && strings.HasPrefix(digits, "20"))
}

// isYearPrefix reports whether more digits could still complete a year.
func isYearPrefix(digits string) bool {
	return len(digits) < 2 || (len(digits) == 3 && strings.HasPrefix(digits, "20"))
}

func fourDigitYear(digits string) int {
	if len(digits) == 2 {
		digits = "20" + digits
	}
	year, _ := strconv.Atoi(digits)
	return year
}
