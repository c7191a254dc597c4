package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/kevin07696/checkout-kit/internal/domain"
	"github.com/kevin07696/checkout-kit/pkg/timeutil"
)

// expiryFor formats the month that lies offset months from now as MM/YYYY.
func expiryFor(now time.Time, offset int) string {
	t := timeutil.AddMonths(now, offset)
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}

func TestValidateExpiryDate_Window(t *testing.T) {
	clock := clockz.NewFakeClock()
	v := NewValidator(WithClock(clock))
	now := clock.Now()

	tests := []struct {
		name     string
		offset   int
		validity domain.Validity
	}{
		{name: "current month", offset: 0, validity: domain.ValidityValid},
		{name: "two months ago", offset: -2, validity: domain.ValidityValid},
		{name: "three months ago", offset: -3, validity: domain.ValidityInvalid},
		{name: "exactly twenty years ahead", offset: 20 * 12, validity: domain.ValidityValid},
		{name: "twenty years and one month ahead", offset: 20*12 + 1, validity: domain.ValidityInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateExpiryDate(expiryFor(now, tt.offset))
			assert.Equal(t, tt.validity, result.Validity)
			require.NotNil(t, result.Month)
			require.NotNil(t, result.Year)
		})
	}
}

func TestValidateExpiryDate_FarPast(t *testing.T) {
	v := NewValidator(WithClock(clockz.NewFakeClock()))

	result := v.ValidateExpiryDate("01/99")
	assert.Equal(t, domain.ValidityInvalid, result.Validity)
	require.NotNil(t, result.Year)
	assert.Equal(t, 2099, *result.Year)
}

func TestValidateExpiryDate_TwoDigitYearExpansion(t *testing.T) {
	clock := clockz.NewFakeClock()
	v := NewValidator(WithClock(clock))
	next := timeutil.AddMonths(clock.Now(), 12)

	input := fmt.Sprintf("%d/%02d", int(next.Month()), next.Year()%100)
	result := v.ValidateExpiryDate(input)

	assert.Equal(t, domain.ValidityValid, result.Validity)
	require.NotNil(t, result.Month)
	require.NotNil(t, result.Year)
	assert.Equal(t, int(next.Month()), *result.Month)
	assert.Equal(t, next.Year(), *result.Year)
}

func TestValidateExpiryDate_Prefixes(t *testing.T) {
	v := NewValidator(WithClock(clockz.NewFakeClock()))

	tests := []struct {
		input     string
		validity  domain.Validity
		withMonth bool
	}{
		{input: "", validity: domain.ValidityPartial},
		{input: "0", validity: domain.ValidityPartial},
		{input: "1", validity: domain.ValidityPartial},
		{input: "12", validity: domain.ValidityPartial},
		{input: "7", validity: domain.ValidityPartial},
		{input: "12/", validity: domain.ValidityPartial, withMonth: true},
		{input: "3/2", validity: domain.ValidityPartial, withMonth: true},
		{input: "03/202", validity: domain.ValidityPartial, withMonth: true},
		{input: " 03 / 2", validity: domain.ValidityPartial, withMonth: true},
		{input: "00", validity: domain.ValidityInvalid},
		{input: "13", validity: domain.ValidityInvalid},
		{input: "13/25", validity: domain.ValidityInvalid},
		{input: "12/199", validity: domain.ValidityInvalid},
		{input: "12/20255", validity: domain.ValidityInvalid},
		{input: "12/2a", validity: domain.ValidityInvalid},
		{input: "12-25", validity: domain.ValidityInvalid},
		{input: "/25", validity: domain.ValidityInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := v.ValidateExpiryDate(tt.input)
			assert.Equal(t, tt.validity, result.Validity)
			if tt.validity == domain.ValidityPartial {
				assert.Nil(t, result.Year)
				assert.Equal(t, tt.withMonth, result.Month != nil)
			}
		})
	}
}

func TestValidateExpiryDate_CustomSeparator(t *testing.T) {
	clock := clockz.NewFakeClock()
	v := NewValidator(WithClock(clock), WithExpiryDateSeparator('-'))
	next := timeutil.AddMonths(clock.Now(), 6)

	result := v.ValidateExpiryDate(fmt.Sprintf("%02d-%d", int(next.Month()), next.Year()))
	assert.Equal(t, domain.ValidityValid, result.Validity)

	result = v.ValidateExpiryDate("12/30")
	assert.Equal(t, domain.ValidityInvalid, result.Validity)
	assert.Equal(t, '-', v.ExpiryDateSeparator())
}
