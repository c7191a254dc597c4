// Package checkout assembles payment request payloads from validated input.
package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ISO 4217 currencies whose minor unit is not hundredths
var currencyExponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

const defaultCurrencyExponent = 2

// Largest value the payments API accepts exactly
var maxMinorUnits = decimal.NewFromInt(1 << 53)

// Amount is a payment amount in major units, e.g. 10.50 EUR
type Amount struct {
	Currency string
	Value    decimal.Decimal
}

// NewAmount parses value as a decimal in major units
func NewAmount(currency, value string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount: %w", err)
	}
	a := Amount{Currency: strings.ToUpper(strings.TrimSpace(currency)), Value: d}
	if _, err := a.MinorUnits(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// CurrencyExponent returns the number of minor unit digits of currency
func CurrencyExponent(currency string) int32 {
	if exp, ok := currencyExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return defaultCurrencyExponent
}

// MinorUnits converts the amount to the integer value the payments API
// expects, e.g. 10.50 EUR is 1050 and 1000 JPY is 1000.
func (a Amount) MinorUnits() (int64, error) {
	if !isCurrencyCode(a.Currency) {
		return 0, fmt.Errorf("invalid currency code %q", a.Currency)
	}
	if a.Value.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}

	exp := CurrencyExponent(a.Currency)
	minor := a.Value.Shift(exp)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimals for %s", a.Value, exp, a.Currency)
	}
	if minor.Cmp(maxMinorUnits) > 0 {
		return 0, fmt.Errorf("amount %s is too large", a.Value)
	}
	return minor.IntPart(), nil
}

// String formats the amount in major units, e.g. "10.50 EUR"
func (a Amount) String() string {
	return a.Value.StringFixed(CurrencyExponent(a.Currency)) + " " + a.Currency
}

type amountJSON struct {
	Currency string `json:"currency" yaml:"currency"`
	Value    int64  `json:"value" yaml:"value"`
}

// MarshalJSON encodes the amount in minor units
func (a Amount) MarshalJSON() ([]byte, error) {
	minor, err := a.MinorUnits()
	if err != nil {
		return nil, err
	}
	return json.Marshal(amountJSON{Currency: a.Currency, Value: minor})
}

// MarshalYAML encodes the amount in minor units
func (a Amount) MarshalYAML() (any, error) {
	minor, err := a.MinorUnits()
	if err != nil {
		return nil, err
	}
	return amountJSON{Currency: a.Currency, Value: minor}, nil
}

// UnmarshalJSON decodes an amount given in minor units
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Currency = strings.ToUpper(raw.Currency)
	a.Value = decimal.New(raw.Value, -CurrencyExponent(a.Currency))
	_, err := a.MinorUnits()
	return err
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
