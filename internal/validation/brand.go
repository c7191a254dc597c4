package validation

import (
	"github.com/kevin07696/checkout-kit/internal/domain"
)

// binRange is an inclusive range of equal-length leading digits.
type binRange struct {
	brand domain.CardBrand
	low   string
	high  string
}

// Ranges are checked in order; more specific ranges come first where brands overlap.
var binRanges = []binRange{
	{brand: domain.CardBrandAmericanExpress, low: "34", high: "34"},
	{brand: domain.CardBrandAmericanExpress, low: "37", high: "37"},
	{brand: domain.CardBrandDiners, low: "300", high: "305"},
	{brand: domain.CardBrandDiners, low: "36", high: "36"},
	{brand: domain.CardBrandDiners, low: "38", high: "38"},
	{brand: domain.CardBrandJCB, low: "3528", high: "3589"},
	{brand: domain.CardBrandDiscover, low: "6011", high: "6011"},
	{brand: domain.CardBrandDiscover, low: "644", high: "649"},
	{brand: domain.CardBrandDiscover, low: "65", high: "65"},
	{brand: domain.CardBrandUnionPay, low: "62", high: "62"},
	{brand: domain.CardBrandMastercard, low: "51", high: "55"},
	{brand: domain.CardBrandMastercard, low: "2221", high: "2720"},
	{brand: domain.CardBrandMaestro, low: "50", high: "50"},
	{brand: domain.CardBrandMaestro, low: "56", high: "58"},
	{brand: domain.CardBrandMaestro, low: "6304", high: "6304"},
	{brand: domain.CardBrandMaestro, low: "6759", high: "6759"},
	{brand: domain.CardBrandMaestro, low: "676", high: "676"},
	{brand: domain.CardBrandVisa, low: "4", high: "4"},
}

// DetectBrand estimates the card brand from the leading digits of a
// possibly incomplete card number. It returns CardBrandUnknown until
// enough digits are present or when no range matches.
func DetectBrand(number string) domain.CardBrand {
	normalized := normalize(number, DefaultNumberSeparator)
	if !isDigitsOnly(normalized) {
		return domain.CardBrandUnknown
	}

	for _, r := range binRanges {
		if len(normalized) < len(r.low) {
			continue
		}
		prefix := normalized[:len(r.low)]
		if prefix >= r.low && prefix <= r.high {
			return r.brand
		}
	}
	return domain.CardBrandUnknown
}
