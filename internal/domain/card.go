package domain

// CardBrand identifies a card scheme by its payment method type code
type CardBrand string

const (
	CardBrandUnknown         CardBrand = ""
	CardBrandVisa            CardBrand = "visa"
	CardBrandMastercard      CardBrand = "mc"
	CardBrandAmericanExpress CardBrand = "amex"
	CardBrandDiners          CardBrand = "diners"
	CardBrandDiscover        CardBrand = "discover"
	CardBrandJCB             CardBrand = "jcb"
	CardBrandMaestro         CardBrand = "maestro"
	CardBrandUnionPay        CardBrand = "cup"
)

// IsKnown returns true if the brand has been identified
func (b CardBrand) IsKnown() bool {
	return b != CardBrandUnknown
}

// SecurityCodeLength returns the exact security code length the brand uses
func (b CardBrand) SecurityCodeLength() int {
	if b == CardBrandAmericanExpress {
		return 4
	}
	return 3
}

// ParseCardBrand maps a payment method type code to a CardBrand.
// Unrecognized codes map to CardBrandUnknown.
func ParseCardBrand(code string) CardBrand {
	switch b := CardBrand(code); b {
	case CardBrandVisa, CardBrandMastercard, CardBrandAmericanExpress, CardBrandDiners,
		CardBrandDiscover, CardBrandJCB, CardBrandMaestro, CardBrandUnionPay:
		return b
	default:
		return CardBrandUnknown
	}
}
