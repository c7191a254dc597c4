package iban

// charClass is the set of characters accepted at one IBAN position
type charClass int

const (
	classLiteral charClass = iota
	classDigit
	classUpper
	classAlnum
)

// position matches exactly one character
type position struct {
	class   charClass
	literal byte
}

func (p position) matches(c byte) bool {
	switch p.class {
	case classDigit:
		return c >= '0' && c <= '9'
	case classUpper:
		return c >= 'A' && c <= 'Z'
	case classAlnum:
		return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')
	default:
		return c == p.literal
	}
}

// segment is a run of positions, the building block of a country pattern
type segment []position

func lit(s string) segment {
	seg := make(segment, len(s))
	for i := 0; i < len(s); i++ {
		seg[i] = position{class: classLiteral, literal: s[i]}
	}
	return seg
}

func repeat(class charClass, n int) segment {
	seg := make(segment, n)
	for i := range seg {
		seg[i] = position{class: class}
	}
	return seg
}

func digits(n int) segment { return repeat(classDigit, n) }
func upper(n int) segment  { return repeat(classUpper, n) }
func alnum(n int) segment  { return repeat(classAlnum, n) }

// pattern is a fixed-length sequence of positions
type pattern []position

func seq(segments ...segment) pattern {
	var p pattern
	for _, s := range segments {
		p = append(p, s...)
	}
	return p
}

func (p pattern) matchesPrefix(value string) bool {
	if len(value) > len(p) {
		return false
	}
	for i := 0; i < len(value); i++ {
		if !p[i].matches(value[i]) {
			return false
		}
	}
	return true
}

func (p pattern) matchesFull(value string) bool {
	return len(value) == len(p) && p.matchesPrefix(value)
}

// details describes the IBAN structure of one country
type details struct {
	patterns []pattern
	length   int
	sepa     bool
}

func (d details) isFullMatch(value string) bool {
	if len(value) != d.length {
		return false
	}
	for _, p := range d.patterns {
		if p.matchesFull(value) {
			return true
		}
	}
	return false
}

func (d details) isPotentialMatchWithMoreInput(value string) bool {
	if len(value) >= d.length {
		return false
	}
	for _, p := range d.patterns {
		if p.matchesPrefix(value) {
			return true
		}
	}
	return false
}

func country(length int, sepa bool, patterns ...pattern) details {
	return details{patterns: patterns, length: length, sepa: sepa}
}

// SEPA membership follows the ECB list of SEPA countries.
var countryDetails = map[string]details{
	"AD": country(24, false, seq(lit("AD"), digits(10), alnum(12))),
	"AE": country(23, false, seq(lit("AE"), digits(21))),
	"AL": country(28, false, seq(lit("AL"), digits(10), alnum(16))),
	"AT": country(20, true, seq(lit("AT"), digits(18))),
	"BA": country(20, false, seq(lit("BA"), digits(18))),
	"BE": country(16, true, seq(lit("BE"), digits(14))),
	"BG": country(22, true, seq(lit("BG"), digits(2), upper(4), digits(6), alnum(8))),
	"BH": country(22, false, seq(lit("BH"), digits(2), upper(4), alnum(14))),
	"CH": country(21, true, seq(lit("CH"), digits(7), alnum(12))),
	"CY": country(28, true, seq(lit("CY"), digits(10), alnum(16))),
	"CZ": country(24, true, seq(lit("CZ"), digits(22))),
	"DE": country(22, true, seq(lit("DE"), digits(20))),
	"DK": country(18, true,
		seq(lit("DK"), digits(16)),
		seq(lit("FO"), digits(16)),
		seq(lit("GL"), digits(16)),
	),
	"DO": country(28, false, seq(lit("DO"), digits(2), alnum(4), digits(20))),
	"EE": country(20, true, seq(lit("EE"), digits(18))),
	"ES": country(24, true, seq(lit("ES"), digits(22))),
	"FI": country(18, true, seq(lit("FI"), digits(16))),
	"FR": country(27, true, seq(lit("FR"), digits(12), alnum(11), digits(2))),
	"GB": country(22, true, seq(lit("GB"), digits(2), upper(4), digits(14))),
	"GE": country(22, false, seq(lit("GE"), digits(2), upper(2), digits(16))),
	"GI": country(23, false, seq(lit("GI"), digits(2), upper(4), alnum(15))),
	"GR": country(27, true, seq(lit("GR"), digits(9), alnum(16))),
	"HR": country(21, true, seq(lit("HR"), digits(19))),
	"HU": country(28, true, seq(lit("HU"), digits(26))),
	"IE": country(22, true, seq(lit("IE"), digits(2), upper(4), digits(14))),
	"IL": country(23, false, seq(lit("IL"), digits(21))),
	"IS": country(26, true, seq(lit("IS"), digits(24))),
	"IT": country(27, true, seq(lit("IT"), digits(2), upper(1), digits(10), alnum(12))),
	"KW": country(30, false, seq(lit("KW"), digits(2), upper(4), alnum(22))),
	"KZ": country(20, false, seq(upper(2), digits(5), alnum(13))),
	"LB": country(28, false, seq(lit("LB"), digits(6), alnum(20))),
	"LI": country(21, true, seq(lit("LI"), digits(7), alnum(12))),
	"LT": country(20, true, seq(lit("LT"), digits(18))),
	"LU": country(20, true, seq(lit("LU"), digits(5), alnum(13))),
	"LV": country(21, true, seq(lit("LV"), digits(2), upper(4), alnum(13))),
	"MC": country(27, true, seq(lit("MC"), digits(12), alnum(11), digits(2))),
	"ME": country(22, false, seq(lit("ME"), digits(20))),
	"MK": country(19, false, seq(lit("MK"), digits(5), alnum(10), digits(2))),
	"MR": country(27, false, seq(lit("MR13"), digits(23))),
	"MT": country(31, true, seq(lit("MT"), digits(2), upper(4), digits(5), alnum(18))),
	"MU": country(30, false, seq(lit("MU"), digits(2), upper(4), digits(19), upper(3))),
	"NL": country(18, true, seq(lit("NL"), digits(2), upper(4), digits(10))),
	"NO": country(15, true, seq(lit("NO"), digits(13))),
	"PL": country(28, true, seq(lit("PL"), digits(10), alnum(16))),
	"PT": country(25, true, seq(lit("PT"), digits(23))),
	"RO": country(24, true, seq(lit("RO"), digits(2), upper(4), alnum(16))),
	"RS": country(22, false, seq(lit("RS"), digits(20))),
	"SA": country(24, false, seq(lit("SA"), digits(4), alnum(18))),
	"SE": country(24, true, seq(lit("SE"), digits(22))),
	"SI": country(19, true, seq(lit("SI"), digits(17))),
	"SK": country(24, true, seq(lit("SK"), digits(22))),
	"SM": country(27, true, seq(lit("SM"), digits(2), upper(1), digits(10), alnum(12))),
	"TN": country(24, false, seq(lit("TN59"), digits(20))),
	"TR": country(26, false, seq(lit("TR"), digits(7), alnum(17))),
}
