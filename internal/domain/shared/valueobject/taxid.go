package valueobject

import "strings"

// TaxIDKind identifies the Brazilian taxpayer registry a number belongs to
type TaxIDKind string

const (
	TaxIDKindCPF     TaxIDKind = "CPF"  // individual, 11 digits
	TaxIDKindCNPJ    TaxIDKind = "CNPJ" // legal entity, 14 digits
	TaxIDKindUnknown TaxIDKind = ""
)

// TaxID is a CPF or CNPJ as entered by the user. The raw value is preserved;
// Digits gives the normalized form. Check digits are not verified.
type TaxID struct {
	raw string
}

// NewTaxID wraps a raw tax identifier
func NewTaxID(raw string) TaxID {
	return TaxID{raw: raw}
}

// Raw returns the value as entered
func (t TaxID) Raw() string {
	return t.raw
}

// Digits returns only the decimal digits of the value
func (t TaxID) Digits() string {
	return OnlyDigits(t.raw)
}

// Kind classifies the identifier by its digit count
func (t TaxID) Kind() TaxIDKind {
	switch len(t.Digits()) {
	case 11:
		return TaxIDKindCPF
	case 14:
		return TaxIDKindCNPJ
	default:
		return TaxIDKindUnknown
	}
}

// IsValid reports whether the value has the digit count of a CPF or CNPJ
func (t TaxID) IsValid() bool {
	return t.Kind() != TaxIDKindUnknown
}

// Formatted renders the canonical mask: ###.###.###-## for CPF and
// ##.###.###/####-## for CNPJ. Anything else is returned unchanged.
func (t TaxID) Formatted() string {
	d := t.Digits()
	switch t.Kind() {
	case TaxIDKindCPF:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case TaxIDKindCNPJ:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
	default:
		return t.raw
	}
}

// OnlyDigits strips every character that is not 0-9
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
