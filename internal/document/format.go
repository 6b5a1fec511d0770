package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BRL formats v as Brazilian currency, e.g. "R$ 1.234,56".
func BRL(v decimal.Decimal) string {
	return "R$ " + Number(v, 2)
}

// Number formats v with places decimals, "." as thousands separator and ","
// as decimal separator.
func Number(v decimal.Decimal, places int32) string {
	neg := v.IsNegative()
	s := v.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// Weight formats a weight in kilograms without trailing zeros, e.g. "2,5 kg".
func Weight(w decimal.NullDecimal) string {
	if !w.Valid {
		return "-"
	}
	return strings.Replace(w.Decimal.String(), ".", ",", 1) + " kg"
}
