package pricing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places carried by every money value.
const CurrencyPlaces = 2

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice decimal.Decimal
}

// Summary aggregates computed pricing components.
type Summary struct {
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}

// ResolveUnitPrice derives the price of one unit from the catalog list price.
// A strictly positive weight turns the list price into a per-kilogram rate that
// is divided down to the unit; an absent, zero or negative weight leaves the
// list price untouched. The quotient is rounded half away from zero to
// CurrencyPlaces, so 10 / 3 resolves to 3.33.
func ResolveUnitPrice(listPrice decimal.Decimal, weight decimal.NullDecimal) decimal.Decimal {
	if !weight.Valid || !weight.Decimal.IsPositive() {
		return listPrice
	}
	return listPrice.Div(weight.Decimal).Round(CurrencyPlaces)
}

// Subtotal returns qty × unit.
func Subtotal(qty int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Sum adds the subtotals of every item. Non-positive quantities are skipped.
func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		total = total.Add(Subtotal(it.Qty, it.UnitPrice))
	}
	return total
}

// Compute calculates cart totals given the provided items.
func Compute(items []Item) Summary {
	count := 0
	for _, it := range items {
		if it.Qty > 0 {
			count += it.Qty
		}
	}
	subtotal := Sum(items)
	return Summary{
		Items:    count,
		Subtotal: subtotal,
		Total:    subtotal,
	}
}
