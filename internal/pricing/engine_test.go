package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func weight(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func TestResolveUnitPriceDividesByPositiveWeight(t *testing.T) {
	got := ResolveUnitPrice(dec("20.00"), weight("4"))
	require.True(t, got.Equal(dec("5.00")), got.String())

	got = ResolveUnitPrice(dec("37.50"), weight("2.5"))
	require.True(t, got.Equal(dec("15.00")), got.String())
}

func TestResolveUnitPriceRoundsHalfAwayFromZero(t *testing.T) {
	require.Equal(t, "3.33", ResolveUnitPrice(dec("10.00"), weight("3")).StringFixed(2))
	require.Equal(t, "0.13", ResolveUnitPrice(dec("0.25"), weight("2")).StringFixed(2))
	require.Equal(t, "0.63", ResolveUnitPrice(dec("1.25"), weight("2")).StringFixed(2))
}

func TestResolveUnitPriceIgnoresMissingOrNonPositiveWeight(t *testing.T) {
	list := dec("10.00")
	cases := map[string]decimal.NullDecimal{
		"absent":   {},
		"zero":     weight("0"),
		"negative": weight("-1.5"),
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			require.True(t, ResolveUnitPrice(list, w).Equal(list))
		})
	}
}

func TestComputeSumsSubtotals(t *testing.T) {
	summary := Compute([]Item{
		{Qty: 2, UnitPrice: dec("10.00")},
		{Qty: 1, UnitPrice: dec("5.00")},
		{Qty: 0, UnitPrice: dec("99.00")},
	})
	require.Equal(t, 3, summary.Items)
	require.True(t, summary.Subtotal.Equal(dec("25.00")))
	require.True(t, summary.Total.Equal(dec("25.00")))
}

func TestSubtotal(t *testing.T) {
	require.True(t, Subtotal(3, dec("1.10")).Equal(dec("3.30")))
}
