package quote_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/quote"
)

const (
	p1ID = "11111111-1111-1111-1111-111111111111"
	p2ID = "22222222-2222-2222-2222-222222222222"
)

func p1() catalog.Snapshot {
	return catalog.Snapshot{ID: p1ID, Code: "P1", Description: "Chapa lisa", ListPrice: decimal.RequireFromString("10.00"), Stock: 5}
}

func p2() catalog.Snapshot {
	return catalog.Snapshot{
		ID:          p2ID,
		Code:        "P2",
		Description: "Perfil U",
		ListPrice:   decimal.RequireFromString("20.00"),
		Weight:      decimal.NewNullDecimal(decimal.RequireFromString("4")),
		Stock:       3,
	}
}

func TestSessionAddPricesLinesInOrder(t *testing.T) {
	s := quote.NewSession("s")
	require.NoError(t, s.Select(p1ID, 2))
	require.NoError(t, s.Add(p1(), 2))
	require.NoError(t, s.Add(p2(), 1))

	require.Len(t, s.Lines, 2)
	require.Equal(t, p1ID, s.Lines[0].ProductID)
	require.Equal(t, p2ID, s.Lines[1].ProductID)
	require.Equal(t, "10.00", s.Lines[0].UnitPrice.StringFixed(2))
	require.Equal(t, "5.00", s.Lines[1].UnitPrice.StringFixed(2))
	require.Equal(t, "20.00", s.Lines[0].Subtotal().StringFixed(2))
	require.Equal(t, "5.00", s.Lines[1].Subtotal().StringFixed(2))
	require.Equal(t, "25.00", s.Total().StringFixed(2))
	require.Empty(t, s.SelectedProductID)
	require.Equal(t, 1, s.Quantity)
}

func TestSessionAddRejectsExcessQuantity(t *testing.T) {
	s := quote.NewSession("s")
	require.ErrorIs(t, s.Add(p1(), 6), quote.ErrInsufficientStock)
	require.Empty(t, s.Lines)
	require.True(t, s.Total().IsZero())

	require.NoError(t, s.Add(p1(), 5))
}

func TestSessionAddRejectsDuplicateWithoutMerging(t *testing.T) {
	s := quote.NewSession("s")
	require.NoError(t, s.Add(p1(), 2))
	require.ErrorIs(t, s.Add(p1(), 1), quote.ErrDuplicateProduct)
	require.Len(t, s.Lines, 1)
	require.Equal(t, 2, s.Lines[0].Quantity)
}

func TestSessionAddRejectsNonPositiveQuantity(t *testing.T) {
	s := quote.NewSession("s")
	require.ErrorIs(t, s.Add(p1(), 0), quote.ErrInvalidInput)
	require.ErrorIs(t, s.Add(p1(), -3), quote.ErrInvalidInput)
	require.ErrorIs(t, s.Add(catalog.Snapshot{}, 1), quote.ErrInvalidInput)
	require.Empty(t, s.Lines)
}

func TestSessionRemove(t *testing.T) {
	s := quote.NewSession("s")
	require.NoError(t, s.Add(p1(), 2))
	require.NoError(t, s.Add(p2(), 1))

	s.Remove("33333333-3333-3333-3333-333333333333")
	require.Len(t, s.Lines, 2)

	s.Remove(p1ID)
	require.Len(t, s.Lines, 1)
	require.Equal(t, p2ID, s.Lines[0].ProductID)
	require.Equal(t, "5.00", s.Total().StringFixed(2))
}

func TestSessionReset(t *testing.T) {
	s := quote.NewSession("s")
	s.SetCustomer(" c1 ")
	s.SetNotes("entrega sexta")
	require.NoError(t, s.Add(p1(), 1))
	require.NoError(t, s.Select(p2ID, 3))
	require.Equal(t, "c1", s.CustomerID)

	s.Reset()
	require.Empty(t, s.CustomerID)
	require.Empty(t, s.Notes)
	require.Empty(t, s.Lines)
	require.Empty(t, s.SelectedProductID)
	require.Equal(t, 1, s.Quantity)
	require.ErrorIs(t, s.Select(p2ID, 0), quote.ErrInvalidInput)
}
