package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/pricing"
)

// LineItem is one product-quantity-price tuple of an in-progress quote.
type LineItem struct {
	ProductID   string              `json:"produtoId"`
	Code        string              `json:"codigo,omitempty"`
	Description string              `json:"descricao"`
	Quantity    int                 `json:"quantidade"`
	UnitPrice   decimal.Decimal     `json:"precoUnitario"`
	Weight      decimal.NullDecimal `json:"peso"`
}

// Subtotal returns quantity × unit price.
func (l LineItem) Subtotal() decimal.Decimal {
	return pricing.Subtotal(l.Quantity, l.UnitPrice)
}

// Session is the in-progress quote of one admin user. It is owned by the
// caller: loaded from the store, mutated, and saved back.
type Session struct {
	ID                string     `json:"id"`
	CustomerID        string     `json:"clienteId"`
	Notes             string     `json:"observacoes"`
	Lines             []LineItem `json:"itens"`
	SelectedProductID string     `json:"produtoSelecionado"`
	Quantity          int        `json:"quantidade"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewSession returns an empty session.
func NewSession(id string) *Session {
	return &Session{ID: id, Lines: []LineItem{}, Quantity: 1}
}

// Add appends a line for product. The session is left untouched on any error.
func (s *Session) Add(product catalog.Snapshot, qty int) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("product id is required: %w", ErrInvalidInput)
	}
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	if qty > product.Stock {
		return fmt.Errorf("%s: requested %d, available %d: %w", product.Description, qty, product.Stock, ErrInsufficientStock)
	}
	if s.indexOf(product.ID) >= 0 {
		return fmt.Errorf("%s: %w", product.Description, ErrDuplicateProduct)
	}
	s.Lines = append(s.Lines, LineItem{
		ProductID:   product.ID,
		Code:        product.Code,
		Description: product.Description,
		Quantity:    qty,
		UnitPrice:   pricing.ResolveUnitPrice(product.ListPrice, product.Weight),
		Weight:      product.Weight,
	})
	s.SelectedProductID = ""
	s.Quantity = 1
	return nil
}

// Remove deletes the line of productID. Removing an absent product is a no-op.
func (s *Session) Remove(productID string) {
	if i := s.indexOf(productID); i >= 0 {
		s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	}
}

// Total returns Σ quantity × unit price over the current lines.
func (s *Session) Total() decimal.Decimal {
	return pricing.Sum(pricingItems(s.Lines))
}

// Reset clears the customer, notes, lines and transient inputs.
func (s *Session) Reset() {
	s.CustomerID = ""
	s.Notes = ""
	s.Lines = []LineItem{}
	s.SelectedProductID = ""
	s.Quantity = 1
}

// SetCustomer selects the customer the quote is addressed to.
func (s *Session) SetCustomer(id string) { s.CustomerID = strings.TrimSpace(id) }

// SetNotes replaces the free-text notes.
func (s *Session) SetNotes(notes string) { s.Notes = notes }

// Select records the product and quantity currently picked in the form.
func (s *Session) Select(productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	s.SelectedProductID = strings.TrimSpace(productID)
	s.Quantity = qty
	return nil
}

func (s *Session) indexOf(productID string) int {
	for i, l := range s.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func pricingItems(lines []LineItem) []pricing.Item {
	items := make([]pricing.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return items
}
