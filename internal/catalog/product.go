package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

// DefaultUnit is used when a product is created without a unit of measure.
const DefaultUnit = "UN"

// Stock is the stock record attached to a product.
type Stock struct {
	Quantity int `json:"quantidade"`
	Minimum  int `json:"quantidadeMinima"`
}

// Low reports whether the quantity on hand reached the minimum.
func (s Stock) Low() bool { return s.Quantity <= s.Minimum }

// Product is the typed catalog entry.
type Product struct {
	ID          string              `json:"id"`
	Code        string              `json:"codigo"`
	Description string              `json:"descricao"`
	Type        *string             `json:"tipo,omitempty"`
	Color       *string             `json:"cor,omitempty"`
	Alloy       *string             `json:"liga,omitempty"`
	Weight      decimal.NullDecimal `json:"peso"`
	Unit        string              `json:"unidade"`
	CostPrice   decimal.NullDecimal `json:"precoCusto"`
	ListPrice   decimal.Decimal     `json:"precoVenda"`
	PricePerKg  decimal.NullDecimal `json:"precoPorKg"`
	Location    *string             `json:"localizacao,omitempty"`
	PhotoURL    *string             `json:"fotoUrl,omitempty"`
	Stock       Stock               `json:"estoque"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Snapshot is the pricing and stock view of a product taken when it is added
// to a cart or quote. The stock value may be stale by the time it is used.
type Snapshot struct {
	ID          string
	Code        string
	Description string
	ListPrice   decimal.Decimal
	Weight      decimal.NullDecimal
	Stock       int
}

// Snapshot extracts the pricing view of p.
func (p Product) Snapshot() Snapshot {
	return Snapshot{
		ID:          p.ID,
		Code:        p.Code,
		Description: p.Description,
		ListPrice:   p.ListPrice,
		Weight:      p.Weight,
		Stock:       p.Stock.Quantity,
	}
}

// Loose accepts either a JSON string or a JSON number and keeps its text.
// Records coming from spreadsheets and older clients mix both forms.
type Loose string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Loose(strings.TrimSpace(s))
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("expected number or string: %w", err)
	}
	*l = Loose(n.String())
	return nil
}

// RawProduct is the loosely typed product payload accepted on writes.
type RawProduct struct {
	Code        string `json:"codigo" validate:"required,max=64"`
	Description string `json:"descricao" validate:"required,max=255"`
	Type        string `json:"tipo" validate:"omitempty,max=64"`
	Color       string `json:"cor" validate:"omitempty,max=64"`
	Alloy       string `json:"liga" validate:"omitempty,max=64"`
	Weight      Loose  `json:"peso" validate:"omitempty,money"`
	Unit        string `json:"unidade" validate:"omitempty,max=16"`
	CostPrice   Loose  `json:"precoCusto" validate:"omitempty,money"`
	ListPrice   Loose  `json:"precoVenda" validate:"required,money"`
	PricePerKg  Loose  `json:"precoPorKg" validate:"omitempty,money"`
	Location    string `json:"localizacao" validate:"omitempty,max=128"`
	Quantity    *int   `json:"quantidade" validate:"omitempty,gte=0"`
	Minimum     *int   `json:"quantidadeMinima" validate:"omitempty,gte=0"`
}

// productInput is the validated, typed form of a RawProduct.
type productInput struct {
	Code        string
	Description string
	Type        string
	Color       string
	Alloy       string
	Weight      decimal.NullDecimal
	Unit        string
	CostPrice   decimal.NullDecimal
	ListPrice   decimal.Decimal
	PricePerKg  decimal.NullDecimal
	Location    string
	Quantity    *int
	Minimum     *int
}

// toInput converts a validated payload. Optional numerics that are blank
// stay absent instead of becoming zero.
func (r RawProduct) toInput() (productInput, error) {
	list, err := common.ParseDecimal(string(r.ListPrice))
	if err != nil {
		return productInput{}, common.BadRequest("precoVenda", "precoVenda must be a valid number", err)
	}
	weight, err := optionalDecimal("peso", r.Weight)
	if err != nil {
		return productInput{}, err
	}
	cost, err := optionalDecimal("precoCusto", r.CostPrice)
	if err != nil {
		return productInput{}, err
	}
	perKg, err := optionalDecimal("precoPorKg", r.PricePerKg)
	if err != nil {
		return productInput{}, err
	}
	unit := strings.ToUpper(strings.TrimSpace(r.Unit))
	if unit == "" {
		unit = DefaultUnit
	}
	return productInput{
		Code:        strings.TrimSpace(r.Code),
		Description: strings.TrimSpace(r.Description),
		Type:        r.Type,
		Color:       r.Color,
		Alloy:       r.Alloy,
		Weight:      weight,
		Unit:        unit,
		CostPrice:   cost,
		ListPrice:   list.Round(2),
		PricePerKg:  perKg,
		Location:    r.Location,
		Quantity:    r.Quantity,
		Minimum:     r.Minimum,
	}, nil
}

func optionalDecimal(field string, v Loose) (decimal.NullDecimal, error) {
	if strings.TrimSpace(string(v)) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := common.ParseDecimal(string(v))
	if err != nil {
		return decimal.NullDecimal{}, common.BadRequest(field, field+" must be a valid number", err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func fromRow(p dbgen.Produto, qty, minimum int32) Product {
	return Product{
		ID:          db.UUIDString(p.ID),
		Code:        p.Codigo,
		Description: p.Descricao,
		Type:        db.StringPtr(p.Tipo),
		Color:       db.StringPtr(p.Cor),
		Alloy:       db.StringPtr(p.Liga),
		Weight:      db.NullDecimal(p.Peso),
		Unit:        p.Unidade,
		CostPrice:   db.NullDecimal(p.PrecoCusto),
		ListPrice:   db.Decimal(p.PrecoVenda),
		PricePerKg:  db.NullDecimal(p.PrecoPorKg),
		Location:    db.StringPtr(p.Localizacao),
		PhotoURL:    db.StringPtr(p.FotoUrl),
		Stock:       Stock{Quantity: int(qty), Minimum: int(minimum)},
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}
