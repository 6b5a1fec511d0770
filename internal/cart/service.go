package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided identifiers are invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrOutOfStock is returned when the product has no stock at all.
var ErrOutOfStock = errors.New("product out of stock")

// ErrMaxQuantity is returned when the line already holds every unit in stock.
var ErrMaxQuantity = errors.New("cart already holds all available units")

const maxWatchRetries = 5

// ProductSource resolves the current price and stock of a product.
type ProductSource interface {
	ProductForQuote(ctx context.Context, id string) (catalog.Snapshot, error)
}

// Line is one product in a cart.
type Line struct {
	ProductID   string          `json:"produtoId"`
	Code        string          `json:"codigo"`
	Description string          `json:"descricao"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"precoUnitario"`
}

// Cart is the stored document.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"itens"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineView adds the computed subtotal.
type LineView struct {
	Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is the priced cart returned to clients.
type View struct {
	ID        string          `json:"id"`
	Items     []LineView      `json:"itens"`
	ItemCount int             `json:"quantidadeItens"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Service encapsulates storefront cart operations. Carts live in Redis and
// expire after TTL without activity.
type Service struct {
	R        redis.UniversalClient
	Products ProductSource
	TTL      time.Duration
	Now      func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(id string) string { return "cart:" + id }

// Create starts an empty cart.
func (s *Service) Create(ctx context.Context) (View, error) {
	c := Cart{ID: uuid.NewString(), Lines: []Line{}, UpdatedAt: s.now().UTC()}
	data, err := json.Marshal(c)
	if err != nil {
		return View{}, err
	}
	if err := s.R.Set(ctx, cartKey(c.ID), data, s.ttl()).Err(); err != nil {
		return View{}, fmt.Errorf("save cart: %w", err)
	}
	return Price(c), nil
}

// Get returns the priced cart.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	if err := validID(id); err != nil {
		return View{}, err
	}
	c, err := load(ctx, s.R, id)
	if err != nil {
		return View{}, err
	}
	return Price(c), nil
}

// AddOne adds one unit of productID, creating the line when absent.
func (s *Service) AddOne(ctx context.Context, id, productID string) (View, error) {
	if err := validID(id); err != nil {
		return View{}, err
	}
	if s.Products == nil {
		return View{}, errors.New("cart: product source not configured")
	}
	product, err := s.Products.ProductForQuote(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return s.update(ctx, id, func(c *Cart) error {
		if product.Stock <= 0 {
			return fmt.Errorf("%s: %w", product.Description, ErrOutOfStock)
		}
		for i := range c.Lines {
			if c.Lines[i].ProductID != product.ID {
				continue
			}
			if c.Lines[i].Quantity >= product.Stock {
				return fmt.Errorf("%s: only %d available: %w", product.Description, product.Stock, ErrMaxQuantity)
			}
			c.Lines[i].Quantity++
			return nil
		}
		c.Lines = append(c.Lines, Line{
			ProductID:   product.ID,
			Code:        product.Code,
			Description: product.Description,
			Quantity:    1,
			UnitPrice:   product.ListPrice,
		})
		return nil
	})
}

// Remove drops the line of productID. Removing an absent line is a no-op.
func (s *Service) Remove(ctx context.Context, id, productID string) (View, error) {
	if err := validID(id); err != nil {
		return View{}, err
	}
	return s.update(ctx, id, func(c *Cart) error {
		for i := range c.Lines {
			if c.Lines[i].ProductID == productID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Clear discards the cart.
func (s *Service) Clear(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	n, err := s.R.Del(ctx, cartKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// update applies fn under an optimistic WATCH on the cart key.
func (s *Service) update(ctx context.Context, id string, fn func(*Cart) error) (View, error) {
	key := cartKey(id)
	var out Cart
	txf := func(tx *redis.Tx) error {
		c, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		c.UpdatedAt = s.now().UTC()
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl())
			return nil
		})
		if err == nil {
			out = c
		}
		return err
	}
	for i := 0; i < maxWatchRetries; i++ {
		err := s.R.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return View{}, err
		}
		return Price(out), nil
	}
	return View{}, fmt.Errorf("cart %s: too much contention", id)
}

// Price computes subtotals, item count and totals.
func Price(c Cart) View {
	items := make([]pricing.Item, 0, len(c.Lines))
	lines := make([]LineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.UnitPrice})
		lines = append(lines, LineView{Line: l, Subtotal: pricing.Subtotal(l.Quantity, l.UnitPrice)})
	}
	summary := pricing.Compute(items)
	return View{
		ID:        c.ID,
		Items:     lines,
		ItemCount: summary.Items,
		Subtotal:  summary.Subtotal,
		Total:     summary.Total,
		UpdatedAt: c.UpdatedAt,
	}
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, r getter, id string) (Cart, error) {
	data, err := r.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return c, nil
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("cart id: %w", ErrInvalidInput)
	}
	return nil
}
