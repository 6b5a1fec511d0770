// Package kit manages product kits: named bundles of products sold at one price.
package kit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
)

// ErrNotFound is wrapped by every "kit not found" error.
var ErrNotFound = errors.New("kit: not found")

// Queries lists the persistence operations used by the service.
type Queries interface {
	ListKits(ctx context.Context, search pgtype.Text) ([]dbgen.Kit, error)
	GetKitByID(ctx context.Context, id pgtype.UUID) (dbgen.Kit, error)
	CreateKit(ctx context.Context, arg dbgen.CreateKitParams) (dbgen.Kit, error)
	CreateKitItem(ctx context.Context, arg dbgen.CreateKitItemParams) error
	ListKitItems(ctx context.Context, kitIds []pgtype.UUID) ([]dbgen.ListKitItemsRow, error)
	DeleteKit(ctx context.Context, id pgtype.UUID) (int64, error)
	ToggleKitActive(ctx context.Context, id pgtype.UUID) (dbgen.Kit, error)
}

// EventEmitter records domain events.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error)
}

// ItemProduct is the product summary embedded in a kit item.
type ItemProduct struct {
	Code        string          `json:"codigo"`
	Description string          `json:"descricao"`
	ListPrice   decimal.Decimal `json:"precoVenda"`
}

// Item is one component of a kit.
type Item struct {
	ProductID string      `json:"produtoId"`
	Quantity  int         `json:"quantidade"`
	Product   ItemProduct `json:"produto"`
}

// Kit is the API representation of a kit.
type Kit struct {
	ID          string          `json:"id"`
	Code        *string         `json:"codigo,omitempty"`
	Name        string          `json:"nome"`
	Description *string         `json:"descricao,omitempty"`
	ListPrice   decimal.Decimal `json:"precoVenda"`
	Active      bool            `json:"ativo"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []Item          `json:"itens"`
}

// ItemInput is one requested kit component.
type ItemInput struct {
	ProductID string `json:"produtoId" validate:"required,uuid"`
	Quantity  int    `json:"quantidade" validate:"required,gt=0"`
}

// CreateInput is the POST /kits payload.
type CreateInput struct {
	Code        string        `json:"codigo" validate:"max=60"`
	Name        string        `json:"nome" validate:"required,max=200"`
	Description string        `json:"descricao" validate:"max=2000"`
	ListPrice   catalog.Loose `json:"precoVenda" validate:"required,money"`
	Items       []ItemInput   `json:"itens" validate:"dive"`
}

// Service implements kit operations.
type Service struct {
	Q        Queries
	Validate *validator.Validate
	Events   EventEmitter
	// Atomic, when set, runs the kit and item inserts in one transaction.
	Atomic func(ctx context.Context, fn func(Queries) error) error
	Log    zerolog.Logger
}

// List returns kits newest first with their items.
func (s *Service) List(ctx context.Context, query string) ([]Kit, error) {
	rows, err := s.Q.ListKits(ctx, db.Text(query))
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	if len(rows) == 0 {
		return []Kit{}, nil
	}
	ids := make([]pgtype.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	items, err := s.Q.ListKitItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list kit items: %w", err)
	}
	byKit := make(map[pgtype.UUID][]Item, len(rows))
	for _, it := range items {
		byKit[it.KitID] = append(byKit[it.KitID], fromItemRow(it))
	}
	out := make([]Kit, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r, byKit[r.ID]))
	}
	return out, nil
}

// Get returns one kit with its items.
func (s *Service) Get(ctx context.Context, id string) (Kit, error) {
	uid, err := parseID(id)
	if err != nil {
		return Kit{}, err
	}
	row, err := s.Q.GetKitByID(ctx, uid)
	if err != nil {
		if db.IsNotFound(err) {
			return Kit{}, notFound()
		}
		return Kit{}, fmt.Errorf("get kit: %w", err)
	}
	return s.withItems(ctx, row)
}

// Create inserts a kit and its items.
func (s *Service) Create(ctx context.Context, in CreateInput) (Kit, error) {
	in.Name = strings.TrimSpace(in.Name)
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Kit{}, common.ValidationError(err)
		}
	}
	price, err := common.ParseDecimal(string(in.ListPrice))
	if err != nil || price.IsNegative() {
		return Kit{}, common.BadRequest("precoVenda", "precoVenda must be a non-negative number", err)
	}
	seen := make(map[string]bool, len(in.Items))
	params := make([]dbgen.CreateKitItemParams, 0, len(in.Items))
	for _, it := range in.Items {
		pid, err := db.ParseUUID(it.ProductID)
		if err != nil {
			return Kit{}, common.BadRequest("itens", "invalid produtoId", err)
		}
		if seen[it.ProductID] {
			return Kit{}, common.BadRequest("itens", "product listed twice: "+it.ProductID, nil)
		}
		seen[it.ProductID] = true
		params = append(params, dbgen.CreateKitItemParams{ProdutoID: pid, Quantidade: int32(it.Quantity)})
	}

	var created dbgen.Kit
	write := func(q Queries) error {
		k, err := q.CreateKit(ctx, dbgen.CreateKitParams{
			Codigo:     db.Text(in.Code),
			Nome:       in.Name,
			Descricao:  db.Text(in.Description),
			PrecoVenda: db.Numeric(price),
		})
		if err != nil {
			return fmt.Errorf("create kit: %w", err)
		}
		for _, p := range params {
			p.KitID = k.ID
			if err := q.CreateKitItem(ctx, p); err != nil {
				return fmt.Errorf("create kit item: %w", err)
			}
		}
		created = k
		return nil
	}
	if s.Atomic != nil {
		err = s.Atomic(ctx, write)
	} else {
		err = write(s.Q)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return Kit{}, common.BadRequest("itens", "unknown product in kit", err)
			case "23505":
				return Kit{}, common.Conflict("codigo", "codigo already in use", err)
			}
		}
		return Kit{}, err
	}
	return s.withItems(ctx, created)
}

// Delete removes a kit and its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.Q.DeleteKit(ctx, uid)
	if err != nil {
		return fmt.Errorf("delete kit: %w", err)
	}
	if n == 0 {
		return notFound()
	}
	return nil
}

// ToggleActive flips the kit's ativo flag and emits kit.toggled.
func (s *Service) ToggleActive(ctx context.Context, id string) (Kit, error) {
	uid, err := parseID(id)
	if err != nil {
		return Kit{}, err
	}
	row, err := s.Q.ToggleKitActive(ctx, uid)
	if err != nil {
		if db.IsNotFound(err) {
			return Kit{}, notFound()
		}
		return Kit{}, fmt.Errorf("toggle kit: %w", err)
	}
	if s.Events != nil {
		payload := map[string]any{"kitId": db.UUIDString(row.ID), "nome": row.Nome, "ativo": row.Ativo}
		if _, err := s.Events.Emit(ctx, events.TopicKitToggled, row.ID, payload); err != nil {
			s.Log.Warn().Err(err).Str("kit_id", db.UUIDString(row.ID)).Msg("emit kit.toggled failed")
		}
	}
	return s.withItems(ctx, row)
}

func (s *Service) withItems(ctx context.Context, row dbgen.Kit) (Kit, error) {
	items, err := s.Q.ListKitItems(ctx, []pgtype.UUID{row.ID})
	if err != nil {
		return Kit{}, fmt.Errorf("list kit items: %w", err)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, fromItemRow(it))
	}
	return fromRow(row, out), nil
}

func fromRow(k dbgen.Kit, items []Item) Kit {
	if items == nil {
		items = []Item{}
	}
	return Kit{
		ID:          db.UUIDString(k.ID),
		Code:        db.StringPtr(k.Codigo),
		Name:        k.Nome,
		Description: db.StringPtr(k.Descricao),
		ListPrice:   db.Decimal(k.PrecoVenda),
		Active:      k.Ativo,
		CreatedAt:   k.CreatedAt.Time,
		Items:       items,
	}
}

func fromItemRow(r dbgen.ListKitItemsRow) Item {
	return Item{
		ProductID: db.UUIDString(r.ProdutoID),
		Quantity:  int(r.Quantidade),
		Product: ItemProduct{
			Code:        r.Codigo,
			Description: r.Descricao,
			ListPrice:   db.Decimal(r.PrecoVenda),
		},
	}
}

func parseID(id string) (pgtype.UUID, error) {
	uid, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest("id", "invalid kit id", err)
	}
	return uid, nil
}

func notFound() *common.AppError {
	return common.NotFound("kit not found", ErrNotFound)
}
