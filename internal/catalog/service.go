package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/storage"
)

var (
	// ErrNotFound is wrapped by every "product not found" error.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInUse is returned when a product is still referenced by kits or quotes.
	ErrInUse = errors.New("catalog: product in use")
)

const listCacheKey = "catalog:products:list:default"

type queryProvider interface {
	CountProducts(ctx context.Context, arg dbgen.CountProductsParams) (int64, error)
	ListProducts(ctx context.Context, arg dbgen.ListProductsParams) ([]dbgen.ListProductsRow, error)
	GetProductByID(ctx context.Context, id pgtype.UUID) (dbgen.GetProductByIDRow, error)
	CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Produto, error)
	UpdateProduct(ctx context.Context, arg dbgen.UpdateProductParams) (dbgen.Produto, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error)
	SetProductPhoto(ctx context.Context, arg dbgen.SetProductPhotoParams) (int64, error)
	SetStock(ctx context.Context, arg dbgen.SetStockParams) (dbgen.Estoque, error)
}

// Service owns product and stock records.
type Service struct {
	queries      queryProvider
	cache        *Cache
	files        storage.Store
	validate     *validator.Validate
	log          zerolog.Logger
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	Files        storage.Store
	Validator    *validator.Validate
	Logger       zerolog.Logger
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query   string
	InStock *bool
	Page    int
	Limit   int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	validate := cfg.Validator
	if validate == nil {
		validate = common.NewValidator()
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		files:        cfg.Files,
		validate:     validate,
		log:          cfg.Logger,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, common.BadRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, common.BadRequest("limit", "limit must be a positive integer", err)
		}
		params.Limit = min(l, s.maxLimit)
	}
	if v := strings.TrimSpace(values.Get("inStock")); v != "" {
		b, err := common.ParseBool(v)
		if err != nil {
			return params, common.BadRequest("inStock", "inStock must be true or false", err)
		}
		params.InStock = &b
	}
	return params, nil
}

// List returns products ordered by description. The unfiltered first page is cached.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = s.defaultPage
	}
	if params.Limit < 1 {
		params.Limit = s.defaultLimit
	}
	cacheable := s.isDefaultList(params)
	if cacheable {
		var cached cachedList
		if ok, err := s.cache.GetJSON(ctx, listCacheKey, &cached); err == nil && ok {
			return ListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
	}

	search := db.Text(params.Query)
	inStock := pgtype.Bool{}
	if params.InStock != nil {
		inStock = pgtype.Bool{Bool: *params.InStock, Valid: true}
	}
	total, err := s.queries.CountProducts(ctx, dbgen.CountProductsParams{Search: search, InStock: inStock})
	if err != nil {
		return ListResult{}, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.queries.ListProducts(ctx, dbgen.ListProductsParams{
		Search:  search,
		InStock: inStock,
		Limit:   int32(params.Limit),
		Offset:  common.Offset(params.Page, params.Limit),
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromRow(row.Produto, row.Quantidade, row.QuantidadeMinima))
	}
	if cacheable {
		if err := s.cache.SetJSON(ctx, listCacheKey, cachedList{Items: items, Total: total}); err != nil {
			s.log.Warn().Err(err).Msg("catalog: cache list")
		}
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// Get returns a single product with its stock.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return Product{}, err
	}
	if s.cache != nil {
		var cached Product
		if ok, err := s.cache.GetJSON(ctx, detailCacheKey(id), &cached); err == nil && ok {
			return cached, nil
		}
	}
	row, err := s.queries.GetProductByID(ctx, pid)
	if err != nil {
		if db.IsNotFound(err) {
			return Product{}, notFound(err)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	product := fromRow(row.Produto, row.Quantidade, row.QuantidadeMinima)
	if err := s.cache.SetJSON(ctx, detailCacheKey(id), product); err != nil {
		s.log.Warn().Err(err).Msg("catalog: cache detail")
	}
	return product, nil
}

// ProductForQuote returns the pricing and stock snapshot of a product. It always
// reads through to the database so the stock value is as fresh as possible.
func (s *Service) ProductForQuote(ctx context.Context, id string) (Snapshot, error) {
	pid, err := parseID(id)
	if err != nil {
		return Snapshot{}, err
	}
	row, err := s.queries.GetProductByID(ctx, pid)
	if err != nil {
		if db.IsNotFound(err) {
			return Snapshot{}, notFound(err)
		}
		return Snapshot{}, fmt.Errorf("get product: %w", err)
	}
	return fromRow(row.Produto, row.Quantidade, row.QuantidadeMinima).Snapshot(), nil
}

// Create validates raw and stores the product together with its stock row.
func (s *Service) Create(ctx context.Context, raw RawProduct) (Product, error) {
	in, err := s.normalize(raw)
	if err != nil {
		return Product{}, err
	}
	row, err := s.queries.CreateProduct(ctx, dbgen.CreateProductParams{
		Codigo:      in.Code,
		Descricao:   in.Description,
		Tipo:        db.Text(in.Type),
		Cor:         db.Text(in.Color),
		Liga:        db.Text(in.Alloy),
		Peso:        db.NullNumeric(in.Weight),
		Unidade:     in.Unit,
		PrecoCusto:  db.NullNumeric(in.CostPrice),
		PrecoVenda:  db.Numeric(in.ListPrice),
		PrecoPorKg:  db.NullNumeric(in.PricePerKg),
		Localizacao: db.Text(in.Location),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, duplicateCode(err)
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	stock, err := s.queries.SetStock(ctx, dbgen.SetStockParams{
		ProdutoID:        row.ID,
		Quantidade:       int32(valueOr(in.Quantity, 0)),
		QuantidadeMinima: int32(valueOr(in.Minimum, 0)),
	})
	if err != nil {
		return Product{}, fmt.Errorf("create stock: %w", err)
	}
	s.invalidate(ctx, "")
	return fromRow(row, stock.Quantidade, stock.QuantidadeMinima), nil
}

// Update replaces the product fields. Stock is touched only when the payload
// carries quantities.
func (s *Service) Update(ctx context.Context, id string, raw RawProduct) (Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return Product{}, err
	}
	in, err := s.normalize(raw)
	if err != nil {
		return Product{}, err
	}
	current, err := s.queries.GetProductByID(ctx, pid)
	if err != nil {
		if db.IsNotFound(err) {
			return Product{}, notFound(err)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	row, err := s.queries.UpdateProduct(ctx, dbgen.UpdateProductParams{
		ID:          pid,
		Codigo:      in.Code,
		Descricao:   in.Description,
		Tipo:        db.Text(in.Type),
		Cor:         db.Text(in.Color),
		Liga:        db.Text(in.Alloy),
		Peso:        db.NullNumeric(in.Weight),
		Unidade:     in.Unit,
		PrecoCusto:  db.NullNumeric(in.CostPrice),
		PrecoVenda:  db.Numeric(in.ListPrice),
		PrecoPorKg:  db.NullNumeric(in.PricePerKg),
		Localizacao: db.Text(in.Location),
	})
	if err != nil {
		if db.IsNotFound(err) {
			return Product{}, notFound(err)
		}
		if isUniqueViolation(err) {
			return Product{}, duplicateCode(err)
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	qty, minimum := current.Quantidade, current.QuantidadeMinima
	if in.Quantity != nil || in.Minimum != nil {
		stock, err := s.queries.SetStock(ctx, dbgen.SetStockParams{
			ProdutoID:        pid,
			Quantidade:       int32(valueOr(in.Quantity, int(qty))),
			QuantidadeMinima: int32(valueOr(in.Minimum, int(minimum))),
		})
		if err != nil {
			return Product{}, fmt.Errorf("update stock: %w", err)
		}
		qty, minimum = stock.Quantidade, stock.QuantidadeMinima
	}
	s.invalidate(ctx, id)
	return fromRow(row, qty, minimum), nil
}

// Delete removes a product and its stock row.
func (s *Service) Delete(ctx context.Context, id string) error {
	pid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.queries.DeleteProduct(ctx, pid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return common.Conflict("", "product is referenced by kits or quotes", ErrInUse)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return notFound(nil)
	}
	s.invalidate(ctx, id)
	return nil
}

// SetStock overwrites the stock quantity and minimum of a product.
func (s *Service) SetStock(ctx context.Context, id string, quantity, minimum int) (Product, error) {
	if quantity < 0 || minimum < 0 {
		return Product{}, common.BadRequest("quantidade", "stock values must not be negative", nil)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	pid, _ := parseID(id)
	stock, err := s.queries.SetStock(ctx, dbgen.SetStockParams{
		ProdutoID:        pid,
		Quantidade:       int32(quantity),
		QuantidadeMinima: int32(minimum),
	})
	if err != nil {
		return Product{}, fmt.Errorf("set stock: %w", err)
	}
	current.Stock = Stock{Quantity: int(stock.Quantidade), Minimum: int(stock.QuantidadeMinima)}
	s.invalidate(ctx, id)
	return current, nil
}

// AttachPhoto stores an image in the products bucket and links it to the product.
func (s *Service) AttachPhoto(ctx context.Context, id, fileName, contentType string, r io.Reader) (Product, error) {
	if s.files == nil {
		return Product{}, errors.New("catalog: file store not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Product{}, common.BadRequest("foto", "photo must be an image", nil)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".img"
	}
	name := current.ID + "/" + uuid.NewString() + ext
	publicURL, err := s.files.Put(ctx, storage.BucketProducts, name, r, contentType)
	if err != nil {
		return Product{}, fmt.Errorf("store photo: %w", err)
	}
	pid, _ := parseID(id)
	n, err := s.queries.SetProductPhoto(ctx, dbgen.SetProductPhotoParams{ID: pid, FotoUrl: db.Text(publicURL)})
	if err != nil {
		return Product{}, fmt.Errorf("set photo: %w", err)
	}
	if n == 0 {
		return Product{}, notFound(nil)
	}
	current.PhotoURL = &publicURL
	s.invalidate(ctx, id)
	return current, nil
}

func (s *Service) normalize(raw RawProduct) (productInput, error) {
	if err := s.validate.Struct(raw); err != nil {
		return productInput{}, common.ValidationError(err)
	}
	return raw.toInput()
}

func (s *Service) invalidate(ctx context.Context, id string) {
	keys := []string{listCacheKey}
	if id != "" {
		keys = append(keys, detailCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("catalog: cache invalidation failed")
	}
}

func (s *Service) isDefaultList(params ListParams) bool {
	return s.cache != nil &&
		params.Page == s.defaultPage &&
		params.Limit == s.defaultLimit &&
		params.Query == "" &&
		params.InStock == nil
}

type cachedList struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
}

func detailCacheKey(id string) string {
	return "catalog:products:detail:" + strings.ToLower(strings.TrimSpace(id))
}

func parseID(id string) (pgtype.UUID, error) {
	pid, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest("id", "id must be a valid uuid", err)
	}
	return pid, nil
}

func notFound(cause error) *common.AppError {
	err := ErrNotFound
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrNotFound, cause)
	}
	return common.NotFound("product not found", err)
}

func duplicateCode(err error) *common.AppError {
	return common.Conflict("codigo", "codigo already in use", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
