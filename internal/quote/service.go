package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/pricing"
)

// DefaultValidity is how long an issued quote stays valid.
const DefaultValidity = 7 * 24 * time.Hour

// StatusPending is the status every new quote is created with.
const StatusPending = "pendente"

// State is a step of the submission flow.
type State string

// Submission states in the order they are normally visited.
const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateNumbering         State = "numbering"
	StatePersistingHeader  State = "persisting_header"
	StatePersistingLines   State = "persisting_lines"
	StateSucceeded         State = "succeeded"
	StateRenderingDocument State = "rendering_document"
	StateRenderSucceeded   State = "render_succeeded"
	StateRenderFailed      State = "render_failed"
	StateFailed            State = "failed"
)

// Queries is the persistence gateway used by the service.
type Queries interface {
	CreateQuote(ctx context.Context, arg dbgen.CreateQuoteParams) (dbgen.Orcamento, error)
	CreateQuoteItems(ctx context.Context, arg []dbgen.CreateQuoteItemsParams) (int64, error)
	GetCustomerByID(ctx context.Context, id pgtype.UUID) (dbgen.Cliente, error)
	GetSettings(ctx context.Context) (dbgen.Configuracao, error)
	CountQuotes(ctx context.Context) (int64, error)
	ListQuotes(ctx context.Context, arg dbgen.ListQuotesParams) ([]dbgen.ListQuotesRow, error)
	GetQuoteByID(ctx context.Context, id pgtype.UUID) (dbgen.GetQuoteByIDRow, error)
	ListQuoteItems(ctx context.Context, orcamentoID pgtype.UUID) ([]dbgen.ListQuoteItemsRow, error)
}

// Numberer issues quote numbers.
type Numberer interface {
	Next(ctx context.Context) (string, error)
}

// Renderer turns a quote view and the company configuration into a document.
type Renderer interface {
	Render(ctx context.Context, payload RenderPayload, company Company) ([]byte, error)
}

// EventEmitter records domain events.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error)
}

// Service orchestrates quote submission and rendering.
type Service struct {
	Q        Queries
	Numbers  Numberer
	Renderer Renderer
	Events   EventEmitter
	// Atomic, when set, runs the header and line writes in one transaction.
	// Without it the writes are best-effort and a header may be left without lines.
	Atomic   func(ctx context.Context, fn func(Queries) error) error
	Log      zerolog.Logger
	Now      func() time.Time
	Location *time.Location
	Validity time.Duration
}

// SubmitInput is the snapshot of a session handed to Submit.
type SubmitInput struct {
	CustomerID     string
	Lines          []LineItem
	Notes          string
	RenderDocument bool
}

// Quote is a persisted quote.
type Quote struct {
	ID           string          `json:"id"`
	Number       string          `json:"numero"`
	CustomerID   string          `json:"clienteId"`
	CustomerName string          `json:"clienteNome,omitempty"`
	Total        decimal.Decimal `json:"valorTotal"`
	Notes        *string         `json:"observacoes,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	Lines        []QuoteLine     `json:"itens,omitempty"`
}

// QuoteLine is a persisted line row.
type QuoteLine struct {
	ProductID   string              `json:"produtoId"`
	Code        string              `json:"codigo,omitempty"`
	Description string              `json:"descricao"`
	Quantity    int                 `json:"quantidade"`
	UnitPrice   decimal.Decimal     `json:"precoUnitario"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Weight      decimal.NullDecimal `json:"peso"`
}

// Document is a rendered quote.
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RenderOutcome reports the optional render step independently of the submission.
type RenderOutcome struct {
	Requested bool
	Document  *Document
	Err       error
}

// SubmitResult is the outcome of Submit.
type SubmitResult struct {
	Quote  Quote
	States []State
	Render RenderOutcome
}

// Customer is the customer block of a rendered quote.
type Customer struct {
	Name     string
	Document string
	Phone    string
	Email    string
	Address  string
}

// Company is the issuing company block of a rendered quote.
type Company struct {
	Name         string
	CNPJ         string
	Phone        string
	Email        string
	Address      string
	LogoURL      string
	DefaultNotes string
}

// RenderLine is one table row of a rendered quote.
type RenderLine struct {
	Code        string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Weight      decimal.NullDecimal
}

// RenderPayload is everything the renderer needs besides the company.
type RenderPayload struct {
	Number     string
	IssueDate  string
	ValidUntil string
	Customer   Customer
	Lines      []RenderLine
	Total      decimal.Decimal
	Notes      string
}

// FileName returns the download name of a quote document.
func FileName(number string) string {
	return "orcamento_" + number + ".pdf"
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s *Service) validity() time.Duration {
	if s.Validity > 0 {
		return s.Validity
	}
	return DefaultValidity
}

type tracker struct {
	log    zerolog.Logger
	states *[]State
}

func (t tracker) enter(state State) {
	*t.states = append(*t.states, state)
	t.log.Debug().Str("state", string(state)).Msg("quote submission transition")
	if obs.QuoteStateTransitionsTotal != nil {
		obs.QuoteStateTransitionsTotal.WithLabelValues(string(state)).Inc()
	}
}

func (t tracker) fail(err error) error {
	t.enter(StateFailed)
	t.log.Warn().Err(err).Msg("quote submission failed")
	return err
}

// Submit validates, numbers and persists a quote, then optionally renders it.
// Only steps up to the line write can fail the submission; the render outcome
// is reported in SubmitResult.Render and never undoes the persisted quote.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	res, err := s.Persist(ctx, in)
	if err != nil {
		return res, err
	}
	s.RenderSubmitted(ctx, &res)
	return res, nil
}

// Persist runs the submission up to StateSucceeded. The render step is left to
// RenderSubmitted so callers holding a session lock can release it first.
func (s *Service) Persist(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Submit")
	defer span.End()

	var res SubmitResult
	start := time.Now()
	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.String("quote.submit.result", result),
			attribute.Int("quote.lines", len(in.Lines)),
			attribute.Float64("quote.submit.duration_ms", obs.DurationMillis(time.Since(start))),
		)
		if obs.QuoteSubmissionsTotal != nil {
			obs.QuoteSubmissionsTotal.WithLabelValues(result).Inc()
		}
		if obs.QuoteSubmitLatency != nil {
			obs.QuoteSubmitLatency.Observe(obs.DurationMillis(time.Since(start)))
		}
	}()

	t := tracker{log: s.Log.With().Str("customer_id", in.CustomerID).Logger(), states: &res.States}
	t.enter(StateIdle)
	t.enter(StateValidating)

	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" || len(in.Lines) == 0 {
		result = "incomplete"
		return res, t.fail(ErrIncompleteSubmission)
	}
	cid, err := db.ParseUUID(customerID)
	if err != nil {
		result = "invalid"
		return res, t.fail(fmt.Errorf("customer id: %w", ErrInvalidInput))
	}
	rows, err := lineRows(in.Lines)
	if err != nil {
		result = "invalid"
		return res, t.fail(err)
	}
	if s.Q == nil || s.Numbers == nil {
		return res, t.fail(fmt.Errorf("quote service not configured: %w", ErrPersistenceFailure))
	}

	t.enter(StateNumbering)
	number, err := s.Numbers.Next(ctx)
	if err != nil {
		result = "persistence_failure"
		span.RecordError(err)
		return res, t.fail(fmt.Errorf("issue number: %w: %w", ErrPersistenceFailure, err))
	}
	t.log = t.log.With().Str("quote_number", number).Logger()
	total := pricing.Sum(pricingItems(in.Lines))

	var header dbgen.Orcamento
	persist := func(q Queries) error {
		t.enter(StatePersistingHeader)
		h, err := q.CreateQuote(ctx, dbgen.CreateQuoteParams{
			Numero:      number,
			ClienteID:   cid,
			ValorTotal:  db.Numeric(total),
			Observacoes: db.Text(in.Notes),
		})
		if err != nil {
			return fmt.Errorf("insert quote header: %w: %w", ErrPersistenceFailure, err)
		}
		for i := range rows {
			rows[i].OrcamentoID = h.ID
		}
		t.enter(StatePersistingLines)
		n, err := q.CreateQuoteItems(ctx, rows)
		if err != nil {
			return fmt.Errorf("insert quote lines: %w: %w", ErrPersistenceFailure, err)
		}
		if n != int64(len(rows)) {
			return fmt.Errorf("insert quote lines: wrote %d of %d: %w", n, len(rows), ErrPersistenceFailure)
		}
		header = h
		return nil
	}
	if s.Atomic != nil {
		err = s.Atomic(ctx, persist)
	} else {
		err = persist(s.Q)
	}
	if err != nil {
		if !errors.Is(err, ErrPersistenceFailure) {
			err = fmt.Errorf("commit quote: %w: %w", ErrPersistenceFailure, err)
		}
		result = "persistence_failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failure")
		return res, t.fail(err)
	}

	t.enter(StateSucceeded)
	result = "succeeded"
	res.Quote = quoteFromHeader(header, "")
	res.Quote.Lines = quoteLines(in.Lines)
	res.Render.Requested = in.RenderDocument
	span.SetAttributes(attribute.String("quote.number", number))
	s.emitCreated(ctx, res.Quote, in.RenderDocument)
	t.log.Info().Str("quote_id", res.Quote.ID).Str("total", total.StringFixed(2)).Msg("quote submitted")
	return res, nil
}

// RenderSubmitted renders a quote returned by Persist when the render was
// requested, recording the outcome in res.Render and res.States.
func (s *Service) RenderSubmitted(ctx context.Context, res *SubmitResult) {
	if res == nil || !res.Render.Requested || res.Render.Document != nil {
		return
	}
	t := tracker{
		log:    s.Log.With().Str("quote_id", res.Quote.ID).Str("quote_number", res.Quote.Number).Logger(),
		states: &res.States,
	}
	t.enter(StateRenderingDocument)
	doc, err := s.render(ctx, res.Quote, s.now())
	if err != nil {
		res.Render.Err = err
		t.enter(StateRenderFailed)
		t.log.Warn().Err(err).Msg("quote document render failed")
		return
	}
	res.Render.Err = nil
	res.Render.Document = &doc
	t.enter(StateRenderSucceeded)
}

func (s *Service) emitCreated(ctx context.Context, q Quote, rendered bool) {
	if s.Events == nil {
		return
	}
	id, err := db.ParseUUID(q.ID)
	if err != nil {
		return
	}
	payload := map[string]any{
		"quoteId":    q.ID,
		"numero":     q.Number,
		"clienteId":  q.CustomerID,
		"valorTotal": q.Total.StringFixed(2),
		"itens":      len(q.Lines),
		"rendered":   rendered,
	}
	if _, err := s.Events.Emit(ctx, events.TopicQuoteCreated, id, payload); err != nil {
		s.Log.Warn().Err(err).Str("quote_id", q.ID).Msg("emit quote.created failed")
	}
}

// RenderExisting renders a stored quote using its creation time as issue date.
func (s *Service) RenderExisting(ctx context.Context, id string) (Document, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	return s.render(ctx, q, q.CreatedAt)
}

func (s *Service) render(ctx context.Context, q Quote, issued time.Time) (doc Document, err error) {
	ctx, span := otel.Tracer("quote.Service").Start(ctx, "QuoteService.Render")
	defer span.End()
	result := "failed"
	defer func() {
		span.SetAttributes(attribute.String("quote.render.result", result))
		if obs.QuoteRenderTotal != nil {
			obs.QuoteRenderTotal.WithLabelValues(result).Inc()
		}
	}()

	if s.Renderer == nil {
		return Document{}, fmt.Errorf("renderer not configured: %w", ErrRenderFailed)
	}
	cid, err := db.ParseUUID(q.CustomerID)
	if err != nil {
		return Document{}, fmt.Errorf("customer id: %w", ErrRenderDataMissing)
	}
	customer, err := s.Q.GetCustomerByID(ctx, cid)
	if err != nil {
		if db.IsNotFound(err) {
			result = "data_missing"
			return Document{}, fmt.Errorf("customer %s: %w", q.CustomerID, ErrRenderDataMissing)
		}
		return Document{}, fmt.Errorf("load customer: %w: %w", ErrRenderFailed, err)
	}
	settings, err := s.Q.GetSettings(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			result = "data_missing"
			return Document{}, fmt.Errorf("company configuration: %w", ErrRenderDataMissing)
		}
		return Document{}, fmt.Errorf("load configuration: %w: %w", ErrRenderFailed, err)
	}

	company := companyFromRow(settings)
	local := issued.In(s.location())
	payload := RenderPayload{
		Number:     q.Number,
		IssueDate:  local.Format("02/01/2006"),
		ValidUntil: local.Add(s.validity()).Format("02/01/2006"),
		Customer: Customer{
			Name:     customer.Nome,
			Document: customer.CpfCnpj,
			Phone:    customer.Telefone.String,
			Email:    customer.Email.String,
			Address:  customer.Endereco.String,
		},
		Lines: make([]RenderLine, 0, len(q.Lines)),
		Total: q.Total,
	}
	if q.Notes != nil {
		payload.Notes = *q.Notes
	}
	if payload.Notes == "" {
		payload.Notes = company.DefaultNotes
	}
	for _, l := range q.Lines {
		payload.Lines = append(payload.Lines, RenderLine{
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
			Weight:      l.Weight,
		})
	}
	content, err := s.Renderer.Render(ctx, payload, company)
	if err != nil {
		span.RecordError(err)
		return Document{}, fmt.Errorf("render %s: %w: %w", q.Number, ErrRenderFailed, err)
	}
	result = "succeeded"
	return Document{FileName: FileName(q.Number), ContentType: "application/pdf", Content: content}, nil
}

// List returns persisted quotes, newest first.
func (s *Service) List(ctx context.Context, page, limit int) ([]Quote, int64, error) {
	total, err := s.Q.CountQuotes(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", err)
	}
	if page < 1 {
		page = 1
	}
	rows, err := s.Q.ListQuotes(ctx, dbgen.ListQuotesParams{Limit: int32(limit), Offset: int32((page - 1) * limit)})
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", err)
	}
	out := make([]Quote, 0, len(rows))
	for _, row := range rows {
		out = append(out, quoteFromHeader(row.Orcamento, row.ClienteNome))
	}
	return out, total, nil
}

// Get returns a persisted quote with its lines.
func (s *Service) Get(ctx context.Context, id string) (Quote, error) {
	qid, err := db.ParseUUID(id)
	if err != nil {
		return Quote{}, fmt.Errorf("quote id: %w", ErrInvalidInput)
	}
	row, err := s.Q.GetQuoteByID(ctx, qid)
	if err != nil {
		if db.IsNotFound(err) {
			return Quote{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		return Quote{}, fmt.Errorf("get quote: %w", err)
	}
	items, err := s.Q.ListQuoteItems(ctx, qid)
	if err != nil {
		return Quote{}, fmt.Errorf("list quote items: %w", err)
	}
	q := quoteFromHeader(row.Orcamento, row.ClienteNome)
	q.Lines = make([]QuoteLine, 0, len(items))
	for _, it := range items {
		q.Lines = append(q.Lines, QuoteLine{
			ProductID:   db.UUIDString(it.OrcamentoItem.ProdutoID),
			Code:        it.Codigo,
			Description: it.Descricao,
			Quantity:    int(it.OrcamentoItem.Quantidade),
			UnitPrice:   db.Decimal(it.OrcamentoItem.PrecoUnitario),
			Subtotal:    db.Decimal(it.OrcamentoItem.Subtotal),
			Weight:      db.NullDecimal(it.Peso),
		})
	}
	return q, nil
}

func lineRows(lines []LineItem) ([]dbgen.CreateQuoteItemsParams, error) {
	rows := make([]dbgen.CreateQuoteItemsParams, 0, len(lines))
	for i, l := range lines {
		pid, err := db.ParseUUID(l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d product id: %w", i+1, ErrInvalidInput)
		}
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d quantity/price: %w", i+1, ErrInvalidInput)
		}
		rows = append(rows, dbgen.CreateQuoteItemsParams{
			ProdutoID:     pid,
			Posicao:       int32(i + 1),
			Quantidade:    int32(l.Quantity),
			PrecoUnitario: db.Numeric(l.UnitPrice),
			Subtotal:      db.Numeric(l.Subtotal()),
		})
	}
	return rows, nil
}

func quoteLines(lines []LineItem) []QuoteLine {
	out := make([]QuoteLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, QuoteLine{
			ProductID:   l.ProductID,
			Code:        l.Code,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
			Weight:      l.Weight,
		})
	}
	return out
}

func quoteFromHeader(h dbgen.Orcamento, customerName string) Quote {
	return Quote{
		ID:           db.UUIDString(h.ID),
		Number:       h.Numero,
		CustomerID:   db.UUIDString(h.ClienteID),
		CustomerName: customerName,
		Total:        db.Decimal(h.ValorTotal),
		Notes:        db.StringPtr(h.Observacoes),
		Status:       h.Status,
		CreatedAt:    h.CreatedAt.Time,
	}
}

func companyFromRow(c dbgen.Configuracao) Company {
	return Company{
		Name:         c.NomeEmpresa,
		CNPJ:         c.Cnpj.String,
		Phone:        c.Telefone.String,
		Email:        c.Email.String,
		Address:      c.Endereco.String,
		LogoURL:      c.LogoUrl.String,
		DefaultNotes: c.ObservacoesPadrao.String,
	}
}
