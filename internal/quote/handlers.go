package quote

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/lock"
)

// ProductSource resolves the pricing and stock snapshot of a product.
type ProductSource interface {
	ProductForQuote(ctx context.Context, id string) (catalog.Snapshot, error)
}

// Handler exposes quote sessions and persisted quotes.
type Handler struct {
	Sessions *SessionStore
	Service  *Service
	Products ProductSource
	Validate *validator.Validate
}

type addLineRequest struct {
	ProductID string `json:"produtoId" validate:"required,uuid"`
	Quantity  int    `json:"quantidade" validate:"required"`
}

type patchSessionRequest struct {
	CustomerID        *string `json:"clienteId"`
	Notes             *string `json:"observacoes" validate:"omitempty,max=2000"`
	SelectedProductID *string `json:"produtoSelecionado"`
	Quantity          *int    `json:"quantidade"`
	Reset             bool    `json:"reset"`
}

type submitRequest struct {
	RenderDocument bool `json:"renderDocument"`
}

type lineView struct {
	LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type sessionView struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"clienteId"`
	Notes             string          `json:"observacoes"`
	Lines             []lineView      `json:"itens"`
	SelectedProductID string          `json:"produtoSelecionado"`
	Quantity          int             `json:"quantidade"`
	Total             decimal.Decimal `json:"total"`
	UpdatedAt         string          `json:"updatedAt"`
}

type documentView struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type submitView struct {
	Quote    Quote             `json:"orcamento"`
	States   []State           `json:"states"`
	Document *documentView     `json:"documento,omitempty"`
	Render   *common.ErrorBody `json:"renderError,omitempty"`
}

func viewSession(s *Session) sessionView {
	lines := make([]lineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, lineView{LineItem: l, Subtotal: l.Subtotal()})
	}
	return sessionView{
		ID:                s.ID,
		CustomerID:        s.CustomerID,
		Notes:             s.Notes,
		Lines:             lines,
		SelectedProductID: s.SelectedProductID,
		Quantity:          s.Quantity,
		Total:             s.Total(),
		UpdatedAt:         s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(v); err != nil {
		return common.ValidationError(err)
	}
	return nil
}

// CreateSession handles POST /quote-sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": viewSession(sess)})
}

// GetSession handles GET /quote-sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewSession(sess)})
}

// PatchSession handles PATCH /quote-sessions/{id}.
func (h *Handler) PatchSession(w http.ResponseWriter, r *http.Request) {
	var req patchSessionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteAppError(w, err)
		return
	}
	if err := h.validate(req); err != nil {
		common.WriteAppError(w, err)
		return
	}
	sess, err := h.Sessions.Mutate(r.Context(), chi.URLParam(r, "id"), func(s *Session) error {
		if req.Reset {
			s.Reset()
		}
		if req.CustomerID != nil {
			s.SetCustomer(*req.CustomerID)
		}
		if req.Notes != nil {
			s.SetNotes(*req.Notes)
		}
		if req.SelectedProductID != nil || req.Quantity != nil {
			product, qty := s.SelectedProductID, s.Quantity
			if req.SelectedProductID != nil {
				product = *req.SelectedProductID
			}
			if req.Quantity != nil {
				qty = *req.Quantity
			}
			return s.Select(product, qty)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewSession(sess)})
}

// DeleteSession handles DELETE /quote-sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Sessions.Load(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /quote-sessions/{id}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteAppError(w, err)
		return
	}
	if err := h.validate(req); err != nil {
		common.WriteAppError(w, err)
		return
	}
	sess, err := h.Sessions.Mutate(r.Context(), chi.URLParam(r, "id"), func(s *Session) error {
		product, err := h.Products.ProductForQuote(r.Context(), req.ProductID)
		if err != nil {
			return err
		}
		return s.Add(product, req.Quantity)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": viewSession(sess)})
}

// RemoveLine handles DELETE /quote-sessions/{id}/lines/{productId}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	sess, err := h.Sessions.Mutate(r.Context(), chi.URLParam(r, "id"), func(s *Session) error {
		s.Remove(productID)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewSession(sess)})
}

// Submit handles POST /quote-sessions/{id}/submit. The quote is persisted and
// the session reset under the session lock; the document is rendered after
// the lock is released.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteAppError(w, err)
			return
		}
	}
	id := chi.URLParam(r, "id")
	var res SubmitResult
	persisted := false
	_, err := h.Sessions.MutateContext(r.Context(), id, func(ctx context.Context, s *Session) error {
		out, err := h.Service.Persist(ctx, SubmitInput{
			CustomerID:     s.CustomerID,
			Lines:          append([]LineItem(nil), s.Lines...),
			Notes:          s.Notes,
			RenderDocument: req.RenderDocument,
		})
		if err != nil {
			return err
		}
		res, persisted = out, true
		s.Reset()
		return nil
	})
	switch {
	case err != nil && !persisted:
		writeError(w, err)
		return
	case err != nil:
		// The quote exists; a session still holding its lines would submit it again.
		h.discardSession(r.Context(), id, res.Quote, err)
	}
	h.Service.RenderSubmitted(r.Context(), &res)

	view := submitView{Quote: res.Quote, States: res.States}
	if doc := res.Render.Document; doc != nil {
		view.Document = &documentView{
			FileName:    doc.FileName,
			ContentType: doc.ContentType,
			Content:     base64.StdEncoding.EncodeToString(doc.Content),
		}
	}
	if res.Render.Err != nil {
		appErr := toAppError(res.Render.Err)
		view.Render = &common.ErrorBody{Code: appErr.Code, Message: appErr.Message}
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

func (h *Handler) discardSession(ctx context.Context, id string, q Quote, cause error) {
	log := h.Service.Log.With().Str("session_id", id).Str("quote_id", q.ID).Logger()
	log.Warn().Err(cause).Msg("quote persisted but session reset failed")
	if err := h.Sessions.Delete(context.WithoutCancel(ctx), id); err != nil {
		log.Error().Err(err).Msg("discard submitted session")
	}
}

// Quotes handles GET /quotes.
func (h *Handler) Quotes(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20, 100)
	items, total, err := h.Service.List(r.Context(), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.NewPagination(page, perPage, total),
	})
}

// Quote handles GET /quotes/{id}.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// Document handles GET /quotes/{id}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.RenderExisting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.Attachment(w, doc.ContentType, doc.FileName, doc.Content)
}

func writeError(w http.ResponseWriter, err error) {
	common.WriteAppError(w, toAppError(err))
}

func toAppError(err error) *common.AppError {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return &common.AppError{Code: "INVALID_INPUT", Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: err}
	case errors.Is(err, ErrNotFound):
		return common.NotFound(err.Error(), err)
	case errors.Is(err, ErrInsufficientStock):
		return &common.AppError{Code: "INSUFFICIENT_STOCK", Message: err.Error(), HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, ErrDuplicateProduct):
		return &common.AppError{Code: "DUPLICATE_PRODUCT", Message: err.Error(), HTTPStatus: http.StatusConflict, Err: err}
	case errors.Is(err, ErrIncompleteSubmission):
		return &common.AppError{Code: "INCOMPLETE_SUBMISSION", Message: ErrIncompleteSubmission.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case errors.Is(err, ErrRenderDataMissing):
		return &common.AppError{Code: "RENDER_DATA_MISSING", Message: err.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case errors.Is(err, ErrRenderFailed):
		return &common.AppError{Code: "RENDER_FAILED", Message: "document rendering failed", HTTPStatus: http.StatusBadGateway, Err: err}
	case errors.Is(err, ErrPersistenceFailure):
		return &common.AppError{Code: "PERSISTENCE_FAILURE", Message: "quote could not be stored", HTTPStatus: http.StatusBadGateway, Err: err}
	case errors.Is(err, lock.ErrTimeout):
		return &common.AppError{Code: "SESSION_BUSY", Message: "session is being modified, retry", HTTPStatus: http.StatusConflict, Err: err}
	default:
		return &common.AppError{Code: "INTERNAL", Message: "internal error", HTTPStatus: http.StatusInternalServerError, Err: err}
	}
}
