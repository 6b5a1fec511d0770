package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
	{ErrMaxQuantity, http.StatusConflict, "MAX_QUANTITY"},
}

// Handler serves the storefront cart routes under /store/carts.
type Handler struct {
	Svc *Service
}

func respond(w http.ResponseWriter, status int, view View, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, status, map[string]any{"data": view})
}

func writeError(w http.ResponseWriter, err error) {
	if common.IsAppError(err) {
		common.WriteAppError(w, err)
		return
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			common.JSONError(w, e.status, e.code, err.Error(), nil)
			return
		}
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Create(r.Context())
	respond(w, http.StatusCreated, view, err)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, view, err)
}

// AddItem adds one unit of {"produtoId": ...}.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"produtoId"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.ProductID == "" {
		writeError(w, common.BadRequest("produtoId", "produtoId is required", nil))
		return
	}
	view, err := h.Svc.AddOne(r.Context(), chi.URLParam(r, "id"), body.ProductID)
	respond(w, http.StatusOK, view, err)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	respond(w, http.StatusOK, view, err)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
