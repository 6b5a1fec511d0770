package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

// Handler exposes the kit endpoints.
type Handler struct {
	Service *Service
}

// List handles GET /kits?q=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kits, err := h.Service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": kits})
}

// Get handles GET /kits/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	k, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": k})
}

// Create handles POST /kits.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteAppError(w, err)
		return
	}
	k, err := h.Service.Create(r.Context(), in)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": k})
}

// Delete handles DELETE /kits/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /kits/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	k, err := h.Service.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": k})
}
