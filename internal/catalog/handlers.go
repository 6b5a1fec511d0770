package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

// MaxPhotoBytes bounds product photo uploads.
const MaxPhotoBytes = 5 << 20

// Handler exposes catalog endpoints for both the storefront and the admin area.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

type stockRequest struct {
	Quantity int `json:"quantidade"`
	Minimum  int `json:"quantidadeMinima"`
}

// Products handles GET /products with search, stock filter and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	params, err := h.service.ParseListParams(r.URL.Query())
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), params)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.NewPagination(result.Page, result.Limit, result.Total),
	})
}

// Product handles GET /products/{id}.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Create handles POST /products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var raw RawProduct
	if err := common.DecodeJSON(r, &raw); err != nil {
		common.WriteAppError(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), raw)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}

// Update handles PUT /products/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var raw RawProduct
	if err := common.DecodeJSON(r, &raw); err != nil {
		common.WriteAppError(w, err)
		return
	}
	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), raw)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Delete handles DELETE /products/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStock handles PUT /products/{id}/stock.
func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteAppError(w, err)
		return
	}
	product, err := h.service.SetStock(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.Minimum)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// UploadPhoto handles POST /products/{id}/photo (multipart field "foto").
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoBytes+1<<10)
	if err := r.ParseMultipartForm(MaxPhotoBytes); err != nil {
		common.WriteAppError(w, common.BadRequest("foto", "invalid multipart upload", err))
		return
	}
	file, header, err := r.FormFile("foto")
	if err != nil {
		common.WriteAppError(w, common.BadRequest("foto", "foto file is required", err))
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	product, err := h.service.AttachPhoto(r.Context(), chi.URLParam(r, "id"), header.Filename, contentType, file)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
