// Package settings manages the singleton company configuration printed on quotes.
package settings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

// ErrNotFound is returned while the company has not been configured yet.
var ErrNotFound = errors.New("settings: company configuration not found")

// Queries lists the persistence operations used by the service.
type Queries interface {
	GetSettings(ctx context.Context) (dbgen.Configuracao, error)
	UpsertSettings(ctx context.Context, arg dbgen.UpsertSettingsParams) (dbgen.Configuracao, error)
}

// Company is the API representation of the configuration.
type Company struct {
	Name         string    `json:"nomeEmpresa"`
	CNPJ         *string   `json:"cnpj,omitempty"`
	Phone        *string   `json:"telefone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Address      *string   `json:"endereco,omitempty"`
	LogoURL      *string   `json:"logoUrl,omitempty"`
	DefaultNotes *string   `json:"observacoesPadrao,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the PUT /settings payload.
type Input struct {
	Name         string  `json:"nomeEmpresa" validate:"required,max=200"`
	CNPJ         *string `json:"cnpj" validate:"omitempty,max=18"`
	Phone        *string `json:"telefone" validate:"omitempty,max=40"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Address      *string `json:"endereco" validate:"omitempty,max=500"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,max=1000"`
	DefaultNotes *string `json:"observacoesPadrao" validate:"omitempty,max=4000"`
}

// Service reads and writes the configuration row.
type Service struct {
	Q        Queries
	Validate *validator.Validate
}

// Get returns the configuration or ErrNotFound.
func (s *Service) Get(ctx context.Context) (Company, error) {
	row, err := s.Q.GetSettings(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return Company{}, common.NotFound("company configuration not found", ErrNotFound)
		}
		return Company{}, fmt.Errorf("get settings: %w", err)
	}
	return fromRow(row), nil
}

// Upsert creates or replaces the configuration.
func (s *Service) Upsert(ctx context.Context, in Input) (Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Company{}, common.ValidationError(err)
		}
	}
	row, err := s.Q.UpsertSettings(ctx, dbgen.UpsertSettingsParams{
		NomeEmpresa:       in.Name,
		Cnpj:              db.TextPtr(in.CNPJ),
		Telefone:          db.TextPtr(in.Phone),
		Email:             db.TextPtr(in.Email),
		Endereco:          db.TextPtr(in.Address),
		LogoUrl:           db.TextPtr(in.LogoURL),
		ObservacoesPadrao: db.TextPtr(in.DefaultNotes),
	})
	if err != nil {
		return Company{}, fmt.Errorf("upsert settings: %w", err)
	}
	return fromRow(row), nil
}

func fromRow(c dbgen.Configuracao) Company {
	return Company{
		Name:         c.NomeEmpresa,
		CNPJ:         db.StringPtr(c.Cnpj),
		Phone:        db.StringPtr(c.Telefone),
		Email:        db.StringPtr(c.Email),
		Address:      db.StringPtr(c.Endereco),
		LogoURL:      db.StringPtr(c.LogoUrl),
		DefaultNotes: db.StringPtr(c.ObservacoesPadrao),
		UpdatedAt:    c.UpdatedAt.Time,
	}
}

// Handler exposes GET and PUT /settings.
type Handler struct {
	Service *Service
}

// Get handles GET /settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context())
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// Put handles PUT /settings.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteAppError(w, err)
		return
	}
	c, err := h.Service.Upsert(r.Context(), in)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}
