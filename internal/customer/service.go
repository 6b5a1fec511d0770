// Package customer manages the customers quotes are addressed to.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

// ErrNotFound is wrapped by every "customer not found" error.
var ErrNotFound = errors.New("customer: not found")

// Queries lists the persistence operations used by the service.
type Queries interface {
	ListCustomers(ctx context.Context, search pgtype.Text) ([]dbgen.Cliente, error)
	GetCustomerByID(ctx context.Context, id pgtype.UUID) (dbgen.Cliente, error)
	CreateCustomer(ctx context.Context, arg dbgen.CreateCustomerParams) (dbgen.Cliente, error)
	UpdateCustomer(ctx context.Context, arg dbgen.UpdateCustomerParams) (dbgen.Cliente, error)
}

// Customer is the API representation of a customer.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Document  string    `json:"cpfCnpj"`
	Phone     *string   `json:"telefone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"endereco,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the create/update payload.
type Input struct {
	Name     string  `json:"nome" validate:"required,max=200"`
	Document string  `json:"cpfCnpj" validate:"required"`
	Phone    *string `json:"telefone" validate:"omitempty,max=40"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"endereco" validate:"omitempty,max=500"`
}

// Service implements customer operations.
type Service struct {
	Q        Queries
	Validate *validator.Validate
}

// List returns customers ordered by name, optionally filtered by name or document.
func (s *Service) List(ctx context.Context, query string) ([]Customer, error) {
	rows, err := s.Q.ListCustomers(ctx, db.Text(strings.TrimSpace(query)))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	uid, err := parseID(id)
	if err != nil {
		return Customer{}, err
	}
	row, err := s.Q.GetCustomerByID(ctx, uid)
	if err != nil {
		if db.IsNotFound(err) {
			return Customer{}, common.NotFound("customer not found", ErrNotFound)
		}
		return Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return fromRow(row), nil
}

// Create inserts a customer.
func (s *Service) Create(ctx context.Context, in Input) (Customer, error) {
	in, err := s.normalize(in)
	if err != nil {
		return Customer{}, err
	}
	row, err := s.Q.CreateCustomer(ctx, dbgen.CreateCustomerParams{
		Nome:     in.Name,
		CpfCnpj:  in.Document,
		Telefone: db.TextPtr(in.Phone),
		Email:    db.TextPtr(in.Email),
		Endereco: db.TextPtr(in.Address),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Customer{}, duplicateDocument(err)
		}
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return fromRow(row), nil
}

// Update replaces a customer's fields.
func (s *Service) Update(ctx context.Context, id string, in Input) (Customer, error) {
	uid, err := parseID(id)
	if err != nil {
		return Customer{}, err
	}
	in, err = s.normalize(in)
	if err != nil {
		return Customer{}, err
	}
	row, err := s.Q.UpdateCustomer(ctx, dbgen.UpdateCustomerParams{
		ID:       uid,
		Nome:     in.Name,
		CpfCnpj:  in.Document,
		Telefone: db.TextPtr(in.Phone),
		Email:    db.TextPtr(in.Email),
		Endereco: db.TextPtr(in.Address),
	})
	if err != nil {
		if db.IsNotFound(err) {
			return Customer{}, common.NotFound("customer not found", ErrNotFound)
		}
		if isUniqueViolation(err) {
			return Customer{}, duplicateDocument(err)
		}
		return Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return fromRow(row), nil
}

func (s *Service) normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Document = strings.TrimSpace(in.Document)
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Input{}, common.ValidationError(err)
		}
	}
	if n := len(digits(in.Document)); n != 11 && n != 14 {
		return Input{}, common.BadRequest("cpfCnpj", "cpfCnpj must have 11 (CPF) or 14 (CNPJ) digits", nil)
	}
	return in, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fromRow(c dbgen.Cliente) Customer {
	return Customer{
		ID:        db.UUIDString(c.ID),
		Name:      c.Nome,
		Document:  c.CpfCnpj,
		Phone:     db.StringPtr(c.Telefone),
		Email:     db.StringPtr(c.Email),
		Address:   db.StringPtr(c.Endereco),
		CreatedAt: c.CreatedAt.Time,
		UpdatedAt: c.UpdatedAt.Time,
	}
}

func parseID(id string) (pgtype.UUID, error) {
	uid, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, common.BadRequest("id", "invalid customer id", err)
	}
	return uid, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func duplicateDocument(err error) *common.AppError {
	return common.Conflict("cpfCnpj", "cpfCnpj already registered", err)
}
