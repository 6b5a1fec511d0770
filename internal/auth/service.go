// Package auth issues and verifies the bearer tokens that guard the admin API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

const (
	defaultAccessTTL = 12 * time.Hour
	// RoleAdmin grants access to the back office routes.
	RoleAdmin = "admin"
)

// Queries is the persistence surface used by the service.
type Queries interface {
	GetUserByEmail(ctx context.Context, lower string) (dbgen.Usuario, error)
	CreateUser(ctx context.Context, arg dbgen.CreateUserParams) (dbgen.Usuario, error)
}

// Service coordinates password checks and token issuance.
type Service struct {
	queries   Queries
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	tokens    tokenSpec
}

// Config configures the auth service.
type Config struct {
	Queries        Queries
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// User represents a safe subset of the user model returned to clients.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResult bundles the issued token.
type LoginResult struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"accessToken"`
	AccessExpiry time.Time `json:"accessTokenExpiresAt"`
}

// Claims are the verified contents of an access token.
type Claims struct {
	UserID string
	Roles  []string
}

var errInvalidCredentials = common.NewAppError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, nil)

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("auth: queries is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-orcamento"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "orcamento-admin"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Service{
		queries:   cfg.Queries,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		tokens:    tokenSpec{issuer: issuer, audience: audience, skew: clockSkew},
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	normalized := strings.TrimSpace(strings.ToLower(email))
	if normalized == "" || password == "" {
		return LoginResult{}, errInvalidCredentials
	}
	row, err := s.queries.GetUserByEmail(ctx, normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return LoginResult{}, errInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, row.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, errInvalidCredentials
	}
	user := toUser(row)
	if user.ID == "" {
		return LoginResult{}, errors.New("auth: invalid user identifier")
	}
	token, expiry, err := s.sign(user.ID, user.Roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{User: user, AccessToken: token, AccessExpiry: expiry}, nil
}

// CreateAdmin hashes password and upserts an admin account by email.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return User{}, common.BadRequest("email", "name and email are required", nil)
	}
	if len(password) < 8 {
		return User{}, common.BadRequest("password", "password must have at least 8 characters", nil)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	row, err := s.queries.CreateUser(ctx, dbgen.CreateUserParams{
		Nome:         name,
		Lower:        email,
		PasswordHash: hash,
		Roles:        []string{RoleAdmin},
	})
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return toUser(row), nil
}

// HashPassword derives an argon2id hash with the library defaults.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

func toUser(u dbgen.Usuario) User {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return User{
		ID:        db.UUIDString(u.ID),
		Name:      u.Nome,
		Email:     u.Email,
		Roles:     roles,
		CreatedAt: timestamp(u.CreatedAt),
	}
}

func timestamp(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

// ParseAccessToken validates token and returns its claims.
func (s *Service) ParseAccessToken(token string) (Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Claims{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	parsed, err := s.verify(trimmed)
	if err != nil {
		return Claims{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return Claims{UserID: parsed.Subject(), Roles: rolesClaim(parsed)}, nil
}
