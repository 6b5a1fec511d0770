package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

type fakeUsers struct {
	byEmail map[string]dbgen.Usuario
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (dbgen.Usuario, error) {
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return dbgen.Usuario{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, arg dbgen.CreateUserParams) (dbgen.Usuario, error) {
	u := dbgen.Usuario{
		ID:           db.UUID(uuid.New()),
		Nome:         arg.Nome,
		Email:        arg.Lower,
		PasswordHash: arg.PasswordHash,
		Roles:        arg.Roles,
	}
	f.byEmail[arg.Lower] = u
	return u, nil
}

func newTestService(t *testing.T) (*Service, *fakeUsers) {
	t.Helper()
	users := &fakeUsers{byEmail: map[string]dbgen.Usuario{}}
	svc, err := NewService(Config{Queries: users, Secret: "test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	_, err = svc.CreateAdmin(context.Background(), "Admin", "Admin@Example.com", "s3cret-pass")
	require.NoError(t, err)
	return svc, users
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(Config{Queries: &fakeUsers{}})
	require.Error(t, err)
	_, err = NewService(Config{Secret: "x"})
	require.Error(t, err)
}

func TestCreateAdminHashesPassword(t *testing.T) {
	svc, users := newTestService(t)
	stored := users.byEmail["admin@example.com"]
	require.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	require.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	require.Equal(t, []string{RoleAdmin}, stored.Roles)

	_, err := svc.CreateAdmin(context.Background(), "Admin", "a@b.c", "short")
	require.True(t, common.IsAppError(err))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Login(context.Background(), " admin@example.com ", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "admin@example.com", res.User.Email)

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, []string{RoleAdmin}, claims.Roles)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	for _, tc := range []struct{ email, password string }{
		{"admin@example.com", "wrong-pass"},
		{"nobody@example.com", "s3cret-pass"},
		{"", ""},
	} {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		require.ErrorIs(t, err, errInvalidCredentials)
	}
}

func TestParseAccessTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	svc, _ := newTestService(t)
	res, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err = svc.ParseAccessToken(res.AccessToken)
	require.Error(t, err)
	svc.WithNow(time.Now)

	tok, err := jwt.NewBuilder().Subject("x").Issuer("backend-orcamento").Audience([]string{"orcamento-admin"}).
		Expiration(time.Now().Add(time.Hour)).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("other-secret")))
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(string(signed))
	require.Error(t, err)

	signed, err = jwt.Sign(tok, jwt.WithKey(jwa.HS512, []byte("test-secret")))
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(string(signed))
	require.Error(t, err, "only HS256 is accepted")

	_, err = svc.ParseAccessToken("not-a-token")
	require.Error(t, err)
}

func TestMiddlewareAndLoginHandler(t *testing.T) {
	svc, _ := newTestService(t)
	h := &Handler{Service: svc}
	mw := Middleware{Service: svc}

	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth, RequireRole(RoleAdmin))
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			id, _ := common.UserID(r.Context())
			common.JSON(w, http.StatusOK, map[string]any{"data": id})
		})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@example.com"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@example.com","password":"nope"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"admin@example.com","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), body.Data.User.ID)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(common.WithRoles(req.Context(), []string{"vendedor"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
