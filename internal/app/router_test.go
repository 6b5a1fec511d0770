package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/noah-isme/backend-orcamento/internal/auth"
	"github.com/noah-isme/backend-orcamento/internal/cart"
	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/config"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := dbgen.New(nil)
	authSvc, err := auth.NewService(auth.Config{Queries: q, Secret: "router-secret"})
	require.NoError(t, err)
	return &Dependencies{
		Config: &config.Config{
			AppEnv:         "test",
			StorageBaseURL: "/files",
			StorageDir:     t.TempDir(),
			IdempotencyTTL: time.Minute,
			MaxBodyBytes:   1 << 20,
		},
		Log:       zerolog.Nop(),
		Queries:   q,
		Redis:     client,
		Validator: common.NewValidator(),
		Auth:      authSvc,
		Cart:      &cart.Service{R: client, TTL: time.Hour},
	}
}

func TestRouterHealthAndAuthBoundary(t *testing.T) {
	h := NewRouter(newTestDeps(t), RouterOptions{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	for _, path := range []string{"/api/v1/quotes", "/api/v1/settings", "/api/v1/kits"} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterStorefrontCartIsPublicAndThrottled(t *testing.T) {
	h := NewRouter(newTestDeps(t), RouterOptions{
		StoreLimiter: limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2}),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/store/carts", nil)
	req.Header.Set("Idempotency-Key", "cart-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `"itens":[]`))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/store/carts", nil)
	replay.Header.Set("Idempotency-Key", "cart-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, replay)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/store/carts", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestProtectPprof(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := protectPprof(inner, "ops", "secret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
