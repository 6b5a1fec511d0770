package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/health"
)

func probes(dbErr, redisErr error) map[string]health.Probe {
	return map[string]health.Probe{
		"db":    func(context.Context) error { return dbErr },
		"redis": func(context.Context) error { return redisErr },
	}
}

func ready(t *testing.T, h health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadyReportsEachDependency(t *testing.T) {
	code, body := ready(t, health.Handler{Probes: probes(nil, nil)})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, body)

	code, body = ready(t, health.Handler{Probes: probes(errors.New("db down"), nil)})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "db down", body["db"])
	require.Equal(t, "ok", body["redis"])
}

func TestProbesPingRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	code, body := ready(t, health.Handler{Probes: health.Probes(nil, client)})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "db not configured", body["db"])
	require.Equal(t, "ok", body["redis"])
}

func TestReadyWhileDraining(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	h := health.Handler{Probes: probes(nil, nil)}

	health.SetReady(false)
	code, body := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "draining", body["status"])

	health.SetReady(true)
	code, _ = ready(t, h)
	require.Equal(t, http.StatusOK, code)
}

func TestReadyHonoursTimeout(t *testing.T) {
	slow := map[string]health.Probe{"db": func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	code, body := ready(t, health.Handler{Probes: slow, Timeout: 20 * time.Millisecond})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, context.DeadlineExceeded.Error(), body["db"])
}
