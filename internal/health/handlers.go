// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

var draining atomic.Bool

// SetReady flips readiness. The API clears it before shutting the server down.
func SetReady(v bool) { draining.Store(!v) }

// Probe checks one dependency. It must honour ctx's deadline.
type Probe func(ctx context.Context) error

// Probes returns the "db" and "redis" checks. A nil dependency always fails.
func Probes(pool *pgxpool.Pool, rdb redis.UniversalClient) map[string]Probe {
	return map[string]Probe{
		"db": func(ctx context.Context) error {
			if pool == nil {
				return errors.New("db not configured")
			}
			return pool.Ping(ctx)
		},
		"redis": func(ctx context.Context) error {
			if rdb == nil {
				return errors.New("redis not configured")
			}
			return rdb.Ping(ctx).Err()
		},
	}
}

// Handler serves /health/live and /health/ready.
type Handler struct {
	Probes  map[string]Probe
	Timeout time.Duration
}

// Live answers as long as the process serves HTTP.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Ready runs every probe in parallel and reports each result by name.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	switch {
	case draining.Load():
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	case len(h.Probes) == 0:
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no dependencies configured"})
		return
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		status = make(map[string]string, len(h.Probes))
		code   = http.StatusOK
	)
	for name, probe := range h.Probes {
		wg.Add(1)
		go func(name string, probe Probe) {
			defer wg.Done()
			result := "ok"
			if err := probe(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			status[name] = result
			if result != "ok" {
				code = http.StatusServiceUnavailable
			}
		}(name, probe)
	}
	wg.Wait()
	common.JSON(w, code, status)
}
