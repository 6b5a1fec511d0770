package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/resilience"
)

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := resilience.Fetcher{MaxAttempts: 3, BaseBackoff: time.Millisecond}
	body, ctype, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(body))
	require.Equal(t, "image/png", ctype)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := resilience.Fetcher{MaxAttempts: 3, BaseBackoff: time.Millisecond}
	_, _, err := f.Fetch(context.Background(), srv.URL)
	var statusErr *resilience.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.Code)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchRejectsLargeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, _, err := resilience.Fetcher{MaxBytes: 16}.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, resilience.ErrTooLarge)
}

func TestFetchStopsWhenBreakerOpen(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := resilience.Fetcher{
		Breaker:     resilience.NewBreaker(1, 0.5, time.Minute),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	_, _, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	_, _, err = f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
