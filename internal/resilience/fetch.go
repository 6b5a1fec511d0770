package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge is returned when a response body exceeds MaxBytes.
var ErrTooLarge = errors.New("resilience: response body too large")

// StatusError carries a non-2xx response status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("resilience: unexpected status %d", e.Code) }

// Fetcher downloads small resources such as the company logo. 5xx responses
// and transport errors are retried and count against the breaker; 4xx
// responses fail immediately.
type Fetcher struct {
	Client      *http.Client
	Breaker     *Breaker
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      float64
	Timeout     time.Duration
	MaxBytes    int64
}

// Fetch GETs url and returns the body and its Content-Type.
func (f Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if f.Breaker != nil && !f.Breaker.Allow(ctx) {
			return nil, "", ErrOpenCircuit
		}
		body, ctype, retry, err := f.once(ctx, client, url)
		if f.Breaker != nil {
			f.Breaker.Report(ctx, err == nil || !retry)
		}
		if err == nil {
			return body, ctype, nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}
		timer := time.NewTimer(Backoff(f.BaseBackoff, attempt, f.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, "", ctx.Err()
		case <-timer.C:
		}
	}
	return nil, "", lastErr
}

func (f Fetcher) once(ctx context.Context, client *http.Client, url string) ([]byte, string, bool, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, "", true, &StatusError{Code: resp.StatusCode}
	}
	if resp.StatusCode >= 300 {
		return nil, "", false, &StatusError{Code: resp.StatusCode}
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = 2 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", true, err
	}
	if int64(len(body)) > limit {
		return nil, "", false, ErrTooLarge
	}
	return body, resp.Header.Get("Content-Type"), false, nil
}
