package resilience_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/resilience"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newBreaker(min int, target string) (*resilience.Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	return resilience.NewBreaker(min, 0.5, time.Minute).WithTarget(target).WithClock(clock.Now), clock
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	ctx := context.Background()
	b, clock := newBreaker(2, "test-recover")

	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, resilience.Closed, b.State(), "below minimum requests")
	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, resilience.Open, b.State())
	require.False(t, b.Allow(ctx))

	clock.Advance(59 * time.Second)
	require.False(t, b.Allow(ctx), "still cooling off")
	clock.Advance(time.Second)
	require.True(t, b.Allow(ctx), "first caller after cool-off is the probe")
	require.Equal(t, resilience.HalfOpen, b.State())
	require.False(t, b.Allow(ctx), "one probe at a time")

	b.Report(ctx, true)
	require.Equal(t, resilience.Closed, b.State())
	require.True(t, b.Allow(ctx))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	ctx := context.Background()
	b, clock := newBreaker(1, "test-reopen")

	b.Report(ctx, false)
	clock.Advance(time.Minute)
	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, resilience.Open, b.State())
	require.False(t, b.Allow(ctx), "cool-off restarts from the failed probe")
}

func TestBreakerToleratesMinorityFailures(t *testing.T) {
	ctx := context.Background()
	b, _ := newBreaker(4, "test-ratio")
	for _, ok := range []bool{true, false, true, true, false, true} {
		require.True(t, b.Allow(ctx))
		b.Report(ctx, ok)
	}
	require.Equal(t, resilience.Closed, b.State())
}

func TestBreakerMetrics(t *testing.T) {
	ctx := context.Background()
	b, clock := newBreaker(1, "logo")

	b.Report(ctx, false)
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("logo")))
	clock.Advance(time.Minute)
	require.True(t, b.Allow(ctx))
	require.Equal(t, 2.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("logo")))
	b.Report(ctx, true)
	require.Equal(t, 0.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("logo")))

	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("logo", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("logo", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("logo", "half_open", "closed")))
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, resilience.Backoff(base, 0, 0))
	require.Equal(t, 4*base, resilience.Backoff(base, 3, 0))
	for i := 0; i < 20; i++ {
		d := resilience.Backoff(base, 2, 0.2)
		require.InDelta(t, float64(2*base), float64(d), float64(2*base)*0.2)
	}
}
