package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/resilience"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestBreakerTransitions(t *testing.T) {
	resilience.MustRegisterMetrics("boutique", prometheus.NewRegistry())
	clk := &clock{now: time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:      "transitions",
		MinRequests: 2,
		OpenFor:     time.Minute,
		Now:         clk.Now,
	})
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx))

	clk.now = clk.now.Add(time.Minute)
	require.True(t, breaker.Allow(ctx))
	require.Equal(t, resilience.HalfOpen, breaker.State())
	require.False(t, breaker.Allow(ctx), "only one probe while half-open")

	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))

	require.Equal(t, float64(0), testutil.ToFloat64(resilience.BreakerState.WithLabelValues("transitions")))
	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("transitions", "closed", "open")))
	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("transitions", "open", "half_open")))
	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("transitions", "half_open", "closed")))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{OpenFor: time.Second, Now: clk.Now})
	ctx := context.Background()

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	clk.now = clk.now.Add(time.Second)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
}

func TestBreakerDo(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{MinRequests: 1, OpenFor: time.Second, Now: clk.Now})
	boom := errors.New("boom")
	ctx := context.Background()

	require.NoError(t, breaker.Do(ctx, func(context.Context) error { return nil }))
	require.ErrorIs(t, breaker.Do(ctx, func(context.Context) error { return boom }), boom)

	calls := 0
	err := breaker.Do(ctx, func(context.Context) error { calls++; return nil })
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Zero(t, calls)
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{MinRequests: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, resilience.Closed, breaker.State())
}
