package toolhub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterSetDisabledByDefault(t *testing.T) {
	var ls *limiterSet
	require.NoError(t, ls.wait(context.Background(), "x"))
}

func TestLimiterSetBoundsThroughput(t *testing.T) {
	ls := newLimiterSet(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, ls.wait(ctx, "a"))
	// Burst of 1 is immediately exhausted for this candidate; the next call
	// must wait for the bucket to refill rather than erroring.
	start := time.Now()
	require.NoError(t, ls.wait(ctx, "a"))
	require.Greater(t, time.Since(start), time.Duration(0))
}

func TestLimiterSetCancelledContext(t *testing.T) {
	ls := newLimiterSet(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, ls.wait(ctx, "first"))
}
