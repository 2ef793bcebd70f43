package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/tools/clock"
)

func TestExecuteReturnsFormattedTime(t *testing.T) {
	tool := clock.New(clock.WithLocation(time.UTC))
	res, err := tool.Execute(context.Background(), "what time is it")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.Result.(string), "UTC")
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tool := clock.New()
	_, err := tool.Execute(ctx, "now")
	require.Error(t, err)
}
