package trace_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/trace"
)

func TestRingCapturesEventsInOrder(t *testing.T) {
	ctx := context.Background()
	r := trace.New(5, 100)

	r.OnPlanningStart(ctx, "question")
	r.OnPlanningEnd(ctx, 10*time.Millisecond, true, "plan made")
	r.OnStepStart(ctx, 1, "calculator", "2+2")
	r.OnStepEnd(ctx, 1, 5*time.Millisecond, true, "4")

	events := r.Events()
	require.Len(t, events, 4)
	require.Equal(t, trace.PhasePlanningStart, events[0].Phase)
	require.Equal(t, trace.PhaseStepEnd, events[3].Phase)
	require.NotNil(t, events[3].Success)
	require.True(t, *events[3].Success)
}

func TestRingEvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	r := trace.New(2, 100)

	r.OnPlanningStart(ctx, "q1")
	r.OnPlanningStart(ctx, "q2")
	r.OnPlanningStart(ctx, "q3")

	events := r.Events()
	require.Len(t, events, 2)
	require.Equal(t, "q2", events[0].InputPreview)
	require.Equal(t, "q3", events[1].InputPreview)
}

func TestRingTruncatesPreviews(t *testing.T) {
	ctx := context.Background()
	r := trace.New(10, 4)
	r.OnPlanningStart(ctx, "abcdefgh")
	events := r.Events()
	require.Len(t, events, 1)
	require.Equal(t, "abcd", events[0].InputPreview)
}

func TestNullIsZeroCost(t *testing.T) {
	ctx := context.Background()
	n := trace.NewNull()
	n.OnPlanningStart(ctx, "x")
	n.OnVerification(ctx, 1, 0.9, "fine")
	require.Empty(t, n.Events())
}

func TestVerificationSuccessThreshold(t *testing.T) {
	ctx := context.Background()
	r := trace.New(10, 100)
	r.OnVerification(ctx, 1, 0.5, strings.Repeat("issue ", 1))
	events := r.Events()
	require.NotNil(t, events[0].Success)
	require.False(t, *events[0].Success)
}
