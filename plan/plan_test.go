package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/plan"
)

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	p := plan.Plan{Steps: []plan.Step{{ID: 1}, {ID: 1}}}
	require.Error(t, p.Validate())
}

func TestValidateRejectsCycles(t *testing.T) {
	p := plan.Plan{Steps: []plan.Step{
		{ID: 1, Dependencies: []int{2}},
		{ID: 2, Dependencies: []int{1}},
	}}
	require.Error(t, p.Validate())
}

func TestValidateAcceptsDAG(t *testing.T) {
	p := plan.Plan{Steps: []plan.Step{
		{ID: 1},
		{ID: 2, Dependencies: []int{1}},
		{ID: 3, Dependencies: []int{1, 2}},
	}}
	require.NoError(t, p.Validate())
}

func TestValidateIgnoresDanglingDependency(t *testing.T) {
	p := plan.Plan{Steps: []plan.Step{{ID: 1, Dependencies: []int{99}}}}
	require.NoError(t, p.Validate())
}

func TestSingleStepFallback(t *testing.T) {
	p := plan.SingleStepFallback("what time is it?")
	require.Len(t, p.Steps, 1)
	require.True(t, p.Steps[0].IsDirectReasoning())
}
