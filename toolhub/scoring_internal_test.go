package toolhub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	meta Meta
}

func (f *fakeTool) Execute(ctx context.Context, input string) (Result, error) {
	return Result{Success: true}, nil
}

func (f *fakeTool) Meta() Meta { return f.meta }

func TestCapabilityFitJaccard(t *testing.T) {
	require.Equal(t, 1.0, capabilityFit([]string{"search"}, nil))
	require.Equal(t, 1.0, capabilityFit([]string{"search", "extract"}, []string{"search", "extract"}))
	require.Equal(t, 0.5, capabilityFit([]string{"search"}, []string{"search", "calculate"}))
	require.Equal(t, 0.0, capabilityFit([]string{"search"}, []string{"calculate"}))
}

func TestCostScoreNormalizedBySourceCost(t *testing.T) {
	require.InDelta(t, 1.0, costScore(SourceLocal), 1e-9)
	require.InDelta(t, 7.0/9.0, costScore(SourceSkill), 1e-9)
	require.InDelta(t, 4.0/9.0, costScore(SourceMCP), 1e-9)
}

func TestAttributeMatchAccumulatesPoints(t *testing.T) {
	taskCtx := &TaskContext{AttributeTags: map[string]string{
		"reliability":      "high",
		"timeliness":       "high",
		"cost_sensitivity": "high",
	}}
	meta := Meta{Reliability: "high", Timeliness: "high", CostSensitivity: "low"}
	require.InDelta(t, 1.0, attributeMatch(meta, taskCtx), 1e-9)

	require.Equal(t, 0.0, attributeMatch(Meta{}, nil))
}

func TestRankCandidatesExcludesZeroCapabilityFit(t *testing.T) {
	searchTool := &fakeTool{meta: Meta{Capabilities: []string{"search"}}}
	calcTool := &fakeTool{meta: Meta{Capabilities: []string{"calculate"}}}
	candidates := []*Candidate{
		{Name: "s", Source: SourceLocal, Tool: searchTool},
		{Name: "c", Source: SourceLocal, Tool: calcTool},
	}
	taskCtx := &TaskContext{CapabilityTags: []string{"calculate"}}
	ranked := rankCandidates(candidates, taskCtx, -1)
	require.Len(t, ranked, 1)
	require.Same(t, candidates[1], ranked[0])
}

func TestRankCandidatesWithoutTaskContextPrefersLastSuccess(t *testing.T) {
	a := &Candidate{Name: "a", Source: SourceMCP, Tool: &fakeTool{}}
	b := &Candidate{Name: "b", Source: SourceLocal, Tool: &fakeTool{}}
	ranked := rankCandidates([]*Candidate{a, b}, nil, 0)
	require.Same(t, a, ranked[0])
}

func TestScoreResultFavorsMidLengthAndHigherPriority(t *testing.T) {
	short := scoreResult(Result{Result: "hi"}, SourceLocal)
	mid := scoreResult(Result{Result: string(make([]byte, 300))}, SourceLocal)
	require.Greater(t, mid, short)

	localScore := scoreResult(Result{Result: "same length body!"}, SourceLocal)
	mcpScore := scoreResult(Result{Result: "same length body!"}, SourceMCP)
	require.Greater(t, localScore, mcpScore)
}

func TestSuggestCapabilitiesRanksByEditDistance(t *testing.T) {
	known := []string{"calculate", "search", "history"}
	got := suggestCapabilities("calculat", known, 3)
	require.Equal(t, []string{"calculate", "search", "history"}, got)
}

func TestSuggestCapabilitiesCapsAtN(t *testing.T) {
	known := []string{"a", "b", "c", "d"}
	got := suggestCapabilities("a", known, 2)
	require.Len(t, got, 2)
}

func TestDamerauLevenshteinDistance(t *testing.T) {
	require.Equal(t, 0, damerauLevenshtein("same", "same"))
	require.Equal(t, 1, damerauLevenshtein("calculate", "calculat"))
	require.Equal(t, 3, damerauLevenshtein("kitten", "sitting"))
	require.Equal(t, 1, damerauLevenshtein("ab", "ba"))
}
