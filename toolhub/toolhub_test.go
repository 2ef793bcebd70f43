package toolhub_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

type fakeTool struct {
	result      toolhub.Result
	err         error
	delay       time.Duration
	meta        toolhub.Meta
	calls       int
	lastInput   string
}

func (f *fakeTool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	f.calls++
	f.lastInput = input
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return toolhub.Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeTool) Meta() toolhub.Meta { return f.meta }

func TestExecuteSingleCandidate(t *testing.T) {
	reg := toolhub.NewRegistry()
	reg.Register("calculator", toolhub.SourceLocal, &fakeTool{result: toolhub.Result{Success: true, Result: "4"}})
	hub := toolhub.New(reg)

	res := hub.Execute(context.Background(), "calculator", "2+2", nil)
	require.True(t, res.Success)
	require.Equal(t, "4", res.Result)
}

// TestExecuteSingleCandidateForwardsInput guards against the single-candidate
// dispatch path silently dropping the caller's input on the floor.
func TestExecuteSingleCandidateForwardsInput(t *testing.T) {
	reg := toolhub.NewRegistry()
	tool := &fakeTool{result: toolhub.Result{Success: true, Result: "4"}}
	reg.Register("calculator", toolhub.SourceLocal, tool)
	hub := toolhub.New(reg)

	hub.Execute(context.Background(), "calculator", "2+2", nil)
	require.Equal(t, "2+2", tool.lastInput)
}

// TestRaceForwardsInputToEveryCandidate guards against the racing dispatch
// path silently dropping the caller's input on the floor.
func TestRaceForwardsInputToEveryCandidate(t *testing.T) {
	reg := toolhub.NewRegistry()
	fast := &fakeTool{result: toolhub.Result{Success: true, Result: "fast answer"}}
	slow := &fakeTool{delay: 20 * time.Millisecond, result: toolhub.Result{Success: true, Result: "slow answer"}}
	reg.Register("calculate", toolhub.SourceLocal, fast)
	reg.Register("calculate", toolhub.SourceMCP, slow)

	hub := toolhub.New(reg)
	hub.Execute(context.Background(), "calculate", "golang release notes", nil)
	time.Sleep(30 * time.Millisecond)

	require.Equal(t, "golang release notes", fast.lastInput)
	require.Equal(t, "golang release notes", slow.lastInput)
}

func TestExecuteUnknownNameFails(t *testing.T) {
	hub := toolhub.New(toolhub.NewRegistry())
	res := hub.Execute(context.Background(), "nonexistent", "x", nil)
	require.False(t, res.Success)
}

func TestExecuteByCapabilityNoMatchSuggestsAlternatives(t *testing.T) {
	reg := toolhub.NewRegistry()
	reg.Register("calc", toolhub.SourceLocal, &fakeTool{meta: toolhub.Meta{Capabilities: []string{"calculate"}}, result: toolhub.Result{Success: true}})
	hub := toolhub.New(reg)

	res := hub.ExecuteByCapability(context.Background(), "calculat", "1+1", nil)
	require.False(t, res.Success)
	require.Equal(t, "no_match", res.Error)
	suggestions, ok := res.Meta["suggestions"].([]string)
	require.True(t, ok)
	require.Contains(t, suggestions, "calculate")
}

func TestRacePicksFirstSuccessAndIgnoresSlowFailures(t *testing.T) {
	reg := toolhub.NewRegistry()
	reg.Register("search", toolhub.SourceLocal, &fakeTool{result: toolhub.Result{Success: true, Result: "fast answer"}})
	reg.Register("search", toolhub.SourceMCP, &fakeTool{delay: 50 * time.Millisecond, err: errors.New("boom")})
	reg.Register("search", toolhub.SourceSkill, &fakeTool{delay: 50 * time.Millisecond, err: errors.New("boom")})
	reg.Register("search", toolhub.SourceLocal, &fakeTool{delay: 50 * time.Millisecond, err: errors.New("boom")})

	hub := toolhub.New(reg)
	res := hub.Execute(context.Background(), "search", "q", nil)
	require.True(t, res.Success)
	require.Equal(t, "fast answer", res.Result)
}

func TestSynthesizeMergesTwoResultsWithoutLLM(t *testing.T) {
	reg := toolhub.NewRegistry()
	reg.Register("search", toolhub.SourceLocal, &fakeTool{result: toolhub.Result{Success: true, Result: "result one"}})
	reg.Register("search", toolhub.SourceSkill, &fakeTool{result: toolhub.Result{Success: true, Result: "result two"}})

	hub := toolhub.New(reg)
	res := hub.Execute(context.Background(), "search", "q", nil)
	require.True(t, res.Success)
	text, ok := res.Result.(string)
	require.True(t, ok)
	require.Contains(t, text, "result one")
	require.Contains(t, text, "result two")

	require.Equal(t, true, res.Meta["synthesized"])
	sources, ok := res.Meta["sources"].([]string)
	require.True(t, ok)
	require.Len(t, sources, 2)
}

func TestCapabilityMiscoreExcludesZeroFit(t *testing.T) {
	reg := toolhub.NewRegistry()
	reg.Register("a", toolhub.SourceLocal, &fakeTool{meta: toolhub.Meta{Capabilities: []string{"search"}}, result: toolhub.Result{Success: true, Result: "a"}})
	hub := toolhub.New(reg)

	taskCtx := &toolhub.TaskContext{CapabilityTags: []string{"calculate"}}
	res := hub.Execute(context.Background(), "a", "x", taskCtx)
	require.False(t, res.Success)
}
