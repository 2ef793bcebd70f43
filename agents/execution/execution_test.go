package execution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/agents/execution"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/plan"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

type fakeLLM struct{ text string }

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return f.text, nil
}

type fakeHub struct {
	execResult    toolhub.Result
	byCapResult   toolhub.Result
	executeCalls  int
	byCapCalls    int
}

func (h *fakeHub) Execute(ctx context.Context, name, input string, taskCtx *toolhub.TaskContext) toolhub.Result {
	h.executeCalls++
	return h.execResult
}

func (h *fakeHub) ExecuteByCapability(ctx context.Context, capability, input string, taskCtx *toolhub.TaskContext) toolhub.Result {
	h.byCapCalls++
	return h.byCapResult
}

func TestExecuteStepDirectReasoning(t *testing.T) {
	agent := execution.New(&fakeHub{}, &fakeLLM{text: "42"}, nil, nil)
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 1, ToolType: "none", Description: "what is the answer"}, nil, nil, nil)
	require.True(t, res.Success)
	require.Equal(t, "42", res.Output)
}

func TestExecuteStepDispatchesAndFormatsOutput(t *testing.T) {
	hub := &fakeHub{execResult: toolhub.Result{Success: true, Result: "14"}}
	agent := execution.New(hub, &fakeLLM{}, nil, nil)
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 1, ToolType: "calculator", Description: "compute 2 + 3 * 4"}, nil, nil, nil)
	require.True(t, res.Success)
	require.Equal(t, "14", res.Output)
	require.Equal(t, 1, hub.executeCalls)
}

func TestExecuteStepFallsBackToCapabilityOnFailure(t *testing.T) {
	hub := &fakeHub{
		execResult:  toolhub.Result{Success: false, Error: "not found"},
		byCapResult: toolhub.Result{Success: true, Result: "sunny today"},
	}
	agent := execution.New(hub, &fakeLLM{}, nil, nil, execution.WithMaxRetries(1))
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 1, ToolType: "websearch", Description: "search for weather"}, nil, nil, nil)
	require.True(t, res.Success)
	require.Equal(t, "sunny today", res.Output)
	require.Equal(t, 1, hub.byCapCalls)
}

func TestExecuteStepFallsBackToDirectReasonWhenAllDispatchFails(t *testing.T) {
	hub := &fakeHub{
		execResult:  toolhub.Result{Success: false, Error: "down"},
		byCapResult: toolhub.Result{Success: false, Error: "down"},
	}
	agent := execution.New(hub, &fakeLLM{text: "fallback answer"}, nil, nil, execution.WithMaxRetries(1))
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 1, ToolType: "mystery_tool", Description: "do something unclear"}, nil, nil, nil)
	require.True(t, res.Success)
	require.Equal(t, "fallback answer", res.Output)
}

func TestExecuteStepCarriesRetryHintIntoFallbackMeta(t *testing.T) {
	hub := &fakeHub{
		execResult:  toolhub.Result{Success: false, Error: "down", Meta: map[string]any{"retry_hint": "give an example"}},
		byCapResult: toolhub.Result{Success: false, Error: "down", Meta: map[string]any{"retry_hint": "give an example"}},
	}
	agent := execution.New(hub, &fakeLLM{text: "fallback answer"}, nil, nil, execution.WithMaxRetries(1))
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 1, ToolType: "mystery_tool", Description: "do something unclear"}, nil, nil, nil)
	require.True(t, res.Success)
	require.Equal(t, "fallback answer", res.Output)
	require.Equal(t, "give an example", res.Meta["retry_hint"])
}

func TestSubstitutePlaceholdersViaTemplateInDescription(t *testing.T) {
	hub := &fakeHub{execResult: toolhub.Result{Success: true, Result: "ok"}}
	agent := execution.New(hub, &fakeLLM{}, nil, nil)
	prior := []plan.StepResult{{StepID: 1, Success: true, Output: "Paris"}}
	res := agent.ExecuteStep(context.Background(), plan.Step{ID: 2, ToolType: "clock", Description: "time in {step_1_result}"}, prior, nil, nil)
	require.True(t, res.Success)
}
