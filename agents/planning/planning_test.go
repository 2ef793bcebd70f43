package planning_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/agents/planning"
	"github.com/zolawuzhigang/Research-Agent/llm"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return f.text, f.err
}

func alwaysKnown(string) bool { return true }
func neverKnown(string) bool  { return false }

func TestDecomposeParsesWellFormedPlan(t *testing.T) {
	agent := planning.New(&fakeLLM{text: `{"steps":[{"id":1,"description":"compute 2+2","tool_type":"calculator","dependencies":[]},]}`}, nil, nil)
	p := agent.Decompose(context.Background(), "compute 2+2", nil, alwaysKnown)
	require.Len(t, p.Steps, 1)
	require.Equal(t, "calculator", p.Steps[0].ToolType)
}

func TestDecomposeFallsBackOnLLMError(t *testing.T) {
	agent := planning.New(&fakeLLM{err: boom{}}, nil, nil)
	p := agent.Decompose(context.Background(), "what time is it", nil, alwaysKnown)
	require.Len(t, p.Steps, 1)
	require.True(t, p.Steps[0].IsDirectReasoning())
}

func TestDecomposeFallsBackOnEmptySteps(t *testing.T) {
	agent := planning.New(&fakeLLM{text: `{"steps":[]}`}, nil, nil)
	p := agent.Decompose(context.Background(), "q", nil, alwaysKnown)
	require.Len(t, p.Steps, 1)
}

func TestDecomposeRewritesUnknownToolType(t *testing.T) {
	agent := planning.New(&fakeLLM{text: `{"steps":[{"id":1,"description":"d","tool_type":"mystery","dependencies":[]}]}`}, nil, nil)
	p := agent.Decompose(context.Background(), "q", nil, neverKnown)
	require.Equal(t, "none", p.Steps[0].ToolType)
}

func TestDecomposeFallsBackOnCyclicPlan(t *testing.T) {
	agent := planning.New(&fakeLLM{text: `{"steps":[{"id":1,"dependencies":[2]},{"id":2,"dependencies":[1]}]}`}, nil, nil)
	p := agent.Decompose(context.Background(), "q", nil, alwaysKnown)
	require.Len(t, p.Steps, 1)
	require.True(t, p.Steps[0].IsDirectReasoning())
}

type boom struct{}

func (boom) Error() string { return "boom" }
