// Package workflow implements the WorkflowEngine (spec §4.2): a state
// machine over WorkflowState with four nodes and a loop, sequencing
// planning, execution, verification, and synthesis.
//
// Degraded mode per spec §4.2 is the only mode implemented: no graph
// library is wired in (none of the example repos carry one suited to this
// shape), so the machine is a straight loop with the same transitions a
// graph executor would take. Grounded on spec §4.2's node contracts
// directly; the loop shape mirrors the planning/execution/verification
// sequencing already present in runtime/agent's own step loop.
package workflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/zolawuzhigang/Research-Agent/agents/execution"
	"github.com/zolawuzhigang/Research-Agent/agents/planning"
	"github.com/zolawuzhigang/Research-Agent/agents/verification"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/plan"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
	"github.com/zolawuzhigang/Research-Agent/trace"
)

const (
	synthesisResultBudget = 250
	synthesisTimeout      = 10 * time.Second
)

// Engine composes PlanningAgent, ExecutionAgent, and VerificationAgent into
// the planning -> execution -> verification -> synthesis loop (spec §4.2).
type Engine struct {
	planner  *planning.Agent
	executor *execution.Agent
	table    *prompts.Table
	llm      llm.Client
	log      telemetry.Logger

	// useLLMSynthesis enables the optional LLM-backed synthesis_node path
	// when no step produced a usable result (spec §4.2 synthesis_node "OR,
	// if configured").
	useLLMSynthesis bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLLMSynthesis enables the LLM fallback in synthesis_node.
func WithLLMSynthesis(enabled bool) Option {
	return func(e *Engine) { e.useLLMSynthesis = enabled }
}

// New constructs an Engine.
func New(planner *planning.Agent, executor *execution.Agent, llmClient llm.Client, table *prompts.Table, log telemetry.Logger, opts ...Option) *Engine {
	if table == nil {
		table = prompts.Default()
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	e := &Engine{planner: planner, executor: executor, table: table, llm: llmClient, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the full planning/execution/verification/synthesis loop for
// question and returns the final WorkflowState (spec §4.2).
func (e *Engine) Run(ctx context.Context, question string, tools []planning.ToolDescriptor, isKnown planning.KnownTypeChecker, taskCtx *toolhub.TaskContext, tr trace.Context) plan.WorkflowState {
	if tr == nil {
		tr = trace.NewNull()
	}
	state := plan.WorkflowState{Question: question, Status: plan.StatusPlanning, StartedAt: time.Now()}

	planStart := time.Now()
	tr.OnPlanningStart(ctx, question)
	state.Plan = e.planner.Decompose(ctx, question, tools, isKnown)
	tr.OnPlanningEnd(ctx, time.Since(planStart), true, summarizePlan(state.Plan))

	state.Status = plan.StatusExecuting
	currentStep := 0
	var confidenceSum float64
	for currentStep < len(state.Plan.Steps) {
		step := state.Plan.Steps[currentStep]

		tr.OnStepStart(ctx, step.ID, step.ToolType, step.Description)
		stepStart := time.Now()
		result := e.executor.ExecuteStep(ctx, step, state.Results, taskCtx, tr)
		tr.OnStepEnd(ctx, step.ID, time.Since(stepStart), result.Success, result.Output)

		state.Results = append(state.Results, result)
		currentStep++

		state.Status = plan.StatusVerifying
		expectsRefinement := len(step.Dependencies) > 0
		report := verification.Verify(result, state.Results[:len(state.Results)-1], expectsRefinement)
		tr.OnVerification(ctx, step.ID, report.Confidence, strings.Join(report.Issues, "; "))
		confidenceSum += report.Confidence
		for _, issue := range report.Issues {
			state.Findings = append(state.Findings, findingLine(step.ID, report.Confidence, issue))
		}

		if currentStep < len(state.Plan.Steps) {
			state.Status = plan.StatusExecuting
		} else {
			state.Status = plan.StatusSynthesizing
		}
	}
	if len(state.Results) > 0 {
		state.Confidence = confidenceSum / float64(len(state.Results))
	}

	synthStart := time.Now()
	tr.OnEvidenceSynthesisStart(ctx, question)
	state.Answer, state.Success = e.synthesize(ctx, question, state.Results)
	tr.OnEvidenceSynthesisEnd(ctx, time.Since(synthStart), state.Success, state.Answer)

	if state.Success {
		state.Status = plan.StatusDone
	} else {
		state.Status = plan.StatusFailed
	}
	return state
}

// synthesize implements synthesis_node (spec §4.2): walk step_results from
// last to first and return the first success && non-empty result, falling
// back to a deterministic message or, if configured, an LLM-composed reply.
func (e *Engine) synthesize(ctx context.Context, question string, results []plan.StepResult) (string, bool) {
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		if r.Success && strings.TrimSpace(r.Output) != "" {
			return r.Output, true
		}
	}

	if e.useLLMSynthesis && e.llm != nil {
		synthCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
		defer cancel()
		prompt := e.table.Render(prompts.KeySynthesize, map[string]string{
			"results": digestResults(question, results),
		})
		if text, err := e.llm.Generate(synthCtx, prompt, llm.DefaultOptions()); err == nil && strings.TrimSpace(text) != "" {
			return text, true
		}
	}

	return "Unable to produce an answer", false
}

func digestResults(question string, results []plan.StepResult) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	for _, r := range results {
		b.WriteString("\n- ")
		if r.Success {
			b.WriteString(truncate(r.Output, synthesisResultBudget))
		} else {
			b.WriteString("(failed: ")
			b.WriteString(r.Error)
			b.WriteString(")")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func summarizePlan(p plan.Plan) string {
	return truncate(strings.Join(stepDescriptions(p), " | "), 500)
}

func stepDescriptions(p plan.Plan) []string {
	out := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Description)
	}
	return out
}

func findingLine(stepID int, confidence float64, issue string) string {
	return "step " + strconv.Itoa(stepID) + " (confidence " + strconv.FormatFloat(confidence, 'f', 2, 64) + "): " + issue
}
