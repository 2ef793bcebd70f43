// Package execution implements ExecutionAgent.executeStep (spec §4.4):
// direct reasoning for tool_type=="none", and tool dispatch with
// type-specific input extraction, retry, and output formatting otherwise.
package execution

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/plan"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/retry"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
	"github.com/zolawuzhigang/Research-Agent/trace"
)

var stepResultPlaceholder = regexp.MustCompile(`\{step_(\d+)_result\}`)
var arithmeticPattern = regexp.MustCompile(`[0-9+\-*/().\s]+`)

var capabilityKeywords = []struct {
	pattern *regexp.Regexp
	cap     string
}{
	{regexp.MustCompile(`(?i)search|find|查`), "search"},
	{regexp.MustCompile(`(?i)compute|calc|计算`), "calculate"},
	{regexp.MustCompile(`(?i)time|date|几点`), "time"},
	{regexp.MustCompile(`(?i)history|previous`), "history"},
}

var outputBudgets = map[string]int{
	"calculator": 100,
	"clock":      200,
	"search":     500,
	"history":    1000,
}

const defaultOutputBudget = 500

// Dispatcher is the subset of ToolHub.Execute/ExecuteByCapability this
// agent needs, narrowed so tests can supply a fake.
type Dispatcher interface {
	Execute(ctx context.Context, name, input string, taskCtx *toolhub.TaskContext) toolhub.Result
	ExecuteByCapability(ctx context.Context, capability, input string, taskCtx *toolhub.TaskContext) toolhub.Result
}

// Agent implements executeStep.
type Agent struct {
	hub         Dispatcher
	llmClient   llm.Client
	table       *prompts.Table
	log         telemetry.Logger
	maxRetries  int
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxRetries overrides the dispatch retry budget (spec §6 tools.max_retries).
func WithMaxRetries(n int) Option {
	return func(a *Agent) { a.maxRetries = n }
}

// New constructs an execution Agent.
func New(hub Dispatcher, llmClient llm.Client, table *prompts.Table, log telemetry.Logger, opts ...Option) *Agent {
	if table == nil {
		table = prompts.Default()
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	a := &Agent{hub: hub, llmClient: llmClient, table: table, log: log, maxRetries: 2}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExecuteStep runs step.tool_type=="none" as direct reasoning, or dispatches
// to ToolHub with the rest of spec §4.4's pipeline. tr records tool_call and
// reasoning trace events (spec §4.9); a nil tr is treated as trace.NewNull().
func (a *Agent) ExecuteStep(ctx context.Context, step plan.Step, prior []plan.StepResult, taskCtx *toolhub.TaskContext, tr trace.Context) plan.StepResult {
	if tr == nil {
		tr = trace.NewNull()
	}
	start := time.Now()
	if step.IsDirectReasoning() {
		return a.directReason(ctx, step, prior, start, nil, tr)
	}

	description := substitutePlaceholders(step.Description, prior)
	input := extractInput(step.ToolType, description)

	tr.OnToolCallStart(ctx, step.ID, step.ToolType, input)
	toolStart := time.Now()

	cfg := retry.Default(a.maxRetries + 1)
	var result toolhub.Result
	err := retry.Do(ctx, cfg, func(ctx context.Context, attempt int) error {
		result = a.hub.Execute(ctx, step.ToolType, input, taskCtx)
		if result.Success {
			return nil
		}
		if result.Error == "" {
			return errs.New(errs.KindToolExecution, "tool reported failure")
		}
		return errs.New(resultErrorKind(result), result.Error)
	})

	if err != nil {
		if cap := inferCapability(description); cap != "" {
			result = a.hub.ExecuteByCapability(ctx, cap, input, taskCtx)
		}
	}

	tr.OnToolCallEnd(ctx, step.ID, step.ToolType, time.Since(toolStart), result.Success, toText(result.Result))

	if !result.Success {
		return a.directReason(ctx, step, prior, start, result.Meta, tr)
	}

	output := formatOutput(step.ToolType, toText(result.Result))
	return plan.StepResult{
		StepID:     step.ID,
		Success:    true,
		Output:     output,
		DurationMs: time.Since(start).Milliseconds(),
		Meta:       result.Meta,
	}
}

// directReason falls back to a plain LLM call, either because step has no
// tool_type or because tool dispatch exhausted its retries. fallbackMeta, if
// non-nil, carries the last failed attempt's Meta (e.g. a retry_hint) into
// the StepResult so VerificationAgent and synthesis still see it even though
// the final output came from reasoning, not the tool (SPEC_FULL.md's
// retry-hints supplement).
func (a *Agent) directReason(ctx context.Context, step plan.Step, prior []plan.StepResult, start time.Time, fallbackMeta map[string]any, tr trace.Context) plan.StepResult {
	if tr == nil {
		tr = trace.NewNull()
	}
	prompt := a.table.Render(prompts.KeyDirectReason, map[string]string{
		"step_description": step.Description,
		"prior_results":    digestPrior(prior, step.ToolType),
	})
	tr.OnReasoningStart(ctx, step.ID, prompt)
	reasonStart := time.Now()
	text, err := a.llmClient.Generate(ctx, prompt, llm.DefaultOptions())
	if err != nil {
		tr.OnReasoningEnd(ctx, step.ID, time.Since(reasonStart), false, err.Error())
		return plan.StepResult{
			StepID:     step.ID,
			Success:    false,
			Error:      err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
			Meta:       fallbackMeta,
		}
	}
	tr.OnReasoningEnd(ctx, step.ID, time.Since(reasonStart), true, text)
	return plan.StepResult{
		StepID:     step.ID,
		Success:    true,
		Output:     text,
		DurationMs: time.Since(start).Milliseconds(),
		Meta:       fallbackMeta,
	}
}

// digestPrior builds a compact summary of prior successful step results,
// each truncated to the calling step's output budget (spec §4.4 step 1).
func digestPrior(prior []plan.StepResult, toolType string) string {
	budget := budgetFor(toolType)
	var b strings.Builder
	for _, r := range prior {
		if !r.Success {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(truncate(r.Output, budget))
	}
	if b.Len() == 0 {
		return "(none)"
	}
	return b.String()
}

// substitutePlaceholders resolves {step_<k>_result} references in
// description from prior[k-1] (spec §4.4 step 2.b).
func substitutePlaceholders(description string, prior []plan.StepResult) string {
	byID := make(map[int]string, len(prior))
	for _, r := range prior {
		byID[r.StepID] = r.Output
	}
	return stepResultPlaceholder.ReplaceAllStringFunc(description, func(match string) string {
		sub := stepResultPlaceholder.FindStringSubmatch(match)
		k, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		if v, ok := byID[k]; ok {
			return v
		}
		return match
	})
}

// extractInput narrows calculator/calculate inputs to the first run of
// arithmetic characters in description. Every other tool type, including
// search and history, receives description verbatim.
func extractInput(toolType, description string) string {
	switch strings.ToLower(toolType) {
	case "calculator", "calculate":
		if m := arithmeticPattern.FindString(description); m != "" {
			return strings.TrimSpace(m)
		}
		return description
	case "clock", "time":
		return description
	default:
		return description
	}
}

// resultErrorKind recovers the errs.Kind a failed toolhub.Result was
// originally classified with, via the error_kind meta ToolHub attaches
// (toolhub/retryhint.go), so the retry closure can short-circuit terminal
// kinds instead of treating every failure as a retryable tool_execution
// error (spec §4.4.d "do not retry on classified-terminal errors").
func resultErrorKind(result toolhub.Result) errs.Kind {
	if k, ok := result.Meta["error_kind"].(string); ok && k != "" {
		return errs.Kind(k)
	}
	return errs.KindToolExecution
}

// inferCapability derives a capability from free text via keyword mapping
// (spec §4.4 step 2.c).
func inferCapability(description string) string {
	for _, kw := range capabilityKeywords {
		if kw.pattern.MatchString(description) {
			return kw.cap
		}
	}
	return ""
}

func budgetFor(toolType string) int {
	if b, ok := outputBudgets[strings.ToLower(toolType)]; ok {
		return b
	}
	return defaultOutputBudget
}

// formatOutput truncates a tool's output to its per-type length budget at
// the nearest sentence boundary (spec §4.4 step e).
func formatOutput(toolType, output string) string {
	return truncate(output, budgetFor(toolType))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if idx := strings.LastIndexAny(s[:n], ".!?"); idx > 0 {
		return s[:idx+1]
	}
	return s[:n]
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
