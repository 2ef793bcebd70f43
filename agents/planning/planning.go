// Package planning implements PlanningAgent.decompose (spec §4.3): turns a
// question plus the live tool inventory into a validated Plan.
package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/plan"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
)

const maxInventoryListing = 10

// coreToolNames are always included in the decompose prompt's tool
// inventory, regardless of what else is registered (spec §4.3).
var coreToolNames = []string{"none", "search", "calculator", "clock", "history"}

// ToolDescriptor is the name+description pair PlanningAgent lists in its
// prompt for a registered tool.
type ToolDescriptor struct {
	Name        string
	Description string
}

// KnownTypeChecker reports whether a tool_type names a known tool or
// capability, used to validate (and rewrite) the plan decompose returns.
type KnownTypeChecker func(toolType string) bool

// Agent implements decompose.
type Agent struct {
	llmClient llm.Client
	table     *prompts.Table
	log       telemetry.Logger
}

// New constructs a planning Agent.
func New(llmClient llm.Client, table *prompts.Table, log telemetry.Logger) *Agent {
	if table == nil {
		table = prompts.Default()
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Agent{llmClient: llmClient, table: table, log: log}
}

// Decompose builds a Plan for question (spec §4.3). tools lists every
// non-core registered tool/capability; isKnown reports whether a given
// tool_type string names a known tool or capability (including the core
// ones).
func (a *Agent) Decompose(ctx context.Context, question string, tools []ToolDescriptor, isKnown KnownTypeChecker) plan.Plan {
	prompt := a.table.Render(prompts.KeyDecompose, map[string]string{
		"question":       question,
		"tool_inventory": buildInventory(tools),
	})

	text, err := a.llmClient.Generate(ctx, prompt, llm.DefaultOptions())
	if err != nil {
		a.log.Warn(ctx, "decompose llm call failed, using single-step fallback", "error", err)
		return plan.SingleStepFallback(question)
	}

	p, err := parsePlan(text)
	if err != nil || len(p.Steps) == 0 {
		a.log.Warn(ctx, "decompose response invalid, using single-step fallback", "error", err)
		return plan.SingleStepFallback(question)
	}
	if err := p.Validate(); err != nil {
		a.log.Warn(ctx, "decompose plan failed structural validation, using single-step fallback", "error", err)
		return plan.SingleStepFallback(question)
	}

	for i, step := range p.Steps {
		if step.ToolType == "none" {
			continue
		}
		if isKnown == nil || !isKnown(step.ToolType) {
			a.log.Warn(ctx, "unknown tool_type in plan step, rewriting to none", "step_id", step.ID, "tool_type", step.ToolType)
			p.Steps[i].ToolType = "none"
		}
	}
	return p
}

func buildInventory(tools []ToolDescriptor) string {
	var b strings.Builder
	for _, name := range coreToolNames {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	shown := tools
	truncated := false
	if len(shown) > maxInventoryListing {
		shown = shown[:maxInventoryListing]
		truncated = true
	}
	for _, t := range shown {
		b.WriteString("- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	if truncated {
		fmt.Fprintf(&b, "... %d more available\n", len(tools)-maxInventoryListing)
	}
	return b.String()
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// parsePlan tolerantly parses the LLM's JSON Plan document: strips markdown
// fences and removes trailing commas before unmarshalling (spec §4.3).
func parsePlan(text string) (plan.Plan, error) {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	text = trailingCommaPattern.ReplaceAllString(text, "$1")

	var p plan.Plan
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return plan.Plan{}, errs.Wrap(errs.KindPlan, err, "could not parse plan JSON")
	}
	return p, nil
}
