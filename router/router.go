// Package router implements the optional TaskRouter (spec §4.7): a single,
// stateless LLM call that classifies a question into a toolhub.TaskContext.
package router

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

const systemPrompt = "You are a routing classifier. Given a question and the list of known tools, " +
	"decide whether tools are needed and which capabilities and attributes matter. " +
	"Respond with only a JSON object, no prose."

// Router is the stateless collaborator implementing spec §4.7 route.
type Router struct {
	llmClient llm.Client
	table     *prompts.Table
	log       telemetry.Logger
}

// New constructs a Router. table defaults to prompts.Default() when nil.
func New(llmClient llm.Client, table *prompts.Table, log telemetry.Logger) *Router {
	if table == nil {
		table = prompts.Default()
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Router{llmClient: llmClient, table: table, log: log}
}

type routeResponse struct {
	UseTools       bool              `json:"use_tools"`
	CapabilityTags []string          `json:"capability_tags"`
	AttributeTags  map[string]string `json:"attribute_tags"`
	AdaptCarriers  []string          `json:"adapt_carriers"`
}

// Route classifies question into a TaskContext, falling back to
// toolhub.DefaultTaskContext on any LLM or parse error (spec §4.7).
func (r *Router) Route(ctx context.Context, question string, toolNames []string) toolhub.TaskContext {
	prompt := systemPrompt + "\n\n" + r.table.Render(prompts.KeyRoute, map[string]string{
		"question":   question,
		"tool_names": strings.Join(toolNames, ", "),
	})

	text, err := r.llmClient.Generate(ctx, prompt, llm.DefaultOptions())
	if err != nil {
		r.log.Warn(ctx, "task router llm call failed, using default task context", "error", err)
		return toolhub.DefaultTaskContext()
	}

	var resp routeResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		r.log.Warn(ctx, "task router response unparseable, using default task context", "error", err)
		return toolhub.DefaultTaskContext()
	}

	out := toolhub.TaskContext{
		UseTools:       resp.UseTools,
		CapabilityTags: resp.CapabilityTags,
		AttributeTags:  resp.AttributeTags,
		AdaptCarriers:  resp.AdaptCarriers,
	}
	if out.AttributeTags == nil {
		out.AttributeTags = toolhub.DefaultTaskContext().AttributeTags
	}
	if out.AdaptCarriers == nil {
		out.AdaptCarriers = toolhub.DefaultTaskContext().AdaptCarriers
	}
	return out
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSON strips markdown code fences and tolerates trailing commas, the
// same tolerant-parsing contract PlanningAgent.decompose uses (spec §4.3).
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	text = regexp.MustCompile(`,\s*([}\]])`).ReplaceAllString(text, "$1")
	return text
}
