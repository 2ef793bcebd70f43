// Package prompts implements the in-memory prompt-template table the core
// consumes by key (spec §9 "Prompt externalization": the core owns a simple
// in-memory table built at startup; the external YAML loader that could
// populate it from a file is out of scope).
package prompts

import "strings"

// Key names a prompt template consumed by a specific call site.
type Key string

const (
	KeyDecompose     Key = "decompose"
	KeyDirectReason   Key = "direct_reason"
	KeyRoute          Key = "route"
	KeySynthesize     Key = "synthesize"
	KeyCapabilitySelf Key = "capability_self_description"
)

// Table is a process-wide, read-mostly map of templates built once at
// startup (spec §9 "Global state ... becomes process-wide services with
// explicit init at startup").
type Table struct {
	templates map[Key]string
}

// Default returns the built-in template set, used unless a deployment
// supplies its own via the out-of-scope YAML loader.
func Default() *Table {
	return &Table{templates: map[Key]string{
		KeyDecompose: "Question: {question}\n\nAvailable tools:\n{tool_inventory}\n\n" +
			"Respond with a JSON Plan object: {\"steps\":[{\"id\":int,\"description\":string," +
			"\"tool_type\":string,\"dependencies\":[int]}]}. Use tool_type \"none\" for steps " +
			"answerable directly from reasoning.",
		KeyDirectReason: "Step: {step_description}\n\nPrior results:\n{prior_results}\n\n" +
			"Answer the step directly using the prior results where relevant.",
		KeyRoute: "Classify this question for tool routing. Question: {question}\n" +
			"Known tools: {tool_names}\n\nRespond with JSON: {\"use_tools\":bool," +
			"\"capability_tags\":[string],\"attribute_tags\":{string:string}," +
			"\"adapt_carriers\":[string]}.",
		KeySynthesize: "Combine the following tool results into a single coherent answer:\n{results}",
		KeyCapabilitySelf: "I can reason directly or use the following tool capabilities: {capabilities}.",
	}}
}

// Set overwrites (or adds) the template for key. Used by deployments that
// load overrides from the external YAML file at startup.
func (t *Table) Set(key Key, template string) {
	t.templates[key] = template
}

// Render substitutes every {placeholder} in key's template with the
// corresponding value from args. Placeholders without a matching arg are
// left verbatim, matching the spec's "small, explicit argument set per key"
// rather than failing on unexpected keys.
func (t *Table) Render(key Key, args map[string]string) string {
	tmpl, ok := t.templates[key]
	if !ok {
		return ""
	}
	for k, v := range args {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}
