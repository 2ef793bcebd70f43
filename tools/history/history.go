// Package history implements the built-in conversation-history tool (spec
// §4.4 step 2.a: "for history, classify the query into last | last_user |
// all | <N> by keyword match").
package history

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/memory"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

var numberPattern = regexp.MustCompile(`\d+`)

// Query is the classified request shape a history tool invocation carries.
type Query string

const (
	QueryLast     Query = "last"
	QueryLastUser Query = "last_user"
	QueryAll      Query = "all"
	QueryN        Query = "n"
)

// Classify maps a free-text instruction to a Query plus, for QueryN, the
// requested count.
func Classify(input string) (Query, int) {
	lower := strings.ToLower(input)
	if m := numberPattern.FindString(lower); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return QueryN, n
		}
	}
	switch {
	case strings.Contains(lower, "all") || strings.Contains(lower, "everything"):
		return QueryAll, 0
	case strings.Contains(lower, "user") || strings.Contains(lower, "ask") || strings.Contains(lower, "previous") || strings.Contains(lower, "just"):
		return QueryLastUser, 0
	default:
		return QueryLast, 0
	}
}

// Tool reads from a Memory's current view (snapshot, when active, per the
// spec's history-query invariant) without ever writing to it.
type Tool struct {
	mem *memory.Memory
}

// New constructs a history tool bound to mem.
func New(mem *memory.Memory) *Tool {
	return &Tool{mem: mem}
}

func (t *Tool) Meta() toolhub.Meta {
	return toolhub.Meta{
		Capabilities: []string{"history"},
		Description:  "recalls prior turns of the conversation",
		Reliability:  "high",
		Timeliness:   "high",
	}
}

func (t *Tool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	select {
	case <-ctx.Done():
		return toolhub.Result{}, ctx.Err()
	default:
	}

	query, n := Classify(input)
	switch query {
	case QueryLastUser:
		entry, ok := t.mem.LastUser(true)
		if !ok {
			return toolhub.Result{Success: true, Result: "no prior question found"}, nil
		}
		return toolhub.Result{Success: true, Result: entry.Content}, nil
	case QueryAll:
		return toolhub.Result{Success: true, Result: formatEntries(t.mem.All(true))}, nil
	case QueryN:
		return toolhub.Result{Success: true, Result: formatEntries(t.mem.Recent(n, true))}, nil
	default: // QueryLast
		entries := t.mem.Recent(1, true)
		if len(entries) == 0 {
			return toolhub.Result{Success: true, Result: "no prior turns found"}, nil
		}
		return toolhub.Result{Success: true, Result: entries[0].Content}, nil
	}
}

func formatEntries(entries []memory.Entry) string {
	if len(entries) == 0 {
		return "no prior turns found"
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(e.Role))
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}
