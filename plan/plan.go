// Package plan defines the core domain types threaded through the
// workflow pipeline: Step, Plan, StepResult, and WorkflowState (spec §3).
package plan

import "time"

// Step is a single unit of work produced by PlanningAgent. tool_type=="none"
// signals direct LLM reasoning; any other value names a tool or capability.
// Immutable once placed in a Plan (spec §3).
type Step struct {
	ID            int    `json:"id"`
	Description   string `json:"description"`
	ToolType      string `json:"tool_type"`
	Dependencies  []int  `json:"dependencies"`
	Complexity    int    `json:"complexity,omitempty"`
	EstimatedTime int    `json:"estimated_time,omitempty"`
}

// IsDirectReasoning reports whether the step bypasses ToolHub entirely.
func (s Step) IsDirectReasoning() bool { return s.ToolType == "none" }

// Plan is an ordered set of Steps produced by decompose (spec §3, §4.3).
type Plan struct {
	Steps         []Step   `json:"steps"`
	ParallelGroups [][]int `json:"parallel_groups,omitempty"`
}

// SingleStepFallback builds the single-step direct-reasoning plan used
// whenever planning fails or yields zero steps (spec §4.2 planning_node,
// §4.3 decompose fallback).
func SingleStepFallback(question string) Plan {
	return Plan{Steps: []Step{{ID: 1, ToolType: "none", Description: question}}}
}

// Validate checks the structural invariants spec §4.3 requires: unique step
// IDs and acyclic dependencies. It does not check tool_type validity — that
// depends on the live tool inventory and is handled by the caller.
func (p Plan) Validate() error {
	seen := make(map[int]bool, len(p.Steps))
	for _, s := range p.Steps {
		if seen[s.ID] {
			return &ValidationError{Reason: "duplicate step id", StepID: s.ID}
		}
		seen[s.ID] = true
	}
	if cyclePath := findCycle(p.Steps); cyclePath != nil {
		return &ValidationError{Reason: "cyclic dependency", StepID: cyclePath[0]}
	}
	return nil
}

// ValidationError describes why a Plan failed Validate.
type ValidationError struct {
	Reason string
	StepID int
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// findCycle performs a depth-first search over step dependencies and returns
// the first cycle found, or nil if the graph is acyclic.
func findCycle(steps []Step) []int {
	byID := make(map[int]Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int, len(steps))
	var path []int
	var visit func(id int) []int
	visit = func(id int) []int {
		color[id] = gray
		path = append(path, id)
		for _, dep := range byID[id].Dependencies {
			if _, ok := byID[dep]; !ok {
				continue // dangling dependency, not a cycle
			}
			switch color[dep] {
			case gray:
				return append(append([]int(nil), path...), dep)
			case white:
				if cyc := visit(dep); cyc != nil {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}
	for _, s := range steps {
		if color[s.ID] == white {
			if cyc := visit(s.ID); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// StepResult is the outcome of executing a single Step (spec §3, §4.4).
type StepResult struct {
	StepID     int            `json:"step_id"`
	Success    bool           `json:"success"`
	Output     string         `json:"output"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Status is the WorkflowEngine's current stage in its planning -> execution
// -> verification -> synthesis state machine (spec §4.2).
type Status string

const (
	StatusPlanning     Status = "planning"
	StatusExecuting    Status = "executing"
	StatusVerifying    Status = "verifying"
	StatusSynthesizing Status = "synthesizing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"
)

// WorkflowState is the mutable state threaded through the engine's loop
// (spec §4.2).
type WorkflowState struct {
	Question    string
	Status      Status
	Plan        Plan
	Results     []StepResult
	Findings    []string
	Confidence  float64
	Answer      string
	Success     bool
	StartedAt   time.Time
}
