package plan

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPlanValidateProperty checks the well-formedness invariants spec §4.3
// requires: unique step IDs validate, and a plan built with a duplicate ID
// never does, regardless of how many distinct steps surround it.
func TestPlanValidateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("distinct sequential step IDs always validate", prop.ForAll(
		func(n int) bool {
			steps := make([]Step, n)
			for i := 0; i < n; i++ {
				steps[i] = Step{ID: i + 1, ToolType: "none"}
			}
			return Plan{Steps: steps}.Validate() == nil
		},
		gen.IntRange(0, 50),
	))

	properties.Property("a duplicated ID never validates", prop.ForAll(
		func(n int) bool {
			steps := make([]Step, 0, n+1)
			for i := 0; i < n; i++ {
				steps = append(steps, Step{ID: i + 1, ToolType: "none"})
			}
			steps = append(steps, Step{ID: 1, ToolType: "none"})
			return Plan{Steps: steps}.Validate() != nil
		},
		gen.IntRange(1, 50),
	))

	properties.Property("a self-dependency is a cycle", prop.ForAll(
		func(id int) bool {
			p := Plan{Steps: []Step{{ID: id, ToolType: "none", Dependencies: []int{id}}}}
			return p.Validate() != nil
		},
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t)
}

// TestSingleStepFallbackProperty checks SingleStepFallback always produces a
// valid, single-step direct-reasoning plan for any question text.
func TestSingleStepFallbackProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("fallback plan is always valid and direct-reasoning", prop.ForAll(
		func(question string) bool {
			p := SingleStepFallback(question)
			if p.Validate() != nil {
				return false
			}
			return len(p.Steps) == 1 && p.Steps[0].IsDirectReasoning()
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
