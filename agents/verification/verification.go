// Package verification implements VerificationAgent.verify (spec §4.5):
// consistency and logic checks that produce a confidence score and findings,
// never gating step progress (spec §9 open question: verification records
// findings but does not gate).
package verification

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/zolawuzhigang/Research-Agent/plan"
)

const (
	consistencyDuplicateThreshold = 0.9
	consistencyDriftThreshold     = 0.05
	absurdMagnitude               = 1e15
	baseConfidence                = 0.7
	bonusPerCheck                 = 0.1
)

// Report is the outcome of verify: a confidence score plus any findings
// recorded along the way. Verified is true whenever both checks pass.
type Report struct {
	Verified   bool
	Confidence float64
	Issues     []string
}

// Verify checks result against prior successful results (spec §4.5).
// expectsRefinement marks a step that is meant to refine a specific prior
// result, enabling the drift/duplicate consistency check.
func Verify(result plan.StepResult, prior []plan.StepResult, expectsRefinement bool) Report {
	var issues []string
	consistencyOK := true
	if expectsRefinement {
		consistencyOK = checkConsistency(result, prior, &issues)
	}
	logicOK := checkLogic(result, &issues)

	confidence := baseConfidence
	if expectsRefinement && consistencyOK {
		confidence += bonusPerCheck
	}
	if logicOK {
		confidence += bonusPerCheck
	}
	if sourceCount(result) >= 2 {
		confidence += bonusPerCheck
	}
	if confidence > 1 {
		confidence = 1
	}

	return Report{
		Verified:   consistencyOK && logicOK,
		Confidence: confidence,
		Issues:     issues,
	}
}

func checkConsistency(result plan.StepResult, prior []plan.StepResult, issues *[]string) bool {
	ok := true
	for _, p := range prior {
		if !p.Success {
			continue
		}
		sim := jaccard(result.Output, p.Output)
		if sim > consistencyDuplicateThreshold {
			*issues = append(*issues, "suspected duplicate of a prior result")
			ok = false
		} else if sim < consistencyDriftThreshold {
			*issues = append(*issues, "suspected drift from the result it was meant to refine")
			ok = false
		}
	}
	return ok
}

var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

func checkLogic(result plan.StepResult, issues *[]string) bool {
	text := strings.TrimSpace(result.Output)
	if text == "" {
		*issues = append(*issues, "empty result")
		return false
	}
	if numberPattern.MatchString(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil && math.Abs(v) > absurdMagnitude {
			*issues = append(*issues, "numeric result has implausible magnitude")
			return false
		}
		return true
	}
	if looksLikeTimestamp(result) {
		if _, err := dateparse.ParseAny(text); err != nil {
			*issues = append(*issues, "result looks like a timestamp but has no recognizable date pattern")
			return false
		}
	}
	return true
}

// looksLikeTimestamp is a cheap heuristic: a result carries ToolType "clock"
// via its meta, or its text contains digits alongside date-ish separators.
func looksLikeTimestamp(result plan.StepResult) bool {
	if tt, ok := result.Meta["tool_type"].(string); ok && strings.EqualFold(tt, "clock") {
		return true
	}
	return strings.ContainsAny(result.Output, "-/:") && strings.ContainsAny(result.Output, "0123456789")
}

func sourceCount(result plan.StepResult) int {
	if result.Meta == nil {
		return 0
	}
	sources, ok := result.Meta["sources"].([]string)
	if !ok {
		return 0
	}
	return len(sources)
}

// jaccard computes token-set similarity between two strings, used for the
// consistency check (spec §4.5).
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
