package toolhub

import (
	"fmt"
	"sort"
	"strings"
)

// rankCandidates orders candidates for a single request, per spec §4.6.2.
// When taskCtx is non-nil the full weighted score is used; otherwise
// candidates are ordered by last_success_index first, then by priority.
func rankCandidates(candidates []*Candidate, taskCtx *TaskContext, lastSuccess int) []*Candidate {
	if len(candidates) == 0 {
		return nil
	}
	ranked := append([]*Candidate(nil), candidates...)

	if taskCtx != nil {
		type scored struct {
			c     *Candidate
			score float64
			idx   int
		}
		scoredList := make([]scored, 0, len(ranked))
		for i, c := range ranked {
			fit := capabilityFit(c.Tool.Meta().Capabilities, taskCtx.CapabilityTags)
			if len(taskCtx.CapabilityTags) > 0 && fit == 0 {
				continue // capability_fit zero excludes the candidate
			}
			total := 0.5*fit + 0.25*costScore(c.Source) + 0.25*attributeMatch(c.Tool.Meta(), taskCtx)
			if i == lastSuccess {
				total++
			}
			scoredList = append(scoredList, scored{c: c, score: total, idx: i})
		}
		sort.SliceStable(scoredList, func(i, j int) bool {
			if scoredList[i].score != scoredList[j].score {
				return scoredList[i].score > scoredList[j].score
			}
			if pi, pj := scoredList[i].c.Source.Priority(), scoredList[j].c.Source.Priority(); pi != pj {
				return pi < pj
			}
			if scoredList[i].c.Source != scoredList[j].c.Source {
				return scoredList[i].c.Source < scoredList[j].c.Source
			}
			return scoredList[i].c.Name < scoredList[j].c.Name
		})
		out := make([]*Candidate, len(scoredList))
		for i, s := range scoredList {
			out[i] = s.c
		}
		return out
	}

	var preferred *Candidate
	if lastSuccess >= 0 && lastSuccess < len(ranked) {
		preferred = ranked[lastSuccess]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if preferred != nil && (ranked[i] == preferred) != (ranked[j] == preferred) {
			return ranked[i] == preferred
		}
		return ranked[i].Source.Priority() < ranked[j].Source.Priority()
	})
	return ranked
}

// capabilityFit is the Jaccard index of tool capabilities and task context
// capability tags (spec §4.6.2 capability_fit, weight 50%).
func capabilityFit(toolCaps, taskCaps []string) float64 {
	if len(taskCaps) == 0 {
		return 1 // no tags requested: every candidate fits equally
	}
	toolSet := toSet(toolCaps)
	taskSet := toSet(taskCaps)
	inter, union := 0, len(toolSet)
	for t := range taskSet {
		if _, ok := toolSet[t]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// costScore normalizes Source.cost() to [0,1] by dividing by 9, the local
// source's raw cost (spec §4.6.2 cost, weight 25%).
func costScore(s Source) float64 {
	return s.cost() / 9
}

// attributeMatch applies the +1-per-match rules of spec §4.6.2 attribute_match
// (weight 25%), normalized by the number of rules evaluated (3).
func attributeMatch(meta Meta, taskCtx *TaskContext) float64 {
	if taskCtx == nil || taskCtx.AttributeTags == nil {
		return 0
	}
	points := 0.0
	if taskCtx.AttributeTags["reliability"] == "high" && (meta.Reliability == "high" || meta.Reliability == "") {
		points++
	}
	if taskCtx.AttributeTags["timeliness"] == "high" && (meta.Timeliness == "high" || meta.Timeliness == "") {
		points++
	}
	if taskCtx.AttributeTags["cost_sensitivity"] == "high" && meta.CostSensitivity != "high" {
		points++
	}
	return points / 3
}

func toSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return out
}

// scoreResult implements the race-winner selection formula of spec §4.6.5:
// score = 0.5*length_score + 0.2*quality_score + 0.3*priority_score.
func scoreResult(res Result, source Source) float64 {
	text := fmt.Sprint(res.Result)
	return 0.5*lengthScore(len(text)) + 0.2*qualityScore(res.Result) + 0.3*priorityScore(source)
}

func lengthScore(n int) float64 {
	switch {
	case n < 10:
		return 0.3
	case n <= 500:
		return 0.3 + 0.7*float64(n-10)/float64(500-10)
	case n <= 2000:
		return 1.0 - 0.3*float64(n-500)/float64(2000-500)
	default:
		return 0.7
	}
}

func qualityScore(result any) float64 {
	m, ok := result.(map[string]any)
	if !ok {
		return 0
	}
	score := 0.2
	for _, key := range []string{"results", "data", "content", "items"} {
		if _, ok := m[key]; ok {
			score += 0.1
			break
		}
	}
	return score
}

func priorityScore(s Source) float64 {
	return 1 - float64(s.Priority())/3
}
