package orchestrator

import (
	"strings"

	"github.com/zolawuzhigang/Research-Agent/prompts"
)

const greetingAnswer = "Hello! I'm a research agent. Ask me a question and I'll reason " +
	"through it directly or use tools like search, calculation, the clock, or conversation " +
	"history to answer it."

const maxGreetingLen = 16

// greetings is the fixed vocabulary spec §4.1 step 1 checks whole-word
// against a short question.
var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hola": {}, "howdy": {},
	"greetings": {}, "yo": {}, "sup": {}, "你好": {}, "嗨": {},
}

var capabilityKeywords = []string{
	"what can you do", "what tools", "your capabilities", "capabilities",
	"what are you able to do", "help me understand what you do",
}

// historyMetaKeywords triggers the fast-path "previous answer" query
// (spec §4.1 step 1); distinct from cacheBypassKeywords, which is broader.
var historyMetaKeywords = []string{
	"previous", "what did i ask", "what did i just ask", "上一个问题", "之前问的",
}

// cacheBypassKeywords marks a question as cache-ineligible even on a hit
// (spec §4.1 step 3).
var cacheBypassKeywords = []string{
	"now", "today", "time", "just", "previous",
	"刚刚", "之前", "现在", "今天",
}

func isGreeting(q string) bool {
	trimmed := strings.TrimSpace(q)
	if len(trimmed) > maxGreetingLen {
		return false
	}
	normalized := strings.ToLower(strings.Trim(trimmed, "!.?~ "))
	for _, word := range strings.Fields(normalized) {
		if _, ok := greetings[word]; ok {
			return true
		}
	}
	_, ok := greetings[normalized]
	return ok
}

func matchesAny(q string, keywords []string) bool {
	lower := strings.ToLower(q)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func isCapabilityQuery(q string) bool {
	return matchesAny(q, capabilityKeywords)
}

func isHistoryMetaQuery(q string) bool {
	return matchesAny(q, historyMetaKeywords)
}

func isCacheEligible(q string) bool {
	return !matchesAny(q, cacheBypassKeywords)
}

// fastPath implements spec §4.1 step 1: greetings, capability self-
// description, and history meta-queries short-circuit before Memory's
// snapshot/append dance and the cache are touched at all.
func (o *Orchestrator) fastPath(question string) (Response, bool) {
	switch {
	case isGreeting(question):
		return Response{Success: true, Answer: greetingAnswer, Confidence: 1}, true
	case isCapabilityQuery(question):
		return Response{Success: true, Answer: o.capabilitySummary(), Confidence: 1}, true
	case isHistoryMetaQuery(question):
		return Response{Success: true, Answer: o.lastUserAnswer(), Confidence: 1}, true
	default:
		return Response{}, false
	}
}

func (o *Orchestrator) capabilitySummary() string {
	caps := o.reg.KnownCapabilities()
	if len(caps) == 0 {
		return o.table.Render(prompts.KeyCapabilitySelf, map[string]string{"capabilities": "direct reasoning only"})
	}
	return o.table.Render(prompts.KeyCapabilitySelf, map[string]string{"capabilities": strings.Join(caps, ", ")})
}

// lastUserAnswer reads Memory without a snapshot, since no task is yet in
// flight for this request (spec §4.1 step 1).
func (o *Orchestrator) lastUserAnswer() string {
	entry, ok := o.mem.LastUser(false)
	if !ok {
		return "You haven't asked anything yet."
	}
	return entry.Content
}
