package toolhub

import (
	"sort"
	"strings"
	"sync"
)

// Registry holds the two immutable-after-startup indices of registered
// candidates plus the single mutable piece of state the spec allows:
// last_success_index per name/capability key (spec §4.6.1, §4.6.6).
//
// Grounded on runtime/registry.Manager's registries map guarded by a single
// RWMutex, generalized from registry-client entries to in-process tool
// candidates.
type Registry struct {
	byName       map[string][]*Candidate
	byCapability map[string][]*Candidate

	successMu   sync.Mutex
	lastSuccess map[string]int
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:       make(map[string][]*Candidate),
		byCapability: make(map[string][]*Candidate),
		lastSuccess:  make(map[string]int),
	}
}

// Register appends candidate to the name index and to every capability
// index derived from its Meta (explicit capabilities plus keyword
// extraction on the description, spec §4.6.1).
func (r *Registry) Register(name string, source Source, tool Tool) {
	c := &Candidate{Name: name, Source: source, Tool: tool}
	r.byName[name] = append(r.byName[name], c)

	for _, cap := range capabilitiesOf(tool.Meta()) {
		r.byCapability[cap] = append(r.byCapability[cap], c)
	}
}

// capabilitiesOf returns the declared capabilities plus any capability
// keyword found in the tool's description, deduplicated.
func capabilitiesOf(meta Meta) []string {
	seen := make(map[string]struct{}, len(meta.Capabilities))
	out := make([]string, 0, len(meta.Capabilities))
	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range meta.Capabilities {
		add(c)
	}
	desc := strings.ToLower(meta.Description)
	for keyword, cap := range descriptionCapabilityKeywords {
		if strings.Contains(desc, keyword) {
			add(cap)
		}
	}
	return out
}

// descriptionCapabilityKeywords maps description substrings to the
// capability they imply, used to enrich the explicit capability list
// registrations carry (spec §4.6.1 "plus keyword extraction on description").
var descriptionCapabilityKeywords = map[string]string{
	"search":  "search",
	"find":    "search",
	"compute": "calculate",
	"calcul":  "calculate",
	"time":    "time",
	"date":    "time",
	"clock":   "time",
	"history": "history",
}

// CandidatesByName returns a copy of the candidate slice registered under
// name, or nil if none.
func (r *Registry) CandidatesByName(name string) []*Candidate {
	return append([]*Candidate(nil), r.byName[name]...)
}

// CandidatesByCapability returns a copy of the candidate slice registered
// under capability, or nil if none.
func (r *Registry) CandidatesByCapability(capability string) []*Candidate {
	return append([]*Candidate(nil), r.byCapability[capability]...)
}

// KnownCapabilities returns every capability with at least one registered
// candidate, used by the capability-miss suggestion feature.
func (r *Registry) KnownCapabilities() []string {
	out := make([]string, 0, len(r.byCapability))
	for cap := range r.byCapability {
		out = append(out, cap)
	}
	return out
}

// NameDescription pairs a registered tool name with its first candidate's
// declared description, used by the Orchestrator to build PlanningAgent's
// tool inventory (spec §4.3) without exposing Candidate/Tool directly.
type NameDescription struct {
	Name        string
	Description string
}

// Descriptors returns one NameDescription per registered name, sorted for
// deterministic prompt construction.
func (r *Registry) Descriptors() []NameDescription {
	out := make([]NameDescription, 0, len(r.byName))
	for name, cands := range r.byName {
		if len(cands) == 0 {
			continue
		}
		out = append(out, NameDescription{Name: name, Description: cands[0].Tool.Meta().Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// recordSuccess marks candidate as the most recently successful one for
// key (a name or capability). The mutex is held only across this O(1)
// write, never across tool invocation (spec §4.6.6).
func (r *Registry) recordSuccess(key string, index int) {
	r.successMu.Lock()
	r.lastSuccess[key] = index
	r.successMu.Unlock()
}

// lastSuccessIndex returns the last successful candidate index for key, or
// -1 if none is recorded.
func (r *Registry) lastSuccessIndex(key string) int {
	r.successMu.Lock()
	defer r.successMu.Unlock()
	if idx, ok := r.lastSuccess[key]; ok {
		return idx
	}
	return -1
}
