package toolhub

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// limiterSet hands out a per-candidate token-bucket limiter, created lazily
// on first use and reused for the lifetime of the ToolHub. Grounded on the
// teacher's per-client rate shaping in front of outbound provider calls,
// generalized from one limiter per LLM provider to one per tool candidate,
// keyed by the registered Tool value's pointer identity (toolCandidateKey),
// so a single flaky MCP candidate cannot starve its siblings' invocation
// budget.
type limiterSet struct {
	mu       sync.Mutex
	perKey   map[string]*rate.Limiter
	request  *rate.Limiter
	rateRPS  float64
	burst    int
}

// newLimiterSet builds a limiter set in which each candidate gets its own
// limiter at rps requests/sec and the given burst, plus one request-level
// limiter at the same rate guarding total ToolHub throughput. A zero rps disables limiting (Wait is then a
// no-op).
func newLimiterSet(rps float64, burst int) *limiterSet {
	ls := &limiterSet{perKey: make(map[string]*rate.Limiter), rateRPS: rps, burst: burst}
	if rps > 0 {
		ls.request = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return ls
}

func (ls *limiterSet) forCandidate(key string) *rate.Limiter {
	if ls.rateRPS <= 0 {
		return nil
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	l, ok := ls.perKey[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(ls.rateRPS), ls.burst)
		ls.perKey[key] = l
	}
	return l
}

// wait blocks until both the request-level and the candidate-level limiter
// (if any) admit one call, or ctx is cancelled.
func (ls *limiterSet) wait(ctx context.Context, candidateKey string) error {
	if ls == nil || ls.rateRPS <= 0 {
		return nil
	}
	if err := ls.request.Wait(ctx); err != nil {
		return err
	}
	if l := ls.forCandidate(candidateKey); l != nil {
		return l.Wait(ctx)
	}
	return nil
}
