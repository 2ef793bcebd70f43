package toolhub

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
)

const (
	defaultToolTimeout = 10 * time.Second
	synthesisTimeout   = 10 * time.Second
	raceBatchSize      = 3
	simpleMergeCharCap = 2000
	simpleMergeCount   = 3
)

// Strategy selects how multiple candidates for the same request are
// combined (spec §4.6.3).
type Strategy string

const (
	StrategyPickBest   Strategy = "pick_best"
	StrategySynthesize Strategy = "synthesize"
)

var pickBestCapabilities = map[string]struct{}{
	"calculate": {},
	"time":      {},
}

// ToolHub dispatches tool invocations across registered candidates (spec
// §4.6).
type ToolHub struct {
	reg         *Registry
	toolTimeout time.Duration
	llmClient   llm.Client
	log         telemetry.Logger
	limiters    *limiterSet
}

// Option configures a ToolHub.
type Option func(*ToolHub)

// WithToolTimeout overrides the default per-candidate invocation timeout
// (spec §6 tools.timeout, default 10s).
func WithToolTimeout(d time.Duration) Option {
	return func(h *ToolHub) {
		if d > 0 {
			h.toolTimeout = d
		}
	}
}

// WithSynthesisLLM configures the LLM collaborator used to synthesize
// multiple successful candidate results into one (spec §4.6.3 Synthesis).
// Without it, ToolHub always falls back to simple merge.
func WithSynthesisLLM(c llm.Client) Option {
	return func(h *ToolHub) { h.llmClient = c }
}

// WithLogger sets the logger used for diagnostic events.
func WithLogger(l telemetry.Logger) Option {
	return func(h *ToolHub) { h.log = l }
}

// WithRateLimit caps total ToolHub throughput at rps requests/sec (burst
// tokens), plus an identical per-candidate limit so one flaky candidate
// cannot exhaust the shared budget. Disabled (no limiting) when rps<=0, the
// default.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *ToolHub) { h.limiters = newLimiterSet(rps, burst) }
}

// New constructs a ToolHub over reg.
func New(reg *Registry, opts ...Option) *ToolHub {
	h := &ToolHub{reg: reg, toolTimeout: defaultToolTimeout, log: telemetry.NewNoopLogger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute dispatches a request for name (spec §4.6.3).
func (h *ToolHub) Execute(ctx context.Context, name, input string, taskCtx *TaskContext) Result {
	candidates := h.reg.CandidatesByName(name)
	return h.dispatch(ctx, name, name, input, taskCtx, candidates)
}

// ExecuteByCapability dispatches a request for capability (spec §4.6.4).
// When the capability is unknown, it returns a no_match error carrying up
// to three suggested capabilities ranked by edit distance.
func (h *ToolHub) ExecuteByCapability(ctx context.Context, capability, input string, taskCtx *TaskContext) Result {
	candidates := h.reg.CandidatesByCapability(capability)
	if len(candidates) == 0 {
		return Result{
			Success: false,
			Error:   "no_match",
			Meta:    map[string]any{"suggestions": suggestCapabilities(capability, h.reg.KnownCapabilities(), 3)},
		}
	}
	return h.dispatch(ctx, capability, capability, input, taskCtx, candidates)
}

func (h *ToolHub) dispatch(ctx context.Context, key, strategyKey, input string, taskCtx *TaskContext, candidates []*Candidate) Result {
	if len(candidates) == 0 {
		return Result{
			Success: false,
			Error:   errs.New(errs.KindToolInvalidInput, "no candidate registered for "+key).Error(),
			Meta:    map[string]any{"error_kind": string(errs.KindToolInvalidInput)},
		}
	}

	ranked := rankCandidates(candidates, taskCtx, h.reg.lastSuccessIndex(key))
	if len(ranked) == 0 {
		return Result{
			Success: false,
			Error:   errs.New(errs.KindCapabilityMiss, "no candidate satisfies requested capabilities for "+key).Error(),
			Meta:    map[string]any{"error_kind": string(errs.KindCapabilityMiss)},
		}
	}
	if len(ranked) == 1 {
		return h.invokeAndRecord(ctx, key, input, ranked, 0)
	}

	if h.strategyFor(strategyKey, len(ranked)) == StrategyPickBest {
		return h.race(ctx, key, input, ranked)
	}
	return h.synthesize(ctx, ranked, input)
}

// strategyFor implements the strategy decision of spec §4.6.3.
func (h *ToolHub) strategyFor(key string, count int) Strategy {
	lower := strings.ToLower(key)
	if _, ok := pickBestCapabilities[lower]; ok {
		return StrategyPickBest
	}
	if count > 3 {
		return StrategyPickBest
	}
	return StrategySynthesize
}

func (h *ToolHub) invokeAndRecord(ctx context.Context, key, input string, ranked []*Candidate, index int) Result {
	res := h.invokeWithTimeout(ctx, ranked[index].Tool, input, h.toolTimeout)
	if res.Success {
		h.reg.recordSuccess(key, index)
	}
	return res
}

// race implements pick_best (spec §4.6.3): batches of up to 3 concurrent
// invocations, first success wins and cancels the rest; on an all-failed
// batch, try the next batch sequentially.
func (h *ToolHub) race(ctx context.Context, key, input string, ranked []*Candidate) Result {
	for start := 0; start < len(ranked); start += raceBatchSize {
		end := start + raceBatchSize
		if end > len(ranked) {
			end = len(ranked)
		}
		batch := ranked[start:end]

		raceCtx, cancel := context.WithCancel(ctx)
		type outcome struct {
			idx int
			res Result
		}
		resultCh := make(chan outcome, len(batch))
		var wg sync.WaitGroup
		for i, c := range batch {
			wg.Add(1)
			go func(i int, c *Candidate) {
				defer wg.Done()
				resultCh <- outcome{idx: i, res: h.invokeWithTimeout(raceCtx, c.Tool, input, h.toolTimeout)}
			}(i, c)
		}
		go func() {
			wg.Wait()
			close(resultCh)
		}()

		var successes []outcome
		for o := range resultCh {
			if o.res.Success {
				successes = append(successes, o)
				if len(successes) == 1 {
					cancel() // winner-take-all: stop the rest of this batch immediately
				}
			}
		}
		cancel()

		if len(successes) > 0 {
			sort.SliceStable(successes, func(i, j int) bool {
				return scoreResult(successes[i].res, batch[successes[i].idx].Source) >
					scoreResult(successes[j].res, batch[successes[j].idx].Source)
			})
			winner := successes[0]
			h.reg.recordSuccess(key, start+winner.idx)
			return winner.res
		}
	}
	return Result{Success: false, Error: errs.New(errs.KindToolExecution, "all candidates failed for "+key).Error()}
}

// synthOutcome pairs a candidate with the result it produced, used by the
// Synthesis strategy (spec §4.6.3).
type synthOutcome struct {
	c   *Candidate
	res Result
}

// synthesize implements the Synthesis strategy of spec §4.6.3.
func (h *ToolHub) synthesize(ctx context.Context, ranked []*Candidate, input string) Result {
	ctx, cancel := context.WithTimeout(ctx, h.toolTimeout)
	defer cancel()

	outcomes := make([]synthOutcome, len(ranked))
	var wg sync.WaitGroup
	for i, c := range ranked {
		wg.Add(1)
		go func(i int, c *Candidate) {
			defer wg.Done()
			outcomes[i] = synthOutcome{c: c, res: h.invokeWithTimeout(ctx, c.Tool, input, h.toolTimeout)}
		}(i, c)
	}
	wg.Wait()

	var successes []synthOutcome
	for _, o := range outcomes {
		if o.res.Success {
			successes = append(successes, o)
		}
	}
	if len(successes) == 0 {
		return Result{Success: false, Error: errs.New(errs.KindToolExecution, "all candidates failed during synthesis").Error()}
	}
	if len(successes) == 1 {
		return successes[0].res
	}

	totalLen := 0
	for _, o := range successes {
		totalLen += len(toText(o.res.Result))
	}
	if totalLen > simpleMergeCharCap || len(successes) > simpleMergeCount || h.llmClient == nil {
		return simpleMerge(successes)
	}

	prompt := buildSynthesisPrompt(successes)
	genCtx, genCancel := context.WithTimeout(ctx, synthesisTimeout)
	defer genCancel()
	text, err := h.llmClient.Generate(genCtx, prompt, llm.DefaultOptions())
	if err != nil {
		h.log.Warn(ctx, "synthesis llm call failed, falling back to simple merge", "error", err)
		return simpleMerge(successes)
	}
	return Result{Success: true, Result: text, Meta: synthesisMeta(successes)}
}

func simpleMerge(successes []synthOutcome) Result {
	var b strings.Builder
	for i, o := range successes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[")
		b.WriteString(o.c.Name)
		b.WriteString("] ")
		b.WriteString(truncate(toText(o.res.Result), 300))
	}
	return Result{Success: true, Result: b.String(), Meta: synthesisMeta(successes)}
}

// synthesisMeta builds the Result.meta a synthesized answer carries (spec
// §3 ToolResult.meta: source, synthesized, sources).
func synthesisMeta(successes []synthOutcome) map[string]any {
	sources := make([]string, len(successes))
	for i, o := range successes {
		sources[i] = o.c.Name
	}
	return map[string]any{
		"source":      "synthesis",
		"synthesized": true,
		"sources":     sources,
	}
}

func buildSynthesisPrompt(successes []synthOutcome) string {
	var b strings.Builder
	b.WriteString("Combine the following tool results into a single coherent answer:\n")
	for _, o := range successes {
		budget := sourceBudget(o.c.Name)
		b.WriteString("\n- ")
		b.WriteString(o.c.Name)
		b.WriteString(": ")
		b.WriteString(truncate(toText(o.res.Result), budget))
	}
	return b.String()
}

func sourceBudget(name string) int {
	switch strings.ToLower(name) {
	case "calculator", "calculate":
		return 100
	case "search", "websearch":
		return 300
	case "extract":
		return 300
	default:
		return 250
	}
}

// invokeWithTimeout runs tool.Execute with a bounded timeout. On timeout the
// candidate's context is cancelled and the goroutine is drained to
// completion (its result discarded) before returning, so the underlying
// call never outlives this function (spec §4.6.3 "explicitly cancelled and
// awaited to completion").
func (h *ToolHub) invokeWithTimeout(ctx context.Context, tool Tool, input string, timeout time.Duration) Result {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := h.limiters.wait(callCtx, toolCandidateKey(tool)); err != nil {
		return attachRetryHint(Result{Success: false, Error: errs.New(errs.KindToolTimeout, "rate limit wait cancelled").Error()}, errs.KindToolTimeout, tool.Meta().ExampleInput)
	}

	done := make(chan Result, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := tool.Execute(callCtx, input)
		if err != nil {
			res = Result{Success: false, Error: err.Error()}
		}
		errCh <- err
		done <- res
	}()

	select {
	case res := <-done:
		if !res.Success {
			res = attachRetryHint(res, errs.KindOf(<-errCh), tool.Meta().ExampleInput)
		}
		return res
	case <-callCtx.Done():
		cancel()
		<-done // drain the goroutine so it never leaks
		<-errCh
		return attachRetryHint(Result{Success: false, Error: errs.New(errs.KindToolTimeout, "tool invocation timed out").Error()}, errs.KindToolTimeout, tool.Meta().ExampleInput)
	}
}

// toolCandidateKey identifies a candidate for per-candidate rate limiting by
// its underlying pointer identity, stable across calls for the same
// registered Tool value.
func toolCandidateKey(tool Tool) string {
	return fmt.Sprintf("%p", tool)
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if idx := strings.LastIndexAny(s[:n], ".!?"); idx > 0 {
		return s[:idx+1]
	}
	return s[:n]
}
