// Package orchestrator implements Orchestrator.process_task (spec §4.1):
// fast-path short-circuits, the Memory snapshot/append/cache dance, trace
// injection, optional task routing, and the WorkflowEngine run.
//
// Grounded on spec §4.1's numbered algorithm directly; the panic-to-
// structured-error boundary follows the corpus-wide rule (spec §7
// "the request never terminates with an unhandled exception") using the
// already-grounded errs taxonomy.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zolawuzhigang/Research-Agent/agents/planning"
	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/memory"
	"github.com/zolawuzhigang/Research-Agent/plan"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/router"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
	"github.com/zolawuzhigang/Research-Agent/trace"
	"github.com/zolawuzhigang/Research-Agent/workflow"
)

const fallbackAnswer = "Unable to produce an answer"

// Cache is the narrow request-level cache contract the Orchestrator needs;
// both cache.Cache and a context-aware wrapper around cache/rediscache.Cache
// satisfy it (spec §4.1 step 3).
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Response is process_task's return shape (spec §4.1 contract,
// §6 /predict/detailed).
type Response struct {
	Success    bool
	Answer     string
	Confidence float64
	Reasoning  []string
	Errors     []string
	Trace      []trace.Event
}

// Exporter persists a completed request's trace buffer for audit purposes,
// independently of whether it is echoed back in the Response. A nil
// Exporter on Config disables export entirely (trace/mongoexport.Exporter
// is the only concrete implementation).
type Exporter interface {
	Export(ctx context.Context, requestID, question string, success bool, events []trace.Event) error
}

// Config controls the behaviors spec §6 exposes as deployment options.
type Config struct {
	CacheEnabled           bool
	UseTaskRouter          bool
	ObservabilityEnabled   bool
	MaxEvents              int
	MaxPreview             int
	IncludeTraceInResponse bool
	TaskTimeout            time.Duration
	// Tracer, if set, wraps each ProcessTask call in a span.
	Tracer telemetry.Tracer
	// Exporter, if set, persists the request's trace buffer after it
	// completes (including the panic-recovery path).
	Exporter Exporter
}

// Orchestrator composes Memory, a request-level Cache, the Registry (for
// fast-path capability descriptions and the tool inventory), an optional
// TaskRouter, and the WorkflowEngine (spec §4.1).
type Orchestrator struct {
	mem      *memory.Memory
	cache    Cache
	reg      *toolhub.Registry
	taskRtr  *router.Router
	engine   *workflow.Engine
	llm      llm.Client
	table    *prompts.Table
	log      telemetry.Logger
	metrics  telemetry.Metrics
	cfg      Config
}

// New constructs an Orchestrator. taskRtr may be nil (no task routing).
func New(mem *memory.Memory, cache Cache, reg *toolhub.Registry, taskRtr *router.Router, engine *workflow.Engine, llmClient llm.Client, table *prompts.Table, log telemetry.Logger, metrics telemetry.Metrics, cfg Config) *Orchestrator {
	if table == nil {
		table = prompts.Default()
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Orchestrator{mem: mem, cache: cache, reg: reg, taskRtr: taskRtr, engine: engine, llm: llmClient, table: table, log: log, metrics: metrics, cfg: cfg}
}

// ProcessTask implements process_task (spec §4.1).
func (o *Orchestrator) ProcessTask(ctx context.Context, question string) (resp Response) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Response{Success: false, Answer: fallbackAnswer, Errors: []string{errs.New(errs.KindInput, "question must not be empty").Error()}}
	}

	if o.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.TaskTimeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	var span telemetry.Span
	if o.cfg.Tracer != nil {
		ctx, span = o.cfg.Tracer.Start(ctx, "orchestrator.process_task")
		defer span.End()
	}

	var tr trace.Context = trace.NewNull()

	defer func() {
		if r := recover(); r != nil {
			o.mem.ClearSnapshot()
			o.metrics.IncCounter("errors_total", 1, "kind", string(errs.KindInternal))
			resp = Response{Success: false, Answer: fallbackAnswer, Errors: []string{fmt.Sprintf("internal: %v", r)}}
			if span != nil {
				span.RecordError(fmt.Errorf("%v", r))
			}
		}
		o.export(ctx, requestID, question, resp.Success, tr.Events())
	}()

	if fp, ok := o.fastPath(question); ok {
		resp = fp
		return resp
	}

	o.mem.CreateSnapshot()
	o.mem.Append(memory.Entry{Role: memory.RoleUser, Content: question, Timestamp: time.Now()})
	defer o.mem.ClearSnapshot()

	fingerprint := strings.ToLower(strings.TrimSpace(question))
	cacheEligible := isCacheEligible(question)
	if o.cfg.CacheEnabled && cacheEligible && o.cache != nil {
		if cached, hit := o.cache.Get(fingerprint); hit {
			o.finalize(cached)
			resp = Response{Success: true, Answer: cached, Confidence: 1}
			return resp
		}
	}

	tr = o.buildTrace()

	var taskCtx *toolhub.TaskContext
	if o.cfg.UseTaskRouter && o.taskRtr != nil {
		classified := o.taskRtr.Route(ctx, question, o.toolNames())
		if !classified.UseTools {
			text, err := o.llm.Generate(ctx, question, llm.DefaultOptions())
			if err != nil {
				o.finalize(fallbackAnswer)
				resp = Response{Success: false, Answer: fallbackAnswer, Errors: []string{err.Error()}}
				return resp
			}
			o.finalize(text)
			if cacheEligible {
				o.setCache(fingerprint, text)
			}
			resp = Response{Success: true, Answer: text, Confidence: 1}
			return resp
		}
		taskCtx = &classified
	}

	state := o.engine.Run(ctx, question, o.toolDescriptors(), o.isKnownToolType, taskCtx, tr)

	o.finalize(state.Answer)
	if cacheEligible && state.Success {
		o.setCache(fingerprint, state.Answer)
	}

	resp = Response{
		Success:    state.Success,
		Answer:     state.Answer,
		Confidence: state.Confidence,
		Reasoning:  reasoningFor(state.Results),
		Errors:     errorsFor(state.Results),
	}
	if o.cfg.IncludeTraceInResponse {
		resp.Trace = tr.Events()
	}
	return resp
}

// export persists the completed request's trace buffer via the configured
// Exporter, if any. Failures are logged, never surfaced to the caller.
func (o *Orchestrator) export(ctx context.Context, requestID, question string, success bool, events []trace.Event) {
	if o.cfg.Exporter == nil {
		return
	}
	if err := o.cfg.Exporter.Export(ctx, requestID, question, success, events); err != nil {
		o.log.Warn(ctx, "trace export failed", "request_id", requestID, "error", err)
	}
}

func (o *Orchestrator) finalize(answer string) {
	o.mem.Append(memory.Entry{Role: memory.RoleAssistant, Content: answer, Timestamp: time.Now()})
}

func (o *Orchestrator) setCache(fingerprint, answer string) {
	if o.cache != nil {
		o.cache.Set(fingerprint, answer)
	}
}

func (o *Orchestrator) buildTrace() trace.Context {
	if !o.cfg.ObservabilityEnabled {
		return trace.NewNull()
	}
	return trace.New(o.cfg.MaxEvents, o.cfg.MaxPreview)
}

func (o *Orchestrator) toolNames() []string {
	names := make([]string, 0)
	for _, d := range o.reg.Descriptors() {
		names = append(names, d.Name)
	}
	return names
}

func (o *Orchestrator) toolDescriptors() []planning.ToolDescriptor {
	descs := o.reg.Descriptors()
	out := make([]planning.ToolDescriptor, 0, len(descs))
	for _, d := range descs {
		out = append(out, planning.ToolDescriptor{Name: d.Name, Description: d.Description})
	}
	return out
}

func (o *Orchestrator) isKnownToolType(toolType string) bool {
	if toolType == "none" {
		return true
	}
	if len(o.reg.CandidatesByName(toolType)) > 0 {
		return true
	}
	return len(o.reg.CandidatesByCapability(toolType)) > 0
}

func reasoningFor(results []plan.StepResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Output)
	}
	return out
}

func errorsFor(results []plan.StepResult) []string {
	var out []string
	for _, r := range results {
		if !r.Success && r.Error != "" {
			out = append(out, r.Error)
		}
	}
	return out
}
