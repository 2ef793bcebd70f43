// Package llm defines the text-completion collaborator the research agent
// core consumes (spec §6). The core treats the LLM as an external boundary:
// this package only defines the interface and a handful of concrete adapters
// (anthropic, openai, bedrock) built from the example corpus's SDKs; prompt
// construction and retry live in the callers (PlanningAgent, ExecutionAgent,
// ToolHub synthesis), not here.
package llm

import (
	"context"
	"time"

	"github.com/zolawuzhigang/Research-Agent/errs"
)

// Options configures a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultOptions returns conservative defaults suitable for planning and
// reasoning prompts.
func DefaultOptions() Options {
	return Options{Temperature: 0.2, MaxTokens: 1024, Timeout: 30 * time.Second}
}

// Client is the text-completion capability the core requires. Concrete
// adapters (anthropic, openai, bedrock sub-packages) each implement it over a
// real provider SDK; tests use an in-memory fake.
type Client interface {
	// Generate blocks until the provider responds, the context is cancelled,
	// or opts.Timeout elapses, whichever comes first.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Future is the result of an asynchronous generation, delivered once on Done.
type Future struct {
	Done <-chan struct{}
	text string
	err  error
}

// Result blocks until the future resolves (or ctx is cancelled) and returns
// the generated text or error.
func (f *Future) Result(ctx context.Context) (string, error) {
	select {
	case <-f.Done:
		return f.text, f.err
	case <-ctx.Done():
		return "", errs.Wrap(errs.KindLLMTimeout, ctx.Err(), "generation cancelled")
	}
}

// GenerateAsync starts Generate on a goroutine and returns a Future, matching
// the generateAsync(prompt, ...) -> future<string> collaborator contract in
// spec §6. The goroutine always terminates: it observes ctx cancellation the
// same way a synchronous call would, via the underlying client.
func GenerateAsync(ctx context.Context, c Client, prompt string, opts Options) *Future {
	done := make(chan struct{})
	f := &Future{Done: done}
	go func() {
		defer close(done)
		f.text, f.err = c.Generate(ctx, prompt, opts)
	}()
	return f
}

// WithTimeout applies opts.Timeout (if positive) to ctx, returning a derived
// context and its cancel function. Callers must call cancel.
func WithTimeout(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opts.Timeout)
}
