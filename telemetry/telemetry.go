// Package telemetry defines the narrow logging, metrics, and tracing
// interfaces shared across the research agent core. Every component accepts
// these interfaces through constructor options so that tests and callers that
// do not care about observability can pass no-op implementations at zero
// cost.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging used throughout the core. The interface
// is intentionally small so tests can provide lightweight stubs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter, timer, and gauge helpers for runtime
// instrumentation. Error kinds and phase names are recorded as tags so a
// single counter name (e.g. "errors_total") can be sliced downstream.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so runtime code can remain agnostic of the
// underlying OpenTelemetry provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// Bundle groups the three observability collaborators together so
// constructors that need all of them can take a single argument instead of
// three positional options.
type Bundle struct {
	Logger Logger
	Metric Metrics
	Tracer Tracer
}

// NoopBundle returns a Bundle of no-op implementations.
func NoopBundle() Bundle {
	return Bundle{Logger: NewNoopLogger(), Metric: NewNoopMetrics(), Tracer: NewNoopTracer()}
}

// Fill replaces any nil field of b with the corresponding no-op
// implementation. It returns the (possibly modified) bundle for convenient
// chaining in constructors.
func (b Bundle) Fill() Bundle {
	if b.Logger == nil {
		b.Logger = NewNoopLogger()
	}
	if b.Metric == nil {
		b.Metric = NewNoopMetrics()
	}
	if b.Tracer == nil {
		b.Tracer = NewNoopTracer()
	}
	return b
}
