// Package otel adapts an OpenTelemetry TracerProvider to the telemetry.Tracer
// interface used throughout the research agent core.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/zolawuzhigang/Research-Agent/telemetry"
)

// Tracer wraps an otel TracerProvider-derived trace.Tracer.
type Tracer struct {
	tracer oteltrace.Tracer
}

// New returns a telemetry.Tracer backed by the given OpenTelemetry
// TracerProvider and instrumentation name.
func New(provider oteltrace.TracerProvider, name string) *Tracer {
	if provider == nil {
		provider = oteltrace.NewNoopTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(name)}
}

// Start begins a new span and returns the updated context and a
// telemetry.Span wrapping the underlying otel span.
func (t *Tracer) Start(ctx context.Context, name string, opts ...oteltrace.SpanStartOption) (context.Context, telemetry.Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, &spanAdapter{span: span}
}

type spanAdapter struct {
	span oteltrace.Span
}

func (s *spanAdapter) End(opts ...oteltrace.SpanEndOption) { s.span.End(opts...) }

func (s *spanAdapter) AddEvent(name string, attrs ...any) {
	s.span.AddEvent(name, oteltrace.WithAttributes(keyvalsToAttributes(attrs)...))
}

func (s *spanAdapter) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s *spanAdapter) RecordError(err error, opts ...oteltrace.EventOption) {
	s.span.RecordError(err, opts...)
}
