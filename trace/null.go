package trace

import (
	"context"
	"time"
)

// Null is a zero-cost Context used when observability is disabled
// (spec §4.9: "same interface, zero-cost no-ops").
type Null struct{}

// NewNull constructs a Null trace context.
func NewNull() Context { return Null{} }

func (Null) OnPlanningStart(context.Context, string)                               {}
func (Null) OnPlanningEnd(context.Context, time.Duration, bool, string)            {}
func (Null) OnStepStart(context.Context, int, string, string)                      {}
func (Null) OnStepEnd(context.Context, int, time.Duration, bool, string)           {}
func (Null) OnToolCallStart(context.Context, int, string, string)                  {}
func (Null) OnToolCallEnd(context.Context, int, string, time.Duration, bool, string) {}
func (Null) OnReasoningStart(context.Context, int, string)                         {}
func (Null) OnReasoningEnd(context.Context, int, time.Duration, bool, string)      {}
func (Null) OnVerification(context.Context, int, float64, string)                  {}
func (Null) OnEvidenceSynthesisStart(context.Context, string)                      {}
func (Null) OnEvidenceSynthesisEnd(context.Context, time.Duration, bool, string)   {}
func (Null) Events() []Event                                                       { return nil }
