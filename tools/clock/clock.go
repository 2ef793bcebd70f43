// Package clock implements the built-in time/date tool (spec §4.4 step
// 2.a: "for clock, pass the description verbatim").
package clock

import (
	"context"
	"time"

	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

// Tool reports the current time in a fixed location.
type Tool struct {
	loc *time.Location
	now func() time.Time // overridable for tests
}

// Option configures a Tool.
type Option func(*Tool)

// WithLocation sets the reporting timezone. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(t *Tool) { t.loc = loc }
}

// New constructs a clock tool.
func New(opts ...Option) *Tool {
	t := &Tool{loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) Meta() toolhub.Meta {
	return toolhub.Meta{
		Capabilities: []string{"time"},
		Description:  "reports the current date and time",
		Reliability:  "high",
		Timeliness:   "high",
	}
}

func (t *Tool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	select {
	case <-ctx.Done():
		return toolhub.Result{}, ctx.Err()
	default:
	}
	return toolhub.Result{
		Success: true,
		Result:  t.now().In(t.loc).Format("2006-01-02 15:04:05 MST"),
	}, nil
}
