// Package retry provides exponential backoff retry for LLM and tool calls,
// grounded on the teacher's runtime/a2a/retry package but tuned to the
// research agent core's spec: base 0.5s, factor 2, capped at 5s, with ±20%
// jitter, and terminal-error short-circuiting driven by errs.Kind.
package retry

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/zolawuzhigang/Research-Agent/errs"
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts including the first. A
	// value of 0 or 1 disables retrying.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the computed backoff.
	MaxBackoff time.Duration
	// Multiplier is the exponential growth factor applied per attempt.
	Multiplier float64
	// Jitter is the fraction (0-1) of symmetric random jitter applied to the
	// computed backoff.
	Jitter float64
}

// Default returns the spec-mandated backoff policy: base 0.5s, factor 2,
// capped at 5s, ±20% jitter.
func Default(maxAttempts int) Config {
	return Config{
		MaxAttempts:    maxAttempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// ExhaustedError is returned when all attempts fail.
type ExhaustedError struct {
	Attempts      int
	TotalDuration time.Duration
	LastErr       error
}

func (e *ExhaustedError) Error() string {
	return "retry exhausted after " + strconv.Itoa(e.Attempts) + " attempts: " + e.LastErr.Error()
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Do executes fn, retrying on non-terminal errors per cfg. It never retries
// an error whose errs.Kind is terminal (invalid input, auth, malformed
// request), and it stops immediately if ctx is cancelled.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if errs.IsTerminal(errs.KindOf(err)) {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			break
		}
		backoff := computeBackoff(cfg, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return &ExhaustedError{Attempts: cfg.MaxAttempts, TotalDuration: time.Since(start), LastErr: lastErr}
}

func computeBackoff(cfg Config, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if max := float64(cfg.MaxBackoff); backoff > max {
		backoff = max
	}
	if cfg.Jitter > 0 {
		backoff += backoff * cfg.Jitter * (rand.Float64()*2 - 1) //nolint:gosec // jitter does not need crypto rand
	}
	if backoff < 0 {
		backoff = 0
	}
	return time.Duration(backoff)
}
