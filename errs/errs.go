// Package errs defines the error taxonomy shared by every component of the
// research agent core (spec §7). Errors are converted to this shape at most
// one component boundary away from where they originate, so that no request
// ever terminates with an unhandled exception.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the categories the orchestrator and its
// subsystems reason about for retry and HTTP status mapping.
type Kind string

const (
	// KindInput marks a malformed or oversized question (HTTP 400, not retried).
	KindInput Kind = "input"
	// KindLLMTimeout marks an LLM call that exceeded its deadline.
	KindLLMTimeout Kind = "llm_timeout"
	// KindLLMConnection marks a transport-level failure reaching the LLM.
	KindLLMConnection Kind = "llm_connection"
	// KindLLMHTTP marks a non-2xx response from the LLM provider.
	KindLLMHTTP Kind = "llm_http"
	// KindLLMParse marks a response that could not be parsed as expected.
	KindLLMParse Kind = "llm_parse"
	// KindToolTimeout marks a tool invocation that exceeded its timeout.
	KindToolTimeout Kind = "tool_timeout"
	// KindToolExecution marks a tool that ran and reported failure.
	KindToolExecution Kind = "tool_execution"
	// KindToolInvalidInput marks a tool call rejected for bad input (not retried).
	KindToolInvalidInput Kind = "tool_invalid_input"
	// KindToolAuth marks a tool call rejected for authentication/authorization (not retried).
	KindToolAuth Kind = "tool_auth"
	// KindPlan marks an unparseable or empty plan returned by the planner.
	KindPlan Kind = "plan"
	// KindCapabilityMiss marks a request for an unknown tool/capability.
	KindCapabilityMiss Kind = "capability_miss"
	// KindDeadlineExceeded marks an overall request timeout (HTTP 504).
	KindDeadlineExceeded Kind = "deadline_exceeded"
	// KindInternal marks anything uncaught elsewhere (HTTP 500).
	KindInternal Kind = "internal"
)

// Error is the structured error type carried in result objects throughout
// the core. It always has a Kind and may wrap a cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping cause. If message is
// empty, cause's message is used.
func Wrap(kind Kind, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the Kind of err if it is (or wraps) an *Error, and
// KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsTerminal reports whether an error of this kind should never be retried
// (invalid input, auth failures, malformed questions).
func IsTerminal(kind Kind) bool {
	switch kind {
	case KindInput, KindToolInvalidInput, KindToolAuth, KindPlan, KindCapabilityMiss:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a Kind to the HTTP status code spec §6 requires.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInput, KindToolInvalidInput:
		return 400
	case KindDeadlineExceeded, KindLLMTimeout, KindToolTimeout:
		return 504
	default:
		return 500
	}
}
