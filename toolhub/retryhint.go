package toolhub

import "github.com/zolawuzhigang/Research-Agent/errs"

// RetryHint is attached to a failed Result's Meta so callers one layer up
// (ExecutionAgent, VerificationAgent) get more than a bare error string to
// reason about.
//
// Grounded on toolregistry/executor.buildRetryHintFromIssues and
// retryHintFromToolErrorCode: a tool failure is classified into a small set
// of reasons, and for the user-actionable ones (missing/invalid input) a
// clarifying question plus an example payload is attached.
type RetryHint struct {
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	ExampleInput string `json:"example_input,omitempty"`
}

const (
	retryReasonInvalidInput = "invalid_input"
	retryReasonTimeout      = "timeout"
	retryReasonExecution    = "execution_failed"
)

// buildRetryHint classifies a tool failure by errs.Kind and, for the
// user-actionable kinds, attaches the candidate's example input as a
// clarifying hint.
func buildRetryHint(kind errs.Kind, exampleInput string) *RetryHint {
	switch kind {
	case errs.KindToolInvalidInput:
		return &RetryHint{
			Reason:       retryReasonInvalidInput,
			Message:      "the input did not match what this tool expects; see example_input",
			ExampleInput: exampleInput,
		}
	case errs.KindToolTimeout:
		return &RetryHint{
			Reason:  retryReasonTimeout,
			Message: "the tool did not respond before its timeout",
		}
	case errs.KindToolAuth:
		return nil // not user-actionable from a retry
	default:
		return &RetryHint{Reason: retryReasonExecution, Message: "the tool reported a failure"}
	}
}

// attachRetryHint sets Result.Meta["retry_hint"] and Result.Meta["error_kind"]
// for a failed result, using the error's errs.Kind (captured before it was
// flattened to a string) and the failing candidate's declared example input.
// error_kind is set for every failure, hinted or not, so a caller further up
// the stack (ExecutionAgent's retry closure) can recover the original
// classification instead of re-deriving it from the bare error string.
func attachRetryHint(res Result, kind errs.Kind, exampleInput string) Result {
	if res.Success {
		return res
	}
	if res.Meta == nil {
		res.Meta = make(map[string]any)
	}
	res.Meta["error_kind"] = string(kind)
	if hint := buildRetryHint(kind, exampleInput); hint != nil {
		res.Meta["retry_hint"] = hint
	}
	return res
}
