package worker

import (
	"context"
	"encoding/json"
	"fmt"
)

// FailureKind classifies a handler failure.
type FailureKind int

const (
	// FailureRetryable covers transient conditions: network timeouts,
	// lookup errors, lock conflicts. The item stays queued under backoff.
	FailureRetryable FailureKind = iota
	// FailureValidation marks a structurally invalid payload. Retrying
	// cannot succeed, so the item is dropped immediately.
	FailureValidation
	// FailureFatal marks a non-payload condition that still cannot be
	// retried, such as an unresolvable user reference.
	FailureFatal
)

func (k FailureKind) String() string {
	switch k {
	case FailureRetryable:
		return "retryable"
	case FailureValidation:
		return "validation"
	case FailureFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of applying one sync item. Handlers report
// failures through it instead of errors so the driver can classify
// without unwrapping.
type Outcome struct {
	OK      bool
	Summary string
	Kind    FailureKind
	Reason  string
}

func Success(format string, args ...interface{}) Outcome {
	return Outcome{OK: true, Summary: fmt.Sprintf(format, args...)}
}

func Retryable(format string, args ...interface{}) Outcome {
	return Outcome{Kind: FailureRetryable, Reason: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) Outcome {
	return Outcome{Kind: FailureValidation, Reason: fmt.Sprintf(format, args...)}
}

func Fatal(format string, args ...interface{}) Outcome {
	return Outcome{Kind: FailureFatal, Reason: fmt.Sprintf(format, args...)}
}

// Retryable reports whether the item should stay queued.
func (o Outcome) Retryable() bool {
	return !o.OK && o.Kind == FailureRetryable
}

// Handler owns the domain-specific merge/replace/idempotency logic for
// one sync item type. Apply must be idempotent with respect to
// re-application of an identical payload: the driver may re-deliver an
// item whose success acknowledgement was lost.
type Handler interface {
	Apply(ctx context.Context, payload json.RawMessage) Outcome
}
