package domain

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind buckets pipeline errors for the retry policy and for the
// failure reason recorded on the owning entity.
type FailureKind string

const (
	// FailureInput covers missing prerequisites (no audio artifact, absent
	// credentials). Waiting will not fix these; they fail a stage immediately.
	FailureInput FailureKind = "input"
	// FailureTransient covers network errors, timeouts and provider 5xx
	// responses; stages retry these a bounded number of times.
	FailureTransient FailureKind = "transient"
	// FailureProvider is an explicit failure reported by a polled job.
	FailureProvider FailureKind = "provider"
	// FailureTimeout means the poll budget ran out before resolution.
	FailureTimeout FailureKind = "timeout"
	// FailurePrecondition is a fan-in/stitch invariant violation, e.g. a line
	// expected complete that is not.
	FailurePrecondition FailureKind = "precondition"
)

type PipelineError struct {
	Kind FailureKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func InputError(format string, args ...interface{}) error {
	return &PipelineError{Kind: FailureInput, Err: fmt.Errorf(format, args...)}
}

func TransientError(format string, args ...interface{}) error {
	return &PipelineError{Kind: FailureTransient, Err: fmt.Errorf(format, args...)}
}

func ProviderError(format string, args ...interface{}) error {
	return &PipelineError{Kind: FailureProvider, Err: fmt.Errorf(format, args...)}
}

func TimeoutError(format string, args ...interface{}) error {
	return &PipelineError{Kind: FailureTimeout, Err: fmt.Errorf(format, args...)}
}

func PreconditionError(format string, args ...interface{}) error {
	return &PipelineError{Kind: FailurePrecondition, Err: fmt.Errorf(format, args...)}
}

// Classify maps any error to a failure kind. Unclassified errors count as
// transient so that a provider hiccup without explicit wrapping still gets
// its bounded retries; context cancellation is never retried.
func Classify(err error) FailureKind {
	if err == nil {
		return ""
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureInput
	}
	return FailureTransient
}

// Retryable reports whether a stage may retry after this error.
func Retryable(err error) bool {
	return Classify(err) == FailureTransient
}
