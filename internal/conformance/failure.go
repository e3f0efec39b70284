package conformance

import (
	"errors"
	"fmt"
)

// FailureKind categorizes why a (case, method) pair did not pass.
type FailureKind string

const (
	// KindDiscovery indicates the executable under test was not found.
	KindDiscovery FailureKind = "DISCOVERY_FAILURE"

	// KindAbnormalExit indicates an exit status other than 0 or 1.
	KindAbnormalExit FailureKind = "ABNORMAL_EXIT"

	// KindExpectationMismatch indicates success where failure was expected,
	// or the reverse.
	KindExpectationMismatch FailureKind = "EXPECTATION_MISMATCH"

	// KindMalformedOutput indicates stdout was not two lines of hex tokens.
	KindMalformedOutput FailureKind = "MALFORMED_OUTPUT"

	// KindValueMismatch indicates a decoded line differs from the expected value.
	KindValueMismatch FailureKind = "VALUE_MISMATCH"

	// KindTimedOut indicates the invocation exceeded its timeout.
	KindTimedOut FailureKind = "TIMED_OUT"

	// KindInvocation indicates the executable could not be run at all.
	KindInvocation FailureKind = "INVOCATION_ERROR"
)

// Fields compared by a value mismatch.
const (
	FieldParsed   = "parsed"
	FieldLeftover = "leftover"
)

// Failure describes one failed (case, method) pair.
type Failure struct {
	// Kind identifies the failure category.
	Kind FailureKind

	// Message is a human-readable description.
	Message string

	// Field names the compared line for value mismatches.
	Field string

	// Expected and Actual hold the compared values, when there are any.
	Expected string
	Actual   string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// IsKind reports whether err is a *Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

func newFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
