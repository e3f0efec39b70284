package conformance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/scnconform/internal/invoke"
)

// MethodResult is the outcome of one (case, method) invocation.
type MethodResult struct {
	Method     MethodIndex
	Seq        int64
	Invocation invoke.Result

	// Decoded is true when stdout followed the two-line protocol, in which
	// case Outcome holds the decoded values.
	Decoded bool
	Outcome Outcome

	// Failure is nil when the method passed.
	Failure *Failure
}

// Pass reports whether the method met the case's expectation.
func (r MethodResult) Pass() bool {
	return r.Failure == nil
}

// CaseResult holds every method's result for one case.
type CaseResult struct {
	Index   int
	Case    TestCase
	Methods []MethodResult
}

// Pass reports whether every method passed.
func (r CaseResult) Pass() bool {
	for _, m := range r.Methods {
		if !m.Pass() {
			return false
		}
	}
	return true
}

// Failures returns the methods that did not pass.
func (r CaseResult) Failures() []MethodResult {
	var failed []MethodResult
	for _, m := range r.Methods {
		if !m.Pass() {
			failed = append(failed, m)
		}
	}
	return failed
}

// Consistent reports whether all methods produced the same exit status and
// the same stdout, independent of what the case expected.
func (r CaseResult) Consistent() bool {
	if len(r.Methods) == 0 {
		return true
	}
	first := r.Methods[0]
	for _, m := range r.Methods[1:] {
		if m.Invocation.ExitCode != first.Invocation.ExitCode ||
			m.Invocation.Stdout != first.Invocation.Stdout {
			return false
		}
	}
	return true
}

// Runner drives the method matrix. Its zero value is not usable; construct
// it with NewRunner and override fields before the first run.
type Runner struct {
	Invoker invoke.Invoker
	Methods []MethodIndex
	Clock   SeqClock
	RunIDs  RunIDGenerator
	Logger  *slog.Logger

	// Recorder, if set, persists the suite as it runs.
	Recorder Recorder
	Now      func() time.Time

	// OnInvoke, if set, is called before every invocation.
	OnInvoke func(idx int, method MethodIndex, args []string)

	// OnCase, if set, is called after every case completes.
	OnCase func(CaseResult)
}

// NewRunner returns a Runner over all Methods with a fresh clock, UUIDv7
// run IDs and a discarding logger.
func NewRunner(inv invoke.Invoker) *Runner {
	return &Runner{
		Invoker: inv,
		Methods: Methods,
		Clock:   NewClock(),
		RunIDs:  UUIDv7Generator{},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     time.Now,
	}
}

// RunCase runs tc once per method. Every method is attempted even after an
// earlier one failed, so the result carries the full failure set.
func (r *Runner) RunCase(ctx context.Context, idx int, tc TestCase) CaseResult {
	result := CaseResult{
		Index:   idx,
		Case:    tc,
		Methods: make([]MethodResult, 0, len(r.Methods)),
	}
	for _, m := range r.Methods {
		result.Methods = append(result.Methods, r.runMethod(ctx, idx, tc, m))
	}

	r.Logger.Info("case completed",
		"idx", idx,
		"case", tc.Label(),
		"pass", result.Pass(),
		"consistent", result.Consistent(),
	)
	return result
}

func (r *Runner) runMethod(ctx context.Context, idx int, tc TestCase, m MethodIndex) MethodResult {
	args := tc.Args(m)
	if r.OnInvoke != nil {
		r.OnInvoke(idx, m, args)
	}

	res, err := r.Invoker.Invoke(ctx, invoke.Request{Args: args, Stdin: tc.Input})
	mr := MethodResult{
		Method:     m,
		Seq:        r.Clock.Next(),
		Invocation: res,
	}
	mr.Failure = r.evaluate(tc, &mr, err)

	if mr.Failure != nil {
		r.Logger.Debug("method failed",
			"idx", idx,
			"method", int(m),
			"kind", mr.Failure.Kind,
			"exit_code", res.ExitCode,
		)
	} else {
		r.Logger.Debug("method passed", "idx", idx, "method", int(m))
	}
	return mr
}

// evaluate applies the exit-code policy and, for recognized exits, the
// output comparison. It fills mr.Outcome and mr.Decoded as a side effect.
func (r *Runner) evaluate(tc TestCase, mr *MethodResult, err error) *Failure {
	res := mr.Invocation
	if err != nil {
		kind := KindInvocation
		if errors.Is(err, invoke.ErrTimedOut) {
			kind = KindTimedOut
		}
		return &Failure{Kind: kind, Message: "invocation did not complete", Err: err}
	}

	switch res.ExitCode {
	case 0, 1:
	default:
		f := newFailure(KindAbnormalExit, "exit code %d", res.ExitCode)
		f.Expected = "0 or 1"
		f.Actual = res.Stderr
		return f
	}

	if tc.ExpectSuccess && res.ExitCode != 0 {
		f := newFailure(KindExpectationMismatch, "expected success, got exit code %d", res.ExitCode)
		f.Expected, f.Actual = "success", "failure"
		return f
	}
	if !tc.ExpectSuccess && res.ExitCode != 1 {
		f := newFailure(KindExpectationMismatch, "expected failure, got success")
		f.Expected, f.Actual = "failure", "success"
		return f
	}

	out, f := Compare(res.Stdout, tc.ExpectedParsed, tc.ExpectedLeftover)
	if f == nil || f.Kind == KindValueMismatch {
		mr.Decoded = true
		mr.Outcome = out
	}
	return f
}
