package conformance

import (
	"context"
	"fmt"
	"time"
)

// Recorder persists a suite run. *store.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, runID, executable string, startedAt time.Time) error
	RecordCase(ctx context.Context, runID string, cr CaseResult) error
	FinishRun(ctx context.Context, res *SuiteResult, finishedAt time.Time) error
}

// SuiteResult is the verdict of one suite run.
type SuiteResult struct {
	RunID  string
	Binary string
	Cases  []CaseResult
}

// Pass reports whether every (case, method) combination passed.
// An empty suite passes.
func (s *SuiteResult) Pass() bool {
	return s.Failed() == 0
}

// Total returns the number of cases.
func (s *SuiteResult) Total() int {
	return len(s.Cases)
}

// Passed returns the number of cases whose methods all passed.
func (s *SuiteResult) Passed() int {
	n := 0
	for _, c := range s.Cases {
		if c.Pass() {
			n++
		}
	}
	return n
}

// Failed returns the number of cases with at least one failed method.
func (s *SuiteResult) Failed() int {
	return s.Total() - s.Passed()
}

// FailedMethods returns the number of failed (case, method) combinations.
func (s *SuiteResult) FailedMethods() int {
	n := 0
	for _, c := range s.Cases {
		n += len(c.Failures())
	}
	return n
}

// RunSuite validates every case, then runs the method matrix over each one
// in order. The returned error is non-nil only for an invalid corpus, in
// which case nothing was invoked, or when the Recorder fails, which stops
// the suite after the current case.
func (r *Runner) RunSuite(ctx context.Context, binary string, cases []TestCase) (*SuiteResult, error) {
	for i, tc := range cases {
		if err := tc.Validate(); err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
	}

	result := &SuiteResult{
		RunID:  r.RunIDs.Generate(),
		Binary: binary,
		Cases:  make([]CaseResult, 0, len(cases)),
	}
	r.Logger.Info("suite starting", "run_id", result.RunID, "binary", binary, "cases", len(cases))

	if r.Recorder != nil {
		if err := r.Recorder.BeginRun(ctx, result.RunID, binary, r.Now()); err != nil {
			return nil, fmt.Errorf("record run %s: %w", result.RunID, err)
		}
	}

	for idx, tc := range cases {
		cr := r.RunCase(ctx, idx, tc)
		result.Cases = append(result.Cases, cr)
		if r.Recorder != nil {
			if err := r.Recorder.RecordCase(ctx, result.RunID, cr); err != nil {
				return nil, fmt.Errorf("record run %s: %w", result.RunID, err)
			}
		}
		if r.OnCase != nil {
			r.OnCase(cr)
		}
	}

	if r.Recorder != nil {
		if err := r.Recorder.FinishRun(ctx, result, r.Now()); err != nil {
			return nil, fmt.Errorf("record run %s: %w", result.RunID, err)
		}
	}

	r.Logger.Info("suite finished",
		"run_id", result.RunID,
		"passed", result.Passed(),
		"failed", result.Failed(),
	)
	return result, nil
}
