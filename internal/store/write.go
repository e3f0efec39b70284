package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/scnconform/internal/conformance"
)

var _ conformance.Recorder = (*Store)(nil)

// timeFormat has fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// BeginRun inserts the run header before any case is recorded.
// Beginning a run ID that already exists is an error.
func (s *Store) BeginRun(ctx context.Context, runID, executable string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, executable, started_at)
		VALUES (?, ?, ?)
	`,
		runID,
		executable,
		startedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordCase writes a case definition and all of its method results in one
// transaction. Recording the same case twice is silently ignored, so a
// caller may retry after a transient error.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) RecordCase(ctx context.Context, runID string, cr conformance.CaseResult) error {
	caseID, err := conformance.CaseID(cr.Case)
	if err != nil {
		return fmt.Errorf("record case %d: %w", cr.Index, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record case %d: begin tx: %w", cr.Index, err)
	}
	defer tx.Rollback() // No-op if committed

	tc := cr.Case
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cases
		(run_id, case_idx, case_id, name, value_type, format, input, expect_success, expected_parsed, expected_leftover)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, case_idx) DO NOTHING
	`,
		runID,
		cr.Index,
		caseID,
		tc.Name,
		int(tc.Type),
		tc.Format,
		blob(tc.Input),
		boolToInt(tc.ExpectSuccess),
		blob(tc.ExpectedParsed),
		blob(tc.ExpectedLeftover),
	)
	if err != nil {
		return fmt.Errorf("record case %d: %w", cr.Index, err)
	}

	for _, m := range cr.Methods {
		f := marshalFailure(m.Failure)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results
			(run_id, case_idx, method, seq, exit_code, stdout, stderr, duration_ns, decoded, parsed, leftover,
			 failure_kind, failure_message, failure_field, failure_expected, failure_actual, failure_error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, case_idx, method) DO NOTHING
		`,
			runID,
			cr.Index,
			int(m.Method),
			m.Seq,
			m.Invocation.ExitCode,
			blob(m.Invocation.Stdout),
			blob(m.Invocation.Stderr),
			m.Invocation.Duration.Nanoseconds(),
			boolToInt(m.Decoded),
			nullBlob(m.Outcome.Parsed, m.Decoded),
			nullBlob(m.Outcome.Leftover, m.Decoded),
			f.kind,
			f.message,
			f.field,
			f.expected,
			f.actual,
			f.err,
		)
		if err != nil {
			return fmt.Errorf("record case %d method %d: %w", cr.Index, int(m.Method), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record case %d: commit: %w", cr.Index, err)
	}
	return nil
}

// FinishRun stores the verdict and snapshot hash of a completed suite.
func (s *Store) FinishRun(ctx context.Context, res *conformance.SuiteResult, finishedAt time.Time) error {
	hash, err := res.SnapshotHash()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, pass = ?, total = ?, failed = ?, snapshot_hash = ?
		WHERE run_id = ?
	`,
		finishedAt.UTC().Format(timeFormat),
		boolToInt(res.Pass()),
		res.Total(),
		res.Failed(),
		hash,
		res.RunID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", res.RunID, ErrRunNotFound)
	}
	return nil
}
