package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run ID has no row in the log.
var ErrRunNotFound = errors.New("run not found")

// Run is one row of the runs table.
type Run struct {
	ID           string
	Executable   string
	StartedAt    time.Time
	FinishedAt   time.Time // zero while the run is in progress
	Finished     bool
	Pass         bool
	Total        int
	Failed       int
	SnapshotHash string
}

// ReadRun retrieves a run header by ID.
// Returns an error wrapping ErrRunNotFound if there is none.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, executable, started_at, finished_at, pass, total, failed, snapshot_hash
		FROM runs
		WHERE run_id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, executable, started_at, finished_at, pass, total, failed, snapshot_hash
		FROM runs
		ORDER BY started_at DESC, run_id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Result is one row of the results table joined with its case.
type Result struct {
	CaseIdx        int
	CaseID         string
	CaseName       string
	Method         int
	Seq            int64
	ExitCode       int
	Stdout         string
	Stderr         string
	Duration       time.Duration
	Decoded        bool
	Parsed         string
	Leftover       string
	FailureKind    string // empty when the method passed
	FailureMessage string
}

// ReadFailures returns the failed results of a run in execution order.
func (s *Store) ReadFailures(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.case_idx, c.case_id, c.name, r.method, r.seq, r.exit_code, r.stdout, r.stderr,
		       r.duration_ns, r.decoded, r.parsed, r.leftover, r.failure_kind, r.failure_message
		FROM results r
		JOIN cases c ON c.run_id = r.run_id AND c.case_idx = r.case_idx
		WHERE r.run_id = ? AND r.failure_kind IS NOT NULL
		ORDER BY r.seq ASC, r.case_idx ASC, r.method ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var (
			r                Result
			stdout, stderr   []byte
			parsed, leftover []byte
			durationNS       int64
			decoded          int
			kind, message    sql.NullString
		)
		if err := rows.Scan(&r.CaseIdx, &r.CaseID, &r.CaseName, &r.Method, &r.Seq, &r.ExitCode,
			&stdout, &stderr, &durationNS, &decoded, &parsed, &leftover, &kind, &message); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Stdout, r.Stderr = string(stdout), string(stderr)
		r.Duration = time.Duration(durationNS)
		r.Decoded = decoded != 0
		r.Parsed, r.Leftover = string(parsed), string(leftover)
		r.FailureKind, r.FailureMessage = kind.String, message.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run          Run
		startedAt    string
		finishedAt   sql.NullString
		pass         sql.NullInt64
		snapshotHash sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Executable, &startedAt, &finishedAt, &pass,
		&run.Total, &run.Failed, &snapshotHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(timeFormat, startedAt); err != nil {
		return Run{}, fmt.Errorf("run %s: started_at: %w", run.ID, err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = time.Parse(timeFormat, finishedAt.String); err != nil {
			return Run{}, fmt.Errorf("run %s: finished_at: %w", run.ID, err)
		}
		run.Finished = true
	}
	run.Pass = pass.Valid && pass.Int64 != 0
	run.SnapshotHash = snapshotHash.String
	return run, nil
}
