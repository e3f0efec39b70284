package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/scnconform/internal/conformance"
	"github.com/roach88/scnconform/internal/invoke"
)

// LoadSuite rebuilds the SuiteResult of a recorded run, so it can be
// reported or snapshotted exactly as it was when it ran.
//
// Failure.Err is restored as a plain error carrying the original text.
func (s *Store) LoadSuite(ctx context.Context, runID string) (*conformance.SuiteResult, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load suite: %w", err)
	}

	cases, err := s.readCases(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load suite %s: %w", runID, err)
	}

	if err := s.readMethodResults(ctx, runID, cases); err != nil {
		return nil, fmt.Errorf("load suite %s: %w", runID, err)
	}

	return &conformance.SuiteResult{
		RunID:  run.ID,
		Binary: run.Executable,
		Cases:  cases,
	}, nil
}

func (s *Store) readCases(ctx context.Context, runID string) ([]conformance.CaseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_idx, name, value_type, format, input, expect_success, expected_parsed, expected_leftover
		FROM cases
		WHERE run_id = ?
		ORDER BY case_idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := []conformance.CaseResult{}
	for rows.Next() {
		var (
			cr                       conformance.CaseResult
			valueType, expectSuccess int
			input, parsed, leftover  []byte
		)
		if err := rows.Scan(&cr.Index, &cr.Case.Name, &valueType, &cr.Case.Format,
			&input, &expectSuccess, &parsed, &leftover); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cr.Case.Type = conformance.ValueType(valueType)
		cr.Case.Input = string(input)
		cr.Case.ExpectSuccess = expectSuccess != 0
		cr.Case.ExpectedParsed = string(parsed)
		cr.Case.ExpectedLeftover = string(leftover)
		cases = append(cases, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return cases, nil
}

// readMethodResults attaches every stored result to its case in cases.
func (s *Store) readMethodResults(ctx context.Context, runID string, cases []conformance.CaseResult) error {
	byIdx := make(map[int]*conformance.CaseResult, len(cases))
	for i := range cases {
		byIdx[cases[i].Index] = &cases[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT case_idx, method, seq, exit_code, stdout, stderr, duration_ns, decoded, parsed, leftover,
		       failure_kind, failure_message, failure_field, failure_expected, failure_actual, failure_error
		FROM results
		WHERE run_id = ?
		ORDER BY case_idx ASC, method ASC
	`, runID)
	if err != nil {
		return fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			caseIdx, method, decoded int
			mr                       conformance.MethodResult
			stdout, stderr           []byte
			parsed, leftover         []byte
			durationNS               int64
			f                        failureColumns
		)
		if err := rows.Scan(&caseIdx, &method, &mr.Seq, &mr.Invocation.ExitCode, &stdout, &stderr,
			&durationNS, &decoded, &parsed, &leftover,
			&f.kind, &f.message, &f.field, &f.expected, &f.actual, &f.err); err != nil {
			return fmt.Errorf("scan result: %w", err)
		}

		cr, ok := byIdx[caseIdx]
		if !ok {
			return fmt.Errorf("result for unknown case %d", caseIdx)
		}
		mr.Method = conformance.MethodIndex(method)
		mr.Invocation = invoke.Result{
			ExitCode: mr.Invocation.ExitCode,
			Stdout:   string(stdout),
			Stderr:   string(stderr),
			Duration: time.Duration(durationNS),
		}
		mr.Decoded = decoded != 0
		if mr.Decoded {
			mr.Outcome = conformance.Outcome{Parsed: string(parsed), Leftover: string(leftover)}
		}
		mr.Failure = unmarshalFailure(f)
		cr.Methods = append(cr.Methods, mr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate results: %w", err)
	}
	return nil
}
