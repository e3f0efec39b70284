package conformance

import (
	"fmt"

	"github.com/roach88/scnconform/internal/canon"
)

// CaseID returns a content hash identifying tc by its inputs and
// expectations. The name is excluded so renaming a case keeps its history.
func CaseID(tc TestCase) (string, error) {
	return canon.Hash(canon.DomainCase, map[string]any{
		"type":           tc.Type.String(),
		"format":         tc.Format,
		"input":          tc.Input,
		"expect_success": tc.ExpectSuccess,
		"parsed":         tc.ExpectedParsed,
		"leftover":       tc.ExpectedLeftover,
	})
}

// Snapshot renders the observable behaviour of a run as canonical JSON.
//
// Run ID, binary path, durations and stderr are excluded, so two runs of the
// same engine over the same corpus produce identical bytes.
func (s *SuiteResult) Snapshot() ([]byte, error) {
	cases := make([]any, 0, len(s.Cases))
	for _, cr := range s.Cases {
		id, err := CaseID(cr.Case)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", cr.Index, err)
		}

		methods := make([]any, 0, len(cr.Methods))
		for _, m := range cr.Methods {
			entry := map[string]any{
				"method":    int(m.Method),
				"exit_code": m.Invocation.ExitCode,
				"pass":      m.Pass(),
			}
			if m.Decoded {
				entry["parsed"] = m.Outcome.Parsed
				entry["leftover"] = m.Outcome.Leftover
			}
			if m.Failure != nil {
				entry["failure"] = string(m.Failure.Kind)
			}
			methods = append(methods, entry)
		}

		cases = append(cases, map[string]any{
			"idx":        cr.Index,
			"case_id":    id,
			"label":      cr.Case.Label(),
			"consistent": cr.Consistent(),
			"methods":    methods,
		})
	}

	data, err := canon.Marshal(map[string]any{
		"pass":  s.Pass(),
		"cases": cases,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// SnapshotHash returns the domain separated hash of Snapshot.
func (s *SuiteResult) SnapshotHash() (string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return canon.HashBytes(canon.DomainSnapshot, snap), nil
}
