package cli

import (
	"github.com/roach88/scnconform/internal/conformance"
)

// SuiteReport is the JSON form of a suite run.
type SuiteReport struct {
	RunID         string       `json:"run_id"`
	Binary        string       `json:"binary"`
	Pass          bool         `json:"pass"`
	Passed        int          `json:"passed"`
	Failed        int          `json:"failed"`
	Total         int          `json:"total"`
	FailedMethods int          `json:"failed_methods"`
	Golden        string       `json:"golden,omitempty"` // "match", "mismatch" or "updated"
	Cases         []CaseReport `json:"cases"`
}

// CaseReport is one case of a SuiteReport.
type CaseReport struct {
	Index      int            `json:"idx"`
	Label      string         `json:"label"`
	Pass       bool           `json:"pass"`
	Consistent bool           `json:"consistent"`
	Methods    []MethodReport `json:"methods"`
}

// MethodReport is one (case, method) result.
type MethodReport struct {
	Method     int            `json:"method"`
	ExitCode   int            `json:"exit_code"`
	Pass       bool           `json:"pass"`
	DurationMS int64          `json:"duration_ms"`
	Parsed     *string        `json:"parsed,omitempty"`
	Leftover   *string        `json:"leftover,omitempty"`
	Stderr     string         `json:"stderr,omitempty"`
	Failure    *FailureReport `json:"failure,omitempty"`
}

// FailureReport describes why a method failed.
type FailureReport struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Error    string `json:"error,omitempty"`
}

func newSuiteReport(res *conformance.SuiteResult) SuiteReport {
	report := SuiteReport{
		RunID:         res.RunID,
		Binary:        res.Binary,
		Pass:          res.Pass(),
		Passed:        res.Passed(),
		Failed:        res.Failed(),
		Total:         res.Total(),
		FailedMethods: res.FailedMethods(),
		Cases:         make([]CaseReport, 0, len(res.Cases)),
	}
	for _, cr := range res.Cases {
		c := CaseReport{
			Index:      cr.Index,
			Label:      cr.Case.Label(),
			Pass:       cr.Pass(),
			Consistent: cr.Consistent(),
			Methods:    make([]MethodReport, 0, len(cr.Methods)),
		}
		for _, m := range cr.Methods {
			c.Methods = append(c.Methods, newMethodReport(m))
		}
		report.Cases = append(report.Cases, c)
	}
	return report
}

func newMethodReport(m conformance.MethodResult) MethodReport {
	mr := MethodReport{
		Method:     int(m.Method),
		ExitCode:   m.Invocation.ExitCode,
		Pass:       m.Pass(),
		DurationMS: m.Invocation.Duration.Milliseconds(),
	}
	if m.Decoded {
		parsed, leftover := m.Outcome.Parsed, m.Outcome.Leftover
		mr.Parsed, mr.Leftover = &parsed, &leftover
	}
	if f := m.Failure; f != nil {
		mr.Stderr = m.Invocation.Stderr
		mr.Failure = &FailureReport{
			Kind:     string(f.Kind),
			Message:  f.Message,
			Field:    f.Field,
			Expected: f.Expected,
			Actual:   f.Actual,
		}
		if f.Err != nil {
			mr.Failure.Error = f.Err.Error()
		}
	}
	return mr
}
