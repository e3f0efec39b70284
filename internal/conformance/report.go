package conformance

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteCaseText writes the check line for one case followed, for failures,
// by an indented diagnosis of every failed method.
func WriteCaseText(w io.Writer, cr CaseResult) {
	mark := "✓"
	if !cr.Pass() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s [%d] %s\n", mark, cr.Index, cr.Case.Label())

	for _, m := range cr.Failures() {
		fmt.Fprintf(w, "  Test idx %d (method #%d) failed:\n", cr.Index, int(m.Method))
		for _, line := range describeFailure(m) {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	if !cr.Consistent() {
		fmt.Fprintln(w, "  methods diverge:")
		for _, m := range cr.Methods {
			fmt.Fprintf(w, "    #%d exit %d stdout %s\n", int(m.Method), m.Invocation.ExitCode, strconv.Quote(m.Invocation.Stdout))
		}
	}
}

func describeFailure(m MethodResult) []string {
	f := m.Failure
	res := m.Invocation
	switch f.Kind {
	case KindAbnormalExit:
		return append([]string{fmt.Sprintf("exit code: %d", res.ExitCode)}, block("stderr", res.Stderr)...)
	case KindExpectationMismatch:
		head := "Expected failure, got success"
		if f.Expected == "success" {
			head = fmt.Sprintf("Expected success, got exit code %d", res.ExitCode)
		}
		lines := []string{head}
		lines = append(lines, block("stdout", res.Stdout)...)
		return append(lines, block("stderr", res.Stderr)...)
	case KindMalformedOutput:
		lines := []string{"Malformed output: " + f.Message}
		if f.Err != nil {
			lines = append(lines, f.Err.Error())
		}
		return append(lines, strconv.Quote(res.Stdout))
	case KindValueMismatch:
		label := "output"
		if f.Field == FieldLeftover {
			label = "leftovers"
		}
		return []string{
			fmt.Sprintf("Expected %s: %s", label, strconv.Quote(f.Expected)),
			fmt.Sprintf("Got:%s %s", strings.Repeat(" ", len(label)+6), strconv.Quote(f.Actual)),
		}
	default:
		return []string{f.Error()}
	}
}

func block(name, text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return []string{name + ": (empty)"}
	}
	lines := []string{name + ":"}
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, "  "+l)
	}
	return lines
}

// WriteSummaryText writes the closing summary line of a suite run.
func WriteSummaryText(w io.Writer, s *SuiteResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", s.Passed(), s.Failed(), s.Total())
	if s.Pass() {
		fmt.Fprintln(w, "✓ All cases passed on every method")
		return
	}
	fmt.Fprintf(w, "✗ %d (case, method) combination(s) failed\n", s.FailedMethods())
}
