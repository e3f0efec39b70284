package conformance

import (
	"fmt"
	"strings"

	"github.com/roach88/scnconform/internal/hexcodec"
)

// SplitLines splits text the way Python's str.splitlines does for the line
// endings an engine can produce: "\n", "\r\n" and "\r" terminate a line, and a
// trailing terminator does not start another one.
func SplitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}

// DecodeOutcome parses the two-line stdout protocol.
// Any line count other than two, or a token that is not a byte, yields a
// MALFORMED_OUTPUT failure.
func DecodeOutcome(stdout string) (Outcome, *Failure) {
	lines := SplitLines(stdout)
	if len(lines) != 2 {
		f := newFailure(KindMalformedOutput, "expected 2 output lines, got %d", len(lines))
		f.Actual = stdout
		return Outcome{}, f
	}

	parsed, err := hexcodec.DecodeString(lines[0])
	if err != nil {
		return Outcome{}, malformedLine(FieldParsed, stdout, err)
	}
	leftover, err := hexcodec.DecodeString(lines[1])
	if err != nil {
		return Outcome{}, malformedLine(FieldLeftover, stdout, err)
	}
	return Outcome{Parsed: parsed, Leftover: leftover}, nil
}

func malformedLine(field, stdout string, err error) *Failure {
	return &Failure{
		Kind:    KindMalformedOutput,
		Message: fmt.Sprintf("%s line is not hex encoded", field),
		Field:   field,
		Actual:  stdout,
		Err:     err,
	}
}

// Compare decodes stdout and checks it against the expected values with
// exact byte equality. The parsed line is checked before the leftover line.
func Compare(stdout, expectedParsed, expectedLeftover string) (Outcome, *Failure) {
	out, f := DecodeOutcome(stdout)
	if f != nil {
		return out, f
	}
	if out.Parsed != expectedParsed {
		return out, &Failure{
			Kind:     KindValueMismatch,
			Message:  "parsed value differs",
			Field:    FieldParsed,
			Expected: expectedParsed,
			Actual:   out.Parsed,
		}
	}
	if out.Leftover != expectedLeftover {
		return out, &Failure{
			Kind:     KindValueMismatch,
			Message:  "leftover differs",
			Field:    FieldLeftover,
			Expected: expectedLeftover,
			Actual:   out.Leftover,
		}
	}
	return out, nil
}
