package conformance

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCase is wrapped by errors for cases that cannot be run.
var ErrInvalidCase = errors.New("invalid case")

// ValueType selects the C++ type the engine scans into.
type ValueType int

const (
	ValueString ValueType = iota // type code "0"
	ValueInt                     // type code "1"
)

// ParseValueType maps a case-file tag to a ValueType.
func ParseValueType(tag string) (ValueType, error) {
	switch tag {
	case "string":
		return ValueString, nil
	case "int":
		return ValueInt, nil
	default:
		return 0, fmt.Errorf("unexpected value type %q: must be \"string\" or \"int\"", tag)
	}
}

// Valid reports whether v is one of the known types.
func (v ValueType) Valid() bool {
	return v == ValueString || v == ValueInt
}

// Code returns the positional argument passed to the engine.
func (v ValueType) Code() string {
	return strconv.Itoa(int(v))
}

func (v ValueType) String() string {
	switch v {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	default:
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
}

// MethodIndex is an opaque selector for one of the engine's scanning code
// paths. The harness only requires that all of them agree.
type MethodIndex int

// Methods lists every selector the matrix exercises, in order.
var Methods = []MethodIndex{0, 1, 2, 3}

// Code returns the positional argument passed to the engine.
func (m MethodIndex) Code() string {
	return strconv.Itoa(int(m))
}

// TestCase is one row of the corpus.
type TestCase struct {
	Name             string
	Type             ValueType
	Format           string
	Input            string
	ExpectSuccess    bool
	ExpectedParsed   string
	ExpectedLeftover string
}

// NewTestCase builds a TestCase from a type tag, rejecting unknown tags.
func NewTestCase(name, typeTag, format, input string, expectSuccess bool, parsed, leftover string) (TestCase, error) {
	vt, err := ParseValueType(typeTag)
	if err != nil {
		return TestCase{}, fmt.Errorf("%w %q: %w", ErrInvalidCase, name, err)
	}
	return TestCase{
		Name:             name,
		Type:             vt,
		Format:           format,
		Input:            input,
		ExpectSuccess:    expectSuccess,
		ExpectedParsed:   parsed,
		ExpectedLeftover: leftover,
	}, nil
}

// Validate checks the invariants NewTestCase enforces, for cases built as
// struct literals.
func (tc TestCase) Validate() error {
	if !tc.Type.Valid() {
		return fmt.Errorf("%w %q: unknown value type %d", ErrInvalidCase, tc.Name, int(tc.Type))
	}
	return nil
}

// Args returns the engine argument vector for method m.
func (tc TestCase) Args(m MethodIndex) []string {
	return []string{tc.Type.Code(), m.Code(), tc.Format}
}

// Label identifies the case in reports when it has no name.
func (tc TestCase) Label() string {
	if tc.Name != "" {
		return tc.Name
	}
	return fmt.Sprintf("%s %q %q", tc.Type, tc.Format, tc.Input)
}

// Outcome is the decoded stdout of one invocation.
type Outcome struct {
	Parsed   string
	Leftover string
}
