package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\n", []string{"a", ""}},
		{"\nb\n", []string{"", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\rb", []string{"a", "b"}},
		{"a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.in), "input %q", tt.in)
	}
}

func TestDecodeOutcome(t *testing.T) {
	out, f := DecodeOutcome("31 32 33\n66 6f 6f\n")
	require.Nil(t, f)
	assert.Equal(t, Outcome{Parsed: "123", Leftover: "foo"}, out)

	out, f = DecodeOutcome("\n\n")
	require.Nil(t, f)
	assert.Equal(t, Outcome{}, out)
}

func TestDecodeOutcomeMalformedLineCounts(t *testing.T) {
	for _, stdout := range []string{"", "31\n", "31", "31\n32\n33\n", "\n\n\n"} {
		_, f := DecodeOutcome(stdout)
		require.NotNil(t, f, "stdout %q", stdout)
		assert.Equal(t, KindMalformedOutput, f.Kind)
		assert.Equal(t, stdout, f.Actual)
	}
}

func TestDecodeOutcomeBadToken(t *testing.T) {
	_, f := DecodeOutcome("31 zz\n\n")
	require.NotNil(t, f)
	assert.Equal(t, KindMalformedOutput, f.Kind)
	assert.Equal(t, FieldParsed, f.Field)
	assert.Error(t, f.Err)

	_, f = DecodeOutcome("31\n100\n")
	require.NotNil(t, f)
	assert.Equal(t, FieldLeftover, f.Field)
}

func TestCompare(t *testing.T) {
	_, f := Compare("48 65 6c 6c 6f 21\n\n", "Hello!", "")
	assert.Nil(t, f)

	out, f := Compare("31 32\n66 6f 6f\n", "123", "foo")
	require.NotNil(t, f)
	assert.Equal(t, KindValueMismatch, f.Kind)
	assert.Equal(t, FieldParsed, f.Field)
	assert.Equal(t, "123", f.Expected)
	assert.Equal(t, "12", f.Actual)
	assert.Equal(t, "12", out.Parsed)

	_, f = Compare("31 32 33\n6f\n", "123", "foo")
	require.NotNil(t, f)
	assert.Equal(t, FieldLeftover, f.Field)
	assert.Equal(t, "foo", f.Expected)
	assert.Equal(t, "o", f.Actual)
}

func TestCompareBytesExactly(t *testing.T) {
	// UTF-8 U+00E4 sent as sign-extended bytes must equal the Go string.
	_, f := Compare("ffffffc3 ffffffa4\n\n", "\u00e4", "")
	assert.Nil(t, f)

	_, f = Compare("41\n\n", "a", "")
	require.NotNil(t, f)
	assert.Equal(t, KindValueMismatch, f.Kind)
}

func TestFailureError(t *testing.T) {
	f := &Failure{Kind: KindAbnormalExit, Message: "exit code 3"}
	assert.Equal(t, "ABNORMAL_EXIT: exit code 3", f.Error())
	assert.True(t, IsKind(f, KindAbnormalExit))
	assert.False(t, IsKind(f, KindTimedOut))
	assert.False(t, IsKind(nil, KindTimedOut))
}
