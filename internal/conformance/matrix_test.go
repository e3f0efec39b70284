package conformance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scnconform/internal/invoke"
	"github.com/roach88/scnconform/internal/testutil"
)

func fixedResponse(code int, stdout, stderr string) testutil.ResponderFunc {
	return func(invoke.Request) (invoke.Result, error) {
		return invoke.Result{ExitCode: code, Stdout: stdout, Stderr: stderr}, nil
	}
}

func newTestRunner(inv invoke.Invoker) *Runner {
	r := NewRunner(inv)
	r.Clock = testutil.NewDeterministicClock()
	r.RunIDs = testutil.NewFixedRunIDGenerator("run-under-test")
	return r
}

func TestRunCaseCorpusPassesOnFaithfulEngine(t *testing.T) {
	inv := testutil.NewFakeEngineInvoker(testutil.ModeFaithful)
	r := newTestRunner(inv)

	for idx, tc := range DefaultCorpus() {
		t.Run(tc.Name, func(t *testing.T) {
			cr := r.RunCase(context.Background(), idx, tc)
			require.Len(t, cr.Methods, 4)
			assert.True(t, cr.Pass(), "failures: %+v", cr.Failures())
			assert.True(t, cr.Consistent())
			for _, m := range cr.Methods {
				assert.True(t, m.Decoded)
				assert.Equal(t, tc.ExpectedParsed, m.Outcome.Parsed)
				assert.Equal(t, tc.ExpectedLeftover, m.Outcome.Leftover)
			}
		})
	}
}

func TestRunCaseInvokesEveryMethodInOrder(t *testing.T) {
	inv := testutil.NewFakeEngineInvoker(testutil.ModeFaithful)
	r := newTestRunner(inv)
	tc := DefaultCorpus()[3]

	var seen []MethodIndex
	r.OnInvoke = func(idx int, m MethodIndex, args []string) {
		assert.Equal(t, 7, idx)
		seen = append(seen, m)
	}
	cr := r.RunCase(context.Background(), 7, tc)

	assert.Equal(t, Methods, seen)
	calls := inv.Calls()
	require.Len(t, calls, 4)
	for i, call := range calls {
		assert.Equal(t, []string{"1", fmt.Sprint(i), "{}"}, call.Args)
		assert.Equal(t, "123foo", call.Stdin)
	}
	for i, m := range cr.Methods {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}

func TestRunCaseDoesNotShortCircuit(t *testing.T) {
	n := 0
	inv := testutil.NewScriptedInvoker(func(req invoke.Request) (invoke.Result, error) {
		n++
		if req.Args[1] == "0" {
			return invoke.Result{ExitCode: 139}, nil
		}
		return invoke.Result{ExitCode: 0, Stdout: "31 32 33\n\n"}, nil
	})
	r := newTestRunner(inv)

	cr := r.RunCase(context.Background(), 1, DefaultCorpus()[1])

	assert.Equal(t, 4, n)
	assert.False(t, cr.Pass())
	failed := cr.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, MethodIndex(0), failed[0].Method)
	assert.Equal(t, KindAbnormalExit, failed[0].Failure.Kind)
	assert.False(t, cr.Consistent())
}

func TestExitCodeGating(t *testing.T) {
	// Output matches the expectation exactly; only the exit code is wrong.
	for _, code := range []int{-1, 2, 3, 127, 255} {
		inv := testutil.NewScriptedInvoker(fixedResponse(code, "31 32 33\n\n", "boom"))
		cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[1])

		for _, m := range cr.Methods {
			require.NotNil(t, m.Failure, "exit %d", code)
			assert.Equal(t, KindAbnormalExit, m.Failure.Kind, "exit %d", code)
			assert.False(t, m.Decoded, "abnormal exits must not be decoded")
			assert.Equal(t, "boom", m.Failure.Actual)
		}
	}
}

func TestExpectationMismatch(t *testing.T) {
	t.Run("expected success got failure", func(t *testing.T) {
		inv := testutil.NewScriptedInvoker(fixedResponse(1, "\n31 32 33\n", ""))
		cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[1])
		for _, m := range cr.Methods {
			require.NotNil(t, m.Failure)
			assert.Equal(t, KindExpectationMismatch, m.Failure.Kind)
			assert.Equal(t, "success", m.Failure.Expected)
			assert.Contains(t, m.Failure.Message, "expected success, got exit code 1")
		}
	})

	t.Run("expected failure got success", func(t *testing.T) {
		inv := testutil.NewScriptedInvoker(fixedResponse(0, "\n66 6f 6f\n", ""))
		cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[2])
		for _, m := range cr.Methods {
			require.NotNil(t, m.Failure)
			assert.Equal(t, KindExpectationMismatch, m.Failure.Kind)
			assert.Equal(t, "failure", m.Failure.Expected)
		}
	})
}

func TestExpectedFailureStillComparesOutput(t *testing.T) {
	inv := testutil.NewScriptedInvoker(fixedResponse(1, "\n66 6f\n", ""))
	cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[2])

	for _, m := range cr.Methods {
		require.NotNil(t, m.Failure)
		assert.Equal(t, KindValueMismatch, m.Failure.Kind)
		assert.Equal(t, FieldLeftover, m.Failure.Field)
		assert.True(t, m.Decoded)
		assert.Equal(t, "fo", m.Outcome.Leftover)
	}
}

func TestMalformedOutputRegardlessOfExitCode(t *testing.T) {
	cases := []struct {
		code int
		tc   TestCase
	}{
		{0, DefaultCorpus()[0]},
		{1, DefaultCorpus()[2]},
	}
	for _, c := range cases {
		for _, stdout := range []string{"", "48\n", "48\n49\n4a\n"} {
			inv := testutil.NewScriptedInvoker(fixedResponse(c.code, stdout, ""))
			cr := newTestRunner(inv).RunCase(context.Background(), 0, c.tc)
			for _, m := range cr.Methods {
				require.NotNil(t, m.Failure)
				assert.Equal(t, KindMalformedOutput, m.Failure.Kind, "exit %d stdout %q", c.code, stdout)
				assert.False(t, m.Decoded)
			}
		}
	}
}

func TestMalformedOutputFromEngine(t *testing.T) {
	inv := testutil.NewFakeEngineInvoker(testutil.ModeOneLine)
	cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[0])
	require.Len(t, cr.Failures(), 4)
	assert.Equal(t, KindMalformedOutput, cr.Failures()[0].Failure.Kind)

	inv = testutil.NewFakeEngineInvoker(testutil.ModeBadFormat)
	cr = newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[0])
	require.Len(t, cr.Failures(), 4)
	assert.Equal(t, KindMalformedOutput, cr.Failures()[0].Failure.Kind)
}

func TestInvocationErrors(t *testing.T) {
	timeout := testutil.NewScriptedInvoker(func(invoke.Request) (invoke.Result, error) {
		return invoke.Result{ExitCode: -1}, fmt.Errorf("%w after 1s: engine", invoke.ErrTimedOut)
	})
	cr := newTestRunner(timeout).RunCase(context.Background(), 0, DefaultCorpus()[0])
	for _, m := range cr.Methods {
		require.NotNil(t, m.Failure)
		assert.Equal(t, KindTimedOut, m.Failure.Kind)
		assert.True(t, errors.Is(m.Failure, invoke.ErrTimedOut))
	}

	missing := testutil.NewScriptedInvoker(func(invoke.Request) (invoke.Result, error) {
		return invoke.Result{}, errors.New("fork/exec: no such file or directory")
	})
	cr = newTestRunner(missing).RunCase(context.Background(), 0, DefaultCorpus()[0])
	for _, m := range cr.Methods {
		require.NotNil(t, m.Failure)
		assert.Equal(t, KindInvocation, m.Failure.Kind)
	}
}

func TestDivergentMethodIsReported(t *testing.T) {
	inv := testutil.NewFakeEngineInvoker(testutil.ModeDiverge)
	cr := newTestRunner(inv).RunCase(context.Background(), 0, DefaultCorpus()[0])

	assert.False(t, cr.Pass())
	assert.False(t, cr.Consistent())
	failed := cr.Failures()
	require.Len(t, failed, 1)
	assert.Equal(t, MethodIndex(2), failed[0].Method)
	assert.Equal(t, KindValueMismatch, failed[0].Failure.Kind)
	assert.Equal(t, "!", failed[0].Outcome.Leftover)
}

func TestConsistentWithNoMethods(t *testing.T) {
	assert.True(t, CaseResult{}.Consistent())
	assert.True(t, CaseResult{}.Pass())
}
