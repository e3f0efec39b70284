package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/scnconform/internal/conformance"
	"github.com/roach88/scnconform/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// runSuite runs the default corpus against the fake engine in mode with a
// fixed run ID.
func runSuite(t *testing.T, runID, mode string) *conformance.SuiteResult {
	t.Helper()
	r := conformance.NewRunner(testutil.NewFakeEngineInvoker(mode))
	r.Clock = testutil.NewDeterministicClock()
	r.RunIDs = testutil.NewFixedRunIDGenerator(runID)
	res, err := r.RunSuite(context.Background(), "/build/scn_stdin_parameterized_test", conformance.DefaultCorpus())
	if err != nil {
		t.Fatalf("RunSuite() failed: %v", err)
	}
	return res
}

// recordSuite writes res to s the way the CLI does.
func recordSuite(t *testing.T, s *Store, res *conformance.SuiteResult, start time.Time) {
	t.Helper()
	ctx := context.Background()
	if err := s.BeginRun(ctx, res.RunID, res.Binary, start); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	for _, cr := range res.Cases {
		if err := s.RecordCase(ctx, res.RunID, cr); err != nil {
			t.Fatalf("RecordCase() failed: %v", err)
		}
	}
	if err := s.FinishRun(ctx, res, start.Add(time.Second)); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
}
