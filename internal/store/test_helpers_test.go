package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/charta/internal/testutil"
)

// createTestStore creates a new store in a temp directory with
// deterministic run IDs (run-0001, run-0002, ...).
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewFixedIDGenerator("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(document, digest string, valid bool) Run {
	stage := "valid"
	if !valid {
		stage = "semantic"
	}
	return Run{
		Document: document,
		Digest:   digest,
		Schema:   "embedded:ir.schema.json",
		Stage:    stage,
		Valid:    valid,
	}
}
