package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/charta/internal/ir"
)

// Snapshot captures the outcome of every case in a scenario.
// Digests are left out; they are pinned by the ir package tests.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Outcomes     []SnapshotOutcome `json:"outcomes"`
}

// SnapshotOutcome is the golden view of one Outcome.
type SnapshotOutcome struct {
	Case  string   `json:"case"`
	Stage string   `json:"stage"`
	Codes []string `json:"codes"`
	Error string   `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(scenarioName string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: scenarioName, Outcomes: make([]SnapshotOutcome, len(result.Outcomes))}
	for i, o := range result.Outcomes {
		s.Outcomes[i] = SnapshotOutcome{Case: o.Case, Stage: o.Stage, Codes: o.Codes, Error: o.Error}
	}
	return s
}

// MarshalCanonical renders the snapshot as RFC 8785 canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s)
}

// RunWithGolden executes a scenario and compares its outcomes against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
