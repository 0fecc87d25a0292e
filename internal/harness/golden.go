package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reqm/internal/ir"
)

// goldenObject converts a scenario result to a map[string]any for
// canonical JSON serialization. Run metadata (run ID, hashes, limits,
// engine version) is left out so golden files only change when completion
// does.
func goldenObject(scenarioName string, result *Result) map[string]any {
	snap := result.Snapshot

	rules := make([]any, len(snap.Rules))
	for i, r := range snap.Rules {
		rules[i] = r.CanonicalObject()
	}
	gens := make([]any, len(snap.Generators))
	for i, g := range snap.Generators {
		gens[i] = g.CanonicalObject()
	}

	return map[string]any{
		"scenario_name": scenarioName,
		"result":        snap.Result,
		"steps":         snap.Steps,
		"rules":         rules,
		"generators":    gens,
	}
}

// GoldenBytes returns the canonical JSON stored in a scenario's golden file.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(goldenObject(scenarioName, result))
}

// RunWithGolden executes a scenario and compares the completed system
// against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails or an assertion does not hold.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's snapshot against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(scenarioName, result)
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
