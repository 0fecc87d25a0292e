package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/ir"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_OverlapABC(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/overlap_abc.yaml")
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, scenario))
}

func TestRunWithGolden_FailingScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "never_written",
		Description: "Fails before the golden comparison",
		Rules:       []ir.RuleSpec{{LHS: "A.B", RHS: "A"}},
		Assertions:  []Assertion{{Type: AssertRuleCount, Count: intPtr(5)}},
	}

	err := RunWithGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario never_written failed")
}

func TestGoldenObject_OmitsRunMetadata(t *testing.T) {
	result := NewResult()
	result.Snapshot = ir.SystemSnapshot{
		RunID:     "run-1",
		InputHash: "abc",
		Result:    "success",
		Steps:     2,
		Rules: []ir.RuleRecord{
			{ID: 0, LHS: "A.B", RHS: "A"},
		},
	}

	obj := goldenObject("demo", result)
	assert.Equal(t, "demo", obj["scenario_name"])
	assert.Equal(t, "success", obj["result"])
	assert.Equal(t, 2, obj["steps"])
	assert.NotContains(t, obj, "run_id")
	assert.NotContains(t, obj, "input_hash")
	assert.Len(t, obj["rules"], 1)
	assert.Len(t, obj["generators"], 0)
}
