package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/store"
	"github.com/roach88/reqm/internal/testutil"
)

// runCompleteWithIDs runs the complete command with fixed run IDs.
func runCompleteWithIDs(t *testing.T, opts *CompleteOptions, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newCompleteCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompleteText(t *testing.T) {
	out, _, err := execute(t, "complete", specsDir("overlap"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Completion: success after 0 step(s)")
	assert.Contains(t, out, "2 live rule(s), 1 homotopy generator(s)")
	assert.NotContains(t, out, "Recorded run")
}

func TestCompleteDump(t *testing.T) {
	out, _, err := execute(t, "complete", specsDir("merged"), "--dump")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Completion: success")
	assert.Contains(t, out, "τ_0_0.[Q:T] ⇒ τ_0_0.[P&Q:T]")
}

func TestCompleteJSON(t *testing.T) {
	opts := &CompleteOptions{
		RootOptions: &RootOptions{Format: "json"},
		RunIDs:      engine.NewFixedGenerator("run-json"),
	}
	out, err := runCompleteWithIDs(t, opts, specsDir("merged"))
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		RunID  string         `json:"run_id"`
		Data   CompleteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-json", resp.RunID)
	assert.Equal(t, "success", resp.Data.Result)
	assert.Equal(t, 2, resp.Data.Steps)
	assert.Len(t, resp.Data.Snapshot.Generators, 2)
	assert.Equal(t, "run-json", resp.Data.Snapshot.RunID)
}

func TestCompleteRecordsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reqm.db")
	opts := &CompleteOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      engine.NewFixedGenerator("run-0001"),
	}

	out, err := runCompleteWithIDs(t, opts, specsDir("overlap"), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded run run-0001")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-0001")
	require.NoError(t, err)
	assert.Equal(t, "success", run.Snapshot.Result)
	assert.Len(t, run.Input.Rules, 2)
}

func TestCompleteReportsPreviousRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reqm.db")
	opts := &CompleteOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      testutil.NewRunIDSequence("run"),
	}

	out, err := runCompleteWithIDs(t, opts, specsDir("overlap"), "--db", dbPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "Same input as")

	out, err = runCompleteWithIDs(t, opts, specsDir("overlap"), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded run run-2")
	assert.Contains(t, out, "Same input as run-1")
}

func TestCompleteLimit(t *testing.T) {
	out, _, err := execute(t, "--max-depth", "6", "complete", specsDir("braid"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "completion did not finish")
	assert.Contains(t, out, "✗ Completion: max_depth")
}

func TestCompleteInvalidInput(t *testing.T) {
	out, _, err := execute(t, "complete", specsDir("invalid"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, engine.IsInvalidInput(err))
	assert.Contains(t, out, "Error [E103]")
}

func TestCompleteMissingSpecs(t *testing.T) {
	out, _, err := execute(t, "complete", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "specs directory not found")
}
