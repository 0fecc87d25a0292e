package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/ir"
)

func TestCompileValidSpecs(t *testing.T) {
	out, _, err := execute(t, "compile", specsDir("merged"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 3 protocol(s), 2 rule(s)")
	assert.Contains(t, out, "same-t: τ_0_0.[Q:T] == τ_0_0.[P:T]")
	assert.Contains(t, out, "P associated [T]")
	assert.Contains(t, out, "Input hash: ")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "compile", specsDir("overlap"))
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.Requirements)
	assert.Equal(t, []ir.RuleSpec{
		{ID: "ab", LHS: "A.B", RHS: "A"},
		{ID: "bc", LHS: "B.C", RHS: "C"},
	}, resp.Data.Requirements.Rules)

	want, err := ir.RequirementSetHash(*resp.Data.Requirements)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Data.InputHash)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	out, _, err := execute(t, "compile", specsDir("overlap"), "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote canonical requirements to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	want, err := ir.MarshalCanonical(ir.RequirementSet{
		Protocols: []ir.ProtocolDecl{},
		Rules: []ir.RuleSpec{
			{LHS: "A.B", RHS: "A"},
			{LHS: "B.C", RHS: "C"},
		},
	}.CanonicalObject())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, "compile", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "specs directory not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, _, err := execute(t, "compile", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "Error [E003]")
	assert.Contains(t, out, "no CUE files found")
}

func TestCompileErrors(t *testing.T) {
	out, _, err := execute(t, "compile", specsDir("broken"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E110: rhs is required")
}

func TestCompileErrorsJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "compile", specsDir("broken"))
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E110", resp.Error.Code)
}

func TestCompileNoRequirements(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.cue"), []byte("package test\n\nother: 1\n"), 0644))

	out, _, err := execute(t, "compile", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no protocols or rules found in specs")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"protocol":         "E101",
		"inherits":         "E103",
		"associated_types": "E106",
		"lhs":              "E110",
		"rhs":              "E110",
		"cue":              ErrCodeBuildFailed,
		"other":            ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
