package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/ir"
	"github.com/roach88/reqm/internal/store"
	"github.com/roach88/reqm/internal/testutil"
)

// specsDir returns a spec directory under the repository's testdata/specs.
func specsDir(name string) string {
	return filepath.Join("..", "..", "testdata", "specs", name)
}

// execute runs the root command with args and returns stdout, stderr and the
// command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// seedRuns records one completed run per requirement set, with run IDs
// run-1, run-2 and so on.
func seedRuns(t *testing.T, dbPath string, sets ...ir.RequirementSet) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	eng := engine.New(st, testutil.NewRunIDSequence("run"))
	for _, rs := range sets {
		_, err := eng.Run(context.Background(), rs)
		require.NoError(t, err)
	}
}

func overlapSet() ir.RequirementSet {
	return testutil.Requirements("A.B => A", "B.C => C")
}

func addsRuleSet() ir.RequirementSet {
	return testutil.Requirements("A.B => B", "B.C => A")
}
