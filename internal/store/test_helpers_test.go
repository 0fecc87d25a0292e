package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/reqm/internal/ir"
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

// createTestInput creates a small requirement set.
func createTestInput() ir.RequirementSet {
	return ir.RequirementSet{
		Protocols: []ir.ProtocolDecl{
			{Name: "P", AssociatedTypes: []string{"T"}},
			{Name: "Q", Inherits: []string{"P"}},
		},
		Rules: []ir.RuleSpec{
			{ID: "r1", LHS: "A.B", RHS: "A"},
			{ID: "r2", LHS: "B.C", RHS: "C"},
		},
	}
}

// createTestSnapshot creates a snapshot with a deleted rule and one
// generator.
func createTestSnapshot(runID string) ir.SystemSnapshot {
	return ir.SystemSnapshot{
		RunID:         runID,
		Result:        "success",
		Steps:         1,
		MaxIterations: 4000,
		MaxDepth:      10,
		Protocols: []ir.ProtocolDecl{
			{Name: "P", AssociatedTypes: []string{"T"}},
			{Name: "Q", Inherits: []string{"P"}},
		},
		Rules: []ir.RuleRecord{
			{ID: 0, LHS: "A.B", RHS: "A"},
			{ID: 1, LHS: "B.C", RHS: "C", Deleted: true},
			{ID: 2, LHS: "A.C", RHS: "A"},
		},
		Generators: []ir.GeneratorRecord{
			{Term: "A.C", Path: []ir.StepRecord{
				{Kind: "rule", Offset: 0, RuleID: 0, Inverse: true},
				{Kind: "rule", Offset: 1, RuleID: 1},
				{Kind: "rule", Offset: 0, RuleID: 2},
			}},
		},
		EngineVersion: ir.EngineVersion,
	}
}

// writeTestRun stores createTestSnapshot(runID) with createTestInput.
func writeTestRun(t *testing.T, s *Store, runID string) ir.SystemSnapshot {
	t.Helper()
	snap := createTestSnapshot(runID)
	if err := s.WriteRun(context.Background(), createTestInput(), snap); err != nil {
		t.Fatalf("WriteRun(%s) failed: %v", runID, err)
	}
	return snap
}
