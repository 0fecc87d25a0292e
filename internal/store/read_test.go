package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/reqm/internal/ir"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	want := writeTestRun(t, s, "run-1")
	want.InputHash = ir.MustRequirementSetHash(createTestInput())

	run, err := s.ReadRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	if diff := cmp.Diff(want, run.Snapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(createTestInput(), run.Input); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
	if run.Seq != 1 {
		t.Errorf("seq = %d, want 1", run.Seq)
	}
	if got := ir.MustSnapshotHash(run.Snapshot); got != run.SnapshotHash {
		t.Errorf("stored snapshot hash %s does not match recomputed %s", run.SnapshotHash, got)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if err != sql.ErrNoRows {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestReadRun_EmptySnapshot(t *testing.T) {
	s := createTestStore(t)

	snap := ir.SystemSnapshot{
		RunID:         "empty",
		Result:        "not_run",
		EngineVersion: ir.EngineVersion,
	}
	if err := s.WriteRun(context.Background(), ir.RequirementSet{}, snap); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	run, err := s.ReadRun(context.Background(), "empty")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	// Empty tables read back as empty slices, not nil.
	if run.Snapshot.Protocols == nil || run.Snapshot.Rules == nil || run.Snapshot.Generators == nil {
		t.Errorf("expected non-nil empty slices, got %+v", run.Snapshot)
	}
	if len(run.Snapshot.Rules) != 0 {
		t.Errorf("rules = %d, want 0", len(run.Snapshot.Rules))
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len = %d, want 0", len(runs))
	}
}

func TestListRuns_DeterministicOrdering(t *testing.T) {
	s := createTestStore(t)
	for _, id := range []string{"run-b", "run-a", "run-c"} {
		writeTestRun(t, s, id)
	}

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"run-b", "run-a", "run-c"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	first := runs[0]
	if first.Seq != 1 || first.Result != "success" || first.Steps != 1 {
		t.Errorf("unexpected summary %+v", first)
	}
	// The deleted slot is not counted.
	if first.Rules != 2 {
		t.Errorf("rules = %d, want 2", first.Rules)
	}
	if first.Generators != 1 {
		t.Errorf("generators = %d, want 1", first.Generators)
	}
}

func TestRunsForInput(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestRun(t, s, "run-1")

	other := createTestInput()
	other.Rules = other.Rules[:1]
	if err := s.WriteRun(ctx, other, createTestSnapshot("run-2")); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	writeTestRun(t, s, "run-3")

	runs, err := s.RunsForInput(ctx, ir.MustRequirementSetHash(createTestInput()))
	if err != nil {
		t.Fatalf("RunsForInput() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-1" || runs[1].ID != "run-3" {
		t.Errorf("RunsForInput() = %+v, want run-1 and run-3", runs)
	}

	none, err := s.RunsForInput(ctx, "unknown")
	if err != nil {
		t.Fatalf("RunsForInput() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no runs, got %+v", none)
	}
}
