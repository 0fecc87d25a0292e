package engine

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/reqm/internal/ir"
)

// ReplayResult compares a stored run with a fresh completion of its input.
type ReplayResult struct {
	RunID string `json:"run_id"`

	// StoredHash is the snapshot hash recorded when the run was written.
	StoredHash string `json:"stored_hash"`

	// ReadHash is recomputed from the stored rows.
	ReadHash string `json:"read_hash"`

	// ReplayedHash is the hash of the fresh completion.
	ReplayedHash string `json:"replayed_hash"`

	Match bool `json:"match"`

	// Diff is the structural difference (-stored +replayed) when the
	// snapshots differ.
	Diff string `json:"diff,omitempty"`
}

// Replay re-runs a stored run's input with the run's limits and checks that
// completion reproduces the stored snapshot exactly.
//
// The replay is not written to the store.
func (e *Engine) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("replay %s: no store configured", runID)
	}

	run, err := e.store.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	replayer := New(nil, NewFixedGenerator(runID),
		WithLogger(e.logger),
		WithDebug(e.debug),
		WithMaxIterations(run.Snapshot.MaxIterations),
		WithMaxDepth(run.Snapshot.MaxDepth),
	)
	res, err := replayer.Run(ctx, run.Input)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	readHash, err := ir.SnapshotHash(run.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	replayedHash, err := ir.SnapshotHash(res.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	out := &ReplayResult{
		RunID:        runID,
		StoredHash:   run.SnapshotHash,
		ReadHash:     readHash,
		ReplayedHash: replayedHash,
	}
	out.Match = replayedHash == run.SnapshotHash && readHash == run.SnapshotHash
	if !out.Match {
		out.Diff = cmp.Diff(run.Snapshot, res.Snapshot)
	}

	e.logger.Info("replay finished", "run_id", runID, "match", out.Match)
	return out, nil
}
