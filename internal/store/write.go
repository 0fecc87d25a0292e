package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/reqm/internal/ir"
)

// ErrRunConflict is returned when a run ID is already stored with a
// different snapshot.
var ErrRunConflict = errors.New("run already stored with a different snapshot")

// WriteRun stores a completed run and its input in a single transaction.
//
// The snapshot must carry a RunID. Its InputHash is filled from input when
// empty and must match input otherwise. Writing the same run twice is a
// no-op; writing a different snapshot under an existing ID returns
// ErrRunConflict.
//
// The run is assigned the next logical sequence number.
func (s *Store) WriteRun(ctx context.Context, input ir.RequirementSet, snap ir.SystemSnapshot) error {
	if snap.RunID == "" {
		return fmt.Errorf("write run: run id is required")
	}

	inputHash, err := ir.RequirementSetHash(input)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if snap.InputHash == "" {
		snap.InputHash = inputHash
	} else if snap.InputHash != inputHash {
		return fmt.Errorf("write run %s: input hash %s does not match input %s", snap.RunID, snap.InputHash, inputHash)
	}

	snapHash, err := ir.SnapshotHash(snap)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	inputJSON, err := marshalInput(input)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, input, input_hash, snapshot_hash, result, steps, max_iterations, max_depth, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		snap.RunID,
		seq,
		inputJSON,
		snap.InputHash,
		snapHash,
		snap.Result,
		snap.Steps,
		snap.MaxIterations,
		snap.MaxDepth,
		snap.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n == 0 {
		return checkExistingRun(ctx, tx, snap.RunID, snapHash)
	}

	if err := writeProtocols(ctx, tx, snap.RunID, snap.Protocols); err != nil {
		return fmt.Errorf("write run %s: %w", snap.RunID, err)
	}
	if err := writeRules(ctx, tx, snap.RunID, snap.Rules); err != nil {
		return fmt.Errorf("write run %s: %w", snap.RunID, err)
	}
	if err := writeGenerators(ctx, tx, snap.RunID, snap.Generators); err != nil {
		return fmt.Errorf("write run %s: %w", snap.RunID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func checkExistingRun(ctx context.Context, tx *sql.Tx, runID, snapHash string) error {
	var stored string
	err := tx.QueryRowContext(ctx, `SELECT snapshot_hash FROM runs WHERE id = ?`, runID).Scan(&stored)
	if err != nil {
		return fmt.Errorf("write run %s: read existing: %w", runID, err)
	}
	if stored != snapHash {
		return fmt.Errorf("write run %s: %w", runID, ErrRunConflict)
	}
	return nil
}

func writeProtocols(ctx context.Context, tx *sql.Tx, runID string, protocols []ir.ProtocolDecl) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO protocols (run_id, position, name, inherits, associated_types)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare protocols: %w", err)
	}
	defer stmt.Close()

	for i, p := range protocols {
		inherits, err := marshalStrings(p.Inherits)
		if err != nil {
			return err
		}
		assocTypes, err := marshalStrings(p.AssociatedTypes)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, i, p.Name, inherits, assocTypes); err != nil {
			return fmt.Errorf("insert protocol %s: %w", p.Name, err)
		}
	}
	return nil
}

func writeRules(ctx context.Context, tx *sql.Tx, runID string, rules []ir.RuleRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rules (run_id, rule_id, lhs, rhs, deleted)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare rules: %w", err)
	}
	defer stmt.Close()

	for _, r := range rules {
		if _, err := stmt.ExecContext(ctx, runID, r.ID, r.LHS, r.RHS, r.Deleted); err != nil {
			return fmt.Errorf("insert rule %d: %w", r.ID, err)
		}
	}
	return nil
}

func writeGenerators(ctx context.Context, tx *sql.Tx, runID string, generators []ir.GeneratorRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO homotopy_generators (run_id, position, term, path)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare generators: %w", err)
	}
	defer stmt.Close()

	for i, g := range generators {
		path, err := marshalPath(g.Path)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, i, g.Term, path); err != nil {
			return fmt.Errorf("insert generator %d: %w", i, err)
		}
	}
	return nil
}
