package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reqm/internal/ir"
)

// Run is a stored completion run.
type Run struct {
	Seq          int64
	Input        ir.RequirementSet
	Snapshot     ir.SystemSnapshot
	SnapshotHash string
}

// RunSummary is one line of a run listing.
type RunSummary struct {
	ID           string `json:"id"`
	Seq          int64  `json:"seq"`
	Result       string `json:"result"`
	Steps        int    `json:"steps"`
	Rules        int    `json:"rules"`
	Generators   int    `json:"generators"`
	InputHash    string `json:"input_hash"`
	SnapshotHash string `json:"snapshot_hash"`
}

// ReadRun returns the run with the given ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var (
		run       Run
		inputJSON string
	)
	snap := &run.Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, input, input_hash, snapshot_hash, result, steps, max_iterations, max_depth, engine_version
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&snap.RunID,
		&run.Seq,
		&inputJSON,
		&snap.InputHash,
		&run.SnapshotHash,
		&snap.Result,
		&snap.Steps,
		&snap.MaxIterations,
		&snap.MaxDepth,
		&snap.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, sql.ErrNoRows
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	if run.Input, err = unmarshalInput(inputJSON); err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if snap.Protocols, err = s.readProtocols(ctx, id); err != nil {
		return Run{}, err
	}
	if snap.Rules, err = s.readRules(ctx, id); err != nil {
		return Run{}, err
	}
	if snap.Generators, err = s.readGenerators(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *Store) readProtocols(ctx context.Context, runID string) ([]ir.ProtocolDecl, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, inherits, associated_types
		FROM protocols
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query protocols: %w", err)
	}
	defer rows.Close()

	protocols := []ir.ProtocolDecl{}
	for rows.Next() {
		var (
			decl                 ir.ProtocolDecl
			inherits, assocTypes string
		)
		if err := rows.Scan(&decl.Name, &inherits, &assocTypes); err != nil {
			return nil, fmt.Errorf("scan protocol: %w", err)
		}
		if decl.Inherits, err = unmarshalStrings(inherits); err != nil {
			return nil, err
		}
		if decl.AssociatedTypes, err = unmarshalStrings(assocTypes); err != nil {
			return nil, err
		}
		protocols = append(protocols, decl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protocols: %w", err)
	}
	return protocols, nil
}

func (s *Store) readRules(ctx context.Context, runID string) ([]ir.RuleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, lhs, rhs, deleted
		FROM rules
		WHERE run_id = ?
		ORDER BY rule_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []ir.RuleRecord{}
	for rows.Next() {
		var r ir.RuleRecord
		if err := rows.Scan(&r.ID, &r.LHS, &r.RHS, &r.Deleted); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (s *Store) readGenerators(ctx context.Context, runID string) ([]ir.GeneratorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT term, path
		FROM homotopy_generators
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query generators: %w", err)
	}
	defer rows.Close()

	generators := []ir.GeneratorRecord{}
	for rows.Next() {
		var (
			g    ir.GeneratorRecord
			path string
		)
		if err := rows.Scan(&g.Term, &path); err != nil {
			return nil, fmt.Errorf("scan generator: %w", err)
		}
		if g.Path, err = unmarshalPath(path); err != nil {
			return nil, err
		}
		generators = append(generators, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generators: %w", err)
	}
	return generators, nil
}

// ListRuns returns a summary of every stored run.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	return s.queryRunSummaries(ctx, "")
}

// RunsForInput returns the runs of the requirement set with the given
// content hash, in the same order as ListRuns.
func (s *Store) RunsForInput(ctx context.Context, inputHash string) ([]RunSummary, error) {
	return s.queryRunSummaries(ctx, "WHERE r.input_hash = ?", inputHash)
}

func (s *Store) queryRunSummaries(ctx context.Context, where string, args ...any) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.result, r.steps, r.input_hash, r.snapshot_hash,
			(SELECT COUNT(*) FROM rules WHERE run_id = r.id AND deleted = 0),
			(SELECT COUNT(*) FROM homotopy_generators WHERE run_id = r.id)
		FROM runs r
		`+where+`
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Seq, &r.Result, &r.Steps, &r.InputHash, &r.SnapshotHash, &r.Rules, &r.Generators); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
