package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/reqm/internal/compiler"
	"github.com/roach88/reqm/internal/ir"
	"github.com/roach88/reqm/internal/rewrite"
	"github.com/roach88/reqm/internal/store"
)

// Engine runs requirement sets through completion and records the results.
//
// Each Run builds a fresh rewrite system in its own ir.Context, completes
// it, verifies it and, when a store is configured, writes the snapshot as a
// new run. Runs share nothing but the store.
type Engine struct {
	store  *store.Store
	ids    RunIDGenerator
	logger *slog.Logger
	debug  rewrite.DebugFlags

	maxIterations int
	maxDepth      int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxIterations sets the maximum number of rules completion may add.
//
// Default: rewrite.DefaultMaxIterations
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithMaxDepth sets the maximum LHS length of a rule added by completion.
//
// Default: rewrite.DefaultMaxDepth
func WithMaxDepth(n int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithLogger sets the logger passed to every rewrite system.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDebug enables rewrite system debug categories.
func WithDebug(flags rewrite.DebugFlags) EngineOption {
	return func(e *Engine) {
		e.debug = flags
	}
}

// New creates an Engine. s may be nil, in which case runs are not stored.
func New(s *store.Store, ids RunIDGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         s,
		ids:           ids,
		logger:        slog.New(slog.DiscardHandler),
		maxIterations: rewrite.DefaultMaxIterations,
		maxDepth:      rewrite.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one Run.
type Result struct {
	RunID    string
	System   *rewrite.System
	Snapshot ir.SystemSnapshot
	Outcome  rewrite.CompletionResult
	Steps    int

	// Err is the limit error when Outcome is not Success.
	Err error
}

// Build validates rs and returns an initialized, not yet completed, rewrite
// system. The protocol graph is restricted to the protocols the rules
// reference and everything they refine.
func (e *Engine) Build(rs ir.RequirementSet) (*rewrite.System, error) {
	if verrs := compiler.ValidateRequirements(&rs); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, newInvalidInputError(errors.Join(errs...),
			"%d validation error(s), first: %s", len(verrs), verrs[0].Error())
	}

	ctx := ir.NewContext()
	pairs := make([]rewrite.TermPair, 0, len(rs.Rules))
	terms := make([][]ir.Symbol, 0, 2*len(rs.Rules))
	for i, r := range rs.Rules {
		lhs, err := ctx.ParseTerm(r.LHS)
		if err != nil {
			return nil, newInvalidInputError(err, "rule %s: lhs: %v", ruleLabel(i, r), err)
		}
		rhs, err := ctx.ParseTerm(r.RHS)
		if err != nil {
			return nil, newInvalidInputError(err, "rule %s: rhs: %v", ruleLabel(i, r), err)
		}
		pairs = append(pairs, rewrite.TermPair{LHS: lhs, RHS: rhs})
		terms = append(terms, lhs, rhs)
	}

	graph, err := ir.BuildProtocolGraph(rs.Protocols, ir.ReferencedProtocols(terms...))
	if err != nil {
		return nil, newInvalidInputError(err, "protocol graph: %v", err)
	}

	sys := rewrite.New(ctx, rewrite.WithLogger(e.logger), rewrite.WithDebug(e.debug))
	if err := guardInvariants("", func() { sys.Initialize(pairs, graph) }); err != nil {
		return nil, err
	}
	return sys, nil
}

// Run completes rs and returns the completed system and its snapshot.
//
// Stopping at the iteration or depth limit is not an error: the partial
// system is verified and stored like a converged one, with Result.Outcome
// and Result.Err describing the limit. Errors are returned for invalid
// input, invariant violations and storage failures.
func (e *Engine) Run(ctx context.Context, rs ir.RequirementSet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sys, err := e.Build(rs)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: e.ids.Generate(), System: sys}
	err = guardInvariants(res.RunID, func() {
		res.Outcome, res.Steps = sys.ComputeConfluentCompletion(e.maxIterations, e.maxDepth)
		sys.Verify()
	})
	if err != nil {
		return nil, err
	}
	res.Err = sys.CompletionErr()

	inputHash, err := ir.RequirementSetHash(rs)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", res.RunID, err)
	}
	res.Snapshot = sys.Snapshot()
	res.Snapshot.RunID = res.RunID
	res.Snapshot.InputHash = inputHash

	e.logger.Info("run finished",
		"run_id", res.RunID,
		"result", res.Outcome.String(),
		"steps", res.Steps,
		"rules", sys.NumRules())

	if e.store != nil {
		if err := e.store.WriteRun(ctx, rs, res.Snapshot); err != nil {
			return res, fmt.Errorf("run %s: %w", res.RunID, err)
		}
	}
	return res, nil
}

func ruleLabel(i int, r ir.RuleSpec) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("#%d", i)
}
