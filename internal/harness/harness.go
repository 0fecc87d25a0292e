package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/store"
)

// Harness is the scenario execution engine.
// It runs scenarios with a fixed run ID against a private in-memory store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
	runID  string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Build and complete the scenario's requirement set
//  3. Replay the stored run and check it reproduces the snapshot
//  4. Evaluate assertions against the completed system
//  5. Return result with pass/fail, snapshot, and errors
//
// Invalid input and invariant violations are returned as errors; failed
// assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	runID := scenario.RunID
	if runID == "" {
		runID = "scenario-" + scenario.Name
	}

	logger := slog.New(slog.DiscardHandler) // Suppress logs in tests
	opts := []engine.EngineOption{engine.WithLogger(logger)}
	if scenario.Limits.MaxIterations > 0 {
		opts = append(opts, engine.WithMaxIterations(scenario.Limits.MaxIterations))
	}
	if scenario.Limits.MaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(scenario.Limits.MaxDepth))
	}

	h := &Harness{
		store:  st,
		engine: engine.New(st, engine.NewFixedGenerator(runID), opts...),
		logger: logger,
		runID:  runID,
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	res, err := h.engine.Run(ctx, scenario.RequirementSet())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Snapshot = res.Snapshot

	replay, err := h.engine.Replay(ctx, h.runID)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if !replay.Match {
		result.AddError(fmt.Sprintf("replay of %s does not reproduce the snapshot:\n%s", h.runID, replay.Diff))
	}

	actx := &AssertionContext{
		System:  res.System,
		Outcome: res.Outcome,
	}
	for _, msg := range EvaluateAssertions(actx, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished", "name", scenario.Name, "pass", result.Pass)
	return result, nil
}
