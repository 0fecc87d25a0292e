package rewrite

import "fmt"

// CompletionResult is the outcome of ComputeConfluentCompletion.
type CompletionResult uint8

const (
	// Success means the system is confluent.
	Success CompletionResult = iota

	// MaxIterations means completion added maxIterations rules without
	// converging.
	MaxIterations

	// MaxDepth means completion derived a rule whose LHS is longer than
	// allowed.
	MaxDepth
)

// String returns the result name used in snapshots and CLI output.
func (r CompletionResult) String() string {
	switch r {
	case Success:
		return "success"
	case MaxIterations:
		return "max_iterations"
	case MaxDepth:
		return "max_depth"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// ComputeConfluentCompletion runs Knuth-Bendix completion.
//
// Each pass resolves the unchecked critical pairs, drains the associated
// type merge queue and simplifies the rule table. Passes repeat while any of
// them changed the system. Every rule derived from a critical pair or a
// merge counts against maxIterations and its LHS length against maxDepth;
// the first violation stops completion. Completion reports MaxIterations
// once the count reaches maxIterations.
//
// The second result is the number of rules counted.
func (s *System) ComputeConfluentCompletion(maxIterations, maxDepth int) (CompletionResult, int) {
	lim := newLimitEnforcer(maxIterations, maxDepth)
	s.completion = completionState{ran: true, maxIterations: maxIterations, maxDepth: maxDepth}

	for pass := 1; ; pass++ {
		changed := false

		for _, p := range s.criticalPairPass() {
			mark := len(s.rules)
			if !s.addRule(p.lhs, p.rhs, &p.path) {
				continue
			}
			changed = true
			if err := s.checkNewRules(lim, mark); err != nil {
				return s.stopCompletion(lim, err)
			}
		}

		mark := len(s.rules)
		if s.processMergedAssociatedTypes() {
			changed = true
		}
		if err := s.checkNewRules(lim, mark); err != nil {
			return s.stopCompletion(lim, err)
		}

		// Replacement rules keep the LHS of the rule they replace, so they
		// count against neither limit.
		if s.SimplifyRewriteSystem() {
			changed = true
		}

		s.debugf(DebugCompletion, "completion pass done",
			"pass", pass,
			"rules", len(s.rules),
			"added", lim.current,
			"changed", changed)
		if !changed {
			break
		}
	}

	s.completion.result = Success
	s.completion.steps = lim.current
	s.logger.Info("completion converged",
		"rules", len(s.rules),
		"added", lim.current,
		"generators", len(s.generators))
	return Success, lim.current
}

// checkNewRules runs the limit checks on every rule added since mark.
func (s *System) checkNewRules(lim *limitEnforcer, mark int) *LimitError {
	for id := mark; id < len(s.rules); id++ {
		if err := lim.check(s.rules[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) stopCompletion(lim *limitEnforcer, err *LimitError) (CompletionResult, int) {
	s.completion.result = err.Result
	s.completion.steps = lim.current
	s.completion.err = err
	s.logger.Warn("completion stopped", "error", err.Error(), "rules", len(s.rules))
	return err.Result, lim.current
}

// CompletionErr returns the limit error of the last completion run, or nil
// if it succeeded or never ran.
func (s *System) CompletionErr() error {
	if s.completion.err == nil {
		return nil
	}
	return s.completion.err
}
