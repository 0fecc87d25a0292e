package rewrite

// limitEnforcer counts the rules added by one completion run and enforces
// the iteration and depth limits.
//
// Two limits are needed because they catch different failures:
//   - Iterations: the rule count keeps growing without converging
//   - Depth: the derived left-hand sides keep growing longer
type limitEnforcer struct {
	maxIterations int
	maxDepth      int
	current       int
}

func newLimitEnforcer(maxIterations, maxDepth int) *limitEnforcer {
	return &limitEnforcer{
		maxIterations: maxIterations,
		maxDepth:      maxDepth,
	}
}

// check counts one added rule and validates it against both limits.
// Completion stops as soon as the count reaches maxIterations.
func (l *limitEnforcer) check(rule Rule) *LimitError {
	l.current++
	if l.current >= l.maxIterations {
		return &LimitError{
			Result:        MaxIterations,
			Rules:         l.current,
			MaxIterations: l.maxIterations,
			Depth:         rule.Depth(),
			MaxDepth:      l.maxDepth,
			Rule:          rule.String(),
		}
	}
	if rule.Depth() > l.maxDepth {
		return &LimitError{
			Result:        MaxDepth,
			Rules:         l.current,
			MaxIterations: l.maxIterations,
			Depth:         rule.Depth(),
			MaxDepth:      l.maxDepth,
			Rule:          rule.String(),
		}
	}
	return nil
}
