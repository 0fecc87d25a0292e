package rewrite

import (
	"fmt"

	"github.com/roach88/reqm/internal/ir"
)

// ReplayPath applies path to a copy of term and returns the end term.
//
// It fails when a step references a rule that does not exist or does not
// apply at its offset. Deleted rules still replay.
func (s *System) ReplayPath(term ir.MutableTerm, path Path) (ir.MutableTerm, error) {
	out := term.Clone()
	for i, step := range path {
		if err := s.applyStep(&out, step); err != nil {
			return nil, fmt.Errorf("step %d (%s) on %s: %w", i, step, out, err)
		}
	}
	return out, nil
}

func (s *System) applyStep(term *ir.MutableTerm, step Step) error {
	switch step.kind {
	case ApplyRewriteRule:
		if step.ruleID >= len(s.rules) {
			return newInvariantError(ErrCodeStaleRuleID, step.ruleID,
				"rule ID out of range [0, %d)", len(s.rules))
		}
		r := s.rules[step.ruleID]
		from, to := r.lhs, r.rhs
		if step.inverse {
			from, to = to, from
		}
		if !term.HasPrefixAt(step.offset, from.Symbols()) {
			return newInvariantError(ErrCodeBrokenPath, step.ruleID,
				"%s does not occur at offset %d", from, step.offset)
		}
		term.Replace(step.offset, step.offset+from.Len(), to.Symbols())
		return nil

	case AdjustConcreteType:
		t := *term
		if len(t) == 0 || step.offset >= len(t) || !t.Last().IsSuperclassOrConcreteType() {
			return newInvariantError(ErrCodeBrokenPath, -1,
				"no superclass or concrete type symbol after offset %d", step.offset)
		}
		prefix := t[:step.offset]
		if !step.inverse {
			t[len(t)-1] = s.ctx.PrependPrefixToSubstitutions(t.Last(), prefix)
			return nil
		}
		adjusted, ok := s.ctx.RemovePrefixFromSubstitutions(t.Last(), prefix)
		if !ok {
			return newInvariantError(ErrCodeBrokenPath, -1,
				"substitutions of %s do not start with %s", t.Last(), prefix)
		}
		t[len(t)-1] = adjusted
		return nil
	}
	return newInvariantError(ErrCodeBrokenPath, -1, "unknown step kind %s", step.kind)
}

// VerifyRewriteRules checks that every live rule is oriented. A violation
// panics with an *InvariantError.
func (s *System) VerifyRewriteRules() {
	for id, r := range s.rules {
		if r.deleted {
			continue
		}
		if r.lhs.Compare(r.rhs, s.graph) <= 0 {
			invariantViolation(ErrCodeMisorientedRule, id, "rule %s is not oriented", r)
		}
		if other := s.trie.lookup(r.lhs.Symbols()); other != id {
			invariantViolation(ErrCodeDuplicateRule, id, "trie maps %s to rule %d", r.lhs, other)
		}
	}
}

// VerifyHomotopyGenerators checks that every generator's path replays from
// its term back to the same term. A violation panics with an
// *InvariantError.
func (s *System) VerifyHomotopyGenerators() {
	for i, g := range s.generators {
		end, err := s.ReplayPath(g.Term, g.Path)
		if err != nil {
			ie := &InvariantError{Code: ErrCodeBrokenPath, RuleID: -1}
			if IsInvariantError(err, ErrCodeStaleRuleID) {
				ie.Code = ErrCodeStaleRuleID
			}
			ie.Message = fmt.Sprintf("homotopy generator %d: %v", i, err)
			panic(ie)
		}
		if !end.Equal(g.Term) {
			invariantViolation(ErrCodeBrokenPath, -1,
				"homotopy generator %d on %s ends at %s", i, g.Term, end)
		}
	}
}

// Verify runs every consistency check.
func (s *System) Verify() {
	s.VerifyRewriteRules()
	s.VerifyHomotopyGenerators()
}
