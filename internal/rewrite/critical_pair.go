package rewrite

import "github.com/roach88/reqm/internal/ir"

// criticalPair is an equation derived from an overlap, with a path from
// lhs to rhs through the overlapped term.
type criticalPair struct {
	lhs  ir.MutableTerm
	rhs  ir.MutableTerm
	path Path
}

// computeCriticalPair resolves the overlap of rule rhsID's LHS starting at
// position from inside rule lhsID's LHS.
//
// There are two shapes:
//
//	lhs = T.U.V ⇒ X, rhs = U ⇒ Y:  (X, T.Y.V)
//	lhs = T.U ⇒ X,   rhs = U.V ⇒ Y: (X.V, T.Y)
//
// In the second shape, when V ends in a superclass or concrete type symbol
// the prefix T is prepended to its substitutions in X.V, and the path
// carries the matching adjustment.
//
// A pair whose sides are already equal is recorded as a homotopy generator
// and not returned.
func (s *System) computeCriticalPair(from, lhsID, rhsID int) (criticalPair, bool) {
	lhs, rhs := s.rules[lhsID], s.rules[rhsID]
	l, r := lhs.lhs.Symbols(), rhs.lhs.Symbols()
	t := l[:from]

	var x, y ir.MutableTerm
	var path Path
	if from+len(r) < len(l) {
		v := l[from+len(r):]
		x = lhs.rhs.Mutable()
		y = concat(t, rhs.rhs.Symbols(), v)

		path.Add(NewRuleStep(0, lhsID, true))
		path.Add(NewRuleStep(from, rhsID, false))
	} else {
		v := r[len(l)-from:]
		x = concat(lhs.rhs.Symbols(), v)
		y = concat(t, rhs.rhs.Symbols())

		adjust := len(t) > 0 && len(v) > 0 && v[len(v)-1].IsSuperclassOrConcreteType()
		if adjust {
			x[len(x)-1] = s.ctx.PrependPrefixToSubstitutions(x.Last(), t)
		}

		path.Add(NewRuleStep(0, lhsID, true))
		if adjust {
			path.Add(NewAdjustStep(from, true))
		}
		path.Add(NewRuleStep(from, rhsID, false))
	}

	if x.Equal(y) {
		s.recordGenerator(x, path)
		return criticalPair{}, false
	}
	return criticalPair{lhs: x, rhs: y, path: path}, true
}

// criticalPairPass examines every unchecked overlap among the current live
// rules and returns the resulting equations in rule order.
func (s *System) criticalPairPass() []criticalPair {
	var pairs []criticalPair
	n := len(s.rules)
	for i := 0; i < n; i++ {
		if s.rules[i].deleted {
			continue
		}
		l := s.rules[i].lhs.Symbols()

		// Every overlap position of a newly seen pair is handled in this
		// pass; the pair is marked afterwards.
		var seen []int
		for from := range l {
			for _, j := range s.trie.findAll(l[from:]) {
				if s.rules[j].deleted || (i == j && from == 0) {
					continue
				}
				if s.overlaps.isChecked(i, j) {
					continue
				}
				seen = append(seen, j)
				if p, ok := s.computeCriticalPair(from, i, j); ok {
					pairs = append(pairs, p)
				}
			}
		}
		for _, j := range seen {
			s.overlaps.record(i, j)
		}
	}
	s.debugf(DebugCompletion, "critical pair pass",
		"rules", n,
		"pairs", len(pairs),
		"checked_overlaps", s.overlaps.size())
	return pairs
}

func concat(parts ...[]ir.Symbol) ir.MutableTerm {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(ir.MutableTerm, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
