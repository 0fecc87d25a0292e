package rewrite

// SimplifyRewriteSystem deletes redundant rules and reports whether the rule
// table changed.
//
// A rule is deleted when another live rule rewrites inside its LHS and both
// sides still meet without it, so every equation it proved stays provable.
// The loop through the remaining rules is recorded as a homotopy generator.
//
// A rule whose RHS is reducible is deleted and replaced by LHS ⇒ nf(RHS);
// rules are never edited in place because their IDs appear in recorded
// paths.
func (s *System) SimplifyRewriteSystem() bool {
	changed := false
	n := len(s.rules)
	for id := 0; id < n; id++ {
		r := s.rules[id]
		if r.deleted {
			continue
		}

		lhs := r.lhs.Mutable()
		var lhsPath Path
		if s.simplify(&lhs, &lhsPath, id) {
			rhs := r.rhs.Mutable()
			var rhsPath Path
			s.simplify(&rhs, &rhsPath, id)
			if lhs.Equal(rhs) {
				// LHS ⇒ RHS ⇒ nf ⇐ LHS
				loop := Path{NewRuleStep(0, id, false)}
				loop.Append(rhsPath)
				loop.Append(lhsPath.Inverse())
				s.markDeleted(id)
				s.recordGenerator(r.lhs.Mutable(), loop)
				s.debugf(DebugCompletion, "deleted redundant rule", "id", id, "rule", r.String())
				changed = true
				continue
			}
		}

		rhs := r.rhs.Mutable()
		var rhsPath Path
		if !s.simplify(&rhs, &rhsPath, id) {
			continue
		}
		s.markDeleted(id)
		path := Path{NewRuleStep(0, id, false)}
		path.Append(rhsPath)
		s.addRule(r.lhs.Mutable(), rhs, &path)
		s.debugf(DebugCompletion, "replaced rule with reducible RHS",
			"id", id,
			"rule", r.String(),
			"rhs", rhs.String())
		changed = true
	}
	return changed
}
