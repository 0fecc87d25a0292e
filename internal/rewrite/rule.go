package rewrite

import "github.com/roach88/reqm/internal/ir"

// Rule is an oriented equation LHS ⇒ RHS with LHS > RHS at insertion.
//
// Rules are never removed from the table. A deleted rule keeps its slot so
// that the rule IDs embedded in recorded paths stay valid.
type Rule struct {
	lhs     ir.Term
	rhs     ir.Term
	deleted bool
}

// LHS returns the left-hand side.
func (r Rule) LHS() ir.Term { return r.lhs }

// RHS returns the right-hand side.
func (r Rule) RHS() ir.Term { return r.rhs }

// IsDeleted reports whether the rule was marked redundant.
func (r Rule) IsDeleted() bool { return r.deleted }

// Depth returns the length of the LHS, the quantity bounded by the
// completion depth limit.
func (r Rule) Depth() int { return r.lhs.Len() }

// String renders the rule as "lhs ⇒ rhs".
func (r Rule) String() string {
	s := r.lhs.String() + " ⇒ " + r.rhs.String()
	if r.deleted {
		s += " [deleted]"
	}
	return s
}

// TermPair is an unoriented input equation.
type TermPair struct {
	LHS ir.MutableTerm
	RHS ir.MutableTerm
}

// markDeleted flags rule id as redundant. Deleting twice is a defect.
func (s *System) markDeleted(id int) {
	r := &s.rules[id]
	if r.deleted {
		invariantViolation(ErrCodeRuleDeletedTwice, id, "rule %s deleted twice", r)
	}
	r.deleted = true
}
