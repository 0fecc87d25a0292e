package rewrite

import (
	"fmt"
	"slices"
)

// MaxStepField bounds Step offsets and rule IDs.
const MaxStepField = 1<<15 - 1

// StepKind distinguishes the two kinds of rewrite step.
type StepKind uint8

const (
	// ApplyRewriteRule replaces an occurrence of a rule's LHS with its RHS,
	// or the RHS with the LHS when inverted.
	ApplyRewriteRule StepKind = iota

	// AdjustConcreteType prepends the prefix term[:offset] to every
	// substitution of the superclass or concrete type symbol at the end of
	// the term, or removes it when inverted.
	AdjustConcreteType
)

// String returns the kind name used in snapshots.
func (k StepKind) String() string {
	switch k {
	case ApplyRewriteRule:
		return "rule"
	case AdjustConcreteType:
		return "adjust"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Step is one elementary rewrite. Steps are built with NewRuleStep and
// NewAdjustStep, which check the field bounds.
type Step struct {
	kind    StepKind
	offset  int
	ruleID  int
	inverse bool
}

// NewRuleStep returns a step applying rule ruleID at offset.
func NewRuleStep(offset, ruleID int, inverse bool) Step {
	checkStepField("offset", offset)
	checkStepField("rule ID", ruleID)
	return Step{kind: ApplyRewriteRule, offset: offset, ruleID: ruleID, inverse: inverse}
}

// NewAdjustStep returns a step adjusting the substitutions of the final
// symbol by the prefix of length offset.
func NewAdjustStep(offset int, inverse bool) Step {
	checkStepField("offset", offset)
	return Step{kind: AdjustConcreteType, offset: offset, inverse: inverse}
}

func checkStepField(field string, v int) {
	if v < 0 || v > MaxStepField {
		invariantViolation(ErrCodeStepOverflow, -1, "step %s %d outside [0, %d]", field, v, MaxStepField)
	}
}

// Kind returns the step kind.
func (s Step) Kind() StepKind { return s.kind }

// Offset returns the position the step applies at.
func (s Step) Offset() int { return s.offset }

// RuleID returns the applied rule. Only meaningful for ApplyRewriteRule.
func (s Step) RuleID() int { return s.ruleID }

// IsInverse reports whether the step runs right to left.
func (s Step) IsInverse() bool { return s.inverse }

// Inverted returns the step with its direction flipped.
func (s Step) Inverted() Step {
	s.inverse = !s.inverse
	return s
}

// Equal reports whether both steps are identical.
func (s Step) Equal(other Step) bool { return s == other }

// String renders the step for logs.
func (s Step) String() string {
	dir := ""
	if s.inverse {
		dir = "⁻¹"
	}
	if s.kind == AdjustConcreteType {
		return fmt.Sprintf("adjust%s@%d", dir, s.offset)
	}
	return fmt.Sprintf("rule(%d)%s@%d", s.ruleID, dir, s.offset)
}

// Path is a sequence of steps rewriting some start term into some end term.
type Path []Step

// Add appends a single step.
func (p *Path) Add(step Step) {
	*p = append(*p, step)
}

// Append composes p with other: first p, then other.
func (p *Path) Append(other Path) {
	*p = append(*p, other...)
}

// Invert reverses p in place so that it rewrites the end term back into the
// start term.
func (p *Path) Invert() {
	slices.Reverse(*p)
	for i := range *p {
		(*p)[i] = (*p)[i].Inverted()
	}
}

// Inverse returns an inverted copy of p.
func (p Path) Inverse() Path {
	out := slices.Clone(p)
	out.Invert()
	return out
}

// Clone returns an independent copy.
func (p Path) Clone() Path { return slices.Clone(p) }

// IsTrivial reports whether p freely reduces to the empty path, cancelling
// every step that is immediately followed by its inverse.
func (p Path) IsTrivial() bool {
	stack := make([]Step, 0, len(p))
	for _, step := range p {
		if n := len(stack); n > 0 && stack[n-1] == step.Inverted() {
			stack = stack[:n-1]
			continue
		}
		stack = append(stack, step)
	}
	return len(stack) == 0
}
