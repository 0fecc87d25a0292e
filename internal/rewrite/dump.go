package rewrite

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/reqm/internal/ir"
)

// Dump writes the rules and homotopy generators in a human-readable form:
//
//	Rewrite system: {
//	- A.B ⇒ A
//	}
//	Homotopy generators: {
//	- A.C: (A ⇒ A.B).C ⊗ A.(B.C ⇒ C)
//	}
//
// The format is for diagnostics only.
func (s *System) Dump(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Rewrite system: {\n")
	for _, r := range s.rules {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("}\n")

	b.WriteString("Homotopy generators: {\n")
	for _, g := range s.generators {
		fmt.Fprintf(&b, "- %s: %s\n", g.Term, s.FormatPath(g.Term, g.Path))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatPath renders path as applied to term, marking each rewritten
// occurrence in place and joining steps with " ⊗ ".
func (s *System) FormatPath(term ir.MutableTerm, path Path) string {
	cur := term.Clone()
	parts := make([]string, 0, len(path))
	for _, step := range path {
		text := s.formatStep(cur, step)
		if err := s.applyStep(&cur, step); err != nil {
			parts = append(parts, "<invalid "+step.String()+">")
			break
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ⊗ ")
}

func (s *System) formatStep(term ir.MutableTerm, step Step) string {
	if step.kind == AdjustConcreteType {
		sign := "+"
		if step.inverse {
			sign = "-"
		}
		prefix := term[:min(step.offset, len(term))]
		return fmt.Sprintf("%s.(σ %s %s)", term, sign, prefix)
	}
	if step.ruleID >= len(s.rules) {
		return step.String()
	}

	r := s.rules[step.ruleID]
	from, to := r.lhs, r.rhs
	if step.inverse {
		from, to = to, from
	}
	end := min(step.offset+from.Len(), len(term))
	start := min(step.offset, end)

	var b strings.Builder
	if start > 0 {
		b.WriteString(term[:start].String())
		b.WriteByte('.')
	}
	fmt.Fprintf(&b, "(%s ⇒ %s)", from, to)
	if end < len(term) {
		b.WriteByte('.')
		b.WriteString(term[end:].String())
	}
	return b.String()
}
