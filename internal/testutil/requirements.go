package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/reqm/internal/ir"
)

// Requirements builds a requirement set from equations written "lhs => rhs".
// It panics on an equation without exactly one "=>".
//
//	testutil.Requirements("A.B => A", "B.C => C")
func Requirements(equations ...string) ir.RequirementSet {
	rules := make([]ir.RuleSpec, 0, len(equations))
	for _, eq := range equations {
		lhs, rhs, ok := strings.Cut(eq, "=>")
		if !ok || strings.Contains(rhs, "=>") {
			panic(fmt.Sprintf("testutil: malformed equation %q", eq))
		}
		rules = append(rules, ir.RuleSpec{
			LHS: strings.TrimSpace(lhs),
			RHS: strings.TrimSpace(rhs),
		})
	}
	return ir.RequirementSet{Rules: rules}
}
