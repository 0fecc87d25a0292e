package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/reqm/internal/engine"
	"github.com/roach88/reqm/internal/rewrite"
)

// AssertionError is returned when an assertion fails.
// It includes the live rules to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Rules    []string // Live rules for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rules) > 0 {
		fmt.Fprintf(&buf, "\nRules:\n")
		for _, r := range e.Rules {
			fmt.Fprintf(&buf, "  %s\n", r)
		}
	}

	return buf.String()
}

// AssertionContext provides the completed run to assertions.
type AssertionContext struct {
	System  *rewrite.System
	Outcome rewrite.CompletionResult
}

func (a *AssertionContext) liveRules() []string {
	var out []string
	for id, r := range a.System.Rules() {
		out = append(out, fmt.Sprintf("%d: %s", id, r))
	}
	return out
}

func (a *AssertionContext) fail(typ, expected, actual string) error {
	return &AssertionError{
		Type:     typ,
		Expected: expected,
		Actual:   actual,
		Rules:    a.liveRules(),
	}
}

// assertResult checks the completion outcome.
func assertResult(actx *AssertionContext, assertion Assertion) error {
	if got := actx.Outcome.String(); got != assertion.Expect {
		return actx.fail(AssertResult, assertion.Expect, got)
	}
	return nil
}

// assertNormalForm checks that a term reduces to the expected normal form.
// The expected text is parsed and printed so spacing does not matter.
func assertNormalForm(actx *AssertionContext, assertion Assertion) error {
	nf, err := engine.Normalize(actx.System, assertion.Term)
	if err != nil {
		return err
	}
	want, err := actx.System.Context().ParseTerm(assertion.Expect)
	if err != nil {
		return fmt.Errorf("normal_form: expect: %w", err)
	}
	if nf.Output != want.String() {
		return actx.fail(AssertNormalForm,
			fmt.Sprintf("%s reduces to %s", nf.Input, want),
			fmt.Sprintf("%s reduces to %s", nf.Input, nf.Output))
	}
	return nil
}

// normalForms reduces every term of the assertion.
func normalForms(actx *AssertionContext, terms []string) ([]string, error) {
	out := make([]string, len(terms))
	for i, t := range terms {
		nf, err := engine.Normalize(actx.System, t)
		if err != nil {
			return nil, err
		}
		out[i] = nf.Output
	}
	return out, nil
}

// assertEquivalent checks that all terms share one normal form.
func assertEquivalent(actx *AssertionContext, assertion Assertion) error {
	nfs, err := normalForms(actx, assertion.Terms)
	if err != nil {
		return err
	}
	for i := 1; i < len(nfs); i++ {
		if nfs[i] != nfs[0] {
			return actx.fail(AssertEquivalent,
				fmt.Sprintf("%s equivalent to %s", assertion.Terms[i], assertion.Terms[0]),
				fmt.Sprintf("normal forms %s and %s", nfs[i], nfs[0]))
		}
	}
	return nil
}

// assertDistinct checks that no two terms share a normal form.
func assertDistinct(actx *AssertionContext, assertion Assertion) error {
	nfs, err := normalForms(actx, assertion.Terms)
	if err != nil {
		return err
	}
	seen := make(map[string]int, len(nfs))
	for i, nf := range nfs {
		if j, dup := seen[nf]; dup {
			return actx.fail(AssertDistinct,
				fmt.Sprintf("%s not equivalent to %s", assertion.Terms[i], assertion.Terms[j]),
				fmt.Sprintf("both reduce to %s", nf))
		}
		seen[nf] = i
	}
	return nil
}

// assertRuleCount checks the number of live rules.
func assertRuleCount(actx *AssertionContext, assertion Assertion) error {
	count := 0
	for range actx.System.Rules() {
		count++
	}
	if count != *assertion.Count {
		return actx.fail(AssertRuleCount,
			fmt.Sprintf("%d live rules", *assertion.Count),
			fmt.Sprintf("%d live rules", count))
	}
	return nil
}

// assertGeneratorCount checks the number of homotopy generators.
func assertGeneratorCount(actx *AssertionContext, assertion Assertion) error {
	count := len(actx.System.HomotopyGenerators())
	if count != *assertion.Count {
		return actx.fail(AssertGeneratorCount,
			fmt.Sprintf("%d generators", *assertion.Count),
			fmt.Sprintf("%d generators", count))
	}
	return nil
}

// assertRuleExists checks for a live rule with the given sides.
func assertRuleExists(actx *AssertionContext, assertion Assertion) error {
	ctx := actx.System.Context()
	lhs, err := ctx.ParseTerm(assertion.LHS)
	if err != nil {
		return fmt.Errorf("rule_exists: lhs: %w", err)
	}
	expected := lhs.String()
	rhsText := ""
	if assertion.RHS != "" {
		rhs, err := ctx.ParseTerm(assertion.RHS)
		if err != nil {
			return fmt.Errorf("rule_exists: rhs: %w", err)
		}
		rhsText = rhs.String()
		expected += " ⇒ " + rhsText
	}

	id, ok := actx.System.RuleID(ctx.Term(lhs))
	if !ok {
		for id := range actx.System.NumRules() {
			if r := actx.System.Rule(id); r.LHS().String() == lhs.String() {
				return actx.fail(AssertRuleExists, expected, "rule "+strconv.Itoa(id)+" is deleted")
			}
		}
		return actx.fail(AssertRuleExists, expected, "no rule with this lhs")
	}
	rule := actx.System.Rule(id)
	if rhsText != "" && rule.RHS().String() != rhsText {
		return actx.fail(AssertRuleExists, expected, rule.String())
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the completed run.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(actx *AssertionContext, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResult:
			err = assertResult(actx, assertion)
		case AssertNormalForm:
			err = assertNormalForm(actx, assertion)
		case AssertEquivalent:
			err = assertEquivalent(actx, assertion)
		case AssertDistinct:
			err = assertDistinct(actx, assertion)
		case AssertRuleCount:
			err = assertRuleCount(actx, assertion)
		case AssertGeneratorCount:
			err = assertGeneratorCount(actx, assertion)
		case AssertRuleExists:
			err = assertRuleExists(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
