package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/ir"
)

// parseRules parses "lhs => rhs" strings into term pairs.
func parseRules(t *testing.T, ctx *ir.Context, rules ...string) []TermPair {
	t.Helper()
	pairs := make([]TermPair, 0, len(rules))
	for _, r := range rules {
		lhs, rhs, ok := strings.Cut(r, "=>")
		require.True(t, ok, "rule %q has no =>", r)
		pairs = append(pairs, TermPair{
			LHS: ctx.MustParseTerm(strings.TrimSpace(lhs)),
			RHS: ctx.MustParseTerm(strings.TrimSpace(rhs)),
		})
	}
	return pairs
}

// newTestSystem builds an initialized system over the given protocols.
func newTestSystem(t *testing.T, decls []ir.ProtocolDecl, rules ...string) *System {
	t.Helper()
	ctx := ir.NewContext()
	pairs := parseRules(t, ctx, rules...)

	terms := make([][]ir.Symbol, 0, 2*len(pairs))
	for _, p := range pairs {
		terms = append(terms, p.LHS, p.RHS)
	}
	graph, err := ir.BuildProtocolGraph(decls, ir.ReferencedProtocols(terms...))
	require.NoError(t, err)

	s := New(ctx)
	s.Initialize(pairs, graph)
	return s
}

// normalForm simplifies the parsed term and returns it as text.
func normalForm(t *testing.T, s *System, term string) string {
	t.Helper()
	m := s.Context().MustParseTerm(term)
	s.Simplify(&m, nil)
	return m.String()
}

// catchInvariant runs fn and returns the InvariantError it panics with.
func catchInvariant(t *testing.T, fn func()) (ie *InvariantError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected an invariant violation")
		var ok bool
		ie, ok = r.(*InvariantError)
		require.True(t, ok, "panic value %v is not an *InvariantError", r)
	}()
	fn()
	return nil
}

// words returns every term over alphabet with 1 to maxLen symbols.
func words(ctx *ir.Context, alphabet []string, maxLen int) []ir.MutableTerm {
	var out []ir.MutableTerm
	level := []ir.MutableTerm{{}}
	for n := 1; n <= maxLen; n++ {
		var next []ir.MutableTerm
		for _, w := range level {
			for _, a := range alphabet {
				nw := append(w.Clone(), ctx.NameSymbol(a))
				next = append(next, nw)
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}
