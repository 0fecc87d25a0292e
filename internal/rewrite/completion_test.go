package rewrite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reqm/internal/ir"
)

// assertConfluent checks that every single rewrite step, in either
// direction and by any rule ever added, preserves the normal form of every
// word over alphabet up to maxLen symbols.
func assertConfluent(t *testing.T, s *System, alphabet []string, maxLen int) {
	t.Helper()
	for _, w := range words(s.Context(), alphabet, maxLen) {
		nf := w.Clone()
		s.Simplify(&nf, nil)

		for id := 0; id < s.NumRules(); id++ {
			for pos := range w {
				for _, inverse := range []bool{false, true} {
					next := w.Clone()
					if s.applyStep(&next, NewRuleStep(pos, id, inverse)) != nil {
						continue
					}
					s.Simplify(&next, nil)
					assert.True(t, next.Equal(nf), "%s and its rewrite by rule %d at %d have normal forms %s and %s",
						w, id, pos, nf, next)
				}
			}
		}
	}
}

// TestCompletion_JoinableOverlap tests an overlap whose sides already meet.
func TestCompletion_JoinableOverlap(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => A", "B.C => C")

	result, steps := s.ComputeConfluentCompletion(DefaultMaxIterations, DefaultMaxDepth)
	assert.Equal(t, Success, result)
	assert.Equal(t, 0, steps)
	assert.Equal(t, 2, s.NumRules())
	assert.NoError(t, s.CompletionErr())

	gens := s.HomotopyGenerators()
	require.Len(t, gens, 1)
	assert.Equal(t, "A.C", gens[0].Term.String())
	want := Path{NewRuleStep(0, 0, true), NewRuleStep(1, 1, false)}
	if diff := cmp.Diff(want, gens[0].Path); diff != "" {
		t.Errorf("generator path mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "A.C", normalForm(t, s, "A.B.C"))
	assert.NotPanics(t, s.Verify)
	assertConfluent(t, s, []string{"A", "B", "C"}, 4)
}

// TestCompletion_AddsRule tests a critical pair that needs a new rule.
func TestCompletion_AddsRule(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => B", "B.C => A")

	result, steps := s.ComputeConfluentCompletion(DefaultMaxIterations, DefaultMaxDepth)
	assert.Equal(t, Success, result)
	assert.Equal(t, 1, steps)

	require.Equal(t, 3, s.NumRules())
	assert.Equal(t, "A.A ⇒ A", s.Rule(2).String())
	assert.Len(t, s.HomotopyGenerators(), 3)

	assert.Equal(t, "A", normalForm(t, s, "A.B.C"))
	assert.Equal(t, "A", normalForm(t, s, "A.A.A"))
	assert.NotPanics(t, s.Verify)
	assertConfluent(t, s, []string{"A", "B", "C"}, 4)
}

// TestCompletion_Idempotent tests that a second run finds nothing new.
func TestCompletion_Idempotent(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => B", "B.C => A")

	_, _ = s.ComputeConfluentCompletion(DefaultMaxIterations, DefaultMaxDepth)
	rules := s.NumRules()
	gens := len(s.HomotopyGenerators())

	result, steps := s.ComputeConfluentCompletion(DefaultMaxIterations, DefaultMaxDepth)
	assert.Equal(t, Success, result)
	assert.Equal(t, 0, steps)
	assert.Equal(t, rules, s.NumRules())
	assert.Len(t, s.HomotopyGenerators(), gens)
}

// TestCompletion_Deterministic tests that two runs on the same input agree.
func TestCompletion_Deterministic(t *testing.T) {
	run := func() ir.SystemSnapshot {
		s := newTestSystem(t, nil, "b.a.b => a.b.a")
		s.ComputeConfluentCompletion(10, 8)
		return s.Snapshot()
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("snapshots differ (-first +second):\n%s", diff)
	}
}

// TestCompletion_MaxDepth tests that a growing LHS stops completion.
func TestCompletion_MaxDepth(t *testing.T) {
	s := newTestSystem(t, nil, "b.a.b => a.b.a")

	result, steps := s.ComputeConfluentCompletion(1000, 6)
	assert.Equal(t, MaxDepth, result)
	assert.Equal(t, 2, steps)
	require.Equal(t, 3, s.NumRules())
	assert.Equal(t, "b.a.a.b.a ⇒ a.b.a.a.b", s.Rule(1).String())
	assert.Equal(t, 7, s.Rule(2).Depth())

	err := s.CompletionErr()
	require.Error(t, err)
	assert.True(t, IsLimitError(err))
	assert.True(t, IsMaxDepth(err))
	assert.False(t, IsMaxIterations(err))

	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 7, le.Depth)
	assert.Equal(t, 6, le.MaxDepth)
	assert.Equal(t, s.Rule(2).String(), le.Rule)

	// The partial system stays consistent.
	assert.NotPanics(t, s.Verify)
}

// TestCompletion_MaxIterations tests that too many new rules stop completion.
func TestCompletion_MaxIterations(t *testing.T) {
	s := newTestSystem(t, nil, "b.a.b => a.b.a")

	result, steps := s.ComputeConfluentCompletion(3, 100)
	assert.Equal(t, MaxIterations, result)
	assert.Equal(t, 3, steps)
	assert.Equal(t, 4, s.NumRules())

	err := s.CompletionErr()
	assert.True(t, IsMaxIterations(err))

	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Rules)
	assert.Equal(t, 3, le.MaxIterations)
	assert.Contains(t, le.Error(), "3 rules added, limit 3")

	assert.NotPanics(t, s.Verify)
}

// TestCompletion_MaxIterationsBoundary tests that reaching the limit with
// the rule that would have made the system confluent still stops
// completion.
func TestCompletion_MaxIterationsBoundary(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => B", "B.C => A")
	result, steps := s.ComputeConfluentCompletion(1, 10)
	assert.Equal(t, MaxIterations, result)
	assert.Equal(t, 1, steps)
	assert.True(t, IsMaxIterations(s.CompletionErr()))

	s = newTestSystem(t, nil, "A.B => B", "B.C => A")
	result, steps = s.ComputeConfluentCompletion(2, 10)
	assert.Equal(t, Success, result)
	assert.Equal(t, 1, steps)
}

// TestCompletion_ReplacementIsNotCounted tests that replacing an input rule
// whose RHS became reducible counts against neither limit.
func TestCompletion_ReplacementIsNotCounted(t *testing.T) {
	s := newTestSystem(t, nil, "A.B.C.D => X.Y", "X.Y => Z")

	result, steps := s.ComputeConfluentCompletion(100, 3)
	assert.Equal(t, Success, result)
	assert.Equal(t, 0, steps)
	assert.NoError(t, s.CompletionErr())

	require.Equal(t, 3, s.NumRules())
	assert.True(t, s.Rule(0).IsDeleted())
	assert.Equal(t, "A.B.C.D ⇒ Z", s.Rule(2).String())
	assert.Equal(t, "Z", normalForm(t, s, "A.B.C.D"))
	assert.NotPanics(t, s.Verify)

	s = newTestSystem(t, nil, "A.B.C.D => X.Y", "X.Y => Z")
	result, _ = s.ComputeConfluentCompletion(1, 10)
	assert.Equal(t, Success, result)
}

// TestCompletionResult_String tests result names.
func TestCompletionResult_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "max_iterations", MaxIterations.String())
	assert.Equal(t, "max_depth", MaxDepth.String())
	assert.Equal(t, "result(9)", CompletionResult(9).String())
}

// TestComputeCriticalPair_Shapes tests both overlap shapes.
func TestComputeCriticalPair_Shapes(t *testing.T) {
	t.Run("contained", func(t *testing.T) {
		s := newTestSystem(t, nil, "A.B.C => D", "B => A")
		p, ok := s.computeCriticalPair(1, 0, 1)
		require.True(t, ok)
		assert.Equal(t, "D", p.lhs.String())
		assert.Equal(t, "A.A.C", p.rhs.String())
		want := Path{NewRuleStep(0, 0, true), NewRuleStep(1, 1, false)}
		if diff := cmp.Diff(want, p.path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("suffix prefix", func(t *testing.T) {
		s := newTestSystem(t, nil, "A.B => D", "B.C => E")
		p, ok := s.computeCriticalPair(1, 0, 1)
		require.True(t, ok)
		assert.Equal(t, "D.C", p.lhs.String())
		assert.Equal(t, "A.E", p.rhs.String())

		// The path runs from lhs to rhs through A.B.C.
		end, err := s.ReplayPath(p.lhs, p.path)
		require.NoError(t, err)
		assert.Equal(t, "A.E", end.String())
	})

	t.Run("joinable", func(t *testing.T) {
		s := newTestSystem(t, nil, "A.B => A", "B.C => C")
		_, ok := s.computeCriticalPair(1, 0, 1)
		assert.False(t, ok)
		assert.Len(t, s.HomotopyGenerators(), 1)
	})
}

// TestComputeCriticalPair_AdjustsConcreteType tests that the overlapped
// prefix is carried into concrete type substitutions.
func TestComputeCriticalPair_AdjustsConcreteType(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => A", "B.[concrete: Foo with <C>] => B")

	p, ok := s.computeCriticalPair(1, 0, 1)
	require.True(t, ok)
	assert.Equal(t, "A.[concrete: Foo with <A.C>]", p.lhs.String())
	assert.Equal(t, "A.B", p.rhs.String())
	want := Path{NewRuleStep(0, 0, true), NewAdjustStep(1, true), NewRuleStep(1, 1, false)}
	if diff := cmp.Diff(want, p.path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}

	end, err := s.ReplayPath(p.lhs, p.path)
	require.NoError(t, err)
	assert.True(t, end.Equal(p.rhs))

	result, steps := s.ComputeConfluentCompletion(DefaultMaxIterations, DefaultMaxDepth)
	assert.Equal(t, Success, result)
	assert.Equal(t, 1, steps)
	assert.Equal(t, "A.[concrete: Foo with <A.C>] ⇒ A", s.Rule(2).String())
	assert.NotPanics(t, s.Verify)
}

// TestCriticalPairPass_MarksOverlaps tests that overlaps are examined once.
func TestCriticalPairPass_MarksOverlaps(t *testing.T) {
	s := newTestSystem(t, nil, "A.B => D", "B.C => E")

	pairs := s.criticalPairPass()
	require.Len(t, pairs, 1)
	assert.True(t, s.overlaps.isChecked(0, 1))
	assert.False(t, s.overlaps.isChecked(1, 0))

	assert.Empty(t, s.criticalPairPass())
}
