package rewrite

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/roach88/reqm/internal/ir"
)

// checkMergedAssociatedType queues rule id when it has the shape
// X.[P2:T] ⇒ X.[P1:T]: two associated types with the same name from
// different protocols, on the same base.
func (s *System) checkMergedAssociatedType(id int) {
	r := s.rules[id]
	lhs, rhs := r.lhs.Symbols(), r.rhs.Symbols()
	n := len(lhs)
	if n == 0 || len(rhs) != n || !slices.Equal(lhs[:n-1], rhs[:n-1]) {
		return
	}

	a, b := lhs[n-1], rhs[n-1]
	if a.Kind() != ir.KindAssociatedType || b.Kind() != ir.KindAssociatedType {
		return
	}
	if a.Name() != b.Name() || slices.Equal(a.Protocols(), b.Protocols()) {
		return
	}

	merged := s.mergeAssociatedTypes(b, a)
	if merged == b {
		return
	}
	s.merged = append(s.merged, mergedAssociatedType{
		rhs:          r.rhs,
		lhsSymbol:    a,
		mergedSymbol: merged,
	})
	s.debugf(DebugMerge, "queued associated type merge",
		"rule", r.String(),
		"merged", merged.String())
}

// mergeAssociatedTypes returns the associated type conforming to the
// protocols of both symbols. Protocols refined by another protocol of the
// union are dropped, and the rest is sorted by the protocol order.
func (s *System) mergeAssociatedTypes(a, b ir.Symbol) ir.Symbol {
	union := set.From(a.Protocols())
	union.InsertSlice(b.Protocols())

	minimal := make([]string, 0, union.Size())
	for p := range union.Items() {
		redundant := false
		for q := range union.Items() {
			if q != p && s.graph.InheritsFrom(q, p) {
				redundant = true
				break
			}
		}
		if !redundant {
			minimal = append(minimal, p)
		}
	}
	slices.SortFunc(minimal, s.graph.CompareProtocols)
	return s.ctx.AssociatedTypeSymbol(minimal, a.Name())
}

// processMergedAssociatedTypes drains the merge queue. For each queued
// X.[P2:T] ⇒ X.[P1:T] it adds X.[P1:T] ⇒ X.[P1&P2:T], then lifts every
// property rule [P1:T].π ⇒ [P1:T] or [P2:T].π ⇒ [P2:T] to
// [P1&P2:T].π ⇒ [P1&P2:T]. Rules added here may queue further merges.
func (s *System) processMergedAssociatedTypes() bool {
	if len(s.merged) == 0 {
		return false
	}

	changed := false
	for i := 0; i < len(s.merged); i++ {
		m := s.merged[i]

		lhs := m.rhs.Mutable()
		rhs := m.rhs.Mutable()
		rhs[len(rhs)-1] = m.mergedSymbol
		s.debugf(DebugMerge, "merging associated types",
			"lhs", lhs.String(),
			"rhs", rhs.String())
		if s.addRule(lhs, rhs, nil) {
			changed = true
		}

		rhsSymbol := m.rhs.Last()
		n := len(s.rules)
		for id := 0; id < n; id++ {
			other := s.rules[id]
			if other.deleted || other.lhs.Len() != 2 || other.rhs.Len() != 1 {
				continue
			}
			first, prop := other.lhs.At(0), other.lhs.At(1)
			if first != m.lhsSymbol && first != rhsSymbol {
				continue
			}
			if other.rhs.At(0) != first || !prop.IsProperty() {
				continue
			}
			if s.addRule(ir.MutableTerm{m.mergedSymbol, prop}, ir.MutableTerm{m.mergedSymbol}, nil) {
				changed = true
			}
		}
	}
	s.merged = s.merged[:0]
	return changed
}
