package ir

import (
	"slices"
	"strings"
)

type termData struct {
	syms []Symbol
	key  string
}

// Term is an interned, immutable sequence of symbols.
//
// Terms are created by Context.Term. Two terms from the same Context are
// equal exactly when they are == , so Term is usable as a map key. The zero
// Term is invalid.
type Term struct {
	d *termData
}

// IsValid reports whether the term was produced by a Context.
func (t Term) IsValid() bool { return t.d != nil }

// Len returns the number of symbols.
func (t Term) Len() int { return len(t.d.syms) }

// At returns the symbol at position i.
func (t Term) At(i int) Symbol { return t.d.syms[i] }

// Last returns the final symbol.
func (t Term) Last() Symbol { return t.d.syms[len(t.d.syms)-1] }

// Symbols returns the underlying symbols. The slice must not be modified.
func (t Term) Symbols() []Symbol { return t.d.syms }

// Mutable returns a fresh mutable copy of the term.
func (t Term) Mutable() MutableTerm {
	return slices.Clone(t.d.syms)
}

// Compare orders terms by length, then symbol by symbol.
func (t Term) Compare(other Term, g *ProtocolGraph) int {
	if t.d == other.d {
		return 0
	}
	return compareSymbols(t.d.syms, other.d.syms, g)
}

// String renders the term in the text syntax.
func (t Term) String() string {
	if t.d == nil {
		return "<invalid>"
	}
	return MutableTerm(t.d.syms).String()
}

// MutableTerm is a growable symbol sequence under active rewriting.
type MutableTerm []Symbol

// Clone returns an independent copy.
func (m MutableTerm) Clone() MutableTerm { return slices.Clone(m) }

// Equal reports whether both terms hold the same symbols.
func (m MutableTerm) Equal(other MutableTerm) bool {
	return slices.Equal(m, other)
}

// EqualTerm reports whether m holds the same symbols as t.
func (m MutableTerm) EqualTerm(t Term) bool {
	return slices.Equal(m, t.d.syms)
}

// Compare orders terms by length, then symbol by symbol.
func (m MutableTerm) Compare(other MutableTerm, g *ProtocolGraph) int {
	return compareSymbols(m, other, g)
}

// Last returns the final symbol.
func (m MutableTerm) Last() Symbol { return m[len(m)-1] }

// HasPrefixAt reports whether sub occurs in m starting at offset.
func (m MutableTerm) HasPrefixAt(offset int, sub []Symbol) bool {
	if offset < 0 || offset+len(sub) > len(m) {
		return false
	}
	return slices.Equal(m[offset:offset+len(sub)], sub)
}

// Replace replaces m[from:to] with the replacement symbols.
func (m *MutableTerm) Replace(from, to int, replacement []Symbol) {
	*m = slices.Replace(*m, from, to, replacement...)
}

// Append appends symbols to the end of the term.
func (m *MutableTerm) Append(syms ...Symbol) {
	*m = append(*m, syms...)
}

// String renders the term in the text syntax.
func (m MutableTerm) String() string {
	parts := make([]string, len(m))
	for i, s := range m {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

func compareSymbols(a, b []Symbol, g *ProtocolGraph) int {
	if len(a) != len(b) {
		return cmpInt(len(a), len(b))
	}
	for i := range a {
		if c := a[i].Compare(b[i], g); c != 0 {
			return c
		}
	}
	return 0
}
