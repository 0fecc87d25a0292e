package ir

import (
	"fmt"
	"strings"
)

// SymbolKind identifies the shape of a Symbol.
//
// The declaration order is the kind order used by Symbol.Compare.
type SymbolKind uint8

const (
	// KindProtocol is a protocol symbol [P]. At the start of a term it
	// denotes the protocol's Self type; elsewhere it is a conformance.
	KindProtocol SymbolKind = iota

	// KindAssociatedType is an associated type [P:T] or [P&Q:T].
	KindAssociatedType

	// KindGenericParam is a generic parameter τ_d_i.
	KindGenericParam

	// KindName is an unresolved member name.
	KindName

	// KindLayout is a layout constraint [layout: L].
	KindLayout

	// KindSuperclass is a superclass bound with substitutions.
	KindSuperclass

	// KindConcreteType is a concrete type with substitutions.
	KindConcreteType
)

// String returns the kind name used in snapshots and diagnostics.
func (k SymbolKind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindAssociatedType:
		return "associated_type"
	case KindGenericParam:
		return "generic_param"
	case KindName:
		return "name"
	case KindLayout:
		return "layout"
	case KindSuperclass:
		return "superclass"
	case KindConcreteType:
		return "concrete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type symbolData struct {
	kind      SymbolKind
	name      string   // name, layout, associated type name, or type pattern
	protocols []string // protocol symbol: exactly one; associated type: one or more
	depth     int
	index     int
	subs      []Term // superclass and concrete type substitutions
	key       string
}

// Symbol is an interned element of the term alphabet.
//
// Symbols are created by a Context and compare equal with == exactly when
// they denote the same symbol. The zero Symbol is invalid.
type Symbol struct {
	d *symbolData
}

// IsValid reports whether the symbol was produced by a Context.
func (s Symbol) IsValid() bool { return s.d != nil }

// Kind returns the symbol kind.
func (s Symbol) Kind() SymbolKind { return s.d.kind }

// Name returns the member name of a name or associated type symbol, the
// layout name of a layout symbol, and the protocol of a protocol symbol.
func (s Symbol) Name() string {
	if s.d.kind == KindProtocol {
		return s.d.protocols[0]
	}
	return s.d.name
}

// Protocol returns the protocol of a protocol symbol.
func (s Symbol) Protocol() string {
	if s.d.kind != KindProtocol {
		panic(fmt.Sprintf("ir: Protocol() on %s symbol", s.d.kind))
	}
	return s.d.protocols[0]
}

// Protocols returns the protocols of an associated type symbol.
// The returned slice must not be modified.
func (s Symbol) Protocols() []string { return s.d.protocols }

// Depth returns the depth of a generic parameter symbol.
func (s Symbol) Depth() int { return s.d.depth }

// Index returns the index of a generic parameter symbol.
func (s Symbol) Index() int { return s.d.index }

// Pattern returns the type pattern of a superclass or concrete type symbol.
func (s Symbol) Pattern() string { return s.d.name }

// Substitutions returns the substitutions of a superclass or concrete type
// symbol. The returned slice must not be modified.
func (s Symbol) Substitutions() []Term { return s.d.subs }

// IsSuperclassOrConcreteType reports whether the symbol carries substitutions.
func (s Symbol) IsSuperclassOrConcreteType() bool {
	return s.d.kind == KindSuperclass || s.d.kind == KindConcreteType
}

// IsProperty reports whether the symbol can appear as a property at the end
// of a term: a conformance, layout, superclass or concrete type.
func (s Symbol) IsProperty() bool {
	switch s.d.kind {
	case KindProtocol, KindLayout, KindSuperclass, KindConcreteType:
		return true
	}
	return false
}

// String renders the symbol in the term text syntax.
func (s Symbol) String() string {
	if s.d == nil {
		return "<invalid>"
	}
	switch s.d.kind {
	case KindProtocol:
		return "[" + s.d.protocols[0] + "]"
	case KindAssociatedType:
		return "[" + strings.Join(s.d.protocols, "&") + ":" + s.d.name + "]"
	case KindGenericParam:
		return fmt.Sprintf("τ_%d_%d", s.d.depth, s.d.index)
	case KindName:
		return s.d.name
	case KindLayout:
		return "[layout: " + s.d.name + "]"
	case KindSuperclass:
		return "[superclass: " + substitutedString(s.d.name, s.d.subs) + "]"
	case KindConcreteType:
		return "[concrete: " + substitutedString(s.d.name, s.d.subs) + "]"
	}
	return "<invalid>"
}

func substitutedString(pattern string, subs []Term) string {
	if len(subs) == 0 {
		return pattern
	}
	parts := make([]string, len(subs))
	for i, t := range subs {
		parts[i] = t.String()
	}
	return pattern + " with <" + strings.Join(parts, ", ") + ">"
}

// Compare returns -1, 0 or 1 as s is smaller than, equal to or greater than
// other under the symbol order. Protocols are ordered by g; a nil graph
// orders protocols by name.
func (s Symbol) Compare(other Symbol, g *ProtocolGraph) int {
	if s.d == other.d {
		return 0
	}
	if s.d.kind != other.d.kind {
		return cmpInt(int(s.d.kind), int(other.d.kind))
	}

	switch s.d.kind {
	case KindProtocol:
		return g.CompareProtocols(s.d.protocols[0], other.d.protocols[0])

	case KindAssociatedType:
		// A merged associated type sorts before its components.
		if len(s.d.protocols) != len(other.d.protocols) {
			return cmpInt(len(other.d.protocols), len(s.d.protocols))
		}
		for i := range s.d.protocols {
			if c := g.CompareProtocols(s.d.protocols[i], other.d.protocols[i]); c != 0 {
				return c
			}
		}
		return strings.Compare(s.d.name, other.d.name)

	case KindGenericParam:
		if c := cmpInt(s.d.depth, other.d.depth); c != 0 {
			return c
		}
		return cmpInt(s.d.index, other.d.index)

	case KindName, KindLayout:
		return strings.Compare(s.d.name, other.d.name)

	case KindSuperclass, KindConcreteType:
		if c := strings.Compare(s.d.name, other.d.name); c != 0 {
			return c
		}
		if c := cmpInt(len(s.d.subs), len(other.d.subs)); c != 0 {
			return c
		}
		for i := range s.d.subs {
			if c := s.d.subs[i].Compare(other.d.subs[i], g); c != 0 {
				return c
			}
		}
		return 0
	}

	panic(fmt.Sprintf("ir: compare of unknown symbol kind %d", s.d.kind))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
