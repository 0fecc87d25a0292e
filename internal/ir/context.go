package ir

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Context interns symbols and terms for one rewriting session.
//
// Interning makes Symbol and Term comparable with == and usable as map
// keys. A Context is not safe for concurrent use; like the rewrite system
// that uses it, it belongs to a single session.
type Context struct {
	symbols map[string]*symbolData
	terms   map[string]*termData
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{
		symbols: make(map[string]*symbolData),
		terms:   make(map[string]*termData),
	}
}

// ProtocolSymbol returns [P].
func (c *Context) ProtocolSymbol(protocol string) Symbol {
	protocol = norm.NFC.String(protocol)
	return c.intern(&symbolData{kind: KindProtocol, protocols: []string{protocol}})
}

// AssociatedTypeSymbol returns [P1&P2&...:name]. Protocols are kept in the
// order given; callers that merge associated types sort them first.
func (c *Context) AssociatedTypeSymbol(protocols []string, name string) Symbol {
	if len(protocols) == 0 {
		panic("ir: associated type symbol without protocols")
	}
	protos := make([]string, len(protocols))
	for i, p := range protocols {
		protos[i] = norm.NFC.String(p)
	}
	return c.intern(&symbolData{kind: KindAssociatedType, protocols: protos, name: norm.NFC.String(name)})
}

// GenericParamSymbol returns τ_depth_index.
func (c *Context) GenericParamSymbol(depth, index int) Symbol {
	return c.intern(&symbolData{kind: KindGenericParam, depth: depth, index: index})
}

// NameSymbol returns an unresolved member name.
func (c *Context) NameSymbol(name string) Symbol {
	return c.intern(&symbolData{kind: KindName, name: norm.NFC.String(name)})
}

// LayoutSymbol returns [layout: name].
func (c *Context) LayoutSymbol(name string) Symbol {
	return c.intern(&symbolData{kind: KindLayout, name: norm.NFC.String(name)})
}

// SuperclassSymbol returns [superclass: pattern with <subs...>].
func (c *Context) SuperclassSymbol(pattern string, subs []Term) Symbol {
	return c.intern(&symbolData{kind: KindSuperclass, name: norm.NFC.String(pattern), subs: slices.Clone(subs)})
}

// ConcreteTypeSymbol returns [concrete: pattern with <subs...>].
func (c *Context) ConcreteTypeSymbol(pattern string, subs []Term) Symbol {
	return c.intern(&symbolData{kind: KindConcreteType, name: norm.NFC.String(pattern), subs: slices.Clone(subs)})
}

// Term interns the given symbol sequence.
func (c *Context) Term(syms []Symbol) Term {
	key := termKey(syms)
	if d, ok := c.terms[key]; ok {
		return Term{d}
	}
	d := &termData{syms: slices.Clone(syms), key: key}
	c.terms[key] = d
	return Term{d}
}

// TransformSubstitutions applies fn to every substitution of a superclass
// or concrete type symbol and returns the resulting symbol.
func (c *Context) TransformSubstitutions(s Symbol, fn func(Term) Term) Symbol {
	if !s.IsSuperclassOrConcreteType() {
		panic(fmt.Sprintf("ir: substitution transform on %s symbol", s.Kind()))
	}
	subs := make([]Term, len(s.d.subs))
	for i, t := range s.d.subs {
		subs[i] = fn(t)
	}
	return c.intern(&symbolData{kind: s.d.kind, name: s.d.name, subs: subs})
}

// PrependPrefixToSubstitutions returns s with prefix prepended to each
// substitution.
func (c *Context) PrependPrefixToSubstitutions(s Symbol, prefix []Symbol) Symbol {
	if len(prefix) == 0 {
		return s
	}
	return c.TransformSubstitutions(s, func(t Term) Term {
		m := make(MutableTerm, 0, len(prefix)+t.Len())
		m = append(m, prefix...)
		m = append(m, t.Symbols()...)
		return c.Term(m)
	})
}

// RemovePrefixFromSubstitutions returns s with prefix removed from each
// substitution. It reports false if some substitution does not start with
// prefix.
func (c *Context) RemovePrefixFromSubstitutions(s Symbol, prefix []Symbol) (Symbol, bool) {
	if len(prefix) == 0 {
		return s, true
	}
	for _, t := range s.Substitutions() {
		if !MutableTerm(t.Symbols()).HasPrefixAt(0, prefix) {
			return Symbol{}, false
		}
	}
	return c.TransformSubstitutions(s, func(t Term) Term {
		return c.Term(t.Symbols()[len(prefix):])
	}), true
}

func (c *Context) intern(d *symbolData) Symbol {
	d.key = symbolKey(d)
	if existing, ok := c.symbols[d.key]; ok {
		return Symbol{existing}
	}
	c.symbols[d.key] = d
	return Symbol{d}
}

func symbolKey(d *symbolData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", d.kind)
	switch d.kind {
	case KindProtocol, KindAssociatedType:
		b.WriteString(strings.Join(d.protocols, "&"))
		b.WriteByte('|')
		b.WriteString(d.name)
	case KindGenericParam:
		fmt.Fprintf(&b, "%d|%d", d.depth, d.index)
	case KindName, KindLayout:
		b.WriteString(d.name)
	case KindSuperclass, KindConcreteType:
		b.WriteString(d.name)
		for _, t := range d.subs {
			b.WriteString("|<")
			b.WriteString(t.d.key)
			b.WriteByte('>')
		}
	}
	return b.String()
}

func termKey(syms []Symbol) string {
	var b strings.Builder
	for i, s := range syms {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(s.d.key)
	}
	return b.String()
}
