package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolInterning(t *testing.T) {
	ctx := NewContext()

	assert.Equal(t, ctx.ProtocolSymbol("P"), ctx.ProtocolSymbol("P"))
	assert.NotEqual(t, ctx.ProtocolSymbol("P"), ctx.ProtocolSymbol("Q"))
	assert.Equal(t, ctx.AssociatedTypeSymbol([]string{"P", "Q"}, "T"), ctx.AssociatedTypeSymbol([]string{"P", "Q"}, "T"))
	assert.NotEqual(t, ctx.AssociatedTypeSymbol([]string{"P"}, "T"), ctx.AssociatedTypeSymbol([]string{"Q"}, "T"))
	assert.Equal(t, ctx.GenericParamSymbol(0, 1), ctx.GenericParamSymbol(0, 1))

	// A name and a protocol with the same spelling are distinct symbols.
	assert.NotEqual(t, ctx.NameSymbol("P"), ctx.ProtocolSymbol("P"))

	sub := ctx.Term(MutableTerm{ctx.GenericParamSymbol(0, 0)})
	a := ctx.ConcreteTypeSymbol("Array<σ0>", []Term{sub})
	b := ctx.ConcreteTypeSymbol("Array<σ0>", []Term{ctx.Term(MutableTerm{ctx.GenericParamSymbol(0, 0)})})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ctx.SuperclassSymbol("Array<σ0>", []Term{sub}))
}

func TestSymbolInterningNormalizesNames(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, ctx.NameSymbol("caf\u00e9"), ctx.NameSymbol("cafe\u0301"))
}

func TestSymbolKindOrder(t *testing.T) {
	ctx := NewContext()
	sub := ctx.Term(MutableTerm{ctx.NameSymbol("X")})
	ordered := []Symbol{
		ctx.ProtocolSymbol("P"),
		ctx.AssociatedTypeSymbol([]string{"P"}, "T"),
		ctx.GenericParamSymbol(0, 0),
		ctx.NameSymbol("T"),
		ctx.LayoutSymbol("AnyObject"),
		ctx.SuperclassSymbol("C", []Term{sub}),
		ctx.ConcreteTypeSymbol("Int", nil),
	}
	for i := 0; i+1 < len(ordered); i++ {
		assert.Equal(t, -1, ordered[i].Compare(ordered[i+1], nil), "%s < %s", ordered[i], ordered[i+1])
		assert.Equal(t, 1, ordered[i+1].Compare(ordered[i], nil), "%s > %s", ordered[i+1], ordered[i])
	}
}

func TestSymbolCompareWithinKind(t *testing.T) {
	ctx := NewContext()
	g, err := BuildProtocolGraph([]ProtocolDecl{
		{Name: "Sequence"},
		{Name: "Collection", Inherits: []string{"Sequence"}},
	}, []string{"Collection"})
	require.NoError(t, err)

	// Sequence is refined by Collection, so it comes first despite its name.
	assert.Equal(t, -1, ctx.ProtocolSymbol("Sequence").Compare(ctx.ProtocolSymbol("Collection"), g))
	assert.Equal(t, 1, ctx.ProtocolSymbol("Sequence").Compare(ctx.ProtocolSymbol("Collection"), nil))

	// A merged associated type is smaller than its components.
	merged := ctx.AssociatedTypeSymbol([]string{"Sequence", "Collection"}, "Element")
	single := ctx.AssociatedTypeSymbol([]string{"Sequence"}, "Element")
	assert.Equal(t, -1, merged.Compare(single, g))

	assert.Equal(t, -1, ctx.AssociatedTypeSymbol([]string{"Sequence"}, "Element").
		Compare(ctx.AssociatedTypeSymbol([]string{"Collection"}, "Element"), g))
	assert.Equal(t, -1, ctx.AssociatedTypeSymbol([]string{"Sequence"}, "Element").
		Compare(ctx.AssociatedTypeSymbol([]string{"Sequence"}, "Iterator"), g))

	assert.Equal(t, -1, ctx.GenericParamSymbol(0, 5).Compare(ctx.GenericParamSymbol(1, 0), nil))
	assert.Equal(t, -1, ctx.GenericParamSymbol(1, 0).Compare(ctx.GenericParamSymbol(1, 1), nil))
	assert.Equal(t, -1, ctx.NameSymbol("A").Compare(ctx.NameSymbol("B"), nil))
	assert.Equal(t, 0, ctx.NameSymbol("A").Compare(ctx.NameSymbol("A"), nil))
}

func TestSymbolCompareSubstitutions(t *testing.T) {
	ctx := NewContext()
	short := ctx.Term(MutableTerm{ctx.GenericParamSymbol(0, 0)})
	long := ctx.Term(MutableTerm{ctx.GenericParamSymbol(0, 0), ctx.NameSymbol("A")})

	a := ctx.ConcreteTypeSymbol("Array<σ0>", []Term{short})
	b := ctx.ConcreteTypeSymbol("Array<σ0>", []Term{long})
	assert.Equal(t, -1, a.Compare(b, nil))

	// Fewer substitutions sort first for equal patterns.
	c := ctx.ConcreteTypeSymbol("Pair<σ0, σ1>", []Term{short})
	d := ctx.ConcreteTypeSymbol("Pair<σ0, σ1>", []Term{short, short})
	assert.Equal(t, -1, c.Compare(d, nil))
}

func TestSymbolProperties(t *testing.T) {
	ctx := NewContext()
	assert.True(t, ctx.ProtocolSymbol("P").IsProperty())
	assert.True(t, ctx.LayoutSymbol("AnyObject").IsProperty())
	assert.True(t, ctx.ConcreteTypeSymbol("Int", nil).IsProperty())
	assert.True(t, ctx.SuperclassSymbol("C", nil).IsSuperclassOrConcreteType())
	assert.False(t, ctx.NameSymbol("T").IsProperty())
	assert.False(t, ctx.AssociatedTypeSymbol([]string{"P"}, "T").IsProperty())
	assert.False(t, ctx.GenericParamSymbol(0, 0).IsSuperclassOrConcreteType())

	assert.Equal(t, "P", ctx.ProtocolSymbol("P").Protocol())
	assert.Panics(t, func() { ctx.NameSymbol("P").Protocol() })
	assert.Panics(t, func() { ctx.AssociatedTypeSymbol(nil, "T") })
	assert.False(t, Symbol{}.IsValid())
}

func TestSymbolString(t *testing.T) {
	ctx := NewContext()
	sub := ctx.Term(MutableTerm{ctx.GenericParamSymbol(0, 0), ctx.AssociatedTypeSymbol([]string{"P"}, "T")})

	assert.Equal(t, "[P]", ctx.ProtocolSymbol("P").String())
	assert.Equal(t, "[P&Q:T]", ctx.AssociatedTypeSymbol([]string{"P", "Q"}, "T").String())
	assert.Equal(t, "τ_1_2", ctx.GenericParamSymbol(1, 2).String())
	assert.Equal(t, "T", ctx.NameSymbol("T").String())
	assert.Equal(t, "[layout: AnyObject]", ctx.LayoutSymbol("AnyObject").String())
	assert.Equal(t, "[concrete: Int]", ctx.ConcreteTypeSymbol("Int", nil).String())
	assert.Equal(t, "[superclass: C<σ0> with <τ_0_0.[P:T]>]", ctx.SuperclassSymbol("C<σ0>", []Term{sub}).String())
}

func TestSubstitutionPrefixes(t *testing.T) {
	ctx := NewContext()
	x := ctx.NameSymbol("X")
	a := ctx.GenericParamSymbol(0, 0)
	sym := ctx.ConcreteTypeSymbol("Array<σ0>", []Term{ctx.Term(MutableTerm{a})})

	prefixed := ctx.PrependPrefixToSubstitutions(sym, []Symbol{x})
	assert.Equal(t, "[concrete: Array<σ0> with <X.τ_0_0>]", prefixed.String())

	back, ok := ctx.RemovePrefixFromSubstitutions(prefixed, []Symbol{x})
	require.True(t, ok)
	assert.Equal(t, sym, back)

	_, ok = ctx.RemovePrefixFromSubstitutions(sym, []Symbol{x})
	assert.False(t, ok)

	assert.Equal(t, sym, ctx.PrependPrefixToSubstitutions(sym, nil))
	assert.Panics(t, func() { ctx.PrependPrefixToSubstitutions(x, []Symbol{x}) })
}
