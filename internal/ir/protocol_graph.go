package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// ProtocolInfo records what the graph knows about one protocol.
type ProtocolInfo struct {
	Decl ProtocolDecl

	// Inherited is the transitive closure of refined protocols, excluding
	// the protocol itself.
	Inherited *set.Set[string]

	// AssociatedTypes holds the protocol's own associated types followed by
	// those inherited from refined protocols, without duplicates.
	AssociatedTypes []string

	// Support counts the protocols in the graph that refine this one.
	Support int
}

// ProtocolGraph is the set of protocols transitively reachable through
// refinement from the protocols referenced by a rule set. It supplies the
// protocol order used by Symbol.Compare.
type ProtocolGraph struct {
	protocols map[string]*ProtocolInfo
	order     []string
}

// BuildProtocolGraph computes the refinement closure of roots over decls.
//
// Only protocols reachable from roots are kept. A root or refined protocol
// without a declaration is an error, as is a duplicate declaration.
func BuildProtocolGraph(decls []ProtocolDecl, roots []string) (*ProtocolGraph, error) {
	byName := make(map[string]ProtocolDecl, len(decls))
	for _, d := range decls {
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate protocol declaration %q", d.Name)
		}
		byName[d.Name] = d
	}

	g := &ProtocolGraph{protocols: make(map[string]*ProtocolInfo)}

	// Visit reachable protocols in a deterministic worklist order.
	worklist := slices.Clone(roots)
	slices.Sort(worklist)
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]
		if _, seen := g.protocols[name]; seen {
			continue
		}
		decl, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown protocol %q", name)
		}
		g.protocols[name] = &ProtocolInfo{Decl: decl, Inherited: set.New[string](0)}
		worklist = append(worklist, decl.Inherits...)
	}

	g.computeTransitiveClosure()
	g.computeInheritedAssociatedTypes()
	g.computeLinearOrder()
	return g, nil
}

// computeTransitiveClosure fills Inherited for every protocol.
func (g *ProtocolGraph) computeTransitiveClosure() {
	for _, info := range g.protocols {
		stack := slices.Clone(info.Decl.Inherits)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if p == info.Decl.Name || !info.Inherited.Insert(p) {
				continue
			}
			stack = append(stack, g.protocols[p].Decl.Inherits...)
		}
	}
	for _, info := range g.protocols {
		for p := range info.Inherited.Items() {
			g.protocols[p].Support++
		}
	}
}

func (g *ProtocolGraph) computeInheritedAssociatedTypes() {
	for _, info := range g.protocols {
		seen := set.From(info.Decl.AssociatedTypes)
		assocs := slices.Clone(info.Decl.AssociatedTypes)
		inherited := info.Inherited.Slice()
		slices.Sort(inherited)
		for _, p := range inherited {
			for _, a := range g.protocols[p].Decl.AssociatedTypes {
				if seen.Insert(a) {
					assocs = append(assocs, a)
				}
			}
		}
		info.AssociatedTypes = assocs
	}
}

func (g *ProtocolGraph) computeLinearOrder() {
	g.order = make([]string, 0, len(g.protocols))
	for name := range g.protocols {
		g.order = append(g.order, name)
	}
	slices.SortFunc(g.order, g.CompareProtocols)
}

// Contains reports whether the protocol is part of the graph.
func (g *ProtocolGraph) Contains(protocol string) bool {
	if g == nil {
		return false
	}
	_, ok := g.protocols[protocol]
	return ok
}

// Info returns the graph entry for a protocol.
func (g *ProtocolGraph) Info(protocol string) (*ProtocolInfo, bool) {
	if g == nil {
		return nil, false
	}
	info, ok := g.protocols[protocol]
	return info, ok
}

// Protocols returns every protocol in the graph's linear order.
func (g *ProtocolGraph) Protocols() []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.order)
}

// InheritsFrom reports whether protocol refines base, directly or not.
func (g *ProtocolGraph) InheritsFrom(protocol, base string) bool {
	info, ok := g.Info(protocol)
	if !ok {
		return false
	}
	return info.Inherited.Contains(base)
}

// CompareProtocols orders protocols so that those refined by more protocols
// come first; ties are broken by name. A nil graph orders by name.
func (g *ProtocolGraph) CompareProtocols(a, b string) int {
	if a == b {
		return 0
	}
	if g != nil {
		var sa, sb int
		if info, ok := g.protocols[a]; ok {
			sa = info.Support
		}
		if info, ok := g.protocols[b]; ok {
			sb = info.Support
		}
		if sa != sb {
			return cmpInt(sb, sa)
		}
	}
	return strings.Compare(a, b)
}

// ReferencedProtocols returns the sorted protocols named by the symbols of
// the given terms, including those inside substitutions.
func ReferencedProtocols(terms ...[]Symbol) []string {
	seen := set.New[string](0)
	var visit func(syms []Symbol)
	visit = func(syms []Symbol) {
		for _, s := range syms {
			switch s.Kind() {
			case KindProtocol, KindAssociatedType:
				seen.InsertSlice(s.d.protocols)
			case KindSuperclass, KindConcreteType:
				for _, sub := range s.Substitutions() {
					visit(sub.Symbols())
				}
			}
		}
	}
	for _, t := range terms {
		visit(t)
	}
	out := seen.Slice()
	slices.Sort(out)
	return out
}
