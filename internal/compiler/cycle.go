package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reqm/internal/ir"
)

// RefinementCycle is a set of protocols that refine each other.
//
// A protocol cannot refine itself, directly or through other protocols: the
// protocol order ranks protocols by how many others refine them, which is
// meaningless on a cycle.
type RefinementCycle struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeRefinementCycles detects cycles in the refinement graph.
//
// The algorithm:
//  1. Build protocol → refined protocols edges from the inherits lists
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// Refined protocols without a declaration are ignored here; validation
// reports them separately. An acyclic graph returns an empty list.
func AnalyzeRefinementCycles(decls []ir.ProtocolDecl) []RefinementCycle {
	graph := buildRefinementGraph(decls)

	var cycles []RefinementCycle
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, cycleSCCToRefinementCycle(scc, graph))
		}
	}

	slices.SortFunc(cycles, func(a, b RefinementCycle) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	if cycles == nil {
		return []RefinementCycle{}
	}
	return cycles
}

// refinementGraph maps protocol → protocols it directly refines.
type refinementGraph map[string][]string

func buildRefinementGraph(decls []ir.ProtocolDecl) refinementGraph {
	graph := make(refinementGraph, len(decls))
	for _, d := range decls {
		if graph[d.Name] == nil {
			graph[d.Name] = []string{}
		}
	}
	for _, d := range decls {
		for _, base := range d.Inherits {
			if _, declared := graph[base]; declared {
				graph[d.Name] = append(graph[d.Name], base)
			}
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph refinementGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in name order so the result is deterministic.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph refinementGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToRefinementCycle converts an SCC to a RefinementCycle starting
// at its smallest protocol name.
func cycleSCCToRefinementCycle(scc []string, graph refinementGraph) RefinementCycle {
	start := slices.Min(scc)
	if len(scc) == 1 {
		return RefinementCycle{
			Path:    []string{start, start},
			Message: fmt.Sprintf("protocol %s refines itself", start),
		}
	}

	path := reconstructCyclePath(start, scc, graph)
	return RefinementCycle{
		Path:    path,
		Message: fmt.Sprintf("refinement cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath follows edges inside the SCC from start until it
// returns to start.
func reconstructCyclePath(start string, scc []string, graph refinementGraph) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
