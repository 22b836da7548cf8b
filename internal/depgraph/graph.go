package depgraph

import (
	"sort"

	"github.com/ariel-frischer/lockstep/internal/workspace"
)

// Graph is the internal dependency graph of a workspace.
type Graph struct {
	// nodes holds package names in index order.
	nodes []string
	// deps maps a package to its in-workspace dependencies, in declaration order.
	deps map[string][]string
}

// Build constructs the graph for idx. Dependencies on names absent from the
// index are ignored.
func Build(idx *workspace.Index) *Graph {
	g := &Graph{deps: make(map[string][]string, idx.Len())}
	for _, p := range idx.Packages() {
		g.nodes = append(g.nodes, p.Name)
	}

	for _, p := range idx.Packages() {
		var edges []string
		for _, dep := range p.Dependencies {
			if _, ok := idx.Get(dep); ok && dep != p.Name {
				edges = append(edges, dep)
			}
		}
		g.deps[p.Name] = edges
	}
	return g
}

// New constructs a graph from explicit adjacency. nodes fixes the traversal
// order; edges to names outside nodes are ignored.
func New(nodes []string, deps map[string][]string) *Graph {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	g := &Graph{nodes: append([]string(nil), nodes...), deps: make(map[string][]string, len(nodes))}
	for _, n := range nodes {
		var edges []string
		for _, d := range deps[n] {
			if known[d] && d != n {
				edges = append(edges, d)
			}
		}
		g.deps[n] = edges
	}
	return g
}

// Nodes returns package names in index order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// DependenciesOf returns the in-workspace dependencies of name.
func (g *Graph) DependenciesOf(name string) []string {
	return append([]string(nil), g.deps[name]...)
}

// Dependents returns the packages that directly depend on name, in index order.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, n := range g.nodes {
		for _, d := range g.deps[n] {
			if d == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// EdgeCount returns the number of internal dependency edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, edges := range g.deps {
		count += len(edges)
	}
	return count
}

// sortedNames returns a sorted copy of names.
func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
