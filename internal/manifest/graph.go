package manifest

import (
	"sort"

	"github.com/rask-lang/raskc/internal/diagnostics"
	"github.com/rask-lang/raskc/internal/token"
)

// Graph is the dependency DAG formed by one or more manifests (spec §4.4
// "Dependencies form a DAG (cycle = hard error)"). Nodes are package
// names; an edge A -> B means A's manifest declares a dep on B.
type Graph struct {
	edges map[string][]string
	order []string // insertion order, for deterministic cycle-report traversal
}

// NewGraph builds an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// AddManifest registers name's dependency edges from m.
func (g *Graph) AddManifest(name string, m *Manifest) {
	if _, ok := g.edges[name]; !ok {
		g.order = append(g.order, name)
	}
	for _, d := range m.AllDeps() {
		g.edges[name] = append(g.edges[name], d.Name)
	}
}

// CheckCycles walks the graph depth-first from every node and reports one
// diagnostic per distinct cycle found (spec §4.4's "cyclic package dep"
// resolve error, code R006, the same taxonomy entry the package-discovery
// side uses for a cyclic package reference — original_source/'s
// `PackageError::CircularDependency` supplement folds both into one code).
func (g *Graph) CheckCycles() []*diagnostics.DiagnosticError {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var errs []*diagnostics.DiagnosticError
	reported := make(map[string]bool)

	var visit func(node string, path []string)
	visit = func(node string, path []string) {
		color[node] = gray
		path = append(path, node)
		deps := append([]string(nil), g.edges[node]...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch color[dep] {
			case white:
				visit(dep, path)
			case gray:
				cyclePath := cycleFrom(path, dep)
				key := canonicalCycleKey(cyclePath)
				if !reported[key] {
					reported[key] = true
					errs = append(errs, diagnostics.NewError(diagnostics.PhaseResolve,
						diagnostics.CodeResolveCyclicPackage, token.Span{},
						"cyclic package dependency: "+joinArrow(cyclePath)))
				}
			}
		}
		color[node] = black
	}

	sortedNodes := append([]string(nil), g.order...)
	sort.Strings(sortedNodes)
	for _, n := range sortedNodes {
		if color[n] == white {
			visit(n, nil)
		}
	}
	return errs
}

func cycleFrom(path []string, closingNode string) []string {
	for i, n := range path {
		if n == closingNode {
			return append(append([]string(nil), path[i:]...), closingNode)
		}
	}
	return append(append([]string(nil), path...), closingNode)
}

// canonicalCycleKey rotates a cycle to start at its lexicographically
// smallest node so the same cycle discovered from different entry nodes
// reports only once.
func canonicalCycleKey(cycle []string) string {
	if len(cycle) <= 1 {
		return joinArrow(cycle)
	}
	body := cycle[:len(cycle)-1]
	minIdx := 0
	for i, n := range body {
		if n < body[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string(nil), body[minIdx:]...), body[:minIdx]...)
	rotated = append(rotated, rotated[0])
	return joinArrow(rotated)
}

func joinArrow(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}
