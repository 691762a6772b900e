package validator

import (
	"slices"
	"strings"

	"github.com/roach88/apimodel/internal/model"
)

// hierarchyGraph maps a definition to the types and behaviors it extends.
type hierarchyGraph map[model.TypeName][]model.TypeName

// checkInheritanceCycles reports every strongly connected component of the
// inherits/implements/behaviors graph. Ancestor walks tolerate cycles, but a
// type cannot meaningfully extend itself.
func (s *session) checkInheritanceCycles() {
	graph := s.buildHierarchyGraph()
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			path := reconstructCyclePath(scc, graph)
			names := make([]string, len(path))
			for i, n := range path {
				names[i] = n.String()
			}
			s.errorf(scope{}, ErrInheritanceCycle, "Inheritance cycle: %s", strings.Join(names, " -> "))
		}
	}
}

func (s *session) buildHierarchyGraph() hierarchyGraph {
	graph := make(hierarchyGraph)
	for _, table := range []map[model.TypeName]model.TypeDefinition{s.types, s.behaviors} {
		for name, def := range table {
			b := def.Base()
			edges := graph[name]
			if b.Inherits != nil {
				edges = append(edges, b.Inherits.Type)
			}
			for _, impl := range b.Implements {
				edges = append(edges, impl.Type)
			}
			for _, beh := range b.Behaviors {
				edges = append(edges, beh.Type)
			}
			graph[name] = edges
		}
	}
	return graph
}

func hasSelfLoop(node model.TypeName, graph hierarchyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in name order so the result is deterministic.
func tarjanSCC(graph hierarchyGraph) [][]model.TypeName {
	var (
		index   = 0
		stack   []model.TypeName
		indices = make(map[model.TypeName]int)
		lowlink = make(map[model.TypeName]int)
		onStack = make(map[model.TypeName]bool)
		sccs    [][]model.TypeName
	)

	var strongConnect func(model.TypeName)
	strongConnect = func(v model.TypeName) {
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

		if lowlink[v] == indices[v] {
			var scc []model.TypeName
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

	nodes := make([]model.TypeName, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.SortFunc(nodes, compareNames)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks the SCC from its smallest member back to itself.
func reconstructCyclePath(scc []model.TypeName, graph hierarchyGraph) []model.TypeName {
	if len(scc) == 1 {
		return []model.TypeName{scc[0], scc[0]}
	}
	members := make(map[model.TypeName]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := slices.MinFunc(scc, compareNames)
	path := []model.TypeName{start}
	visited := map[model.TypeName]bool{start: true}
	current := start
	for {
		var next model.TypeName
		found := false
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next, found = w, true
				break
			}
		}
		if !found {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
