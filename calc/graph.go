package calc

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Graph tracks which cells read which, in both directions. Keys are
// canonical A1-style addresses, so lookups survive cell replacement.
// An edge from -> to means "from reads to".
type Graph struct {
	reads   map[string]map[string]bool
	readers map[string]map[string]bool
}

func NewGraph() *Graph {
	return &Graph{
		reads:   make(map[string]map[string]bool),
		readers: make(map[string]map[string]bool),
	}
}

// AddEdge records that from reads to. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to string) {
	if g.reads[from] == nil {
		g.reads[from] = make(map[string]bool)
	}
	g.reads[from][to] = true
	if g.readers[to] == nil {
		g.readers[to] = make(map[string]bool)
	}
	g.readers[to][from] = true
}

// RemoveEdge deletes one edge, dropping empty adjacency sets so absent cells
// leave nothing behind.
func (g *Graph) RemoveEdge(from, to string) {
	if set, ok := g.reads[from]; ok {
		delete(set, to)
		if len(set) == 0 {
			delete(g.reads, from)
		}
	}
	if set, ok := g.readers[to]; ok {
		delete(set, from)
		if len(set) == 0 {
			delete(g.readers, to)
		}
	}
}

// DependenciesOf lists the cells that cell reads, sorted.
func (g *Graph) DependenciesOf(cell string) []string {
	return sortedKeys(g.reads[cell])
}

// DependentsOf lists the cells that read cell, sorted.
func (g *Graph) DependentsOf(cell string) []string {
	return sortedKeys(g.readers[cell])
}

func sortedKeys[V any](set map[string]V) []string {
	if len(set) == 0 {
		return nil
	}
	keys := maps.Keys(set)
	sort.Strings(keys)
	return keys
}

// ClearDependenciesOf drops every outgoing edge of cell, for when its
// formula is replaced. Incoming edges stay: whoever read the cell still does.
func (g *Graph) ClearDependenciesOf(cell string) {
	for to := range g.reads[cell] {
		if set, ok := g.readers[to]; ok {
			delete(set, cell)
			if len(set) == 0 {
				delete(g.readers, to)
			}
		}
	}
	delete(g.reads, cell)
}

// ClearAll resets the graph.
func (g *Graph) ClearAll() {
	g.reads = make(map[string]map[string]bool)
	g.readers = make(map[string]map[string]bool)
}

// HasCycleIfAdded simulates adding from -> to and probes for a cycle with a
// recursion-stack DFS, restoring the prior state before returning. Callers
// use it to refuse an edit before committing anything.
func (g *Graph) HasCycleIfAdded(from, to string) bool {
	if from == to {
		return true
	}
	present := g.reads[from][to]
	g.AddEdge(from, to)

	state := make(map[string]bool) // absent: unvisited, false: on stack, true: done
	var visit func(cell string) bool
	visit = func(cell string) bool {
		done, seen := state[cell]
		if seen {
			return !done
		}
		state[cell] = false
		for _, next := range sortedKeys(g.reads[cell]) {
			if visit(next) {
				return true
			}
		}
		state[cell] = true
		return false
	}
	cyclic := false
	for _, cell := range sortedKeys(g.reads) {
		if _, seen := state[cell]; seen {
			continue
		}
		if visit(cell) {
			cyclic = true
			break
		}
	}

	if !present {
		g.RemoveEdge(from, to)
	}
	return cyclic
}

// TopologicalOrder orders every cell reachable from the seeds, following
// edges both ways for reachability, so that each cell comes after everything
// it reads. The result drives recalculation after an edit.
func (g *Graph) TopologicalOrder(seeds []string) []string {
	reachable := make(map[string]bool)
	queue := append([]string(nil), seeds...)
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if reachable[cell] {
			continue
		}
		reachable[cell] = true
		for next := range g.reads[cell] {
			if !reachable[next] {
				queue = append(queue, next)
			}
		}
		for next := range g.readers[cell] {
			if !reachable[next] {
				queue = append(queue, next)
			}
		}
	}

	order := make([]string, 0, len(reachable))
	state := make(map[string]bool)
	var visit func(cell string)
	visit = func(cell string) {
		if _, seen := state[cell]; seen {
			return
		}
		state[cell] = false
		for _, next := range sortedKeys(g.reads[cell]) {
			if reachable[next] {
				visit(next)
			}
		}
		state[cell] = true
		order = append(order, cell)
	}
	for _, cell := range sortedKeys(reachable) {
		visit(cell)
	}
	return order
}
