package dag

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// StronglyConnected returns the cycles of the graph: every strongly
// connected component with more than one node. Members of a component are
// sorted and components are ordered by their first member.
func (g *Graph) StronglyConnected() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Tarjan's algorithm.
	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool)
	var stack []string
	var components [][]string
	next := 0

	var connect func(n *node)
	connect = func(n *node) {
		index[n.id] = next
		low[n.id] = next
		next++
		stack = append(stack, n.id)
		onStack[n.id] = true

		for _, id := range slices.Sorted(maps.Keys(n.dependents)) {
			if _, seen := index[id]; !seen {
				connect(n.dependents[id])
				low[n.id] = min(low[n.id], low[id])
			} else if onStack[id] {
				low[n.id] = min(low[n.id], index[id])
			}
		}

		if low[n.id] != index[n.id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == n.id {
				break
			}
		}
		if len(component) > 1 {
			slices.Sort(component)
			components = append(components, component)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		if _, seen := index[id]; !seen {
			connect(g.nodes[id])
		}
	}

	slices.SortFunc(components, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return components
}

// Reaches reports whether a path of one or more edges leads from fromID to
// toID.
func (g *Graph) Reaches(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for id, dep := range n.dependents {
			if id == toID {
				return true
			}
			if !seen[id] {
				seen[id] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// TopologicalOrder returns every node after all of its dependencies. Among
// nodes ready at the same time the smallest id goes first, so the order is
// fully determined by the graph. A graph with a cycle yields an error.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		pending[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for depID := range g.nodes[id].dependents {
			pending[depID]--
			if pending[depID] == 0 {
				i, _ := slices.BinarySearch(ready, depID)
				ready = slices.Insert(ready, i, depID)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for id, n := range pending {
			if n > 0 {
				stuck = append(stuck, id)
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("cycle detected among nodes %v", stuck)
	}
	return order, nil
}
