// Package dependency models blocking relationships between records.
package dependency

import "sort"

// BlockingGraph is a directed graph where an edge blocker -> blocked means
// the blocked record cannot progress until the blocker is finished.
type BlockingGraph struct {
	nodes map[string]struct{}
	edges map[string]map[string]struct{}
}

// NewBlockingGraph creates an empty graph.
func NewBlockingGraph() *BlockingGraph {
	return &BlockingGraph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]struct{}),
	}
}

// AddEdge records that blocker blocks blocked. Duplicate edges are ignored.
func (g *BlockingGraph) AddEdge(blocker, blocked string) error {
	if blocker == "" || blocked == "" {
		return ErrEmptyNode
	}
	if blocker == blocked {
		return ErrSelfDependency
	}
	g.nodes[blocker] = struct{}{}
	g.nodes[blocked] = struct{}{}
	if g.edges[blocker] == nil {
		g.edges[blocker] = make(map[string]struct{})
	}
	g.edges[blocker][blocked] = struct{}{}
	return nil
}

// Nodes returns all node IDs in sorted order.
func (g *BlockingGraph) Nodes() []string {
	result := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// Blocks returns the IDs blocked by id, sorted.
func (g *BlockingGraph) Blocks(id string) []string {
	result := make([]string, 0, len(g.edges[id]))
	for n := range g.edges[id] {
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// BlockersOf returns the IDs blocking id, sorted.
func (g *BlockingGraph) BlockersOf(id string) []string {
	result := make([]string, 0)
	for blocker, targets := range g.edges {
		if _, ok := targets[id]; ok {
			result = append(result, blocker)
		}
	}
	sort.Strings(result)
	return result
}

// EdgeCount returns the number of distinct blocking relationships.
func (g *BlockingGraph) EdgeCount() int {
	n := 0
	for _, targets := range g.edges {
		n += len(targets)
	}
	return n
}

// HasCycle checks if any records block each other transitively.
func (g *BlockingGraph) HasCycle() bool {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		inStack[id] = true

		for _, target := range g.Blocks(id) {
			if !visited[target] {
				if dfs(target) {
					return true
				}
			} else if inStack[target] {
				return true
			}
		}

		inStack[id] = false
		return false
	}

	for _, id := range g.Nodes() {
		if !visited[id] {
			if dfs(id) {
				return true
			}
		}
	}

	return false
}
