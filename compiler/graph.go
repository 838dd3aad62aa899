package compiler

import (
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
)

// graph is the Phase 2 dependency DAG: forward adjacency plus
// in-degree, built from per-resource, per-subresource-range
// lastWriter/readsSinceWrite bookkeeping as nodes are walked in
// declaration order. Two passes that touch the same resource id but
// disjoint subresource ranges (e.g. different mips) draw no edge
// between them.
type graph struct {
	nodes    []*node
	adj      [][]int // adj[i] = successors of node i
	inDegree []int
}

// rangedWriter records a node index alongside the range it wrote, so
// later touches can test for actual overlap instead of assuming any
// shared resource id is a dependency.
type rangedWriter struct {
	node int
	rng  rangespec.SubresourceRange
}

func buildGraph(nodes []*node, extra []Edge) (*graph, error) {
	n := len(nodes)
	seen := make(map[[2]int]bool)
	adj := make([][]int, n)

	addEdge := func(from, to int) {
		if from == to {
			return
		}
		key := [2]int{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[from] = append(adj[from], to)
	}

	lastWriters := make(map[registry.GlobalID][]rangedWriter)
	readsSinceWrite := make(map[registry.GlobalID][]rangedWriter)

	for _, nd := range nodes {
		for id, touches := range nd.touches {
			for _, t := range touches {
				if !t.isWrite {
					// Read after write: depend on every prior writer
					// whose range overlaps this read.
					for _, w := range lastWriters[id] {
						if rangespec.Overlaps(w.rng, t.rng) {
							addEdge(w.node, nd.index)
						}
					}
					readsSinceWrite[id] = append(readsSinceWrite[id], rangedWriter{nd.index, t.rng})
					continue
				}

				// Write after write. A writer's range survives only
				// where this new write doesn't cover it, so a later
				// write to the untouched remainder still sees it.
				var stillLive []rangedWriter
				for _, w := range lastWriters[id] {
					if !rangespec.Overlaps(w.rng, t.rng) {
						stillLive = append(stillLive, w)
						continue
					}
					addEdge(w.node, nd.index)
					for _, rem := range rangespec.Subtract(w.rng, t.rng) {
						stillLive = append(stillLive, rangedWriter{w.node, rem})
					}
				}

				// Write after reads. A reader's range survives where
				// this new write doesn't cover it.
				var stillPending []rangedWriter
				for _, r := range readsSinceWrite[id] {
					if !rangespec.Overlaps(r.rng, t.rng) {
						stillPending = append(stillPending, r)
						continue
					}
					addEdge(r.node, nd.index)
					for _, rem := range rangespec.Subtract(r.rng, t.rng) {
						stillPending = append(stillPending, rangedWriter{r.node, rem})
					}
				}
				readsSinceWrite[id] = stillPending
				lastWriters[id] = append(stillLive, rangedWriter{nd.index, t.rng})
			}
		}
	}

	for _, e := range extra {
		addEdge(e.From, e.To)
	}

	inDegree := make([]int, n)
	for _, succs := range adj {
		for _, to := range succs {
			inDegree[to]++
		}
	}

	g := &graph{nodes: nodes, adj: adj, inDegree: inDegree}
	if cyc := g.findCycle(); cyc != nil {
		return nil, &CycleError{Edges: cyc}
	}
	return g, nil
}

// findCycle runs a DFS looking for a back edge; returns the cycle's
// edges (in traversal order) if one is found, else nil.
func (g *graph) findCycle() []Edge {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.nodes))
	stack := make([]int, 0, len(g.nodes))

	var visit func(u int) []Edge
	visit = func(u int) []Edge {
		color[u] = gray
		stack = append(stack, u)
		for _, v := range g.adj[u] {
			switch color[v] {
			case white:
				if cyc := visit(v); cyc != nil {
					return cyc
				}
			case gray:
				// Found the back edge u -> v; unwind the stack to
				// build the cycle's edge list starting at v.
				start := 0
				for i, s := range stack {
					if s == v {
						start = i
						break
					}
				}
				var edges []Edge
				for i := start; i < len(stack)-1; i++ {
					edges = append(edges, Edge{From: stack[i], To: stack[i+1]})
				}
				edges = append(edges, Edge{From: u, To: v})
				return edges
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		return nil
	}

	for i := range g.nodes {
		if color[i] == white {
			if cyc := visit(i); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
