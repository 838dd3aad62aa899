package compiler

import "github.com/gogpu/rendergraph/pass"

// criticality computes, for every node, the longest path (in edges,
// so a sink scores 0) from it to any sink of the DAG — the schedule
// priority.
func criticality(g *graph) []int {
	crit := make([]int, len(g.nodes))
	memo := make([]bool, len(g.nodes))

	var compute func(i int) int
	compute = func(i int) int {
		if memo[i] {
			return crit[i]
		}
		best := 0
		for _, succ := range g.adj[i] {
			if c := compute(succ) + 1; c > best {
				best = c
			}
		}
		crit[i] = best
		memo[i] = true
		return best
	}
	for i := range g.nodes {
		compute(i)
	}
	return crit
}

// topoScheduleByPriority produces a flat pass sequence: a topological
// order of g, chosen at each step by greatest criticality, tie-broken
// by original declaration order, then by which ready pass's queue has
// the least load scheduled so far.
func topoScheduleByPriority(g *graph) []*pass.Pass {
	crit := criticality(g)
	n := len(g.nodes)

	remaining := make([]int, n)
	copy(remaining, g.inDegree)

	var ready []int
	for i, d := range remaining {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	queueLoad := make(map[pass.QueueKind]int)
	schedule := make([]*pass.Pass, 0, n)

	for len(ready) > 0 {
		bestPos := 0
		for i := 1; i < len(ready); i++ {
			if betterCandidate(g, crit, queueLoad, ready[i], ready[bestPos]) {
				bestPos = i
			}
		}
		picked := ready[bestPos]
		ready = append(ready[:bestPos], ready[bestPos+1:]...)

		nd := g.nodes[picked]
		schedule = append(schedule, nd.pass)
		queueLoad[nd.pass.Queue]++

		for _, succ := range g.adj[picked] {
			remaining[succ]--
			if remaining[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}
	return schedule
}

// betterCandidate reports whether candidate a should be scheduled
// ahead of candidate b.
func betterCandidate(g *graph, crit []int, queueLoad map[pass.QueueKind]int, a, b int) bool {
	if crit[a] != crit[b] {
		return crit[a] > crit[b]
	}
	if a != b {
		return a < b
	}
	qa, qb := g.nodes[a].pass.Queue, g.nodes[b].pass.Queue
	return queueLoad[qa] < queueLoad[qb]
}
