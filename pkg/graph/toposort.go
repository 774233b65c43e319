package graph

import (
	"github.com/rauc-lab/being/pkg/block"
)

// BackEdges finds the edges closing cycles with a depth-first walk that
// tracks the active path. An edge whose destination is already on the
// path is a back edge. The walk visits vertices and successors in
// insertion order, so for identical wiring the same edges are removed
// every time. The first edge discovered during graph construction is
// kept as a forward edge, later edges closing the cycle are dropped.
func (g *Graph) BackEdges() []Edge {
	var backEdges []Edge
	visited := map[block.Block]bool{}
	onPath := map[block.Block]bool{}

	var walk func(v block.Block)
	walk = func(v block.Block) {
		visited[v] = true
		onPath[v] = true
		for _, successor := range g.successors[v] {
			if onPath[successor] {
				backEdges = append(backEdges, Edge{Src: v, Dst: successor})
				continue
			}
			if !visited[successor] {
				walk(successor)
			}
		}
		onPath[v] = false
	}

	for _, v := range g.vertices {
		if !visited[v] {
			walk(v)
		}
	}
	return backEdges
}

// RemoveEdges returns a copy of the graph without the given edges.
func (g *Graph) RemoveEdges(edges []Edge) *Graph {
	drop := map[Edge]bool{}
	for _, e := range edges {
		drop[e] = true
	}
	var kept []Edge
	for _, e := range g.edges {
		if !drop[e] {
			kept = append(kept, e)
		}
	}
	return New(g.vertices, kept)
}

// TopologicalSort computes the execution order of the graph. Back edges
// are removed first so cyclic wirings still get a deterministic order,
// vertices inside a cycle are ordered by their remaining forward edges.
//
// The sort repeatedly dequeues a candidate vertex. A vertex whose
// DAG predecessors are all placed is appended to the order and its
// successors get queue priority, otherwise the candidate is requeued at
// the back.
func TopologicalSort(g *Graph) []block.Block {
	dag := g.RemoveEdges(g.BackEdges())

	var order []block.Block
	placed := map[block.Block]bool{}

	queue := make([]block.Block, 0, len(dag.vertices))
	queue = append(queue, dag.vertices...)

	for len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]
		if placed[candidate] {
			continue
		}

		ready := true
		for _, predecessor := range dag.predecessors[candidate] {
			if !placed[predecessor] {
				ready = false
				break
			}
		}
		if !ready {
			// Not all predecessors placed yet, retry later
			queue = append(queue, candidate)
			continue
		}

		order = append(order, candidate)
		placed[candidate] = true
		// Newly ready work gets priority over stale candidates
		for i := len(dag.successors[candidate]) - 1; i >= 0; i-- {
			successor := dag.successors[candidate][i]
			if !placed[successor] {
				queue = append([]block.Block{successor}, queue...)
			}
		}
	}
	return order
}
