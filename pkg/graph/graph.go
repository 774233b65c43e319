// Package graph builds the block dependency graph and computes the
// execution order of the control cycle. Graphs are immutable snapshots,
// they are rebuilt when the block set changes, not per tick.
package graph

import (
	"github.com/rauc-lab/being/pkg/block"
)

// Edge is a directed connection between two blocks.
type Edge struct {
	Src block.Block
	Dst block.Block
}

// Graph is an immutable snapshot of vertices and edges with derived
// adjacency. Vertices and edges are deduplicated, insertion order is
// preserved, which makes the execution order reproducible for identical
// wiring.
type Graph struct {
	vertices     []block.Block
	edges        []Edge
	vertexSet    map[block.Block]bool
	edgeSet      map[Edge]bool
	successors   map[block.Block][]block.Block
	predecessors map[block.Block][]block.Block
}

// New builds a graph from the given vertices and edges. Duplicates are
// dropped, first occurrence wins. Edge endpoints missing from vertices
// are added in edge order.
func New(vertices []block.Block, edges []Edge) *Graph {
	g := &Graph{
		vertexSet:    map[block.Block]bool{},
		edgeSet:      map[Edge]bool{},
		successors:   map[block.Block][]block.Block{},
		predecessors: map[block.Block][]block.Block{},
	}
	for _, v := range vertices {
		g.addVertex(v)
	}
	for _, e := range edges {
		g.addEdge(e)
	}
	return g
}

func (g *Graph) addVertex(v block.Block) {
	if g.vertexSet[v] {
		return
	}
	g.vertexSet[v] = true
	g.vertices = append(g.vertices, v)
}

func (g *Graph) addEdge(e Edge) {
	if g.edgeSet[e] {
		return
	}
	g.edgeSet[e] = true
	g.addVertex(e.Src)
	g.addVertex(e.Dst)
	g.edges = append(g.edges, e)
	g.successors[e.Src] = append(g.successors[e.Src], e.Dst)
	g.predecessors[e.Dst] = append(g.predecessors[e.Dst], e.Src)
}

func (g *Graph) Vertices() []block.Block { return g.vertices }
func (g *Graph) Edges() []Edge           { return g.edges }

func (g *Graph) Successors(v block.Block) []block.Block   { return g.successors[v] }
func (g *Graph) Predecessors(v block.Block) []block.Block { return g.predecessors[v] }

// Discover collects the full connected component around the starting
// blocks by breadth-first traversal over both successor and predecessor
// connections and returns it as a graph.
func Discover(starting ...block.Block) *Graph {
	var vertices []block.Block
	var edges []Edge
	var queue []block.Block
	visited := map[block.Block]bool{}

	queue = append(queue, starting...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if visited[b] {
			continue
		}
		visited[b] = true
		vertices = append(vertices, b)
		for _, successor := range block.Successors(b) {
			edges = append(edges, Edge{Src: b, Dst: successor})
			if !visited[successor] {
				queue = append(queue, successor)
			}
		}
		for _, predecessor := range block.Predecessors(b) {
			edges = append(edges, Edge{Src: predecessor, Dst: b})
			if !visited[predecessor] {
				queue = append(queue, predecessor)
			}
		}
	}
	return New(vertices, edges)
}
