package graph

import (
	"github.com/hupe1980/dupgraph/model"
)

// Edge joins two local vertex indices.
type Edge struct {
	U, V uint32
}

// Graph is an undirected graph built from one component.
type Graph struct {
	// Elements maps local element vertices to element ids.
	Elements []model.ElementID
	// Buckets maps local bucket vertices (offset by len(Elements)) to bucket
	// ids. It is empty in quadratic mode.
	Buckets []model.BucketID
	// Edges lists the edges in construction order. Duplicates are kept.
	Edges []Edge
	// Weights holds one weight per edge, or nil for an unweighted graph.
	Weights []float64
	// Offset is added to bucket ids to form bucket vertex names.
	Offset uint64
}

// NumVertices returns the total number of vertices.
func (g *Graph) NumVertices() int { return len(g.Elements) + len(g.Buckets) }

// NumElements returns the number of element vertices.
func (g *Graph) NumElements() int { return len(g.Elements) }

// IsElement reports whether local vertex v is an element vertex.
func (g *Graph) IsElement(v int) bool { return v < len(g.Elements) }

// Weighted reports whether the graph carries edge weights.
func (g *Graph) Weighted() bool { return g.Weights != nil }

// Name returns the global name of local vertex v: the element id for element
// vertices, the bucket id plus Offset for bucket vertices.
func (g *Graph) Name(v int) uint64 {
	if v < len(g.Elements) {
		return uint64(g.Elements[v])
	}
	return uint64(g.Buckets[v-len(g.Elements)]) + g.Offset
}

// Weight returns the weight of edge i, 1 for unweighted graphs.
func (g *Graph) Weight(i int) float64 {
	if g.Weights == nil {
		return 1
	}
	return g.Weights[i]
}
