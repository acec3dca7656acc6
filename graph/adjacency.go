package graph

import (
	"cmp"
	"math"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Adjacency is a symmetric weighted graph stored in a gonum
// simple.WeightedUndirectedGraph. Parallel edges are merged by summing their
// weights and self-loops are dropped. Node ids are the vertex indices of the
// source Graph.
//
// Adjacency implements gonum's graph.WeightedUndirected. Nodes and From
// iterate in ascending id order so that seeded algorithms are reproducible.
type Adjacency struct {
	g        *simple.WeightedUndirectedGraph
	nodes    []gonum.Node
	nbrNodes [][]gonum.Node
	nbrs     [][]int
	weights  [][]float64
	strength []float64
	total    float64
	edges    int
	unit     bool
}

var _ gonum.WeightedUndirected = (*Adjacency)(nil)

// Adjacency builds the merged adjacency of g.
func (g *Graph) Adjacency() *Adjacency {
	n := g.NumVertices()
	sg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for v := 0; v < n; v++ {
		sg.AddNode(simple.Node(v))
	}
	for i, e := range g.Edges {
		if e.U == e.V {
			continue
		}
		u, v := int64(e.U), int64(e.V)
		w := g.Weight(i)
		if cur, ok := sg.Weight(u, v); ok {
			w += cur
		}
		sg.SetWeightedEdge(sg.NewWeightedEdge(simple.Node(u), simple.Node(v), w))
	}
	return newAdjacency(sg, n)
}

func newAdjacency(sg *simple.WeightedUndirectedGraph, n int) *Adjacency {
	a := &Adjacency{
		g:        sg,
		nodes:    make([]gonum.Node, n),
		nbrNodes: make([][]gonum.Node, n),
		nbrs:     make([][]int, n),
		weights:  make([][]float64, n),
		strength: make([]float64, n),
		unit:     true,
	}
	for v := 0; v < n; v++ {
		a.nodes[v] = simple.Node(v)
		nodes := gonum.NodesOf(sg.From(int64(v)))
		slices.SortFunc(nodes, func(x, y gonum.Node) int { return cmp.Compare(x.ID(), y.ID()) })
		a.nbrNodes[v] = nodes
		a.nbrs[v] = make([]int, len(nodes))
		a.weights[v] = make([]float64, len(nodes))
		for i, u := range nodes {
			w, _ := sg.Weight(int64(v), u.ID())
			a.nbrs[v][i] = int(u.ID())
			a.weights[v][i] = w
			a.strength[v] += w
			a.total += w
			if w != 1 {
				a.unit = false
			}
		}
		a.edges += len(nodes)
	}
	a.total /= 2
	a.edges /= 2
	return a
}

// NumVertices returns the number of vertices.
func (a *Adjacency) NumVertices() int { return len(a.strength) }

// NumEdges returns the number of distinct undirected edges.
func (a *Adjacency) NumEdges() int { return a.edges }

// Neighbors returns the neighbors of v in ascending order and the matching
// edge weights. The slices alias internal storage.
func (a *Adjacency) Neighbors(v int) ([]int, []float64) {
	return a.nbrs[v], a.weights[v]
}

// Degree returns the number of distinct neighbors of v.
func (a *Adjacency) Degree(v int) int { return len(a.nbrs[v]) }

// Strength returns the weighted degree of v.
func (a *Adjacency) Strength(v int) float64 { return a.strength[v] }

// TotalWeight returns the sum of all undirected edge weights.
func (a *Adjacency) TotalWeight() float64 { return a.total }

// Unit reports whether every edge has weight one.
func (a *Adjacency) Unit() bool { return a.unit }

// Components labels the connected components of the adjacency, numbered in
// order of their lowest vertex.
func (a *Adjacency) Components() ([]int, int) {
	comps := topo.ConnectedComponents(a)
	lowest := make([]int64, len(comps))
	for i, c := range comps {
		lowest[i] = slices.MinFunc(c, func(x, y gonum.Node) int { return cmp.Compare(x.ID(), y.ID()) }).ID()
	}
	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(x, y int) int { return cmp.Compare(lowest[x], lowest[y]) })

	label := make([]int, a.NumVertices())
	for l, i := range order {
		for _, n := range comps[i] {
			label[n.ID()] = l
		}
	}
	return label, len(comps)
}

// Copy returns a mutable gonum copy of the adjacency.
func (a *Adjacency) Copy() *simple.WeightedUndirectedGraph {
	out := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, n := range a.nodes {
		out.AddNode(n)
	}
	for v := range a.nbrs {
		for i, u := range a.nbrs[v] {
			if u > v {
				out.SetWeightedEdge(out.NewWeightedEdge(a.nodes[v], a.nodes[u], a.weights[v][i]))
			}
		}
	}
	return out
}

// Node implements gonum's graph.Graph.
func (a *Adjacency) Node(id int64) gonum.Node { return a.g.Node(id) }

// Nodes implements gonum's graph.Graph.
func (a *Adjacency) Nodes() gonum.Nodes {
	if len(a.nodes) == 0 {
		return gonum.Empty
	}
	return iterator.NewOrderedNodes(a.nodes)
}

// From implements gonum's graph.Graph.
func (a *Adjacency) From(id int64) gonum.Nodes {
	if id < 0 || id >= int64(len(a.nbrNodes)) || len(a.nbrNodes[id]) == 0 {
		return gonum.Empty
	}
	return iterator.NewOrderedNodes(a.nbrNodes[id])
}

// HasEdgeBetween implements gonum's graph.Graph.
func (a *Adjacency) HasEdgeBetween(xid, yid int64) bool { return a.g.HasEdgeBetween(xid, yid) }

// Edge implements gonum's graph.Graph.
func (a *Adjacency) Edge(uid, vid int64) gonum.Edge { return a.g.Edge(uid, vid) }

// EdgeBetween implements gonum's graph.Undirected.
func (a *Adjacency) EdgeBetween(xid, yid int64) gonum.Edge { return a.g.EdgeBetween(xid, yid) }

// WeightedEdge implements gonum's graph.Weighted.
func (a *Adjacency) WeightedEdge(uid, vid int64) gonum.WeightedEdge {
	return a.g.WeightedEdge(uid, vid)
}

// WeightedEdgeBetween implements gonum's graph.WeightedUndirected.
func (a *Adjacency) WeightedEdgeBetween(xid, yid int64) gonum.WeightedEdge {
	return a.g.WeightedEdgeBetween(xid, yid)
}

// Weight implements gonum's graph.Weighted.
func (a *Adjacency) Weight(xid, yid int64) (float64, bool) { return a.g.Weight(xid, yid) }
