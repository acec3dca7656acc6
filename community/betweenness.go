package community

import (
	"cmp"
	"context"
	"math"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/hupe1980/dupgraph/graph"
)

type edgeKey = [2]int64

func keyOf(u, v int64) edgeKey {
	if v < u {
		u, v = v, u
	}
	return edgeKey{u, v}
}

// girvanNewman holds the shrinking working graph and the current edge
// betweenness scores. Weights are path lengths; unit graphs use Brandes'
// unweighted algorithm.
type girvanNewman struct {
	work   *simple.WeightedUndirectedGraph
	unit   bool
	scores map[edgeKey]float64
}

func newGirvanNewman(a *graph.Adjacency) *girvanNewman {
	gn := &girvanNewman{
		work:   a.Copy(),
		unit:   a.Unit(),
		scores: make(map[edgeKey]float64, a.NumEdges()),
	}
	gn.rescore(gn.work)
	return gn
}

// betweenness scores the edges of g with gonum's network package.
func (gn *girvanNewman) betweenness(g *simple.WeightedUndirectedGraph) map[edgeKey]float64 {
	if gn.unit {
		return network.EdgeBetweenness(g)
	}
	return network.EdgeBetweennessWeighted(g, path.DijkstraAllPaths(g))
}

// rescore replaces the scores of every edge in g. Edges missing from the
// betweenness map lie on no shortest path and score zero.
func (gn *girvanNewman) rescore(g *simple.WeightedUndirectedGraph) {
	cb := gn.betweenness(g)
	for it := g.WeightedEdges(); it.Next(); {
		e := it.WeightedEdge()
		k := keyOf(e.From().ID(), e.To().ID())
		gn.scores[k] = cb[k]
	}
}

// component returns the subgraph of the working graph reachable from n.
func (gn *girvanNewman) component(n gonum.Node) *simple.WeightedUndirectedGraph {
	var nodes []gonum.Node
	bf := traverse.BreadthFirst{Visit: func(v gonum.Node) { nodes = append(nodes, v) }}
	bf.Walk(gn.work, n, nil)

	sub := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, v := range nodes {
		sub.AddNode(v)
	}
	for _, v := range nodes {
		for it := gn.work.From(v.ID()); it.Next(); {
			u := it.Node()
			if u.ID() > v.ID() {
				w, _ := gn.work.Weight(v.ID(), u.ID())
				sub.SetWeightedEdge(sub.NewWeightedEdge(v, u, w))
			}
		}
	}
	return sub
}

// next returns the edge with the highest score. Near ties go to the lowest
// endpoint pair.
func (gn *girvanNewman) next() edgeKey {
	top := math.Inf(-1)
	for _, s := range gn.scores {
		top = max(top, s)
	}
	tol := 1e-9 * (1 + math.Abs(top))
	var cands []edgeKey
	for k, s := range gn.scores {
		if s >= top-tol {
			cands = append(cands, k)
		}
	}
	return slices.MinFunc(cands, func(x, y edgeKey) int {
		if c := cmp.Compare(x[0], y[0]); c != 0 {
			return c
		}
		return cmp.Compare(x[1], y[1])
	})
}

// remove deletes e and rescores the components holding its endpoints.
func (gn *girvanNewman) remove(e edgeKey) {
	gn.work.RemoveEdge(e[0], e[1])
	delete(gn.scores, e)

	left := gn.component(gn.work.Node(e[0]))
	gn.rescore(left)
	if left.Node(e[1]) == nil {
		gn.rescore(gn.component(gn.work.Node(e[1])))
	}
}

func newEdgeBetweenness(o *options) runner {
	clusters := o.int("clusters", 0, 1)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		gn := newGirvanNewman(a)
		removal := make([]edgeKey, 0, a.NumEdges())
		for len(gn.scores) > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e := gn.next()
			gn.remove(e)
			removal = append(removal, e)
		}

		// Adding the edges back in reverse removal order rebuilds the
		// dendrogram bottom-up.
		h := Hierarchy{N: n}
		parent := make([]int, n)
		dendro := make([]int, n)
		for v := range parent {
			parent[v] = v
			dendro[v] = v
		}
		find := func(x int) int {
			for parent[x] != x {
				parent[x] = parent[parent[x]]
				x = parent[x]
			}
			return x
		}
		for i := len(removal) - 1; i >= 0; i-- {
			e := removal[i]
			ru, rv := find(int(e[0])), find(int(e[1]))
			if ru == rv {
				continue
			}
			h.Merges = append(h.Merges, [2]int{dendro[ru], dendro[rv]})
			parent[rv] = ru
			dendro[ru] = n + len(h.Merges) - 1
		}

		h.Optimal = clusterCount(clusters, optimalCut(a, n, h.Merges))
		return h, nil
	}
}
