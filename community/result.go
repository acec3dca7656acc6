package community

import (
	"fmt"

	gonum "gonum.org/v1/gonum/graph"
	gcommunity "gonum.org/v1/gonum/graph/community"

	"github.com/hupe1980/dupgraph/graph"
)

// Result is the outcome of one algorithm run. It is either a FlatPartition or
// a Hierarchy.
type Result interface {
	flat() (FlatPartition, error)
}

// FlatPartition assigns each vertex a dense cluster id. A negative id marks a
// vertex the algorithm left unassigned.
type FlatPartition struct {
	Membership []int
}

func (p FlatPartition) flat() (FlatPartition, error) { return p, nil }

// Len returns the number of clusters.
func (p FlatPartition) Len() int {
	n := 0
	for _, c := range p.Membership {
		if c+1 > n {
			n = c + 1
		}
	}
	return n
}

// Hierarchy is a dendrogram over N vertices. Leaves are numbered 0..N-1 and
// merge i creates the cluster N+i from the two clusters it names. A
// dendrogram of a disconnected graph stops before reaching a single root.
type Hierarchy struct {
	N      int
	Merges [][2]int
	// Optimal is the number of clusters of the best cut.
	Optimal int
}

func (h Hierarchy) flat() (FlatPartition, error) { return h.BestCut() }

// MinClusters returns the smallest number of clusters any cut can yield.
func (h Hierarchy) MinClusters() int { return h.N - len(h.Merges) }

// BestCut returns the designated flat clustering.
func (h Hierarchy) BestCut() (FlatPartition, error) {
	return h.Cut(h.Optimal)
}

// Cut applies merges until k clusters remain. k is clamped to
// [MinClusters(), N].
func (h Hierarchy) Cut(k int) (FlatPartition, error) {
	k = max(h.MinClusters(), min(k, h.N))
	parent := make([]int, h.N+len(h.Merges))
	for i := range parent {
		parent[i] = i
	}
	for i, m := range h.Merges[:h.N-k] {
		for _, c := range m {
			if c < 0 || c >= h.N+i {
				return FlatPartition{}, fmt.Errorf("merge %d references cluster %d", i, c)
			}
			parent[c] = h.N + i
		}
	}

	root := func(x int) int {
		r := x
		for parent[r] != r {
			r = parent[r]
		}
		for parent[x] != r {
			parent[x], x = r, parent[x]
		}
		return r
	}
	membership := make([]int, h.N)
	for v := range membership {
		membership[v] = root(v)
	}
	return FlatPartition{Membership: relabel(membership)}, nil
}

// relabel renumbers labels densely in order of first appearance. Negative
// labels are kept.
func relabel(labels []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l < 0 {
			out[i] = -1
			continue
		}
		id, ok := ids[l]
		if !ok {
			id = len(ids)
			ids[l] = id
		}
		out[i] = id
	}
	return out
}

// Modularity returns the weighted modularity of membership on a with the
// given resolution, computed by gonum's community.Q. Unassigned vertices
// count as singletons.
func Modularity(a *graph.Adjacency, membership []int, resolution float64) float64 {
	if a.TotalWeight() == 0 {
		return 0
	}
	next := 0
	for _, c := range membership {
		next = max(next, c+1)
	}
	groups := make([][]gonum.Node, next)
	for v, c := range membership {
		n := a.Node(int64(v))
		if c < 0 {
			groups = append(groups, []gonum.Node{n})
			continue
		}
		groups[c] = append(groups[c], n)
	}
	return gcommunity.Q(a, groups, resolution)
}

// optimalCut returns the number of clusters of the dendrogram cut with the
// highest modularity. Ties keep the finer cut.
func optimalCut(a *graph.Adjacency, n int, merges [][2]int) int {
	if a.TotalWeight() == 0 || len(merges) == 0 {
		return n
	}

	parent := make([]int, n+len(merges))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	membership := make([]int, n)
	for v := range membership {
		membership[v] = v
	}

	best, bestK := Modularity(a, membership, 1), n
	for i, m := range merges {
		if m[0] < 0 || m[0] >= n+i || m[1] < 0 || m[1] >= n+i {
			break
		}
		parent[find(m[0])] = n + i
		parent[find(m[1])] = n + i
		for v := range membership {
			membership[v] = find(v)
		}
		if q := Modularity(a, relabel(membership), 1); q > best+1e-12 {
			best, bestK = q, n-i-1
		}
	}
	return bestK
}

// clusterCount resolves the "clusters" option against a hierarchy.
func clusterCount(requested, optimal int) int {
	if requested > 0 {
		return requested
	}
	return optimal
}
