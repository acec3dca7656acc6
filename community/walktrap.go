package community

import (
	"cmp"
	"context"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/dupgraph/graph"
)

// walkProfiles returns the steps-long random walk distribution from each
// vertex, one row per start vertex, with column k scaled by 1/sqrt(d(k)).
// Isolated vertices keep their walker in place.
func walkProfiles(a *graph.Adjacency, steps int) *mat.Dense {
	n := a.NumVertices()
	out := mat.NewDense(n, n, nil)
	cur := make([]float64, n)
	next := make([]float64, n)
	for v := 0; v < n; v++ {
		clear(cur)
		cur[v] = 1
		for s := 0; s < steps; s++ {
			clear(next)
			for u, p := range cur {
				if p == 0 {
					continue
				}
				k := a.Strength(u)
				if k == 0 {
					next[u] += p
					continue
				}
				nbrs, w := a.Neighbors(u)
				for i, x := range nbrs {
					next[x] += p * w[i] / k
				}
			}
			cur, next = next, cur
		}
		for u := range cur {
			if k := a.Strength(u); k > 0 {
				cur[u] /= math.Sqrt(k)
			}
		}
		out.SetRow(v, cur)
	}
	return out
}

// walktrap merges adjacent clusters bottom-up by the smallest increase in
// the mean squared random walk distance (Pons and Latapy).
type walktrap struct {
	n    int
	vec  []*mat.VecDense
	size []int
	adj  []map[int]struct{}
	// delta holds the merge cost of each adjacent cluster pair, keyed lo, hi.
	delta map[[2]int]float64
}

func (w *walktrap) cost(x, y int) float64 {
	var d mat.VecDense
	d.SubVec(w.vec[x], w.vec[y])
	sx, sy := float64(w.size[x]), float64(w.size[y])
	return sx * sy / (sx + sy) * mat.Dot(&d, &d) / float64(w.n)
}

func pairOf(x, y int) [2]int {
	if y < x {
		x, y = y, x
	}
	return [2]int{x, y}
}

// next returns the cheapest pair. Near ties go to the lowest pair.
func (w *walktrap) next() [2]int {
	low := math.Inf(1)
	for _, d := range w.delta {
		low = min(low, d)
	}
	tol := 1e-9 * (1 + math.Abs(low))
	var cands [][2]int
	for p, d := range w.delta {
		if d <= low+tol {
			cands = append(cands, p)
		}
	}
	return slices.MinFunc(cands, func(x, y [2]int) int {
		if c := cmp.Compare(x[0], y[0]); c != 0 {
			return c
		}
		return cmp.Compare(x[1], y[1])
	})
}

// merge joins x and y into the new cluster id.
func (w *walktrap) merge(x, y, id int) {
	sx, sy := float64(w.size[x]), float64(w.size[y])
	v := mat.NewVecDense(w.n, nil)
	v.ScaleVec(sx/(sx+sy), w.vec[x])
	v.AddScaledVec(v, sy/(sx+sy), w.vec[y])
	w.vec = append(w.vec, v)
	w.size = append(w.size, w.size[x]+w.size[y])

	nbrs := make(map[int]struct{})
	for _, c := range []int{x, y} {
		for o := range w.adj[c] {
			delete(w.delta, pairOf(c, o))
			delete(w.adj[o], c)
			if o != x && o != y {
				nbrs[o] = struct{}{}
			}
		}
		w.adj[c] = nil
		w.vec[c] = nil
	}
	w.adj = append(w.adj, nbrs)
	for o := range nbrs {
		w.adj[o][id] = struct{}{}
		w.delta[pairOf(o, id)] = w.cost(o, id)
	}
}

func newWalktrap(o *options) runner {
	steps := o.int("steps", 4, 1)
	clusters := o.int("clusters", 0, 1)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		if n == 0 {
			return Hierarchy{}, nil
		}
		profiles := walkProfiles(a, steps)
		w := &walktrap{
			n:     n,
			vec:   make([]*mat.VecDense, n, 2*n),
			size:  make([]int, n, 2*n),
			adj:   make([]map[int]struct{}, n, 2*n),
			delta: make(map[[2]int]float64),
		}
		for v := 0; v < n; v++ {
			w.vec[v] = mat.VecDenseCopyOf(profiles.RowView(v))
			w.size[v] = 1
			w.adj[v] = make(map[int]struct{})
		}
		for v := 0; v < n; v++ {
			nbrs, _ := a.Neighbors(v)
			for _, u := range nbrs {
				w.adj[v][u] = struct{}{}
				if u > v {
					w.delta[pairOf(u, v)] = w.cost(u, v)
				}
			}
		}

		h := Hierarchy{N: n}
		for len(w.delta) > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p := w.next()
			h.Merges = append(h.Merges, p)
			w.merge(p[0], p[1], n+len(h.Merges)-1)
		}

		h.Optimal = clusterCount(clusters, optimalCut(a, n, h.Merges))
		return h, nil
	}
}
