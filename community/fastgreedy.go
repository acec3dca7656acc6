package community

import (
	"context"

	"github.com/hupe1980/dupgraph/graph"
)

func newFastGreedy(o *options) runner {
	clusters := o.int("clusters", 0, 1)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		m2 := 2 * a.TotalWeight()
		h := Hierarchy{N: n}
		if m2 == 0 {
			h.Optimal = clusterCount(clusters, n)
			return h, nil
		}

		// e[i][j] is the fraction of edge ends joining clusters i and j,
		// share[i] the fraction of edge ends attached to cluster i.
		e := make([]map[int]float64, n)
		share := make([]float64, n)
		dendro := make([]int, n)
		for v := 0; v < n; v++ {
			nbrs, w := a.Neighbors(v)
			e[v] = make(map[int]float64, len(nbrs))
			for i, u := range nbrs {
				e[v][u] = w[i] / m2
			}
			share[v] = a.Strength(v) / m2
			dendro[v] = v
		}

		for step := 0; ; step++ {
			if step%64 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			bi, bj := -1, -1
			best := 0.0
			for i := 0; i < n; i++ {
				for j, eij := range e[i] {
					if j <= i {
						continue
					}
					dq := 2 * (eij - share[i]*share[j])
					if bi < 0 || dq > best || (dq == best && (i < bi || (i == bi && j < bj))) {
						bi, bj, best = i, j, dq
					}
				}
			}
			if bi < 0 {
				break
			}

			for k, w := range e[bj] {
				if k == bi {
					continue
				}
				e[bi][k] += w
				e[k][bi] += w
				delete(e[k], bj)
			}
			delete(e[bi], bj)
			e[bj] = nil
			share[bi] += share[bj]

			h.Merges = append(h.Merges, [2]int{dendro[bi], dendro[bj]})
			dendro[bi] = n + step
		}

		h.Optimal = clusterCount(clusters, optimalCut(a, n, h.Merges))
		return h, nil
	}
}
