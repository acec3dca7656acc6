package community

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/hupe1980/dupgraph/graph"
)

func newLabelPropagation(o *options) runner {
	maxIterations := o.int("max_iterations", 100, 1)
	seed := o.int("seed", 0, math.MinInt32)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		labels := make([]int, n)
		order := make([]int, n)
		for v := range labels {
			labels[v] = v
			order[v] = v
		}

		rng := rand.New(rand.NewPCG(uint64(int64(seed)), 0x9e3779b97f4a7c15))
		score := make([]float64, n)
		seen := make([]bool, n)
		var touched []int

		for it := 0; it < maxIterations; it++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

			changed := false
			for _, v := range order {
				nbrs, w := a.Neighbors(v)
				if len(nbrs) == 0 {
					continue
				}
				touched = touched[:0]
				for i, u := range nbrs {
					l := labels[u]
					if !seen[l] {
						seen[l] = true
						touched = append(touched, l)
					}
					score[l] += w[i]
				}

				top := 0.0
				for _, l := range touched {
					top = max(top, score[l])
				}
				next := labels[v]
				if score[next] < top {
					next = math.MaxInt
					for _, l := range touched {
						if score[l] == top && l < next {
							next = l
						}
					}
				}
				for _, l := range touched {
					score[l] = 0
					seen[l] = false
				}

				if next != labels[v] {
					labels[v] = next
					changed = true
				}
			}
			if !changed {
				break
			}
		}
		return FlatPartition{Membership: relabel(labels)}, nil
	}
}
