package community

import (
	"context"
	"math"
	"math/rand/v2"

	gcommunity "gonum.org/v1/gonum/graph/community"

	"github.com/hupe1980/dupgraph/graph"
)

// newMultilevel runs gonum's Louvain modularization. Each level of the
// returned reduction is one round of local moving plus aggregation.
func newMultilevel(o *options) runner {
	resolution := o.float("resolution", 1)
	maxLevels := o.int("max_levels", math.MaxInt32, 1)
	seed := o.int("seed", 0, math.MinInt32)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := a.NumVertices()
		membership := make([]int, n)
		for v := range membership {
			membership[v] = v
		}
		if a.TotalWeight() == 0 {
			return FlatPartition{Membership: membership}, nil
		}

		src := rand.NewPCG(uint64(int64(seed)), 0xda3e39cb94b95bdb)
		var levels []gcommunity.ReducedGraph
		for r := gcommunity.Modularize(a, resolution, src); r != nil; r = expanded(r) {
			levels = append(levels, r)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// levels runs from the coarsest reduction down to the first one.
		level := levels[max(0, len(levels)-maxLevels)]
		for c, members := range level.Communities() {
			for _, m := range members {
				membership[m.ID()] = c
			}
		}
		return FlatPartition{Membership: relabel(membership)}, nil
	}
}

// expanded returns the next finer level of r, or nil at the first level.
func expanded(r gcommunity.ReducedGraph) gcommunity.ReducedGraph {
	e := r.Expanded()
	if u, ok := e.(*gcommunity.ReducedUndirected); ok && u == nil {
		return nil
	}
	return e
}
