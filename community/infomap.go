package community

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/dupgraph/graph"
)

// flowNetwork is an undirected network annotated with random walk flow. At
// the first level every node is a vertex; later levels collapse modules.
type flowNetwork struct {
	flow []float64   // stationary visit rate
	exit []float64   // flow leaving the node
	nbrs [][]int     // neighbors, self excluded
	link [][]float64 // one-way flow along each neighbor edge
}

func flowNetworkOf(a *graph.Adjacency) *flowNetwork {
	n := a.NumVertices()
	m2 := 2 * a.TotalWeight()
	fn := &flowNetwork{
		flow: make([]float64, n),
		exit: make([]float64, n),
		nbrs: make([][]int, n),
		link: make([][]float64, n),
	}
	for v := 0; v < n; v++ {
		nbrs, w := a.Neighbors(v)
		fn.nbrs[v] = nbrs
		fn.link[v] = make([]float64, len(w))
		for i := range w {
			fn.link[v][i] = w[i] / m2
		}
		fn.flow[v] = a.Strength(v) / m2
		fn.exit[v] = fn.flow[v]
	}
	return fn
}

func plogp(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * math.Log2(x)
}

// codelength evaluates the two-level map equation for modules with the given
// exit and visit flows.
func codelength(nodeFlow, exit, flow []float64) float64 {
	q, l := 0.0, 0.0
	for i := range exit {
		q += exit[i]
		l += -2*plogp(exit[i]) + plogp(exit[i]+flow[i])
	}
	for _, p := range nodeFlow {
		l -= plogp(p)
	}
	return l + plogp(q)
}

// partition holds the module state of one level's local moving.
type partition struct {
	module []int
	exit   []float64
	flow   []float64
	total  float64 // sum of exit
}

// moveDelta is the codelength change of swapping the states of modules a and
// b for the given new states.
func (p *partition) moveDelta(a, b int, qa, pa, qb, pb float64) float64 {
	total := p.total - p.exit[a] - p.exit[b] + qa + qb
	return plogp(total) - plogp(p.total) -
		2*(plogp(qa)+plogp(qb)-plogp(p.exit[a])-plogp(p.exit[b])) +
		plogp(qa+pa) + plogp(qb+pb) - plogp(p.exit[a]+p.flow[a]) - plogp(p.exit[b]+p.flow[b])
}

// localMoving moves nodes greedily between neighboring modules while the
// codelength decreases. It returns dense module labels and whether any node
// moved.
func (fn *flowNetwork) localMoving(ctx context.Context, rng *rand.Rand) ([]int, bool, error) {
	const maxSweeps = 100

	n := len(fn.flow)
	p := &partition{
		module: make([]int, n),
		exit:   slices.Clone(fn.exit),
		flow:   slices.Clone(fn.flow),
	}
	order := make([]int, n)
	for v := range order {
		p.module[v] = v
		order[v] = v
		p.total += fn.exit[v]
	}

	links := make([]float64, n)
	seen := make([]bool, n)
	var touched []int

	moved := false
	for sweep := 0; sweep < maxSweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		improved := false
		for _, v := range order {
			a := p.module[v]
			touched = touched[:0]
			for i, u := range fn.nbrs[v] {
				c := p.module[u]
				if !seen[c] {
					seen[c] = true
					touched = append(touched, c)
				}
				links[c] += fn.link[v][i]
			}
			slices.Sort(touched)

			qa := p.exit[a] - fn.exit[v] + 2*links[a]
			pa := p.flow[a] - fn.flow[v]
			best, bestDelta := a, 0.0
			var bq, bp float64
			for _, b := range touched {
				if b == a {
					continue
				}
				qb := p.exit[b] + fn.exit[v] - 2*links[b]
				pb := p.flow[b] + fn.flow[v]
				if d := p.moveDelta(a, b, qa, pa, qb, pb); d < bestDelta-1e-12 {
					best, bestDelta, bq, bp = b, d, qb, pb
				}
			}
			if best != a {
				p.total += qa + bq - p.exit[a] - p.exit[best]
				p.exit[a], p.flow[a] = qa, pa
				p.exit[best], p.flow[best] = bq, bp
				p.module[v] = best
				improved, moved = true, true
			}

			for _, c := range touched {
				links[c] = 0
				seen[c] = false
			}
		}
		if !improved {
			break
		}
	}
	return relabel(p.module), moved, nil
}

// aggregate collapses each module into one node.
func (fn *flowNetwork) aggregate(module []int) *flowNetwork {
	nm := 0
	for _, c := range module {
		nm = max(nm, c+1)
	}
	out := &flowNetwork{
		flow: make([]float64, nm),
		exit: make([]float64, nm),
		nbrs: make([][]int, nm),
		link: make([][]float64, nm),
	}
	acc := make([]map[int]float64, nm)
	for v := range fn.flow {
		cv := module[v]
		out.flow[cv] += fn.flow[v]
		for i, u := range fn.nbrs[v] {
			cu := module[u]
			if cu == cv {
				continue
			}
			if acc[cv] == nil {
				acc[cv] = make(map[int]float64)
			}
			acc[cv][cu] += fn.link[v][i]
			out.exit[cv] += fn.link[v][i]
		}
	}
	for c, m := range acc {
		keys := make([]int, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		out.nbrs[c] = keys
		out.link[c] = make([]float64, len(keys))
		for i, k := range keys {
			out.link[c][i] = m[k]
		}
	}
	return out
}

// newInfomap minimizes the two-level map equation of the random walk flow
// with repeated local moving and aggregation. Each trial starts from a
// different shuffle; the shortest codelength wins.
func newInfomap(o *options) runner {
	trials := o.int("trials", 1, 1)
	seed := o.int("seed", 0, math.MinInt32)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		best := make([]int, n)
		for v := range best {
			best[v] = v
		}
		if a.TotalWeight() == 0 {
			return FlatPartition{Membership: best}, nil
		}

		base := flowNetworkOf(a)
		rng := rand.New(rand.NewPCG(uint64(int64(seed)), 0x6a09e667f3bcc909))
		bestLen := math.Inf(1)
		for t := 0; t < trials; t++ {
			membership := make([]int, n)
			for v := range membership {
				membership[v] = v
			}
			fn := base
			for {
				module, moved, err := fn.localMoving(ctx, rng)
				if err != nil {
					return nil, err
				}
				if !moved {
					break
				}
				for v := range membership {
					membership[v] = module[membership[v]]
				}
				fn = fn.aggregate(module)
			}
			if l := codelength(base.flow, fn.exit, fn.flow); l < bestLen-1e-12 {
				best, bestLen = membership, l
			}
		}
		return FlatPartition{Membership: relabel(best)}, nil
	}
}
