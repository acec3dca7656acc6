package community

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/dupgraph/graph"
)

// denseLimit is the largest group split by a full eigendecomposition.
// Larger groups fall back to power iteration.
var denseLimit = 1024

// splitter bisects vertex groups by the leading eigenvector of the
// generalized modularity matrix of the group.
type splitter struct {
	a             *graph.Adjacency
	m2            float64
	maxIterations int
	pos           []int // vertex -> index in the current group, -1 outside
}

// mul computes y = B(g) x for the group g.
func (s *splitter) mul(g []int, diag, x, y []float64) {
	kx := 0.0
	for i, v := range g {
		kx += s.a.Strength(v) * x[i]
	}
	for i, v := range g {
		sum := 0.0
		nbrs, w := s.a.Neighbors(v)
		for j, u := range nbrs {
			if p := s.pos[u]; p >= 0 {
				sum += w[j] * x[p]
			}
		}
		y[i] = sum - s.a.Strength(v)*kx/s.m2 - diag[i]*x[i]
	}
}

// split returns the +1/-1 assignment of g and the modularity gain of the
// split. A gain <= 0 means g is indivisible.
func (s *splitter) split(ctx context.Context, g []int) ([]bool, float64, error) {
	const eps = 1e-10

	n := len(g)
	if n < 2 {
		return nil, 0, nil
	}
	for i, v := range g {
		s.pos[v] = i
	}
	defer func() {
		for _, v := range g {
			s.pos[v] = -1
		}
	}()

	kg := 0.0
	for _, v := range g {
		kg += s.a.Strength(v)
	}
	diag := make([]float64, n)
	shift := 0.0
	for i, v := range g {
		inside := 0.0
		nbrs, w := s.a.Neighbors(v)
		for j, u := range nbrs {
			if s.pos[u] >= 0 {
				inside += w[j]
			}
		}
		diag[i] = inside - s.a.Strength(v)*kg/s.m2
		shift = max(shift, inside+s.a.Strength(v)*kg/s.m2+math.Abs(diag[i]))
	}

	var x []float64
	if n <= denseLimit {
		x = s.dense(g, diag)
	}
	if x == nil {
		var err error
		if x, err = s.power(ctx, g, diag, shift); err != nil || x == nil {
			return nil, 0, err
		}
	}

	y := make([]float64, n)
	s.mul(g, diag, x, y)
	if lambda := floats.Dot(x, y); lambda <= eps {
		return nil, 0, nil
	}

	side := make([]bool, n)
	sv := make([]float64, n)
	positives := 0
	for i := range x {
		side[i] = x[i] > 0
		if side[i] {
			sv[i] = 1
			positives++
		} else {
			sv[i] = -1
		}
	}
	if positives == 0 || positives == n {
		return nil, 0, nil
	}

	s.mul(g, diag, sv, y)
	return side, floats.Dot(sv, y) / (2 * s.m2), nil
}

// dense returns the leading eigenvector of B(g) from a full symmetric
// eigendecomposition, or nil if the factorization fails.
func (s *splitter) dense(g []int, diag []float64) []float64 {
	n := len(g)
	b := mat.NewSymDense(n, nil)
	for i, v := range g {
		kv := s.a.Strength(v)
		for j := i; j < n; j++ {
			b.SetSym(i, j, -kv*s.a.Strength(g[j])/s.m2)
		}
		nbrs, w := s.a.Neighbors(v)
		for k, u := range nbrs {
			if p := s.pos[u]; p > i {
				b.SetSym(i, p, b.At(i, p)+w[k])
			}
		}
		b.SetSym(i, i, b.At(i, i)-diag[i])
	}

	var es mat.EigenSym
	if !es.Factorize(b, true) {
		return nil
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	// Eigenvalues are ascending.
	return mat.Col(nil, n-1, &vecs)
}

// power approximates the leading eigenvector of B(g) by shifted power
// iteration. It returns nil if the iteration collapses to zero.
func (s *splitter) power(ctx context.Context, g []int, diag []float64, shift float64) ([]float64, error) {
	const eps = 1e-10

	n := len(g)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i%5) - 2 + 0.5
	}
	floats.Scale(1/floats.Norm(x, 2), x)

	for it := 0; it < s.maxIterations; it++ {
		if it%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s.mul(g, diag, x, y)
		floats.AddScaled(y, shift, x)
		norm := floats.Norm(y, 2)
		if norm == 0 {
			return nil, nil
		}
		floats.Scale(1/norm, y)
		diff := floats.Distance(x, y, math.Inf(1))
		x, y = y, x
		if diff < eps {
			break
		}
	}
	return x, nil
}

func newLeadingEigenvector(o *options) runner {
	clusters := o.int("clusters", 0, 1)
	maxIterations := o.int("max_iterations", 1000, 1)

	return func(ctx context.Context, a *graph.Adjacency) (Result, error) {
		n := a.NumVertices()
		membership := make([]int, n)
		m2 := 2 * a.TotalWeight()
		if m2 == 0 || n < 2 {
			return FlatPartition{Membership: membership}, nil
		}

		s := &splitter{a: a, m2: m2, maxIterations: maxIterations, pos: make([]int, n)}
		for i := range s.pos {
			s.pos[i] = -1
		}

		all := make([]int, n)
		for v := range all {
			all[v] = v
		}
		groups := [][]int{all}
		queue := []int{0}
		for len(queue) > 0 && (clusters == 0 || len(groups) < clusters) {
			gi := queue[0]
			queue = queue[1:]

			side, gain, err := s.split(ctx, groups[gi])
			if err != nil {
				return nil, err
			}
			if gain <= 1e-10 {
				continue
			}
			var in, out []int
			for i, v := range groups[gi] {
				if side[i] {
					in = append(in, v)
				} else {
					out = append(out, v)
				}
			}
			groups[gi] = in
			groups = append(groups, out)
			queue = append(queue, gi, len(groups)-1)
		}

		for c, g := range groups {
			for _, v := range g {
				membership[v] = c
			}
		}
		return FlatPartition{Membership: relabel(membership)}, nil
	}
}
