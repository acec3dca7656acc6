package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

func index(numElements int, buckets ...model.Bucket) *sparse.CSR {
	return bucket.IncidenceIndex(buckets, numElements)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"linear", Linear, false},
		{"1", Linear, false},
		{" Quadratic ", Quadratic, false},
		{"cubic", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_Linear(t *testing.T) {
	// Elements 0..3 form a component; bucket 2 also holds element 4 which
	// lives in the same component in real data, here it only raises the
	// global bucket size.
	idx := index(5, model.Bucket{0, 1}, model.Bucket{1, 2}, model.Bucket{2, 3, 4})
	b, err := NewBuilder(idx, Linear)
	require.NoError(t, err)

	g, err := b.Build([]model.ElementID{0, 1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 7, g.NumVertices())
	assert.Equal(t, 4, g.NumElements())
	assert.Equal(t, []model.BucketID{0, 1, 2}, g.Buckets)
	assert.Equal(t, []Edge{{0, 4}, {1, 4}, {1, 5}, {2, 5}, {2, 6}, {3, 6}}, g.Edges)
	assert.Equal(t, []float64{2, 2, 2, 2, 3, 3}, g.Weights)

	assert.Equal(t, uint64(2), g.Name(2))
	assert.Equal(t, uint64(5+1), g.Name(5))
	assert.True(t, g.IsElement(3))
	assert.False(t, g.IsElement(4))
}

func TestBuild_Quadratic(t *testing.T) {
	idx := index(4, model.Bucket{0, 1, 2}, model.Bucket{2, 3})
	b, err := NewBuilder(idx, Quadratic)
	require.NoError(t, err)

	g, err := b.Build([]model.ElementID{3, 2, 1, 0})
	require.NoError(t, err)

	assert.False(t, g.Weighted())
	assert.Empty(t, g.Buckets)
	assert.Equal(t, 4, g.NumVertices())
	// local: 3->0, 2->1, 1->2, 0->3
	assert.Equal(t, []Edge{{3, 2}, {3, 1}, {2, 1}, {1, 0}}, g.Edges)
}

func TestBuild_QuadraticOpenComponent(t *testing.T) {
	idx := index(3, model.Bucket{0, 1, 2})
	b, err := NewBuilder(idx, Quadratic)
	require.NoError(t, err)

	_, err = b.Build([]model.ElementID{0, 1})
	require.Error(t, err)
}

func TestBuild_OutOfRange(t *testing.T) {
	b, err := NewBuilder(index(2, model.Bucket{0, 1}), Linear)
	require.NoError(t, err)
	_, err = b.Build([]model.ElementID{0, 7})
	require.Error(t, err)
}

func TestModesAgreeOnConnectivityForSmallBuckets(t *testing.T) {
	// All buckets have at most two members.
	buckets := []model.Bucket{{0, 1}, {1, 2}, {3}, {3, 4}, {5, 6}, {2}}
	idx := index(7, buckets...)
	component := []model.ElementID{0, 1, 2, 3, 4, 5, 6}

	lb, err := NewBuilder(idx, Linear)
	require.NoError(t, err)
	qb, err := NewBuilder(idx, Quadratic)
	require.NoError(t, err)

	lg, err := lb.Build(component)
	require.NoError(t, err)
	qg, err := qb.Build(component)
	require.NoError(t, err)

	lLabels, _ := lg.Adjacency().Components()
	qLabels, qn := qg.Adjacency().Components()
	assert.Equal(t, 3, qn)

	for i := range component {
		for j := range component {
			assert.Equal(t, qLabels[i] == qLabels[j], lLabels[i] == lLabels[j], "elements %d and %d", i, j)
		}
	}
}

func TestAdjacency_MergesParallelEdges(t *testing.T) {
	g := &Graph{
		Elements: []model.ElementID{0, 1, 2},
		Edges:    []Edge{{0, 1}, {1, 0}, {1, 2}, {2, 2}},
		Weights:  []float64{1, 2, 5, 9},
	}
	a := g.Adjacency()

	assert.Equal(t, 2, a.NumEdges())
	assert.InDelta(t, 8.0, a.TotalWeight(), 1e-12)

	nbrs, w := a.Neighbors(1)
	assert.Equal(t, []int{0, 2}, nbrs)
	assert.Equal(t, []float64{3, 5}, w)
	assert.InDelta(t, 8.0, a.Strength(1), 1e-12)
	assert.Equal(t, 1, a.Degree(2))
}

func TestAdjacency_GonumView(t *testing.T) {
	g := &Graph{
		Elements: []model.ElementID{0, 1, 2, 3, 4},
		Edges:    []Edge{{3, 0}, {0, 1}, {2, 0}, {4, 3}},
	}
	a := g.Adjacency()
	assert.True(t, a.Unit())

	var ids []int64
	for it := a.From(0); it.Next(); {
		ids = append(ids, it.Node().ID())
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	w, ok := a.Weight(0, 3)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, w, 1e-12)
	assert.False(t, a.HasEdgeBetween(1, 2))
	assert.Equal(t, 0, a.From(99).Len())

	labels, n := a.Components()
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, labels)

	cp := a.Copy()
	cp.RemoveEdge(0, 3)
	assert.True(t, a.HasEdgeBetween(0, 3))
	assert.False(t, cp.HasEdgeBetween(0, 3))
	assert.Equal(t, 5, cp.Nodes().Len())
}

func TestAdjacency_ComponentsOrderedByLowestVertex(t *testing.T) {
	g := &Graph{
		Elements: []model.ElementID{0, 1, 2, 3, 4, 5},
		Edges:    []Edge{{5, 1}, {3, 2}, {2, 0}},
		Weights:  []float64{2, 1, 1},
	}
	a := g.Adjacency()
	assert.False(t, a.Unit())

	labels, n := a.Components()
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 0, 0, 2, 1}, labels)
}
