package graph

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

// Builder constructs component graphs over a shared incidence index. The
// index is never modified; a Builder is safe for concurrent use once created.
type Builder struct {
	mode  Mode
	index *sparse.CSR

	// weights holds global bucket sizes (linear mode).
	weights []uint32
	// members is the bucket->elements index (quadratic mode).
	members *sparse.CSR
}

// NewBuilder prepares a builder for the element->buckets index. Linear mode
// precomputes the column sums, quadratic mode the transpose.
func NewBuilder(index *sparse.CSR, mode Mode) (*Builder, error) {
	b := &Builder{mode: mode, index: index}
	switch mode {
	case Linear:
		b.weights = index.ColumnSums()
	case Quadratic:
		b.members = index.Transpose()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(mode))
	}
	return b, nil
}

// Mode returns the construction mode.
func (b *Builder) Mode() Mode { return b.mode }

// Build constructs the graph of a component given by its element ids.
// Element ids must be distinct and the set must be closed under bucket
// membership, which holds for connected components.
func (b *Builder) Build(component []model.ElementID) (*Graph, error) {
	touched := roaring.New()
	for _, el := range component {
		if int(el) >= b.index.Rows() {
			return nil, fmt.Errorf("element %d out of range [0, %d)", el, b.index.Rows())
		}
		touched.AddMany(b.index.Row(int(el)))
	}

	if b.mode == Linear {
		return b.linear(component, touched), nil
	}
	return b.quadratic(component, touched)
}

func (b *Builder) linear(component []model.ElementID, touched *roaring.Bitmap) *Graph {
	buckets := touched.ToArray()
	local := make(map[model.BucketID]uint32, len(buckets))
	for i, bk := range buckets {
		local[bk] = uint32(len(component) + i)
	}

	nnz := 0
	for _, el := range component {
		nnz += b.index.RowLen(int(el))
	}
	g := &Graph{
		Elements: component,
		Buckets:  buckets,
		Edges:    make([]Edge, 0, nnz),
		Weights:  make([]float64, 0, nnz),
		Offset:   uint64(b.index.Rows()),
	}
	for i, el := range component {
		for _, bk := range b.index.Row(int(el)) {
			g.Edges = append(g.Edges, Edge{U: uint32(i), V: local[bk]})
			g.Weights = append(g.Weights, float64(b.weights[bk]))
		}
	}
	return g
}

func (b *Builder) quadratic(component []model.ElementID, touched *roaring.Bitmap) (*Graph, error) {
	local := make(map[model.ElementID]uint32, len(component))
	for i, el := range component {
		local[el] = uint32(i)
	}

	g := &Graph{
		Elements: component,
		Offset:   uint64(b.index.Rows()),
	}
	it := touched.Iterator()
	for it.HasNext() {
		bk := it.Next()
		members := b.members.Row(int(bk))
		for i, x := range members {
			u, ok := local[x]
			if !ok {
				return nil, fmt.Errorf("bucket %d: element %d is outside the component", bk, x)
			}
			for _, y := range members[i+1:] {
				v, ok := local[y]
				if !ok {
					return nil, fmt.Errorf("bucket %d: element %d is outside the component", bk, y)
				}
				g.Edges = append(g.Edges, Edge{U: u, V: v})
			}
		}
	}
	return g, nil
}
