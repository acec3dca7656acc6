package cc

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

const unassigned = math.MaxUint32

// Label assigns a component id to every element. buckets lists the members
// of each bucket and index is the element->buckets incidence index built from
// them. It returns the element->component array and the number of
// components. Component ids are dense and follow discovery order, starting
// from the lowest unvisited bucket.
func Label(buckets []model.Bucket, index *sparse.CSR) ([]model.ComponentID, int) {
	idToCC := make([]model.ComponentID, index.Rows())
	for i := range idToCC {
		idToCC[i] = unassigned
	}

	unvisited := roaring.New()
	unvisited.AddRange(0, uint64(len(buckets)))

	var (
		cc    model.ComponentID
		stack []model.BucketID
	)
	for !unvisited.IsEmpty() {
		seed := unvisited.Minimum()
		unvisited.Remove(seed)
		stack = append(stack[:0], seed)

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, el := range buckets[b] {
				if idToCC[el] == cc {
					continue
				}
				idToCC[el] = cc
				for _, nb := range index.Row(int(el)) {
					if unvisited.CheckedRemove(nb) {
						stack = append(stack, nb)
					}
				}
			}
		}
		cc++
	}

	// Elements without buckets are their own components.
	for i, c := range idToCC {
		if c == unassigned {
			idToCC[i] = cc
			cc++
		}
	}
	return idToCC, int(cc)
}

// Find runs the connected-components analysis over a frozen bucket set and
// returns the component model together with its diagnostics.
func Find(res *bucket.Result) (*Model, Stats) {
	index := res.Index()
	stats := ComputeStats(res.Buckets, index, len(res.Hashtables))

	idToCC, n := Label(res.Buckets, index)
	stats.Components = n

	return &Model{
		IDToCC:      idToCC,
		IDToElement: res.Elements,
		IDToBuckets: index,
	}, stats
}
