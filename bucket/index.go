package bucket

import (
	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

// IncidenceIndex builds the element->buckets index for buckets over
// numElements elements. Rows are elements, columns are buckets. An element
// listed twice in one bucket contributes a single incidence. Elements that
// belong to no bucket get an empty row.
func IncidenceIndex(buckets []model.Bucket, numElements int) *sparse.CSR {
	rows := make([][]uint32, numElements)
	for i, bk := range buckets {
		bid := model.BucketID(i)
		for _, el := range bk {
			r := rows[el]
			if n := len(r); n > 0 && r[n-1] == bid {
				continue
			}
			rows[el] = append(r, bid)
		}
	}
	return sparse.FromRows(rows, len(buckets))
}

// Index builds the incidence index of the result.
func (r *Result) Index() *sparse.CSR {
	return IncidenceIndex(r.Buckets, len(r.Elements))
}
