// Package sparse provides the compressed sparse row (CSR) matrix used as the
// element/bucket incidence index.
//
// Rows are elements, columns are buckets, and every stored value is 1. The
// layout matches the on-disk encoding of the component model:
//
//	Data    []byte    // all ones, one per incidence
//	Indices []uint32  // column (bucket) ids, row by row
//	Indptr  []uint64  // len(rows)+1 offsets into Indices
//
// Row access is a zero-copy slice of Indices. Column access goes through
// Transpose, which materializes the bucket->elements view once.
package sparse
