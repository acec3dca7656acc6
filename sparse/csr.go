package sparse

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when the CSR arrays do not describe a matrix of the
	// declared shape.
	ErrShape = errors.New("sparse: inconsistent shape")

	// ErrIndex is returned when a column index is outside the declared shape.
	ErrIndex = errors.New("sparse: column index out of range")
)

// CSR is an immutable binary sparse matrix in compressed sparse row form.
// It is safe for concurrent reads.
type CSR struct {
	rows int
	cols int

	Data    []byte
	Indices []uint32
	Indptr  []uint64
}

// New wraps existing CSR arrays after validating them.
func New(rows, cols int, data []byte, indices []uint32, indptr []uint64) (*CSR, error) {
	m := &CSR{
		rows:    rows,
		cols:    cols,
		Data:    data,
		Indices: indices,
		Indptr:  indptr,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromRows builds a CSR matrix from per-row column lists. Column lists are
// copied in the given order. Rows may be empty.
func FromRows(rowCols [][]uint32, cols int) *CSR {
	nnz := 0
	for _, r := range rowCols {
		nnz += len(r)
	}

	m := &CSR{
		rows:    len(rowCols),
		cols:    cols,
		Data:    make([]byte, nnz),
		Indices: make([]uint32, 0, nnz),
		Indptr:  make([]uint64, len(rowCols)+1),
	}
	for i := range m.Data {
		m.Data[i] = 1
	}
	for i, r := range rowCols {
		m.Indices = append(m.Indices, r...)
		m.Indptr[i+1] = uint64(len(m.Indices))
	}
	return m
}

// Rows returns the number of rows.
func (m *CSR) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *CSR) Cols() int { return m.cols }

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.Indices) }

// Row returns the column indices stored in row i.
// The returned slice aliases the matrix and must not be modified.
func (m *CSR) Row(i int) []uint32 {
	return m.Indices[m.Indptr[i]:m.Indptr[i+1]]
}

// RowLen returns the number of entries in row i.
func (m *CSR) RowLen(i int) int {
	return int(m.Indptr[i+1] - m.Indptr[i])
}

// Transpose returns the column-major view as a new CSR matrix whose rows are
// the columns of m. Entries within each transposed row are in ascending
// order of the original row index.
func (m *CSR) Transpose() *CSR {
	counts := make([]uint64, m.cols+1)
	for _, c := range m.Indices {
		counts[c+1]++
	}
	for i := 1; i <= m.cols; i++ {
		counts[i] += counts[i-1]
	}

	t := &CSR{
		rows:    m.cols,
		cols:    m.rows,
		Data:    make([]byte, len(m.Indices)),
		Indices: make([]uint32, len(m.Indices)),
		Indptr:  counts,
	}
	next := make([]uint64, m.cols)
	copy(next, counts[:m.cols])

	for r := 0; r < m.rows; r++ {
		for _, c := range m.Row(r) {
			t.Indices[next[c]] = uint32(r)
			t.Data[next[c]] = 1
			next[c]++
		}
	}
	return t
}

// ColumnSums returns, for each column, the number of stored entries.
// For the incidence index this is the global size of every bucket.
func (m *CSR) ColumnSums() []uint32 {
	sums := make([]uint32, m.cols)
	for _, c := range m.Indices {
		sums[c]++
	}
	return sums
}

// Validate checks the structural invariants of the matrix.
func (m *CSR) Validate() error {
	if m.rows < 0 || m.cols < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, m.rows, m.cols)
	}
	if len(m.Indptr) != m.rows+1 {
		return fmt.Errorf("%w: indptr has %d entries, want %d", ErrShape, len(m.Indptr), m.rows+1)
	}
	if len(m.Data) != len(m.Indices) {
		return fmt.Errorf("%w: %d data values for %d indices", ErrShape, len(m.Data), len(m.Indices))
	}
	if m.Indptr[0] != 0 {
		return fmt.Errorf("%w: indptr[0] = %d", ErrShape, m.Indptr[0])
	}
	for i := 0; i < m.rows; i++ {
		if m.Indptr[i] > m.Indptr[i+1] {
			return fmt.Errorf("%w: indptr decreases at row %d", ErrShape, i)
		}
	}
	if m.Indptr[m.rows] != uint64(len(m.Indices)) {
		return fmt.Errorf("%w: indptr ends at %d, want %d", ErrShape, m.Indptr[m.rows], len(m.Indices))
	}
	for i, c := range m.Indices {
		if int(c) >= m.cols {
			return fmt.Errorf("%w: entry %d has column %d (cols=%d)", ErrIndex, i, c, m.cols)
		}
	}
	return nil
}
