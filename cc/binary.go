package cc

import (
	"fmt"
	"io"

	"github.com/hupe1980/dupgraph/persistence"
	"github.com/hupe1980/dupgraph/sparse"
)

// Section names of the component artifact.
const (
	sectionCC       = "cc"
	sectionElements = "elements"
	sectionData     = "buckets.data"
	sectionIndices  = "buckets.indices"
	sectionIndptr   = "buckets.indptr"
	sectionShape    = "buckets.shape"
)

// WriteBinary writes the model as a persistence container.
// Payload:
//
//	cc (uint32[elements])
//	elements (strings[elements])
//	buckets.data (bytes[nnz])
//	buckets.indices (uint32[nnz])
//	buckets.indptr (uint64[elements+1])
//	buckets.shape (uint64[2])
func (m *Model) WriteBinary(w io.Writer, c persistence.Compression) error {
	if err := m.Validate(); err != nil {
		return err
	}

	idx := m.IDToBuckets
	size := 128 + len(m.IDToCC)*4 + len(idx.Indices)*5 + len(idx.Indptr)*8
	for _, s := range m.IDToElement {
		size += len(s) + 4
	}
	sw := persistence.NewSectionWriter(size)
	sw.WriteUint32s(sectionCC, m.IDToCC)
	sw.WriteStrings(sectionElements, m.IDToElement)
	sw.WriteBytes(sectionData, idx.Data)
	sw.WriteUint32s(sectionIndices, idx.Indices)
	sw.WriteUint64s(sectionIndptr, idx.Indptr)
	sw.WriteUint64s(sectionShape, []uint64{uint64(idx.Rows()), uint64(idx.Cols())})
	if err := sw.Err(); err != nil {
		return err
	}

	return persistence.Encode(w, persistence.KindComponents, c, sw.Bytes())
}

// ReadBinary reads a model written by WriteBinary. It returns no model at all
// if any section is missing, malformed, or violates the model invariants.
func ReadBinary(r io.Reader) (*Model, error) {
	payload, err := persistence.Decode(r, persistence.KindComponents)
	if err != nil {
		return nil, err
	}

	sr := persistence.NewSectionReader(payload)
	idToCC := sr.ReadUint32s(sectionCC)
	elements := sr.ReadStrings(sectionElements)
	data := sr.ReadBytes(sectionData)
	indices := sr.ReadUint32s(sectionIndices)
	indptr := sr.ReadUint64s(sectionIndptr)
	shape := sr.ReadUint64s(sectionShape)
	if err := sr.Done(); err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: buckets.shape has %d values", persistence.ErrSchemaMismatch, len(shape))
	}

	index, err := sparse.New(int(shape[0]), int(shape[1]), data, indices, indptr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	m := &Model{
		IDToCC:      idToCC,
		IDToElement: elements,
		IDToBuckets: index,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	return m, nil
}
