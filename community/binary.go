package community

import (
	"fmt"
	"io"

	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/persistence"
)

const (
	sectionData     = "data"
	sectionIndptr   = "indptr"
	sectionElements = "elements"
)

// WriteBinary writes the model as a persistence container. Communities are
// stored CSR style: data holds the concatenated element ids and indptr the
// community boundaries.
func (m *Model) WriteBinary(w io.Writer, c persistence.Compression) error {
	if err := m.Validate(); err != nil {
		return err
	}

	indptr := make([]uint64, len(m.Communities)+1)
	for i, comm := range m.Communities {
		indptr[i+1] = indptr[i] + uint64(len(comm))
	}
	data := make([]uint32, 0, indptr[len(m.Communities)])
	for _, comm := range m.Communities {
		data = append(data, comm...)
	}

	size := 64 + len(data)*4 + len(indptr)*8
	for _, s := range m.IDToElement {
		size += len(s) + 4
	}
	sw := persistence.NewSectionWriter(size)
	sw.WriteUint32s(sectionData, data)
	sw.WriteUint64s(sectionIndptr, indptr)
	sw.WriteStrings(sectionElements, m.IDToElement)
	if err := sw.Err(); err != nil {
		return err
	}
	return persistence.Encode(w, persistence.KindCommunities, c, sw.Bytes())
}

// ReadBinary reads a model written by WriteBinary.
func ReadBinary(r io.Reader) (*Model, error) {
	payload, err := persistence.Decode(r, persistence.KindCommunities)
	if err != nil {
		return nil, err
	}

	sr := persistence.NewSectionReader(payload)
	data := sr.ReadUint32s(sectionData)
	indptr := sr.ReadUint64s(sectionIndptr)
	elements := sr.ReadStrings(sectionElements)
	if err := sr.Done(); err != nil {
		return nil, err
	}

	if err := checkIndptr(indptr, len(data)); err != nil {
		return nil, err
	}
	m := &Model{
		Communities: make([]model.Community, len(indptr)-1),
		IDToElement: elements,
	}
	for i := range m.Communities {
		lo, hi := indptr[i], indptr[i+1]
		m.Communities[i] = data[lo:hi:hi]
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	return m, nil
}

// checkIndptr verifies that indptr starts at zero, never decreases and ends
// at n.
func checkIndptr(indptr []uint64, n int) error {
	if len(indptr) == 0 || indptr[0] != 0 || indptr[len(indptr)-1] != uint64(n) {
		return fmt.Errorf("%w: indptr does not span data", persistence.ErrCorrupt)
	}
	for i := 1; i < len(indptr); i++ {
		if indptr[i] < indptr[i-1] || indptr[i] > uint64(n) {
			return fmt.Errorf("%w: indptr decreases at %d", persistence.ErrCorrupt, i-1)
		}
	}
	return nil
}
