package cc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dupgraph/model"
	"github.com/hupe1980/dupgraph/sparse"
)

// ErrInvalidModel is returned when a component model violates its invariants.
var ErrInvalidModel = errors.New("invalid component model")

// Model is the persisted connected-components artifact. It is read-only
// once built and safe for concurrent use.
type Model struct {
	// IDToCC maps element id to component id.
	IDToCC []model.ComponentID
	// IDToElement maps element id to the original key.
	IDToElement []string
	// IDToBuckets is the element->buckets incidence index.
	IDToBuckets *sparse.CSR
}

// Validate checks len(IDToCC) == len(IDToElement) == rows(IDToBuckets) and
// that component ids are dense.
func (m *Model) Validate() error {
	if m.IDToBuckets == nil {
		return fmt.Errorf("%w: missing incidence index", ErrInvalidModel)
	}
	if len(m.IDToCC) != len(m.IDToElement) || len(m.IDToCC) != m.IDToBuckets.Rows() {
		return fmt.Errorf("%w: %d component ids, %d elements, %d index rows",
			ErrInvalidModel, len(m.IDToCC), len(m.IDToElement), m.IDToBuckets.Rows())
	}
	if err := m.IDToBuckets.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	// Dense ids never exceed the element count.
	for el, c := range m.IDToCC {
		if int(c) >= len(m.IDToCC) {
			return fmt.Errorf("%w: element %d has component id %d beyond %d elements",
				ErrInvalidModel, el, c, len(m.IDToCC))
		}
	}
	used := make([]bool, m.NumComponents())
	for _, c := range m.IDToCC {
		used[c] = true
	}
	for c, ok := range used {
		if !ok {
			return fmt.Errorf("%w: component %d has no elements", ErrInvalidModel, c)
		}
	}
	return nil
}

// NumElements returns the number of elements.
func (m *Model) NumElements() int { return len(m.IDToCC) }

// NumComponents returns the number of components (max id + 1).
func (m *Model) NumComponents() int {
	n := 0
	for _, c := range m.IDToCC {
		if int(c)+1 > n {
			n = int(c) + 1
		}
	}
	return n
}

// Components groups element ids by component. The result is indexed by
// component id and each group lists element ids in ascending order.
func (m *Model) Components() [][]model.ElementID {
	sizes := make([]int, m.NumComponents())
	for _, c := range m.IDToCC {
		sizes[c]++
	}
	out := make([][]model.ElementID, len(sizes))
	for c, n := range sizes {
		out[c] = make([]model.ElementID, 0, n)
	}
	for el, c := range m.IDToCC {
		out[c] = append(out[c], model.ElementID(el))
	}
	return out
}

// Keys returns the original keys of the given element ids.
func (m *Model) Keys(ids []model.ElementID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = m.IDToElement[id]
	}
	return out
}

// Summary returns a short human-readable description.
func (m *Model) Summary() string {
	return fmt.Sprintf("Number of connected components: %d\nNumber of unique elements: %d",
		m.NumComponents(), len(m.IDToElement))
}
