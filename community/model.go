package community

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dupgraph/model"
)

// Model is the persisted communities artifact.
type Model struct {
	Communities []model.Community
	// IDToElement maps element id to the original key.
	IDToElement []string
}

// Validate checks that communities are non-empty, reference known elements
// and do not overlap.
func (m *Model) Validate() error {
	_, err := m.coverage()
	return err
}

// CheckPartition additionally checks that every element belongs to a
// community.
func (m *Model) CheckPartition() error {
	seen, err := m.coverage()
	if err != nil {
		return err
	}
	if got := seen.GetCardinality(); got != uint64(len(m.IDToElement)) {
		missing := roaring.New()
		missing.AddRange(0, uint64(len(m.IDToElement)))
		missing.AndNot(seen)
		return fmt.Errorf("%w: %d of %d elements not covered, first is %d",
			ErrInvalidModel, missing.GetCardinality(), len(m.IDToElement), missing.Minimum())
	}
	return nil
}

func (m *Model) coverage() (*roaring.Bitmap, error) {
	seen := roaring.New()
	for i, c := range m.Communities {
		if len(c) == 0 {
			return nil, fmt.Errorf("%w: community %d is empty", ErrInvalidModel, i)
		}
		for _, el := range c {
			if int(el) >= len(m.IDToElement) {
				return nil, fmt.Errorf("%w: community %d: element %d out of range", ErrInvalidModel, i, el)
			}
			if !seen.CheckedAdd(el) {
				return nil, fmt.Errorf("%w: community %d: element %d appears twice", ErrInvalidModel, i, el)
			}
		}
	}
	return seen, nil
}

// Keys returns the original keys of community i.
func (m *Model) Keys(i int) []string {
	out := make([]string, len(m.Communities[i]))
	for j, el := range m.Communities[i] {
		out[j] = m.IDToElement[el]
	}
	return out
}

// Stats summarizes community sizes.
type Stats struct {
	Communities int
	Elements    int
	MeanSize    float64
	MaxSize     int
	Singletons  int
	Pairs       int
}

// Stats computes size statistics.
func (m *Model) Stats() Stats {
	st := Stats{Communities: len(m.Communities)}
	for _, c := range m.Communities {
		st.Elements += len(c)
		st.MaxSize = max(st.MaxSize, len(c))
		switch len(c) {
		case 1:
			st.Singletons++
		case 2:
			st.Pairs++
		}
	}
	if st.Communities > 0 {
		st.MeanSize = float64(st.Elements) / float64(st.Communities)
	}
	return st
}

// Summary returns a short human-readable description.
func (m *Model) Summary() string {
	st := m.Stats()
	return fmt.Sprintf("Overall communities: %d\nAverage community size: %.1f\nMax community size: %d",
		st.Communities, st.MeanSize, st.MaxSize)
}
