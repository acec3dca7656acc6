package rowsource

import (
	"bytes"
	"context"
	"slices"

	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/model"
)

// Memory is a bucket.Source over rows held in memory. Rows of each hashtable
// are served ordered by band value, so input order does not matter.
type Memory struct {
	tables map[model.HashtableID][]model.Row
	ids    []model.HashtableID
}

// NewMemory groups rows by hashtable.
func NewMemory(rows []model.Row) *Memory {
	m := &Memory{tables: make(map[model.HashtableID][]model.Row)}
	for _, r := range rows {
		if _, ok := m.tables[r.Hashtable]; !ok {
			m.ids = append(m.ids, r.Hashtable)
		}
		m.tables[r.Hashtable] = append(m.tables[r.Hashtable], r)
	}
	slices.Sort(m.ids)
	for _, rows := range m.tables {
		slices.SortStableFunc(rows, func(a, b model.Row) int {
			return bytes.Compare(a.Band, b.Band)
		})
	}
	return m
}

// Hashtables implements bucket.Source.
func (m *Memory) Hashtables(context.Context) ([]model.HashtableID, error) {
	return slices.Clone(m.ids), nil
}

// Scan implements bucket.Source.
func (m *Memory) Scan(ctx context.Context, ht model.HashtableID, fn func(model.Row) error) error {
	for _, r := range m.tables[ht] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

var _ bucket.Source = (*Memory)(nil)
