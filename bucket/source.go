package bucket

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/dupgraph/model"
)

// Source is the storage collaborator that yields hashtable rows.
//
// Scan must deliver the rows of one hashtable with equal band values
// contiguous. Implementations must be safe to call sequentially; Build never
// scans two hashtables concurrently.
type Source interface {
	// Hashtables returns the distinct hashtable ids available in the store.
	Hashtables(ctx context.Context) ([]model.HashtableID, error)
	// Scan calls fn for every row of hashtable ht. Scanning stops at the
	// first error returned by fn, which Scan returns.
	Scan(ctx context.Context, ht model.HashtableID, fn func(model.Row) error) error
}

// ScanObserver is notified after each hashtable scan completes.
type ScanObserver func(TableStats)

// Build scans every hashtable of src in ascending id order and returns the
// frozen bucket set.
func Build(ctx context.Context, src Source, observers ...ScanObserver) (*Result, error) {
	hts, err := src.Hashtables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hashtables: %w", err)
	}
	if len(hts) == 0 {
		return nil, ErrNoHashtables
	}
	hts = slices.Clone(hts)
	slices.Sort(hts)

	b := NewBuilder()
	for _, ht := range hts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.BeginTable(ht); err != nil {
			return nil, err
		}
		if err := src.Scan(ctx, ht, b.Add); err != nil {
			return nil, fmt.Errorf("scan hashtable %d: %w", ht, err)
		}
		st := b.EndTable()
		for _, obs := range observers {
			obs(st)
		}
	}
	return b.Result(), nil
}
