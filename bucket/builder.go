package bucket

import (
	"bytes"
	"strconv"

	"github.com/hupe1980/dupgraph/model"
)

// TableStats summarizes the scan of one hashtable.
type TableStats struct {
	Hashtable model.HashtableID
	Rows      int
	Buckets   int
}

// Result is the frozen output of a Builder.
type Result struct {
	// Hashtables lists the scanned hashtables in scan order.
	Hashtables []model.HashtableID
	// Buckets is the global bucket sequence; a bucket's position is its id.
	Buckets []model.Bucket
	// Elements maps element id to its original key.
	Elements []string
	// Tables holds per-hashtable scan statistics.
	Tables []TableStats
}

// Builder groups consecutive rows with equal band values into buckets.
// It is not safe for concurrent use.
type Builder struct {
	ids      map[string]model.ElementID
	elements []string
	buckets  []model.Bucket
	tables   []TableStats
	done     map[model.HashtableID]struct{}

	inTable bool
	table   model.HashtableID
	rows    int64
	band    []byte
	current model.Bucket
	closed  map[string]struct{}
	start   int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		ids:  make(map[string]model.ElementID),
		done: make(map[model.HashtableID]struct{}),
	}
}

// BeginTable starts the scan of hashtable ht.
func (b *Builder) BeginTable(ht model.HashtableID) error {
	if b.inTable {
		return &MalformedInputError{Hashtable: b.table, Row: -1, Reason: "previous hashtable still open"}
	}
	if _, ok := b.done[ht]; ok {
		return &MalformedInputError{Hashtable: ht, Row: -1, Reason: "hashtable scanned twice"}
	}
	b.inTable = true
	b.table = ht
	b.rows = 0
	b.band = nil
	b.current = nil
	b.closed = make(map[string]struct{})
	b.start = len(b.buckets)
	return nil
}

// Add appends one row of the open hashtable.
func (b *Builder) Add(row model.Row) error {
	if !b.inTable {
		return &MalformedInputError{Hashtable: row.Hashtable, Row: -1, Reason: "row outside of a hashtable scan"}
	}
	if row.Hashtable != b.table {
		return &MalformedInputError{
			Hashtable: b.table,
			Band:      row.Band,
			Row:       b.rows,
			Reason:    "row belongs to hashtable " + strconv.Itoa(int(row.Hashtable)),
		}
	}

	id := b.intern(row.Key)

	if b.current == nil || !bytes.Equal(row.Band, b.band) {
		if _, seen := b.closed[string(row.Band)]; seen {
			return &MalformedInputError{
				Hashtable: b.table,
				Band:      row.Band,
				Row:       b.rows,
				Reason:    "band value is not contiguous",
			}
		}
		b.flush()
		b.band = append(b.band[:0], row.Band...)
	}
	b.current = append(b.current, id)
	b.rows++
	return nil
}

// EndTable closes the open hashtable, flushing a trailing bucket.
func (b *Builder) EndTable() TableStats {
	b.flush()
	st := TableStats{
		Hashtable: b.table,
		Rows:      int(b.rows),
		Buckets:   len(b.buckets) - b.start,
	}
	b.tables = append(b.tables, st)
	b.done[b.table] = struct{}{}
	b.inTable = false
	b.closed = nil
	b.band = nil
	return st
}

// Result returns the built buckets and element table. The Builder must not be
// used afterwards.
func (b *Builder) Result() *Result {
	if b.inTable {
		b.EndTable()
	}
	hts := make([]model.HashtableID, len(b.tables))
	for i, st := range b.tables {
		hts[i] = st.Hashtable
	}
	return &Result{
		Hashtables: hts,
		Buckets:    b.buckets,
		Elements:   b.elements,
		Tables:     b.tables,
	}
}

// NumElements returns the number of distinct element keys seen so far.
func (b *Builder) NumElements() int { return len(b.elements) }

func (b *Builder) intern(key string) model.ElementID {
	if id, ok := b.ids[key]; ok {
		return id
	}
	id := model.ElementID(len(b.elements))
	b.ids[key] = id
	b.elements = append(b.elements, key)
	return id
}

func (b *Builder) flush() {
	if len(b.current) == 0 {
		return
	}
	b.buckets = append(b.buckets, b.current)
	b.closed[string(b.band)] = struct{}{}
	b.current = nil
}
