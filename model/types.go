package model

import (
	"fmt"
)

// ElementID is the dense identifier assigned to an element key on first
// encounter. IDs are contiguous starting at zero.
type ElementID = uint32

// BucketID is the position of a bucket in the global bucket sequence.
type BucketID = uint32

// ComponentID is the dense identifier of a connected component, assigned in
// discovery order.
type ComponentID = uint32

// HashtableID identifies one LSH hashtable (one band of the signature).
type HashtableID int32

// Row is one record of the hashtable store: the element Key fell into the
// bucket identified by Band within Hashtable.
type Row struct {
	Hashtable HashtableID
	Band      []byte
	Key       string
}

// String returns a compact representation of the row for error messages.
func (r Row) String() string {
	return fmt.Sprintf("Row(ht=%d band=%x key=%s)", r.Hashtable, r.Band, r.Key)
}

// Bucket is an ordered set of element ids that share one (hashtable, band)
// pair.
type Bucket []ElementID

// Community is a non-empty set of element ids that refines a connected
// component.
type Community []ElementID
