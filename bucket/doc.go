// Package bucket turns the sorted (hashtable, band, key) rows of an LSH
// store into buckets of dense element ids.
//
// Rows must be grouped by hashtable and, within a hashtable, rows with the
// same band value must be contiguous. A band value that reappears after a
// different band has been seen in the same hashtable is rejected with
// ErrMalformedInput, since bucket boundaries would be undefined.
//
// Element ids are assigned first-seen-wins across all hashtables, so the same
// key always maps to the same id no matter which hashtable it shows up in.
package bucket
