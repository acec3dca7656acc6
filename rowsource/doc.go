// Package rowsource provides bucket.Source implementations.
//
// SQL reads rows from a table with one row per (hashtable, band value,
// element key) triple in SQLite or PostgreSQL. Memory serves rows held in
// memory. RateLimit wraps any source to throttle the row rate against a
// shared store.
package rowsource
