// Package mmap maps artifact files into memory read-only.
//
// Unix uses mmap(2) with madvise(2) hints, Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent; slices
// returned by Bytes must not be used after Close.
package mmap
