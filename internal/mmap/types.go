package mmap

import "errors"

// AccessPattern is a read-ahead hint.
type AccessPattern uint8

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits decoding a whole artifact front to back.
	AccessSequential
	// AccessRandom suits ranged reads of individual sections.
	AccessRandom
	AccessWillNeed
)

var (
	ErrClosed        = errors.New("mmap: mapping closed")
	ErrInvalidSize   = errors.New("mmap: file too large to map")
	ErrInvalidOffset = errors.New("mmap: negative offset or length")
)
