package persistence

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Stored payloads are protected by CRC32 (IEEE). It detects accidental
// corruption only.

func checksum(stored []byte) uint32 { return crc32.ChecksumIEEE(stored) }

// crcReader hashes everything read through it.
type crcReader struct {
	r io.Reader
	h hash.Hash32
}

func newCRCReader(r io.Reader) *crcReader {
	return &crcReader{r: r, h: crc32.NewIEEE()}
}

func (c *crcReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.h.Write(p[:n])
	return n, err
}

func (c *crcReader) verify(want uint32) error {
	if got := c.h.Sum32(); got != want {
		return &ChecksumMismatchError{Expected: want, Actual: got}
	}
	return nil
}

// ChecksumMismatchError reports a payload whose CRC32 differs from the
// header. It matches ErrCorrupt.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("payload checksum 0x%08x, header says 0x%08x", e.Actual, e.Expected)
}

func (e *ChecksumMismatchError) Is(target error) bool { return target == ErrCorrupt }
