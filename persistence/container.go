package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encode writes payload as an artifact of the given kind.
// Compression c is a preference; payloads that do not shrink are stored raw.
func Encode(w io.Writer, kind Kind, c Compression, payload []byte) error {
	stored, applied, err := compress(payload, c)
	if err != nil {
		return fmt.Errorf("compress %s payload: %w", kind, err)
	}

	header := FileHeader{
		Magic:        MagicNumber,
		Version:      Version,
		Kind:         kind,
		Compression:  applied,
		RawLength:    uint64(len(payload)),
		StoredLength: uint64(len(stored)),
		Checksum:     checksum(stored),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// ReadHeader reads and validates the file header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// Decode reads an artifact of the expected kind and returns its decompressed
// payload. Nothing is returned unless the whole payload verifies.
func Decode(r io.Reader, kind Kind) ([]byte, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Kind != kind {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, header.Kind, kind)
	}

	cr := newCRCReader(r)
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(cr, int64(header.StoredLength)))
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, err)
	}
	if uint64(n) != header.StoredLength {
		return nil, fmt.Errorf("%w: payload truncated (%d of %d bytes)", ErrCorrupt, n, header.StoredLength)
	}
	if err := cr.verify(header.Checksum); err != nil {
		return nil, err
	}

	return decompress(buf.Bytes(), header.Compression, header.RawLength)
}
