package persistence

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SectionType tags the element type of a section.
type SectionType uint8

const (
	SectionBytes   SectionType = 1
	SectionUint32  SectionType = 2
	SectionUint64  SectionType = 3
	SectionStrings SectionType = 4
)

func (t SectionType) String() string {
	switch t {
	case SectionBytes:
		return "bytes"
	case SectionUint32:
		return "uint32"
	case SectionUint64:
		return "uint64"
	case SectionStrings:
		return "strings"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// SectionWriter appends named, typed arrays to an in-memory payload.
// The first error is sticky; check Err after the last write.
//
// Format of a section:
//
//	NameLen (2 bytes)
//	Name (bytes)
//	Type (1 byte)
//	Count (8 bytes)
//	Values:
//	  bytes:   Count bytes
//	  uint32:  Count*4 bytes
//	  uint64:  Count*8 bytes
//	  strings: Count*4 bytes of lengths, TotalLen (8 bytes), TotalLen bytes
type SectionWriter struct {
	buf []byte
	err error
}

// NewSectionWriter creates a writer with the given capacity hint.
func NewSectionWriter(sizeHint int) *SectionWriter {
	return &SectionWriter{buf: make([]byte, 0, sizeHint)}
}

func (w *SectionWriter) header(name string, t SectionType, count int) {
	if w.err != nil {
		return
	}
	if len(name) > math.MaxUint16 {
		w.err = fmt.Errorf("section name too long: %d", len(name))
		return
	}
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(name)))
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, byte(t))
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(count))
}

// WriteBytes writes a byte section.
func (w *SectionWriter) WriteBytes(name string, v []byte) {
	w.header(name, SectionBytes, len(v))
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v...)
}

// WriteUint32s writes a uint32 section.
func (w *SectionWriter) WriteUint32s(name string, v []uint32) {
	w.header(name, SectionUint32, len(v))
	if w.err != nil {
		return
	}
	w.buf = appendUint32s(w.buf, v)
}

// WriteUint64s writes a uint64 section.
func (w *SectionWriter) WriteUint64s(name string, v []uint64) {
	w.header(name, SectionUint64, len(v))
	if w.err != nil {
		return
	}
	w.buf = appendUint64s(w.buf, v)
}

// WriteStrings writes a merged string table: all lengths first, then the
// concatenated bytes.
func (w *SectionWriter) WriteStrings(name string, v []string) {
	w.header(name, SectionStrings, len(v))
	if w.err != nil {
		return
	}
	total := 0
	for _, s := range v {
		if len(s) > math.MaxUint32 {
			w.err = fmt.Errorf("section %q: string too long: %d", name, len(s))
			return
		}
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
		total += len(s)
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(total))
	for _, s := range v {
		w.buf = append(w.buf, s...)
	}
}

// Bytes returns the payload built so far.
func (w *SectionWriter) Bytes() []byte { return w.buf }

// Err returns the first error encountered.
func (w *SectionWriter) Err() error { return w.err }

// SectionReader provides bounds-checked reads of sections in the order they
// were written. The first error is sticky.
type SectionReader struct {
	b   []byte
	off int
	err error
}

// NewSectionReader creates a reader over a decoded payload.
func NewSectionReader(b []byte) *SectionReader {
	return &SectionReader{b: b}
}

func (r *SectionReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *SectionReader) readBytes(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.b)-r.off) {
		r.fail(fmt.Errorf("%w: out of bounds read (%d bytes at %d, len=%d)", ErrCorrupt, n, r.off, len(r.b)))
		return nil
	}
	out := r.b[r.off : r.off+int(n)]
	r.off += int(n)
	return out
}

func (r *SectionReader) readUint64() uint64 {
	b := r.readBytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *SectionReader) header(name string, want SectionType, elemSize uint64) uint64 {
	nb := r.readBytes(2)
	if nb == nil {
		return 0
	}
	got := string(r.readBytes(uint64(binary.LittleEndian.Uint16(nb))))
	tb := r.readBytes(1)
	count := r.readUint64()
	if r.err != nil {
		return 0
	}
	if got != name {
		r.fail(fmt.Errorf("%w: expected section %q, found %q", ErrSchemaMismatch, name, got))
		return 0
	}
	if t := SectionType(tb[0]); t != want {
		r.fail(fmt.Errorf("%w: section %q has type %s, want %s", ErrSchemaMismatch, name, t, want))
		return 0
	}
	if elemSize > 0 && count > uint64(len(r.b)-r.off)/elemSize {
		r.fail(fmt.Errorf("%w: section %q claims %d values beyond payload end", ErrCorrupt, name, count))
		return 0
	}
	return count
}

// ReadBytes reads a byte section. The result is a copy.
func (r *SectionReader) ReadBytes(name string) []byte {
	n := r.header(name, SectionBytes, 1)
	b := r.readBytes(n)
	if r.err != nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadUint32s reads a uint32 section.
func (r *SectionReader) ReadUint32s(name string) []uint32 {
	n := r.header(name, SectionUint32, 4)
	b := r.readBytes(n * 4)
	if r.err != nil {
		return nil
	}
	out := make([]uint32, n)
	decodeUint32s(out, b)
	return out
}

// ReadUint64s reads a uint64 section.
func (r *SectionReader) ReadUint64s(name string) []uint64 {
	n := r.header(name, SectionUint64, 8)
	b := r.readBytes(n * 8)
	if r.err != nil {
		return nil
	}
	out := make([]uint64, n)
	decodeUint64s(out, b)
	return out
}

// ReadStrings reads a merged string table.
func (r *SectionReader) ReadStrings(name string) []string {
	n := r.header(name, SectionStrings, 4)
	lb := r.readBytes(n * 4)
	total := r.readUint64()
	data := r.readBytes(total)
	if r.err != nil {
		return nil
	}

	all := string(data)
	out := make([]string, n)
	pos := uint64(0)
	for i := range out {
		l := uint64(binary.LittleEndian.Uint32(lb[i*4:]))
		if pos+l > total {
			r.fail(fmt.Errorf("%w: section %q string %d overruns table", ErrCorrupt, name, i))
			return nil
		}
		out[i] = all[pos : pos+l]
		pos += l
	}
	if pos != total {
		r.fail(fmt.Errorf("%w: section %q has %d trailing bytes", ErrCorrupt, name, total-pos))
		return nil
	}
	return out
}

// Done reports an error if unread bytes remain.
func (r *SectionReader) Done() error {
	if r.err == nil && r.off != len(r.b) {
		r.fail(fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.b)-r.off))
	}
	return r.err
}

// Err returns the first error encountered.
func (r *SectionReader) Err() error { return r.err }
