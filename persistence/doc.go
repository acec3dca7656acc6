// Package persistence provides the binary container for pipeline artifacts.
//
// An artifact is a fixed 40-byte FileHeader followed by a payload of named,
// typed sections. The payload may be compressed (LZ4 or ZSTD) and is
// protected by a CRC32 of the stored bytes. All integers are little endian.
//
//	w := persistence.NewSectionWriter(0)
//	w.WriteUint32s("cc", ids)
//	w.WriteStrings("elements", keys)
//	err := persistence.Encode(out, persistence.KindComponents, persistence.CompressionZSTD, w.Bytes())
package persistence
