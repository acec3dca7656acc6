package persistence

import "errors"

const (
	// MagicNumber identifies dupgraph artifacts (ASCII: "DGR1")
	MagicNumber = 0x31524744
	// Version is the current container format version (v1.0.0)
	Version = 0x00010000

	// HeaderSize is the encoded size of FileHeader.
	HeaderSize = 40
)

// Kind identifies the artifact stored in a container.
type Kind uint8

const (
	// KindComponents is the connected-components model.
	KindComponents Kind = 1
	// KindCommunities is the communities model.
	KindCommunities Kind = 2
)

// String returns the artifact name.
func (k Kind) String() string {
	switch k {
	case KindComponents:
		return "connected_components"
	case KindCommunities:
		return "communities"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrKindMismatch   = errors.New("artifact kind mismatch")
	ErrCorrupt        = errors.New("corrupt artifact")
	ErrSchemaMismatch = errors.New("artifact schema mismatch")
)

// FileHeader is the 40-byte header at the start of every artifact.
type FileHeader struct {
	Magic        uint32 // 0x31524744 ("DGR1")
	Version      uint32 // Container format version
	Kind         Kind   // 1=components, 2=communities
	Compression  Compression
	Reserved1    [2]byte
	RawLength    uint64 // Payload size before compression
	StoredLength uint64 // Payload size on disk
	Checksum     uint32 // CRC32 of the stored payload
	Reserved2    [8]byte
}
