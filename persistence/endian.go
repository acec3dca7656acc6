package persistence

import (
	"encoding/binary"
	"unsafe"
)

// Artifacts are little endian. On little-endian hosts integer arrays are
// copied as raw memory, elsewhere they are converted value by value.
var nativeLE = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

func appendUint32s(buf []byte, v []uint32) []byte {
	if len(v) == 0 {
		return buf
	}
	if nativeLE {
		return append(buf, unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)...)
	}
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint32(buf, x)
	}
	return buf
}

func appendUint64s(buf []byte, v []uint64) []byte {
	if len(v) == 0 {
		return buf
	}
	if nativeLE {
		return append(buf, unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*8)...)
	}
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint64(buf, x)
	}
	return buf
}

// decodeUint32s fills dst from len(dst)*4 little-endian bytes.
func decodeUint32s(dst []uint32, b []byte) {
	if len(dst) == 0 {
		return
	}
	if nativeLE {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(dst)*4), b)
		return
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
}

// decodeUint64s fills dst from len(dst)*8 little-endian bytes.
func decodeUint64s(dst []uint64, b []byte) {
	if len(dst) == 0 {
		return
	}
	if nativeLE {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), len(dst)*8), b)
		return
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
}
