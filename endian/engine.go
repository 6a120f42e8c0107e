// Package endian provides byte order engines for the fixed-width encodings
// used by hat-util.
//
// Two encodings rely on it:
//
//   - ht integer keys are stored as 8 bytes in the host byte order
//     (NativeEngine), so tables keyed by integers are not portable between
//     hosts of different endianness;
//   - compress frame headers always use little-endian (LittleEndianEngine).
//
// An EndianEngine combines binary.ByteOrder and binary.AppendByteOrder, which
// both binary.LittleEndian and binary.BigEndian satisfy.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var native = detect()

// detect inspects the in-memory layout of a known integer to find the host
// byte order.
func detect() EndianEngine {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// NativeEngine returns the engine matching the host byte order.
func NativeEngine() EndianEngine {
	return native
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return native == binary.LittleEndian
}

// IsNative reports whether engine matches the host byte order.
func IsNative(engine EndianEngine) bool {
	return engine == native
}

// LittleEndianEngine returns the little-endian engine.
func LittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// BigEndianEngine returns the big-endian engine.
func BigEndianEngine() EndianEngine {
	return binary.BigEndian
}
