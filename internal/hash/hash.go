// Package hash provides the non-cryptographic key hashers used by ht.
package hash

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// FNV-1a parameters for 32 and 64 bit words.
const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// FNV1a hashes key with FNV-1a at the platform word size: the 64-bit variant
// when uint is 64 bits wide, the 32-bit variant otherwise.
func FNV1a(key []byte) uint {
	if bits.UintSize == 64 {
		return uint(FNV1a64(key))
	}

	return uint(FNV1a32(key))
}

// FNV1a64 is the 64-bit FNV-1a hash of key.
func FNV1a64(key []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range key {
		h ^= uint64(c)
		h *= fnvPrime64
	}

	return h
}

// FNV1a32 is the 32-bit FNV-1a hash of key.
func FNV1a32(key []byte) uint32 {
	h := uint32(fnvOffset32)
	for _, c := range key {
		h ^= uint32(c)
		h *= fnvPrime32
	}

	return h
}

// XX hashes key with xxHash64, truncated to the platform word size.
func XX(key []byte) uint {
	return uint(xxhash.Sum64(key))
}
