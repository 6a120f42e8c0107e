package ht

import (
	"github.com/hat-open/hat-util/endian"
)

// stringKey encodes s as its bytes followed by a zero terminator.
func stringKey(s string) []byte {
	k := make([]byte, len(s)+1)
	copy(k, s)

	return k
}

// uint64Key encodes v as 8 bytes in host byte order.
func uint64Key(v uint64) []byte {
	return endian.NativeEngine().AppendUint64(make([]byte, 0, 8), v)
}

// SetString stores value under the string key s.
func (t *Table[V]) SetString(s string, value V) error {
	return t.Set(stringKey(s), value)
}

// GetString looks up the string key s.
func (t *Table[V]) GetString(s string) (V, bool) {
	return t.Get(stringKey(s))
}

// PopString removes the string key s and returns its value.
func (t *Table[V]) PopString(s string) (V, bool) {
	return t.Pop(stringKey(s))
}

// DelString removes the string key s.
func (t *Table[V]) DelString(s string) error {
	return t.Del(stringKey(s))
}

// SetInt64 stores value under the integer key k.
func (t *Table[V]) SetInt64(k int64, value V) error {
	return t.Set(uint64Key(uint64(k)), value)
}

// GetInt64 looks up the integer key k.
func (t *Table[V]) GetInt64(k int64) (V, bool) {
	return t.Get(uint64Key(uint64(k)))
}

// PopInt64 removes the integer key k and returns its value.
func (t *Table[V]) PopInt64(k int64) (V, bool) {
	return t.Pop(uint64Key(uint64(k)))
}

// DelInt64 removes the integer key k.
func (t *Table[V]) DelInt64(k int64) error {
	return t.Del(uint64Key(uint64(k)))
}

// SetUint64 stores value under the integer key k.
func (t *Table[V]) SetUint64(k uint64, value V) error {
	return t.Set(uint64Key(k), value)
}

// GetUint64 looks up the integer key k.
func (t *Table[V]) GetUint64(k uint64) (V, bool) {
	return t.Get(uint64Key(k))
}

// PopUint64 removes the integer key k and returns its value.
func (t *Table[V]) PopUint64(k uint64) (V, bool) {
	return t.Pop(uint64Key(k))
}

// DelUint64 removes the integer key k.
func (t *Table[V]) DelUint64(k uint64) error {
	return t.Del(uint64Key(k))
}
