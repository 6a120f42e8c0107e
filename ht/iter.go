package ht

import (
	"iter"

	"github.com/hat-open/hat-util/endian"
)

// Iterator walks the elements of a Table. It is invalidated by any mutation
// of the table.
type Iterator[V any] struct {
	t    *Table[V]
	slot int
	idx  int
}

// Iter returns an iterator positioned before the first element.
//
//	it := t.Iter()
//	for it.Next() {
//	    fmt.Println(it.Key(), it.Value())
//	}
func (t *Table[V]) Iter() *Iterator[V] {
	return &Iterator[V]{t: t, slot: -1, idx: noElement}
}

// Next advances to the next element and reports whether there is one.
func (it *Iterator[V]) Next() bool {
	t := it.t
	if it.idx != noElement {
		if next := t.elems[it.idx].next; next != noElement {
			it.idx = next
			return true
		}
	}

	for it.slot+1 < len(t.slots) {
		it.slot++
		if head := t.slots[it.slot]; head != noElement {
			it.idx = head
			return true
		}
	}
	it.idx = noElement

	return false
}

// Key returns the current key. The slice is owned by the table and must not
// be modified.
func (it *Iterator[V]) Key() []byte {
	return it.t.elems[it.idx].key
}

// KeyString decodes the current key as written by SetString. It reports
// false when the key lacks the zero terminator.
func (it *Iterator[V]) KeyString() (string, bool) {
	k := it.Key()
	if len(k) == 0 || k[len(k)-1] != 0 {
		return "", false
	}

	return string(k[:len(k)-1]), true
}

// KeyInt64 decodes the current key as written by SetInt64.
func (it *Iterator[V]) KeyInt64() (int64, bool) {
	v, ok := it.KeyUint64()
	return int64(v), ok
}

// KeyUint64 decodes the current key as written by SetUint64.
func (it *Iterator[V]) KeyUint64() (uint64, bool) {
	k := it.Key()
	if len(k) != 8 {
		return 0, false
	}

	return endian.NativeEngine().Uint64(k), true
}

// Value returns the current value.
func (it *Iterator[V]) Value() V {
	return it.t.elems[it.idx].value
}

// All returns a sequence over the table's keys and values in iteration order.
func (t *Table[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		it := t.Iter()
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}
