package ht

import (
	"fmt"
	"log/slog"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/errs"
	"github.com/hat-open/hat-util/internal/hash"
	"github.com/hat-open/hat-util/internal/options"
)

// noElement terminates chains and marks empty slots.
const noElement = -1

// HashFunc maps key bytes to a slot hash.
type HashFunc func(key []byte) uint

// FNV1a is the default HashFunc: FNV-1a at the platform word size.
func FNV1a(key []byte) uint {
	return hash.FNV1a(key)
}

// XXHash is a HashFunc based on xxHash64.
func XXHash(key []byte) uint {
	return hash.XX(key)
}

type element[V any] struct {
	next  int
	hash  uint
	key   []byte
	value V
}

// Table is a chained hash table mapping byte-string keys to values of type V.
type Table[V any] struct {
	a      alloc.Allocator
	hasher HashFunc
	logger *slog.Logger

	count int
	slots []int
	elems []element[V]
	free  []int
}

type config struct {
	hasher HashFunc
	logger *slog.Logger
}

// Option configures a Table.
type Option = options.Option[*config]

// WithHasher replaces the key hash function.
func WithHasher(h HashFunc) Option {
	return options.New(func(c *config) error {
		if h == nil {
			return fmt.Errorf("%w: nil hash function", errs.ErrInvalidArgument)
		}
		c.hasher = h

		return nil
	})
}

// WithLogger sets the logger receiving resize events.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// capacityFor returns the slot count giving 20% headroom over avgCount.
func capacityFor(avgCount int) int {
	return avgCount*10/8 + 1
}

// New creates a table sized for avgCount elements. Key copies are obtained
// from a.
func New[V any](a alloc.Allocator, avgCount int, opts ...Option) (*Table[V], error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil allocator", errs.ErrInvalidArgument)
	}
	if avgCount < 0 {
		return nil, fmt.Errorf("%w: avg count %d", errs.ErrInvalidCapacity, avgCount)
	}

	cfg := &config{
		hasher: FNV1a,
		logger: slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	t := &Table[V]{
		a:      a,
		hasher: cfg.hasher,
		logger: cfg.logger,
	}
	t.slots = newSlots(capacityFor(avgCount))

	return t, nil
}

func newSlots(n int) []int {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = noElement
	}

	return slots
}

// Count returns the number of stored elements.
func (t *Table[V]) Count() int {
	return t.count
}

// Cap returns the number of slots.
func (t *Table[V]) Cap() int {
	return len(t.slots)
}

// AvgCount returns the element count the current slot array is sized for.
func (t *Table[V]) AvgCount() int {
	if len(t.slots) == 0 {
		return 0
	}

	return (len(t.slots) - 1) * 8 / 10
}

// Close releases every key copy back to the allocator. The table must not be
// used afterwards.
func (t *Table[V]) Close() {
	for _, head := range t.slots {
		for idx := head; idx != noElement; idx = t.elems[idx].next {
			alloc.Free(t.a, t.elems[idx].key)
		}
	}
	t.slots = nil
	t.elems = nil
	t.free = nil
	t.count = 0
}

// find locates key. It returns the key's slot, the element preceding the
// match in its chain (noElement when the match heads the chain) and the
// matching element (noElement on a miss).
func (t *Table[V]) find(h uint, key []byte) (slot, prev, idx int) {
	slot = int(h % uint(len(t.slots)))
	prev = noElement
	for idx = t.slots[slot]; idx != noElement; idx = t.elems[idx].next {
		el := &t.elems[idx]
		if el.hash == h && len(el.key) == len(key) && string(el.key) == string(key) {
			return slot, prev, idx
		}
		prev = idx
	}

	return slot, prev, noElement
}

// Set stores value under key, replacing the value of an existing key in
// place. A new key is copied through the allocator; if the copy cannot be
// allocated errs.ErrAllocFailed is returned and the table is unchanged.
func (t *Table[V]) Set(key []byte, value V) error {
	if t.slots == nil {
		return errs.ErrClosed
	}

	h := t.hasher(key)
	slot, _, idx := t.find(h, key)
	if idx != noElement {
		t.elems[idx].value = value
		return nil
	}

	var keyCopy []byte
	if len(key) > 0 {
		keyCopy = alloc.Alloc(t.a, len(key))
		if keyCopy == nil {
			return fmt.Errorf("%w: key of %d bytes", errs.ErrAllocFailed, len(key))
		}
		copy(keyCopy, key)
	}

	idx = t.newElement()
	t.elems[idx] = element[V]{
		next:  t.slots[slot],
		hash:  h,
		key:   keyCopy,
		value: value,
	}
	t.slots[slot] = idx
	t.count++

	t.resize()

	return nil
}

func (t *Table[V]) newElement() int {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]

		return idx
	}
	t.elems = append(t.elems, element[V]{})

	return len(t.elems) - 1
}

// Get returns the value stored under key and whether the key is present.
func (t *Table[V]) Get(key []byte) (V, bool) {
	if t.slots == nil {
		var zero V
		return zero, false
	}

	_, _, idx := t.find(t.hasher(key), key)
	if idx == noElement {
		var zero V
		return zero, false
	}

	return t.elems[idx].value, true
}

// Pop removes key and returns its value and whether it was present.
func (t *Table[V]) Pop(key []byte) (V, bool) {
	if t.slots == nil {
		var zero V
		return zero, false
	}

	slot, prev, idx := t.find(t.hasher(key), key)
	if idx == noElement {
		var zero V
		return zero, false
	}
	value := t.elems[idx].value
	t.remove(slot, prev, idx)

	return value, true
}

// Del removes key. It returns errs.ErrNotFound when the key is absent.
func (t *Table[V]) Del(key []byte) error {
	if t.slots == nil {
		return errs.ErrClosed
	}

	slot, prev, idx := t.find(t.hasher(key), key)
	if idx == noElement {
		return errs.ErrNotFound
	}
	t.remove(slot, prev, idx)

	return nil
}

func (t *Table[V]) remove(slot, prev, idx int) {
	el := &t.elems[idx]
	if prev == noElement {
		t.slots[slot] = el.next
	} else {
		t.elems[prev].next = el.next
	}

	alloc.Free(t.a, el.key)
	*el = element[V]{next: noElement}
	t.free = append(t.free, idx)
	t.count--

	t.resize()
}

// resize applies the load policy after a mutation.
func (t *Table[V]) resize() {
	if t.count*2 < 8 {
		return
	}

	target := (len(t.slots) - 1) * 8 / 10
	if t.count < target && t.count > target/4 {
		return
	}

	t.rehash(t.count*2*10/8 + 1)
}

// Resize rehashes the table to a slot array sized for avgCount elements.
// Later inserts and deletes keep applying the automatic load policy.
func (t *Table[V]) Resize(avgCount int) error {
	if t.slots == nil {
		return errs.ErrClosed
	}
	if avgCount < 0 {
		return fmt.Errorf("%w: avg count %d", errs.ErrInvalidCapacity, avgCount)
	}
	t.rehash(capacityFor(avgCount))

	return nil
}

// rehash relinks every element into a fresh slot array of newCap slots using
// the cached hashes. The arena is compacted on the way, which drops the
// free list.
func (t *Table[V]) rehash(newCap int) {
	oldCap := len(t.slots)
	slots := newSlots(newCap)
	elems := make([]element[V], 0, t.count)

	for _, head := range t.slots {
		for idx := head; idx != noElement; idx = t.elems[idx].next {
			el := t.elems[idx]
			slot := int(el.hash % uint(newCap))
			el.next = slots[slot]
			slots[slot] = len(elems)
			elems = append(elems, el)
		}
	}

	t.slots = slots
	t.elems = elems
	t.free = nil

	t.logger.Debug("hash table rehashed",
		slog.Int("count", t.count),
		slog.Int("old_cap", oldCap),
		slog.Int("new_cap", newCap))
}
