// Package alloc defines the allocator capability every hat-util component
// obtains its owned memory from.
//
// An Allocator has a single operation, Resize, which covers allocation,
// reallocation and release:
//
//	b := alloc.Alloc(a, 64)       // a.Resize(nil, 64)
//	b = alloc.Realloc(a, b, 128)  // prefix of b preserved
//	alloc.Free(a, b)              // a.Resize(b, 0)
//
// Allocators are explicit capability values passed to every constructor.
// There is no package-level default instance; use Heap() where no special
// backend is required.
package alloc

// Allocator is the memory capability used by the hat-util components.
//
// Resize follows these rules:
//   - size == 0: old is released (no-op when old is nil) and nil is returned.
//   - old == nil, size > 0: a fresh block of len size is returned.
//   - otherwise: a block of len size is returned whose prefix, up to the
//     smaller of len(old) and size, equals the content of old; old must not
//     be used afterwards.
//
// A nil result for size > 0 signals failure. On failure old is left untouched
// and remains valid.
type Allocator interface {
	Resize(old []byte, size int) []byte
}

// Func adapts an ordinary function to the Allocator interface.
type Func func(old []byte, size int) []byte

// Resize calls f(old, size).
func (f Func) Resize(old []byte, size int) []byte {
	return f(old, size)
}

// Alloc returns a new block of size bytes, or nil on failure.
func Alloc(a Allocator, size int) []byte {
	if size <= 0 {
		return nil
	}

	return a.Resize(nil, size)
}

// Realloc resizes old to size bytes preserving the shared prefix.
func Realloc(a Allocator, old []byte, size int) []byte {
	if size < 0 {
		return nil
	}

	return a.Resize(old, size)
}

// Free releases old. Freeing nil is a no-op.
func Free(a Allocator, old []byte) {
	if old == nil {
		return
	}
	a.Resize(old, 0)
}
