package alloc

type heapAllocator struct{}

// Heap returns an allocator backed by the Go heap. Released blocks are left to
// the garbage collector.
func Heap() Allocator {
	return heapAllocator{}
}

func (heapAllocator) Resize(old []byte, size int) []byte {
	if size <= 0 {
		return nil
	}
	if old != nil && size <= cap(old) {
		b := old[:size]
		if size > len(old) {
			clear(b[len(old):])
		}

		return b
	}

	b := make([]byte, size)
	copy(b, old)

	return b
}
