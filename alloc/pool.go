package alloc

import (
	"github.com/hat-open/hat-util/internal/pool"
)

// PoolAllocator recycles released blocks in power-of-two size classes.
//
// It is safe for concurrent use. Blocks above 1MiB are served from the heap
// and not recycled.
type PoolAllocator struct {
	blocks *pool.BlockPool
}

var _ Allocator = (*PoolAllocator)(nil)

// NewPool creates a PoolAllocator.
func NewPool() *PoolAllocator {
	return &PoolAllocator{blocks: pool.NewBlockPool()}
}

// Resize implements Allocator.
func (p *PoolAllocator) Resize(old []byte, size int) []byte {
	if size <= 0 {
		p.blocks.Put(old)
		return nil
	}
	if old != nil && size <= cap(old) {
		b := old[:size]
		if size > len(old) {
			clear(b[len(old):])
		}

		return b
	}

	b := p.blocks.Get(size)
	if old != nil {
		copy(b, old)
		p.blocks.Put(old)
	}

	return b
}
