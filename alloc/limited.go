package alloc

import "sync/atomic"

// LimitedAllocator enforces a byte budget on top of another allocator.
//
// Usage is accounted by block length. A request that would push usage past
// the limit fails, returning nil and leaving the old block valid.
type LimitedAllocator struct {
	parent Allocator
	limit  int64
	inUse  atomic.Int64
}

var _ Allocator = (*LimitedAllocator)(nil)

// NewLimited wraps parent with a budget of limit bytes.
func NewLimited(parent Allocator, limit int) *LimitedAllocator {
	return &LimitedAllocator{
		parent: parent,
		limit:  int64(limit),
	}
}

// InUse returns the number of bytes currently allocated through l.
func (l *LimitedAllocator) InUse() int {
	return int(l.inUse.Load())
}

// Limit returns the configured budget.
func (l *LimitedAllocator) Limit() int {
	return int(l.limit)
}

// Resize implements Allocator.
func (l *LimitedAllocator) Resize(old []byte, size int) []byte {
	if size < 0 {
		size = 0
	}
	delta := int64(size - len(old))

	if delta > 0 {
		for {
			cur := l.inUse.Load()
			if cur+delta > l.limit {
				return nil
			}
			if l.inUse.CompareAndSwap(cur, cur+delta) {
				break
			}
		}
	}

	b := l.parent.Resize(old, size)
	if size > 0 && b == nil {
		if delta > 0 {
			l.inUse.Add(-delta)
		}

		return nil
	}
	if delta < 0 {
		l.inUse.Add(delta)
	}

	return b
}
