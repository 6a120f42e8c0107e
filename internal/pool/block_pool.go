package pool

import (
	"math/bits"
	"sync"
)

// Block size classes are powers of two from 1<<MinBlockShift to 1<<MaxBlockShift.
// Requests above the largest class bypass the pool.
const (
	MinBlockShift = 4  // 16B
	MaxBlockShift = 20 // 1MiB
)

// BlockPool recycles byte blocks in power-of-two size classes.
type BlockPool struct {
	classes [MaxBlockShift - MinBlockShift + 1]sync.Pool
}

// NewBlockPool creates an empty BlockPool.
func NewBlockPool() *BlockPool {
	bp := &BlockPool{}
	for i := range bp.classes {
		size := 1 << (i + MinBlockShift)
		bp.classes[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}

	return bp
}

// classOf returns the class index for a block of size bytes, or -1 when the
// size is above the largest class.
func classOf(size int) int {
	if size <= 1<<MinBlockShift {
		return 0
	}
	shift := bits.Len(uint(size - 1))
	if shift > MaxBlockShift {
		return -1
	}

	return shift - MinBlockShift
}

// Get returns a block of length size. Its capacity is the class size, so the
// block can be returned with Put.
func (bp *BlockPool) Get(size int) []byte {
	class := classOf(size)
	if class < 0 {
		return make([]byte, size)
	}
	ptr, _ := bp.classes[class].Get().(*[]byte)
	b := (*ptr)[:size]
	clear(b)

	return b
}

// Put returns a block to its class. Blocks whose capacity is not an exact
// class size are dropped.
func (bp *BlockPool) Put(b []byte) {
	c := cap(b)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	class := classOf(c)
	if class < 0 || 1<<(class+MinBlockShift) != c {
		return
	}
	b = b[:c]
	bp.classes[class].Put(&b)
}
