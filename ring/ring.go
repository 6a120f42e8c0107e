// Package ring implements a fixed-capacity circular byte queue for one
// producer and one consumer.
//
// A Ring of capacity C stores its bytes in a C+1 byte array obtained from an
// alloc.Allocator. The extra slot keeps head == tail unambiguous: it always
// means empty, never full.
//
// # Concurrency
//
// A Ring may be shared by exactly one producer goroutine and exactly one
// consumer goroutine:
//   - only the producer calls Write, WriteBuffer, Unused and MoveTail, which
//     advance tail;
//   - only the consumer calls Read, ReadBuffer, Used and MoveHead, which
//     advance head;
//   - Len, Available and Cap may be called from either side.
//
// head and tail are independent atomics with no compound lock. Each side
// copies its bytes first and then publishes the new index with an atomic
// store; the other side observes the index with an atomic load before it
// touches the bytes. sync/atomic operations are sequentially consistent,
// which is stronger than the acquire/release pairing this protocol needs.
// The two indices may be observed transiently out of step with each other,
// which only makes a side see less data or free space than there really is.
package ring

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/errs"
	"github.com/hat-open/hat-util/internal/options"
)

// Ring is a single-producer/single-consumer byte ring buffer.
type Ring struct {
	a    alloc.Allocator
	size int
	data []byte

	_    cpu.CacheLinePad
	head atomic.Uint64 // advanced by the consumer
	_    cpu.CacheLinePad
	tail atomic.Uint64 // advanced by the producer
	_    cpu.CacheLinePad
}

type config struct {
	logger *slog.Logger
}

// Option configures a Ring.
type Option = options.Option[*config]

// WithLogger sets the logger receiving lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// New creates a ring holding up to capacity bytes. Storage is obtained from a.
func New(a alloc.Allocator, capacity int, opts ...Option) (*Ring, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil allocator", errs.ErrInvalidArgument)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: ring capacity %d", errs.ErrInvalidCapacity, capacity)
	}

	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	data := alloc.Alloc(a, capacity+1)
	if data == nil {
		return nil, fmt.Errorf("%w: ring storage of %d bytes", errs.ErrAllocFailed, capacity+1)
	}

	cfg.logger.Debug("ring buffer created", slog.Int("capacity", capacity))

	return &Ring{
		a:    a,
		size: capacity,
		data: data,
	}, nil
}

// Close returns the storage to the allocator. The ring must not be used
// afterwards; a closed ring reports zero capacity.
func (r *Ring) Close() {
	alloc.Free(r.a, r.data)
	r.data = nil
	r.size = 0
	r.head.Store(0)
	r.tail.Store(0)
}

// Cap returns the capacity in bytes.
func (r *Ring) Cap() int {
	return r.size
}

// length computes the number of stored bytes for the given indices.
func (r *Ring) length(head, tail int) int {
	if head <= tail {
		return tail - head
	}

	return r.size + 1 - (head - tail)
}

func (r *Ring) indices() (head, tail int) {
	return int(r.head.Load()), int(r.tail.Load())
}

// Len returns the number of stored bytes.
func (r *Ring) Len() int {
	return r.length(r.indices())
}

// Available returns the number of bytes that can be written.
func (r *Ring) Available() int {
	return r.size - r.Len()
}

// Write copies as much of p as fits and returns the number of bytes written.
// Producer side.
func (r *Ring) Write(p []byte) int {
	head, tail := r.indices()
	n := min(len(p), r.size-r.length(head, tail))
	if n == 0 {
		return 0
	}

	first := copy(r.data[tail:], p[:n])
	copy(r.data, p[first:n])
	r.tail.Store(uint64((tail + n) % len(r.data)))

	return n
}

// Read moves up to len(p) stored bytes into p and returns the count.
// Consumer side.
func (r *Ring) Read(p []byte) int {
	head, tail := r.indices()
	n := min(len(p), r.length(head, tail))
	if n == 0 {
		return 0
	}

	first := copy(p[:n], r.data[head:])
	copy(p[first:n], r.data)
	r.head.Store(uint64((head + n) % len(r.data)))

	return n
}

// MoveHead discards up to n stored bytes, typically after consuming them
// through Used, and returns the number discarded. Consumer side.
func (r *Ring) MoveHead(n int) int {
	head, tail := r.indices()
	n = max(0, min(n, r.length(head, tail)))
	if n == 0 {
		return 0
	}
	r.head.Store(uint64((head + n) % len(r.data)))

	return n
}

// MoveTail commits up to n bytes written directly into the Unused segments
// and returns the number committed. Producer side.
func (r *Ring) MoveTail(n int) int {
	head, tail := r.indices()
	n = max(0, min(n, r.size-r.length(head, tail)))
	if n == 0 {
		return 0
	}
	r.tail.Store(uint64((tail + n) % len(r.data)))

	return n
}

// Used returns the stored bytes as up to two contiguous segments, oldest
// first. The second segment is empty unless the data wraps around the end of
// the storage. The segments alias the ring storage. Consumer side.
func (r *Ring) Used() (first, second []byte) {
	head, tail := r.indices()
	n := r.length(head, tail)
	firstLen := min(n, len(r.data)-head)

	return r.data[head : head+firstLen : head+firstLen], r.data[: n-firstLen : n-firstLen]
}

// Unused returns the free space as up to two contiguous segments in write
// order. Bytes stored there become visible to the consumer after MoveTail.
// Producer side.
func (r *Ring) Unused() (first, second []byte) {
	head, tail := r.indices()
	n := r.size - r.length(head, tail)
	firstLen := min(n, len(r.data)-tail)

	return r.data[tail : tail+firstLen : tail+firstLen], r.data[: n-firstLen : n-firstLen]
}

// WriteBuffer moves the unread bytes of b into the ring, as many as fit, and
// advances b.Pos accordingly. Producer side.
func (r *Ring) WriteBuffer(b *buff.Buffer) int {
	n := r.Write(b.Remaining())
	b.Pos += n

	return n
}

// ReadBuffer moves stored bytes into the free space of b, as many as fit, and
// advances b.Pos accordingly. Consumer side.
func (r *Ring) ReadBuffer(b *buff.Buffer) int {
	n := r.Read(b.Remaining())
	b.Pos += n

	return n
}
