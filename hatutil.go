// Package hatutil provides allocator-agnostic data structure and codec
// primitives: a chained hash table, a single-producer/single-consumer byte
// ring buffer, and a streaming JSON parser and writer.
//
// # Core Features
//
//   - Generic hash table with FNV-1a (or xxHash64) hashing and
//     load-factor driven resizing (package ht)
//   - Lock-free SPSC byte ring buffer with zero-copy segment access
//     (package ring)
//   - Incremental push JSON parser with bounded nesting and zero-copy
//     strings, and a validating JSON writer (package json)
//   - Length-prefixed compressed frames (None, Zstd, S2, LZ4) for shipping
//     writer output (package compress)
//
// Every component obtains its owned memory from an explicit alloc.Allocator.
// The constructors in this package pass alloc.Heap(); use the sub-packages
// directly to supply another allocator, such as alloc.NewPool() or a budget
// enforced by alloc.NewLimited().
//
// # Basic Usage
//
//	table, _ := hatutil.NewTable[int](100)
//	_ = table.SetString("answer", 42)
//	v, ok := table.GetString("answer")
//
//	r, _ := hatutil.NewRing(4096)
//	n := r.Write([]byte("hello"))
//
//	q := json.NewQueue()
//	_ = hatutil.ParseBytes([]byte(`{"k":[1,2]}`), q.Handle, 0)
//	for e, ok := q.Next(); ok; e, ok = q.Next() {
//	    fmt.Println(e.Token, e.Depth)
//	}
package hatutil

import (
	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/ht"
	"github.com/hat-open/hat-util/json"
	"github.com/hat-open/hat-util/ring"
)

// NewTable creates a hash table sized for avgCount elements on the Go heap.
//
// Parameters:
//   - avgCount: expected number of elements, used to size the slot array
//   - opts: optional settings (ht.WithHasher, ht.WithLogger)
//
// Returns:
//   - *ht.Table[V]: the created table
//   - error: errs.ErrInvalidCapacity for a negative count, or an option error
func NewTable[V any](avgCount int, opts ...ht.Option) (*ht.Table[V], error) {
	return ht.New[V](alloc.Heap(), avgCount, opts...)
}

// NewRing creates a ring buffer of capacity bytes on the Go heap.
//
// Parameters:
//   - capacity: maximum number of stored bytes, at least 1
//   - opts: optional settings (ring.WithLogger)
//
// Returns:
//   - *ring.Ring: the created ring buffer
//   - error: errs.ErrInvalidCapacity when capacity < 1
func NewRing(capacity int, opts ...ring.Option) (*ring.Ring, error) {
	return ring.New(alloc.Heap(), capacity, opts...)
}

// NewParser creates an incremental JSON parser using the Go heap for its
// scratch memory.
//
// Parameters:
//   - h: handler receiving every token
//   - ctx: ctx passed with top-level tokens
//   - opts: optional settings (json.WithMaxDepth, json.WithParserLogger)
func NewParser(h json.Handler, ctx any, opts ...json.ParserOption) (*json.Parser, error) {
	return json.NewParser(alloc.Heap(), h, ctx, opts...)
}

// NewWriter creates a JSON writer emitting through sink.
func NewWriter(sink json.Sink, opts ...json.WriterOption) (*json.Writer, error) {
	return json.NewWriter(sink, opts...)
}

// ParseBytes parses the complete JSON text in data, which may hold several
// whitespace separated values, delivering every token to h.
//
// It returns a syntax or depth error from the parser, or errs.ErrIncomplete
// when data ends inside a value or holds no value at all.
//
// Example:
//
//	var count int
//	err := hatutil.ParseBytes(data, func(tok json.Token, v json.Value, ctx any) any {
//	    count++
//	    return ctx
//	}, nil)
func ParseBytes(data []byte, h json.Handler, ctx any, opts ...json.ParserOption) error {
	p, err := NewParser(h, ctx, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Parse(buff.New(data)); err != nil {
		return err
	}

	return p.Finish()
}
