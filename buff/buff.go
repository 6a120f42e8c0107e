// Package buff provides Buffer, a non-owning byte cursor.
//
// A Buffer is a byte span plus a position. Used as a data source, Pos marks
// the first byte not yet consumed. Used as a data sink, Pos marks where the
// next byte is stored. The span is borrowed: the Buffer never allocates,
// grows or releases it.
package buff

import (
	"fmt"

	"github.com/hat-open/hat-util/errs"
)

// Buffer is a byte span with a cursor. The span size is len(Data) and the
// invariant 0 <= Pos <= len(Data) holds for every Buffer produced by this
// package.
type Buffer struct {
	Data []byte
	Pos  int
}

// New returns a Buffer over data positioned at its start.
func New(data []byte) *Buffer {
	return &Buffer{Data: data}
}

// Size returns len(b.Data).
func (b *Buffer) Size() int {
	if b == nil {
		return 0
	}

	return len(b.Data)
}

// Available returns the number of bytes between Pos and the end of the span,
// or 0 when Pos is at or past the end.
func (b *Buffer) Available() int {
	if b == nil || b.Pos >= len(b.Data) {
		return 0
	}

	return len(b.Data) - b.Pos
}

// Write copies p at Pos and advances Pos. The write is all-or-nothing: when p
// does not fit, nothing is copied and errs.ErrBufferFull is returned.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.Available() < len(p) {
		return 0, fmt.Errorf("%w: need %d bytes, %d available", errs.ErrBufferFull, len(p), b.Available())
	}
	copy(b.Data[b.Pos:], p)
	b.Pos += len(p)

	return len(p), nil
}

// WriteByte stores c at Pos and advances Pos.
func (b *Buffer) WriteByte(c byte) error {
	if b.Available() < 1 {
		return errs.ErrBufferFull
	}
	b.Data[b.Pos] = c
	b.Pos++

	return nil
}

// Read returns the next n bytes and advances Pos. The returned slice aliases
// Data. When fewer than n bytes are available nil is returned and Pos is not
// changed.
func (b *Buffer) Read(n int) []byte {
	if n < 0 || b.Available() < n {
		return nil
	}
	p := b.Data[b.Pos : b.Pos+n : b.Pos+n]
	b.Pos += n

	return p
}

// Peek returns the next n bytes without advancing Pos. It returns
// errs.ErrIncomplete when fewer than n bytes are available.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if n < 0 || b.Available() < n {
		return nil, fmt.Errorf("%w: need %d bytes, %d available", errs.ErrIncomplete, n, b.Available())
	}

	return b.Data[b.Pos : b.Pos+n : b.Pos+n], nil
}

// Skip advances Pos by up to n bytes and returns the number skipped.
func (b *Buffer) Skip(n int) int {
	if n < 0 {
		return 0
	}
	n = min(n, b.Available())
	b.Pos += n

	return n
}

// Remaining returns the bytes between Pos and the end of the span.
func (b *Buffer) Remaining() []byte {
	if b.Available() == 0 {
		return nil
	}

	return b.Data[b.Pos:]
}

// Written returns the bytes before Pos, i.e. what was stored when the Buffer
// is used as a sink or consumed when used as a source.
func (b *Buffer) Written() []byte {
	if b == nil {
		return nil
	}

	return b.Data[:min(b.Pos, len(b.Data))]
}

// Reset moves Pos back to the start of the span.
func (b *Buffer) Reset() {
	b.Pos = 0
}
