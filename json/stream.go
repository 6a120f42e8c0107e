package json

import (
	"errors"
	"fmt"
	"io"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/errs"
)

// ReadChunkSize is the read buffer size used by ReadFrom.
const ReadChunkSize = 4096

// ReadFrom streams r into the parser in ReadChunkSize pieces until io.EOF,
// keeping memory use constant regardless of the input size. It implements
// io.ReaderFrom and returns the number of bytes read.
//
// ReadFrom does not call Finish, so a value may continue in a later call.
// Zero-copy strings passed to the handler alias the read buffer, which is
// released before ReadFrom returns.
func (p *Parser) ReadFrom(r io.Reader) (int64, error) {
	if p.closed {
		return 0, errs.ErrClosed
	}

	chunk := alloc.Alloc(p.a, ReadChunkSize)
	if chunk == nil {
		return 0, fmt.Errorf("%w: read buffer of %d bytes", errs.ErrAllocFailed, ReadChunkSize)
	}
	defer alloc.Free(p.a, chunk)

	var total int64
	for {
		n, rerr := r.Read(chunk)
		total += int64(n)
		if n > 0 {
			if err := p.Parse(buff.New(chunk[:n])); err != nil {
				return total, err
			}
		}

		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("json read: %w", rerr)
		}
	}
}

// ParseReader parses the complete JSON text read from r, which may hold
// several whitespace separated values, and delivers every token to h.
func ParseReader(a alloc.Allocator, r io.Reader, h Handler, ctx any, opts ...ParserOption) error {
	p, err := NewParser(a, h, ctx, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := p.ReadFrom(r); err != nil {
		return err
	}

	return p.Finish()
}
