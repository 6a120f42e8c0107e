package json

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/errs"
	"github.com/hat-open/hat-util/internal/options"
	"github.com/hat-open/hat-util/internal/pool"
)

// Sink receives the writer output. p is only valid during the call.
type Sink func(p []byte) error

// BufferSink returns a Sink storing output in b. A write that does not fit
// fails with errs.ErrBufferFull and stores nothing.
func BufferSink(b *buff.Buffer) Sink {
	return func(p []byte) error {
		_, err := b.Write(p)
		return err
	}
}

type writerFrame struct {
	kind     frameKind
	count    int  // elements, or keys for objects
	awaitKey bool // object expects a key next
}

type writerConfig struct {
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithWriterLogger sets the logger receiving sink failures.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// Writer serializes JSON values through a Sink.
//
// Output is compact: no whitespace inside values, consecutive top-level
// values separated by a single '\n'. Each call emits its bytes with a single
// Sink call or returns an error without emitting anything.
type Writer struct {
	sink   Sink
	logger *slog.Logger

	frames   []writerFrame
	topCount int
	err      error
}

// NewWriter creates a writer emitting through sink.
func NewWriter(sink Sink, opts ...WriterOption) (*Writer, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", errs.ErrInvalidArgument)
	}

	cfg := &writerConfig{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Writer{
		sink:   sink,
		logger: cfg.logger,
	}, nil
}

// Depth returns the number of open containers.
func (w *Writer) Depth() int {
	return len(w.frames)
}

// Complete reports whether no container is open.
func (w *Writer) Complete() bool {
	return len(w.frames) == 0
}

// WriteNull writes null.
func (w *Writer) WriteNull() error {
	return w.writeScalar(func(b []byte) []byte {
		return append(b, "null"...)
	})
}

// WriteBool writes true or false.
func (w *Writer) WriteBool(v bool) error {
	return w.writeScalar(func(b []byte) []byte {
		return strconv.AppendBool(b, v)
	})
}

// WriteInt writes an integer.
func (w *Writer) WriteInt(v int64) error {
	return w.writeScalar(func(b []byte) []byte {
		return strconv.AppendInt(b, v, 10)
	})
}

// WriteReal writes a floating point number in its shortest representation.
// The output always contains a fraction or an exponent, so it parses back as
// a Real. NaN and infinities fail with errs.ErrInvalidValue.
func (w *Writer) WriteReal(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidValue, v)
	}

	return w.writeScalar(func(b []byte) []byte {
		return appendReal(b, v)
	})
}

// WriteStr writes a string. Inside an object expecting a key the string is
// written as that key.
func (w *Writer) WriteStr(v []byte) error {
	return w.write(true, func(b []byte) []byte {
		return appendQuoted(b, v)
	})
}

// WriteString is WriteStr for a Go string.
func (w *Writer) WriteString(v string) error {
	return w.write(true, func(b []byte) []byte {
		return appendQuoted(b, v)
	})
}

// WriteArr opens an array.
func (w *Writer) WriteArr() error {
	return w.open(frameArr, '[')
}

// WriteObj opens an object.
func (w *Writer) WriteObj() error {
	return w.open(frameObj, '{')
}

// WriteEnd closes the innermost open container. It fails with
// errs.ErrContractViolation when no container is open or an object member
// is missing its value.
func (w *Writer) WriteEnd() error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) == 0 {
		return fmt.Errorf("%w: end without open container", errs.ErrContractViolation)
	}

	top := w.frames[len(w.frames)-1]
	c := byte(']')
	if top.kind == frameObj {
		if !top.awaitKey {
			return fmt.Errorf("%w: object closed after key without value", errs.ErrContractViolation)
		}
		c = '}'
	}

	if err := w.emit([]byte{c}); err != nil {
		return err
	}
	w.frames = w.frames[:len(w.frames)-1]
	w.valueDone()

	return nil
}

// WriteEvent writes the item described by a parsed token, which makes a
// Writer the inverse of a Parser. ArrEnd and ObjEnd close the innermost
// container.
func (w *Writer) WriteEvent(tok Token, v Value) error {
	switch tok {
	case Null:
		return w.WriteNull()
	case Bool:
		return w.WriteBool(v.Bool)
	case Int:
		return w.WriteInt(v.Int)
	case Real:
		return w.WriteReal(v.Real)
	case Str, ObjKey:
		return w.WriteStr(v.Str)
	case Arr:
		return w.WriteArr()
	case Obj:
		return w.WriteObj()
	case ArrEnd, ObjEnd:
		return w.WriteEnd()
	}

	return fmt.Errorf("%w: unknown token %v", errs.ErrInvalidArgument, tok)
}

func (w *Writer) writeScalar(appendValue func([]byte) []byte) error {
	return w.write(false, appendValue)
}

// write emits one value or key. isStr marks values that may serve as keys.
func (w *Writer) write(isStr bool, appendValue func([]byte) []byte) error {
	if w.err != nil {
		return w.err
	}

	prefix, isKey, err := w.prefix(isStr)
	if err != nil {
		return err
	}

	bb := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(bb)

	bb.Reset()
	if prefix != 0 {
		bb.B = append(bb.B, prefix)
	}
	bb.B = appendValue(bb.B)
	if err := w.emit(bb.Bytes()); err != nil {
		return err
	}

	if isKey {
		top := &w.frames[len(w.frames)-1]
		top.awaitKey = false
		top.count++

		return nil
	}
	w.valueDone()

	return nil
}

func (w *Writer) open(kind frameKind, c byte) error {
	if w.err != nil {
		return w.err
	}

	prefix, _, err := w.prefix(false)
	if err != nil {
		return err
	}

	b := make([]byte, 0, 2)
	if prefix != 0 {
		b = append(b, prefix)
	}
	if err := w.emit(append(b, c)); err != nil {
		return err
	}
	w.frames = append(w.frames, writerFrame{kind: kind, awaitKey: kind == frameObj})

	return nil
}

// prefix validates the position for the next item and returns the separator
// preceding it (0 for none) and whether the item is an object key.
func (w *Writer) prefix(isStr bool) (byte, bool, error) {
	if len(w.frames) == 0 {
		if w.topCount > 0 {
			return '\n', false, nil
		}

		return 0, false, nil
	}

	top := w.frames[len(w.frames)-1]
	switch {
	case top.kind == frameArr && top.count > 0:
		return ',', false, nil
	case top.kind == frameArr:
		return 0, false, nil
	case !top.awaitKey:
		return ':', false, nil
	case !isStr:
		return 0, false, fmt.Errorf("%w: object key must be a string", errs.ErrContractViolation)
	case top.count > 0:
		return ',', true, nil
	}

	return 0, true, nil
}

// valueDone records a completed value in the innermost container.
func (w *Writer) valueDone() {
	if len(w.frames) == 0 {
		w.topCount++
		return
	}

	top := &w.frames[len(w.frames)-1]
	if top.kind == frameObj {
		top.awaitKey = true
		return
	}
	top.count++
}

func (w *Writer) emit(b []byte) error {
	if err := w.sink(b); err != nil {
		w.err = err
		w.logger.Debug("json sink failed", slog.String("error", err.Error()))

		return err
	}

	return nil
}

func appendReal(b []byte, v float64) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, v, 'g', -1, 64)
	for _, c := range b[start:] {
		if c == '.' || c == 'e' {
			return b
		}
	}

	return append(b, '.', '0')
}

const hexDigits = "0123456789abcdef"

// appendQuoted writes s as a JSON string. Bytes that are not valid UTF-8 are
// replaced by \ufffd so the output is always valid JSON text.
func appendQuoted[S ~string | ~[]byte](b []byte, s S) []byte {
	b = append(b, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := decodeRune(s, i)
			if r == utf8.RuneError && size == 1 {
				b = append(b, s[start:i]...)
				b = append(b, `\ufffd`...)
				start = i + 1
			}
			i += size - 1

			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		b = append(b, s[start:i]...)
		switch c {
		case '"', '\\':
			b = append(b, '\\', c)
		case '\b':
			b = append(b, '\\', 'b')
		case '\f':
			b = append(b, '\\', 'f')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			b = append(b, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}
	b = append(b, s[start:]...)

	return append(b, '"')
}

func decodeRune[S ~string | ~[]byte](s S, i int) (rune, int) {
	switch v := any(s).(type) {
	case string:
		return utf8.DecodeRuneInString(v[i:])
	case []byte:
		return utf8.DecodeRune(v[i:])
	}

	return utf8.DecodeRuneInString(string(s[i:]))
}
