package compress

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/endian"
	"github.com/hat-open/hat-util/errs"
	"github.com/hat-open/hat-util/internal/options"
	"github.com/hat-open/hat-util/internal/pool"
)

// HeaderSize is the size of a frame header: codec type and payload length.
const HeaderSize = 5

var frameEngine = endian.LittleEndianEngine()

// AppendFrame compresses data with the codec for t and appends the resulting
// frame to dst.
func AppendFrame(dst []byte, t Type, data []byte) ([]byte, error) {
	codec, err := GetCodec(t)
	if err != nil {
		return dst, err
	}

	payload, err := codec.Compress(data)
	if err != nil {
		return dst, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return dst, fmt.Errorf("%w: payload of %d bytes", errs.ErrInvalidFrame, len(payload))
	}

	dst = append(dst, byte(t))
	dst = frameEngine.AppendUint32(dst, uint32(len(payload)))

	return append(dst, payload...), nil
}

// ReadFrame decodes the frame at src.Pos and advances src past it.
//
// When the header or the payload has not fully arrived, errs.ErrIncomplete is
// returned and src is left unchanged. A frame with an unknown codec type
// fails with errs.ErrInvalidFrame and src is left unchanged, since its
// boundaries cannot be trusted. A payload that fails to decompress is skipped
// and reported as errs.ErrInvalidFrame.
//
// The result of a None frame aliases src.Data.
func ReadFrame(src *buff.Buffer) ([]byte, error) {
	header, err := src.Peek(HeaderSize)
	if err != nil {
		return nil, err
	}

	t := Type(header[0])
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown codec type %#02x", errs.ErrInvalidFrame, header[0])
	}

	n := int(frameEngine.Uint32(header[1:]))
	if src.Available() < HeaderSize+n {
		return nil, fmt.Errorf("%w: frame of %d bytes, %d available", errs.ErrIncomplete, HeaderSize+n, src.Available())
	}

	start := src.Pos + HeaderSize
	payload := src.Data[start : start+n : start+n]
	src.Pos = start + n

	codec, _ := GetCodec(t)
	out, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", errs.ErrInvalidFrame, t, err)
	}

	return out, nil
}

type sinkConfig struct {
	logger *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption = options.Option[*sinkConfig]

// WithLogger sets the logger receiving flush events.
func WithLogger(l *slog.Logger) SinkOption {
	return options.NoError(func(c *sinkConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// Sink collects bytes and emits them as compressed frames.
//
// Its Append method has the shape of a json.Sink, so a json.Writer can write
// straight into it.
type Sink struct {
	t      Type
	buf    *pool.ByteBuffer
	frame  []byte
	logger *slog.Logger
}

// NewSink creates a sink producing frames of type t.
func NewSink(t Type, opts ...SinkOption) (*Sink, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unsupported compression type %s", errs.ErrInvalidArgument, t)
	}

	cfg := &sinkConfig{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Sink{
		t:      t,
		buf:    pool.GetFrameBuffer(),
		logger: cfg.logger,
	}, nil
}

// Append stages p for the next frame.
func (s *Sink) Append(p []byte) error {
	if s.buf == nil {
		return errs.ErrClosed
	}
	s.buf.MustWrite(p)

	return nil
}

// Len returns the number of staged bytes.
func (s *Sink) Len() int {
	if s.buf == nil {
		return 0
	}

	return s.buf.Len()
}

// Flush writes the staged bytes to dst as one frame. Nothing is written when
// no bytes are staged. If the frame does not fit in dst, errs.ErrBufferFull
// is returned and the staged bytes are kept for a later Flush.
func (s *Sink) Flush(dst *buff.Buffer) error {
	if s.buf == nil {
		return errs.ErrClosed
	}
	if s.buf.Len() == 0 {
		return nil
	}

	frame, err := AppendFrame(s.frame[:0], s.t, s.buf.Bytes())
	if err != nil {
		return err
	}
	s.frame = frame

	if _, err := dst.Write(frame); err != nil {
		return err
	}

	s.logger.Debug("frame flushed",
		slog.String("codec", s.t.String()),
		slog.Int("raw", s.buf.Len()),
		slog.Int("framed", len(frame)))
	s.buf.Reset()

	return nil
}

// Close returns the staging buffer to its pool. Staged bytes are dropped.
func (s *Sink) Close() {
	if s.buf == nil {
		return
	}
	pool.PutFrameBuffer(s.buf)
	s.buf = nil
	s.frame = nil
}
