// Package compress provides block codecs and a length-prefixed frame format
// for shipping JSON writer output, or any other byte stream, in compressed
// blocks.
//
// # Codecs
//
// Every codec implements Codec:
//
//	type Codec interface {
//	    Compress(data []byte) ([]byte, error)
//	    Decompress(data []byte) ([]byte, error)
//	}
//
// Supported types:
//   - None: bytes are passed through unchanged
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// Zstd is implemented with github.com/klauspost/compress/zstd. Building with
// cgo enabled and the gozstd tag switches to the libzstd binding in
// github.com/valyala/gozstd; the compressed format is identical.
//
// # Frames
//
// A frame is a 5 byte header followed by the compressed payload:
//
//	+------+----------------+-----------------+
//	| type | length (LE u32)| payload         |
//	+------+----------------+-----------------+
//
// Sink stages bytes and writes them out as one frame per Flush. ReadFrame
// decodes the next frame from a buff.Buffer and reports errs.ErrIncomplete,
// without consuming anything, when the frame has not fully arrived yet:
//
//	sink, _ := compress.NewSink(compress.S2)
//	w, _ := json.NewWriter(sink.Append)
//	_ = w.WriteInt(42)
//	_ = sink.Flush(out)
//
//	payload, err := compress.ReadFrame(in)
//
// Codecs are safe for concurrent use. Sink is not.
package compress
