package compress

// ZstdCompressor implements Zstandard compression at the default level.
//
// Compress and Decompress are provided by zstd_pure.go (klauspost) or, with
// cgo and the gozstd build tag, by zstd_cgo.go (libzstd).
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
