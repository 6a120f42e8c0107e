package compress

import "strconv"

// Type identifies a codec on the wire.
type Type uint8

const (
	None Type = 0x1
	Zstd Type = 0x2
	S2   Type = 0x3
	LZ4  Type = 0x4
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Valid reports whether t names a built-in codec.
func (t Type) Valid() bool {
	return t >= None && t <= LZ4
}
