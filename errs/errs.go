// Package errs defines the sentinel errors shared by the hat-util packages.
//
// Errors are returned wrapped with additional context, so callers should
// match them with errors.Is:
//
//	if errors.Is(err, errs.ErrDepthExceeded) {
//	    // reject the document
//	}
package errs

import "errors"

// Allocation and capacity errors.
var (
	// ErrAllocFailed is returned when an allocator could not satisfy a request.
	ErrAllocFailed = errors.New("allocation failed")

	// ErrInvalidCapacity is returned for negative or otherwise unusable capacity hints.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrInvalidArgument is returned for missing or malformed constructor arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned when a component is used after Close.
	ErrClosed = errors.New("use of closed component")
)

// Lookup errors.
var (
	// ErrNotFound is returned when a key is not present in a table.
	ErrNotFound = errors.New("key not found")
)

// Buffer errors.
var (
	// ErrBufferFull is returned when a write does not fit in the remaining buffer space.
	ErrBufferFull = errors.New("buffer full")

	// ErrIncomplete is returned when more input is needed to finish a unit of data.
	ErrIncomplete = errors.New("incomplete input")
)

// JSON codec errors.
var (
	// ErrSyntax is returned when the parser encounters malformed JSON.
	ErrSyntax = errors.New("json syntax error")

	// ErrDepthExceeded is returned when nesting crosses the configured maximum depth.
	ErrDepthExceeded = errors.New("json max depth exceeded")

	// ErrContractViolation is returned when writer calls do not form valid JSON.
	ErrContractViolation = errors.New("json writer contract violation")

	// ErrInvalidValue is returned when a value has no JSON representation (NaN, ±Inf).
	ErrInvalidValue = errors.New("json invalid value")
)

// Frame errors.
var (
	// ErrInvalidFrame is returned when a compressed frame header is malformed.
	ErrInvalidFrame = errors.New("invalid frame")
)
