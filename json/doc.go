// Package json provides a streaming, callback-driven JSON parser and a
// validating JSON writer.
//
// # Parser
//
// Parser is a push parser: the caller feeds byte chunks through Parse as they
// arrive and the parser invokes a Handler once per recognized token. Chunks
// may end anywhere, including in the middle of a string, an escape sequence
// or a number; the partial lexeme is kept and completed by the next call.
//
//	p, err := json.NewParser(alloc.Heap(), handler, root)
//	for chunk := range chunks {
//	    if err := p.Parse(buff.New(chunk)); err != nil {
//	        return err // terminal until Reset
//	    }
//	}
//	if err := p.Finish(); err != nil {
//	    return err
//	}
//
// Parser also implements io.ReaderFrom, and ParseReader parses a whole
// stream, so large inputs are processed in constant memory.
//
// Leaf values are reported as Null, Bool, Int, Real and Str tokens. Arrays
// are reported as Arr, their elements, then ArrEnd. Objects are reported as
// Obj, then an ObjKey token followed by the value token(s) for every member,
// then ObjEnd.
//
// # Context threading
//
// Every Handler call receives a ctx value and returns one. The returned value
// is ignored for leaf and end tokens. For Arr and Obj it becomes the ctx of
// every token directly inside the container and of the matching end token.
// For ObjKey, which is delivered with the object's ctx, it becomes the ctx of
// that member's value tokens. Top-level tokens receive the ctx passed to
// NewParser. This lets the caller build any result tree with its own stack
// discipline while the parser keeps no tree of its own.
//
// # Strings
//
// Str and ObjKey values carry the decoded bytes in Value.Str. When a string
// has no escapes and lies within one chunk, Value.Str aliases the input
// chunk; otherwise it aliases parser scratch memory obtained from the
// allocator. Either way it is only valid during the Handler call.
//
// # Writer
//
// Writer emits JSON text through a Sink callback. It tracks open containers
// and, inside objects, whether a key or a value comes next; a string written
// where a key is expected becomes the key. Call sequences that would produce
// invalid JSON are rejected with errs.ErrContractViolation and emit nothing.
//
// Parser and Writer are not safe for concurrent use.
package json
