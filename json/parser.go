package json

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/errs"
	"github.com/hat-open/hat-util/internal/options"
)

// DefaultMaxDepth is the nesting bound used when WithMaxDepth is not given.
const DefaultMaxDepth = 1024

// minScratchSize is the first scratch allocation made for a lexeme that
// cannot be delivered zero-copy.
const minScratchSize = 64

type frameKind uint8

const (
	frameArr frameKind = iota
	frameObj
)

// mode is what the parser expects between lexemes.
type mode uint8

const (
	modeValue    mode = iota // any value
	modeTopAfter             // a top-level value ended; whitespace must follow
	modeArrFirst             // after '[': a value or ']'
	modeObjFirst             // after '{': a key or '}'
	modeKey                  // after ',' in an object
	modeColon                // after a key
	modeComma                // after an element or member: ',' or the closing bracket
)

// lexState is the lexeme in progress.
type lexState uint8

const (
	lexNone lexState = iota
	lexString
	lexEscape
	lexUnicode
	lexSurrogateEscape // '\' of a low surrogate escape expected
	lexSurrogateU      // 'u' of a low surrogate escape expected
	lexNumber
	lexLiteral
)

// numState is the position within the number grammar.
type numState uint8

const (
	numMinus numState = iota
	numZero
	numInt
	numDot
	numFrac
	numExp
	numExpSign
	numExpDigit
)

type frame struct {
	kind   frameKind
	ctx    any // returned by the Arr or Obj handler call
	keyCtx any // returned by the ObjKey handler call of the current member
}

type parserConfig struct {
	maxDepth int
	logger   *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption = options.Option[*parserConfig]

// WithMaxDepth bounds container nesting. Opening a container at depth n
// fails with errs.ErrDepthExceeded.
func WithMaxDepth(n int) ParserOption {
	return options.New(func(c *parserConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: max depth %d", errs.ErrInvalidArgument, n)
		}
		c.maxDepth = n

		return nil
	})
}

// WithParserLogger sets the logger receiving parser failures.
func WithParserLogger(l *slog.Logger) ParserOption {
	return options.NoError(func(c *parserConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// Parser is an incremental push parser. See the package documentation for
// the token and ctx protocol.
type Parser struct {
	a        alloc.Allocator
	handler  Handler
	root     any
	maxDepth int
	logger   *slog.Logger

	frames []frame
	mode   mode

	lex      lexState
	isKey    bool // the string in progress is an object key
	num      numState
	isReal   bool // the number in progress has a fraction or an exponent
	lit      string
	litPos   int
	hexCount int
	code     rune
	high     rune // pending high surrogate
	segStart int  // start of the unsaved lexeme text within the current chunk
	buffered bool // lexeme text is collected in scratch

	scratch []byte
	n       int

	offset int64 // bytes consumed by earlier Parse calls
	values int   // completed top-level values
	err    error
	closed bool
}

// NewParser creates a parser delivering tokens to h. Top-level tokens receive
// ctx. Scratch memory for lexemes that span chunks or contain escapes is
// obtained from a.
func NewParser(a alloc.Allocator, h Handler, ctx any, opts ...ParserOption) (*Parser, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil allocator", errs.ErrInvalidArgument)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler", errs.ErrInvalidArgument)
	}

	cfg := &parserConfig{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Parser{
		a:        a,
		handler:  h,
		root:     ctx,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
		frames:   make([]frame, 0, min(cfg.maxDepth, 16)),
	}, nil
}

// Parse consumes the unread bytes of b, advancing b.Pos, and delivers every
// token they complete. A chunk ending inside a lexeme is not an error: the
// partial state is kept for the next call.
//
// A non-nil result is terminal: errs.ErrSyntax, errs.ErrDepthExceeded or
// errs.ErrAllocFailed, wrapped with the stream offset. b.Pos is left at the
// offending byte and every later call returns the same error until Reset.
func (p *Parser) Parse(b *buff.Buffer) error {
	if p.closed {
		return errs.ErrClosed
	}
	if p.err != nil {
		return p.err
	}

	data := b.Remaining()
	if len(data) == 0 {
		return nil
	}

	p.segStart = 0
	i, err := p.feed(data)
	b.Pos += i
	p.offset += int64(i)
	if err != nil {
		p.fail(err)
		return err
	}

	return nil
}

// Empty reports whether at least one top-level value has been completely
// delivered and nothing is open or pending after it. It is false before any
// value and while only whitespace has been fed.
func (p *Parser) Empty() bool {
	return p.values > 0 && p.idle()
}

// idle reports whether no container is open and no lexeme is pending.
func (p *Parser) idle() bool {
	return len(p.frames) == 0 && p.lex == lexNone
}

// Finish signals the end of the stream. A top-level number still waiting for
// a terminating byte is delivered. errs.ErrIncomplete is returned when a
// container or lexeme is still open, or when the stream held no value.
func (p *Parser) Finish() error {
	if p.closed {
		return errs.ErrClosed
	}
	if p.err != nil {
		return p.err
	}

	if p.lex == lexNumber && len(p.frames) == 0 {
		if !p.numComplete() {
			err := fmt.Errorf("%w: offset %d: truncated number", errs.ErrSyntax, p.offset)
			p.fail(err)
			return err
		}
		if err := p.endNumber(p.scratch[:p.n]); err != nil {
			p.fail(err)
			return err
		}
	}

	if !p.idle() {
		return fmt.Errorf("%w: %d open containers at offset %d", errs.ErrIncomplete, len(p.frames), p.offset)
	}
	if p.values == 0 {
		return fmt.Errorf("%w: no value in %d bytes", errs.ErrIncomplete, p.offset)
	}

	return nil
}

// Reset discards all parse state, including a terminal error, so the parser
// can start a new stream. Scratch memory is kept.
func (p *Parser) Reset() {
	p.frames = p.frames[:0]
	p.mode = modeValue
	p.lex = lexNone
	p.high = 0
	p.n = 0
	p.buffered = false
	p.offset = 0
	p.values = 0
	p.err = nil
}

// Close releases scratch memory to the allocator. Later calls return
// errs.ErrClosed.
func (p *Parser) Close() {
	alloc.Free(p.a, p.scratch)
	p.scratch = nil
	p.frames = nil
	p.closed = true
}

func (p *Parser) fail(err error) {
	p.err = err
	p.logger.Debug("json parse failed",
		slog.String("error", err.Error()),
		slog.Int("depth", len(p.frames)))
}

func (p *Parser) unexpected(i int, c byte) error {
	return fmt.Errorf("%w: offset %d: unexpected %q", errs.ErrSyntax, p.offset+int64(i), c)
}

// feed runs the state machine over data. It returns the number of bytes
// consumed, which is len(data) unless an error stops it.
func (p *Parser) feed(data []byte) (int, error) {
	i := 0
	for i < len(data) {
		switch p.lex {
		case lexNone:
			if err := p.structural(data[i], i); err != nil {
				return i, err
			}
			i++

		case lexString:
			for i < len(data) && data[i] != '"' && data[i] != '\\' && data[i] >= 0x20 {
				i++
			}
			if i == len(data) {
				break
			}
			switch data[i] {
			case '"':
				if err := p.endString(data[p.segStart:i]); err != nil {
					return i, err
				}
			case '\\':
				if err := p.appendScratch(data[p.segStart:i]); err != nil {
					return i, err
				}
				p.lex = lexEscape
			default:
				return i, fmt.Errorf("%w: offset %d: control character %#02x in string",
					errs.ErrSyntax, p.offset+int64(i), data[i])
			}
			i++

		case lexEscape:
			if err := p.escape(data[i], i); err != nil {
				return i, err
			}
			i++
			p.segStart = i

		case lexUnicode:
			d := unhex(data[i])
			if d < 0 {
				return i, p.unexpected(i, data[i])
			}
			p.code = p.code<<4 | rune(d)
			p.hexCount++
			if p.hexCount == 4 {
				if err := p.endUnicode(i); err != nil {
					return i, err
				}
			}
			i++
			p.segStart = i

		case lexSurrogateEscape:
			if data[i] != '\\' {
				return i, fmt.Errorf("%w: offset %d: missing low surrogate", errs.ErrSyntax, p.offset+int64(i))
			}
			p.lex = lexSurrogateU
			i++

		case lexSurrogateU:
			if data[i] != 'u' {
				return i, fmt.Errorf("%w: offset %d: missing low surrogate", errs.ErrSyntax, p.offset+int64(i))
			}
			p.lex = lexUnicode
			p.hexCount = 0
			p.code = 0
			i++

		case lexNumber:
			if p.numByte(data[i]) {
				i++
				continue
			}
			// the terminating byte is left for the structural pass
			if !p.numComplete() {
				return i, p.unexpected(i, data[i])
			}
			text := data[p.segStart:i]
			if p.buffered {
				if err := p.appendScratch(text); err != nil {
					return i, err
				}
				text = p.scratch[:p.n]
			}
			if err := p.endNumber(text); err != nil {
				return i, err
			}

		case lexLiteral:
			if data[i] != p.lit[p.litPos] {
				return i, p.unexpected(i, data[i])
			}
			p.litPos++
			i++
			if p.litPos == len(p.lit) {
				p.endLiteral()
			}
		}
	}

	if p.lex == lexString || p.lex == lexNumber {
		if err := p.appendScratch(data[p.segStart:]); err != nil {
			return len(data), err
		}
	}

	return len(data), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}

	return -1
}

// structural handles a byte outside of any lexeme.
func (p *Parser) structural(c byte, i int) error {
	if isSpace(c) {
		if p.mode == modeTopAfter {
			p.mode = modeValue
		}

		return nil
	}

	switch p.mode {
	case modeValue:
		return p.beginValue(c, i)

	case modeArrFirst:
		if c == ']' {
			return p.closeContainer()
		}

		return p.beginValue(c, i)

	case modeObjFirst, modeKey:
		switch {
		case c == '"':
			p.beginString(i, true)
			return nil
		case c == '}' && p.mode == modeObjFirst:
			return p.closeContainer()
		}

	case modeColon:
		if c == ':' {
			p.mode = modeValue
			return nil
		}

	case modeComma:
		kind := p.frames[len(p.frames)-1].kind
		switch {
		case c == ',' && kind == frameArr:
			p.mode = modeValue
			return nil
		case c == ',':
			p.mode = modeKey
			return nil
		case c == ']' && kind == frameArr, c == '}' && kind == frameObj:
			return p.closeContainer()
		}
	}

	return p.unexpected(i, c)
}

func (p *Parser) beginValue(c byte, i int) error {
	switch {
	case c == '"':
		p.beginString(i, false)
	case c == '[':
		return p.openContainer(frameArr, i)
	case c == '{':
		return p.openContainer(frameObj, i)
	case c == '-':
		p.beginNumber(i, numMinus)
	case c == '0':
		p.beginNumber(i, numZero)
	case c >= '1' && c <= '9':
		p.beginNumber(i, numInt)
	case c == 't':
		p.beginLiteral("true")
	case c == 'f':
		p.beginLiteral("false")
	case c == 'n':
		p.beginLiteral("null")
	default:
		return p.unexpected(i, c)
	}

	return nil
}

func (p *Parser) beginString(i int, key bool) {
	p.lex = lexString
	p.isKey = key
	p.segStart = i + 1
	p.buffered = false
	p.n = 0
}

func (p *Parser) beginNumber(i int, st numState) {
	p.lex = lexNumber
	p.num = st
	p.isReal = false
	p.segStart = i
	p.buffered = false
	p.n = 0
}

func (p *Parser) beginLiteral(lit string) {
	p.lex = lexLiteral
	p.lit = lit
	p.litPos = 1
}

// valueCtx returns the ctx for a value token at the current position.
func (p *Parser) valueCtx() any {
	if len(p.frames) == 0 {
		return p.root
	}
	top := &p.frames[len(p.frames)-1]
	if top.kind == frameArr {
		return top.ctx
	}

	return top.keyCtx
}

// valueDone updates the expectation after a complete value.
func (p *Parser) valueDone() {
	if len(p.frames) == 0 {
		p.mode = modeTopAfter
		p.values++
		return
	}
	top := &p.frames[len(p.frames)-1]
	top.keyCtx = nil
	p.mode = modeComma
}

func (p *Parser) emit(tok Token, v Value) {
	p.handler(tok, v, p.valueCtx())
	p.valueDone()
}

func (p *Parser) openContainer(kind frameKind, i int) error {
	if len(p.frames) >= p.maxDepth {
		return fmt.Errorf("%w: offset %d: limit %d", errs.ErrDepthExceeded, p.offset+int64(i), p.maxDepth)
	}

	tok, next := Arr, modeArrFirst
	if kind == frameObj {
		tok, next = Obj, modeObjFirst
	}
	ctx := p.handler(tok, Value{}, p.valueCtx())
	p.frames = append(p.frames, frame{kind: kind, ctx: ctx})
	p.mode = next

	return nil
}

func (p *Parser) closeContainer() error {
	top := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]

	tok := ArrEnd
	if top.kind == frameObj {
		tok = ObjEnd
	}
	p.handler(tok, Value{}, top.ctx)
	p.valueDone()

	return nil
}

// endString delivers a completed string. tail is the unsaved text preceding
// the closing quote.
func (p *Parser) endString(tail []byte) error {
	s := tail[:len(tail):len(tail)]
	if p.buffered {
		if err := p.appendScratch(tail); err != nil {
			return err
		}
		s = p.scratch[:p.n:p.n]
	}
	p.lex = lexNone
	p.buffered = false
	p.n = 0

	if p.isKey {
		top := &p.frames[len(p.frames)-1]
		top.keyCtx = p.handler(ObjKey, Value{Str: s}, top.ctx)
		p.mode = modeColon

		return nil
	}
	p.emit(Str, Value{Str: s})

	return nil
}

func (p *Parser) escape(c byte, i int) error {
	var b byte
	switch c {
	case '"', '\\', '/':
		b = c
	case 'b':
		b = '\b'
	case 'f':
		b = '\f'
	case 'n':
		b = '\n'
	case 'r':
		b = '\r'
	case 't':
		b = '\t'
	case 'u':
		p.lex = lexUnicode
		p.hexCount = 0
		p.code = 0

		return nil
	default:
		return fmt.Errorf("%w: offset %d: invalid escape %q", errs.ErrSyntax, p.offset+int64(i), c)
	}
	p.lex = lexString

	return p.appendScratch([]byte{b})
}

func (p *Parser) endUnicode(i int) error {
	r := p.code
	switch {
	case p.high != 0:
		if !utf16.IsSurrogate(r) || r < 0xdc00 {
			return fmt.Errorf("%w: offset %d: invalid low surrogate %#04x", errs.ErrSyntax, p.offset+int64(i), r)
		}
		r = utf16.DecodeRune(p.high, r)
		p.high = 0
	case r >= 0xd800 && r < 0xdc00:
		p.high = r
		p.lex = lexSurrogateEscape

		return nil
	case r >= 0xdc00 && r < 0xe000:
		return fmt.Errorf("%w: offset %d: unpaired low surrogate %#04x", errs.ErrSyntax, p.offset+int64(i), r)
	}
	p.lex = lexString

	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)

	return p.appendScratch(enc[:n])
}

// numByte advances the number grammar by c and reports whether c belongs to
// the number.
func (p *Parser) numByte(c byte) bool {
	digit := c >= '0' && c <= '9'
	switch p.num {
	case numMinus:
		switch {
		case c == '0':
			p.num = numZero
		case digit:
			p.num = numInt
		default:
			return false
		}
	case numZero, numInt:
		switch {
		case digit && p.num == numInt:
		case c == '.':
			p.num = numDot
			p.isReal = true
		case c == 'e' || c == 'E':
			p.num = numExp
			p.isReal = true
		default:
			return false
		}
	case numDot:
		if !digit {
			return false
		}
		p.num = numFrac
	case numFrac:
		switch {
		case digit:
		case c == 'e' || c == 'E':
			p.num = numExp
		default:
			return false
		}
	case numExp:
		switch {
		case c == '+' || c == '-':
			p.num = numExpSign
		case digit:
			p.num = numExpDigit
		default:
			return false
		}
	case numExpSign, numExpDigit:
		if !digit {
			return false
		}
		p.num = numExpDigit
	}

	return true
}

func (p *Parser) numComplete() bool {
	switch p.num {
	case numZero, numInt, numFrac, numExpDigit:
		return true
	}

	return false
}

// endNumber delivers a completed number. Integers that fit int64 are Int,
// everything else is Real.
func (p *Parser) endNumber(text []byte) error {
	p.lex = lexNone
	p.buffered = false
	p.n = 0

	s := string(text)
	if !p.isReal {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			p.emit(Int, Value{Int: v})
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: number %q: %w", errs.ErrSyntax, s, err)
	}
	p.emit(Real, Value{Real: v})

	return nil
}

func (p *Parser) endLiteral() {
	p.lex = lexNone
	switch p.lit {
	case "null":
		p.emit(Null, Value{})
	case "true":
		p.emit(Bool, Value{Bool: true})
	default:
		p.emit(Bool, Value{})
	}
}

// appendScratch copies b to the end of the scratch text, growing scratch
// through the allocator. It marks the current lexeme as buffered even when b
// is empty.
func (p *Parser) appendScratch(b []byte) error {
	p.buffered = true
	need := p.n + len(b)
	if need > len(p.scratch) {
		size := max(need, 2*len(p.scratch), minScratchSize)
		s := alloc.Realloc(p.a, p.scratch, size)
		if s == nil {
			return fmt.Errorf("%w: parser scratch of %d bytes", errs.ErrAllocFailed, size)
		}
		p.scratch = s
	}
	p.n += copy(p.scratch[p.n:], b)

	return nil
}
