package json

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/hat-open/hat-util/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	tok Token
	val Value
	ctx any
}

// recorder is a Handler that records every call and hands out a fresh
// integer ctx for each container and key.
type recorder struct {
	records []record
	next    int
}

func (r *recorder) handle(tok Token, v Value, ctx any) any {
	if tok == Str || tok == ObjKey {
		v.Str = append([]byte{}, v.Str...)
	}
	r.records = append(r.records, record{tok: tok, val: v, ctx: ctx})

	switch tok {
	case Arr, Obj, ObjKey:
		r.next++
		return r.next
	}

	return nil
}

func newParser(t *testing.T, h Handler, opts ...ParserOption) *Parser {
	t.Helper()
	p, err := NewParser(alloc.Heap(), h, "root", opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p
}

// parseAll feeds doc in one call, finishes the stream and returns the records.
func parseAll(t *testing.T, doc string) []record {
	t.Helper()
	rec := &recorder{}
	p := newParser(t, rec.handle)
	require.NoError(t, p.Parse(buff.New([]byte(doc))))
	require.NoError(t, p.Finish())
	require.True(t, p.Empty())

	return rec.records
}

func str(s string) Value {
	return Value{Str: []byte(s)}
}

func TestNewParser(t *testing.T) {
	h := (&recorder{}).handle

	_, err := NewParser(nil, h, nil)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = NewParser(alloc.Heap(), nil, nil)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = NewParser(alloc.Heap(), h, nil, WithMaxDepth(0))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	p, err := NewParser(alloc.Heap(), h, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxDepth, p.maxDepth)
	require.False(t, p.Empty(), "no value delivered yet")
}

func TestParseContextThreading(t *testing.T) {
	got := parseAll(t, `{"k": [1, 2, null, true, 3.5, "abc"], "o": {"x": false}}`)

	want := []record{
		{Obj, Value{}, "root"},
		{ObjKey, str("k"), 1},
		{Arr, Value{}, 2},
		{Int, Value{Int: 1}, 3},
		{Int, Value{Int: 2}, 3},
		{Null, Value{}, 3},
		{Bool, Value{Bool: true}, 3},
		{Real, Value{Real: 3.5}, 3},
		{Str, str("abc"), 3},
		{ArrEnd, Value{}, 3},
		{ObjKey, str("o"), 1},
		{Obj, Value{}, 4},
		{ObjKey, str("x"), 5},
		{Bool, Value{Bool: false}, 6},
		{ObjEnd, Value{}, 5},
		{ObjEnd, Value{}, 1},
	}
	require.Equal(t, want, got)
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []record
	}{
		{"null", `null`, []record{{Null, Value{}, "root"}}},
		{"true", `true`, []record{{Bool, Value{Bool: true}, "root"}}},
		{"false", `false`, []record{{Bool, Value{}, "root"}}},
		{"string", `"hi"`, []record{{Str, str("hi"), "root"}}},
		{"empty string", `""`, []record{{Str, str(""), "root"}}},
		{"empty array", `[]`, []record{{Arr, Value{}, "root"}, {ArrEnd, Value{}, 1}}},
		{"empty object", `{ }`, []record{{Obj, Value{}, "root"}, {ObjEnd, Value{}, 1}}},
		{"whitespace", " \t\r\n null \n", []record{{Null, Value{}, "root"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseAll(t, tt.doc))
		})
	}
}

func TestParseNumbers(t *testing.T) {
	got := parseAll(t, `[0, -0, 12, -7, 1.5, 1e3, 2E-2, -0.25e+1, `+
		`9223372036854775807, 9223372036854775808, -9223372036854775808]`)

	want := []Value{
		{Int: 0},
		{Int: 0},
		{Int: 12},
		{Int: -7},
		{Real: 1.5},
		{Real: 1000},
		{Real: 0.02},
		{Real: -2.5},
		{Int: 9223372036854775807},
		{Real: 9223372036854775808},
		{Int: -9223372036854775808},
	}
	wantTok := []Token{Int, Int, Int, Int, Real, Real, Real, Real, Int, Real, Int}

	require.Len(t, got, len(want)+2)
	for i, v := range want {
		r := got[i+1]
		assert.Equal(t, wantTok[i], r.tok, "element %d", i)
		assert.Equal(t, v, r.val, "element %d", i)
	}
}

func TestParseStrings(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\"b\\c\/d"`, `a"b\c/d`},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"\u0041\u00e9\u4e2d"`, "Aé中"},
		{`"\ud83d\ude00!"`, "😀!"},
		{`"raw é 中"`, "raw é 中"},
		{`"x\n"`, "x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			got := parseAll(t, tt.doc)
			require.Len(t, got, 1)
			require.Equal(t, Str, got[0].tok)
			require.Equal(t, tt.want, string(got[0].val.Str))
		})
	}
}

func TestParseZeroCopy(t *testing.T) {
	data := []byte(`["abc", "a\nc"]`)
	var aliased []bool

	h := func(tok Token, v Value, ctx any) any {
		if tok == Str {
			inInput := len(v.Str) > 0 && &v.Str[0] == &data[2]
			aliased = append(aliased, inInput)
		}

		return nil
	}
	p := newParser(t, h)
	require.NoError(t, p.Parse(buff.New(data)))

	require.Equal(t, []bool{true, false}, aliased)
}

func TestParseConcatenated(t *testing.T) {
	got := parseAll(t, "1 2\n[3]\t\"x\" 4")

	want := []record{
		{Int, Value{Int: 1}, "root"},
		{Int, Value{Int: 2}, "root"},
		{Arr, Value{}, "root"},
		{Int, Value{Int: 3}, 1},
		{ArrEnd, Value{}, 1},
		{Str, str("x"), "root"},
		{Int, Value{Int: 4}, "root"},
	}
	require.Equal(t, want, got)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		doc    string
		offset int
	}{
		{`{"a" 1}`, 5},
		{`[1,]`, 3},
		{`[01]`, 2},
		{`{"a":1,}`, 7},
		{`tru e`, 3},
		{`nul,`, 3},
		{`"\x"`, 2},
		{"\"a\x01\"", 2},
		{`[-]`, 2},
		{`[1.]`, 3},
		{`[1e]`, 3},
		{`[1 2]`, 3},
		{`}`, 0},
		{`]`, 0},
		{`{1:2}`, 1},
		{`[1}`, 2},
		{`{"a":1]`, 6},
		{`truefalse`, 4},
		{`"\ud800x"`, 7},
		{`"\ud800\u0041"`, 12},
		{`"\udc00"`, 6},
		{`"\u12g4"`, 5},
		{`{"a"::1}`, 5},
		{`[,1]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			p := newParser(t, (&recorder{}).handle)
			b := buff.New([]byte(tt.doc))

			err := p.Parse(b)
			require.ErrorIs(t, err, errs.ErrSyntax)
			require.Equal(t, tt.offset, b.Pos, "error position")
		})
	}
}

func TestParseStickyError(t *testing.T) {
	rec := &recorder{}
	p := newParser(t, rec.handle)

	err := p.Parse(buff.New([]byte(`[1,,`)))
	require.ErrorIs(t, err, errs.ErrSyntax)
	require.ErrorIs(t, p.Parse(buff.New([]byte(`2]`))), errs.ErrSyntax)
	require.ErrorIs(t, p.Finish(), errs.ErrSyntax)

	p.Reset()
	rec.records = nil
	require.False(t, p.Empty())
	require.NoError(t, p.Parse(buff.New([]byte(`[2]`))))
	require.NoError(t, p.Finish())
	require.Len(t, rec.records, 3)
}

func TestParseDepthBound(t *testing.T) {
	for _, maxDepth := range []int{1, 4, DefaultMaxDepth} {
		var opts []ParserOption
		if maxDepth != DefaultMaxDepth {
			opts = append(opts, WithMaxDepth(maxDepth))
		}

		t.Run(fmt.Sprintf("at limit %d", maxDepth), func(t *testing.T) {
			rec := &recorder{}
			p := newParser(t, rec.handle, opts...)
			doc := strings.Repeat("[", maxDepth) + strings.Repeat("]", maxDepth)

			require.NoError(t, p.Parse(buff.New([]byte(doc))))
			require.True(t, p.Empty())
			require.Len(t, rec.records, 2*maxDepth)
		})

		t.Run(fmt.Sprintf("crossing limit %d", maxDepth), func(t *testing.T) {
			rec := &recorder{}
			p := newParser(t, rec.handle, opts...)
			doc := strings.Repeat("[", maxDepth+1) + strings.Repeat("]", maxDepth+1)
			b := buff.New([]byte(doc))

			err := p.Parse(b)
			require.ErrorIs(t, err, errs.ErrDepthExceeded)
			require.Equal(t, maxDepth, b.Pos, "fails at the opening bracket crossing the bound")
			require.Len(t, rec.records, maxDepth, "every container within the bound is delivered")
		})
	}
}

func TestParseIncremental(t *testing.T) {
	doc := []byte(`{"name":"café 😀","tags":["a","b\"c",""],` +
		`"n":[0,-12,3.25e-2,1E+2,9223372036854775808],"nested":{"t":true,"f":false,"z":null},` +
		`"long":"` + strings.Repeat("x", 200) + `"}`)
	want := parseAll(t, string(doc))

	for size := 1; size <= len(doc); size++ {
		rec := &recorder{}
		p := newParser(t, rec.handle)

		for off := 0; off < len(doc); off += size {
			chunk := doc[off:min(off+size, len(doc))]
			b := buff.New(chunk)
			require.NoError(t, p.Parse(b), "chunk size %d offset %d", size, off)
			require.Equal(t, len(chunk), b.Pos)

			done := len(rec.records) == len(want)
			require.Equal(t, done, p.Empty(), "chunk size %d offset %d", size, off)
		}

		require.NoError(t, p.Finish())
		require.Equal(t, want, rec.records, "chunk size %d", size)
	}
}

func TestParseTwoChunkSplits(t *testing.T) {
	doc := []byte(`[-1.5e3,"é\\",true,null,{"k":"v"},12345]`)
	want := parseAll(t, string(doc))

	for split := 0; split <= len(doc); split++ {
		rec := &recorder{}
		p := newParser(t, rec.handle)

		require.NoError(t, p.Parse(buff.New(doc[:split])))
		require.NoError(t, p.Parse(buff.New(doc[split:])))
		require.NoError(t, p.Finish())
		require.Equal(t, want, rec.records, "split at %d", split)
	}
}

func TestParseFinish(t *testing.T) {
	t.Run("pending top-level number", func(t *testing.T) {
		rec := &recorder{}
		p := newParser(t, rec.handle)

		require.NoError(t, p.Parse(buff.New([]byte("4"))))
		require.NoError(t, p.Parse(buff.New([]byte("2"))))
		require.False(t, p.Empty())
		require.Empty(t, rec.records)

		require.NoError(t, p.Finish())
		require.True(t, p.Empty())
		require.Equal(t, []record{{Int, Value{Int: 42}, "root"}}, rec.records)
	})

	t.Run("truncated number", func(t *testing.T) {
		p := newParser(t, (&recorder{}).handle)
		require.NoError(t, p.Parse(buff.New([]byte("1e"))))
		require.ErrorIs(t, p.Finish(), errs.ErrSyntax)
	})

	t.Run("open container", func(t *testing.T) {
		p := newParser(t, (&recorder{}).handle)
		require.NoError(t, p.Parse(buff.New([]byte(`[1,`))))
		require.ErrorIs(t, p.Finish(), errs.ErrIncomplete)
	})

	t.Run("open string", func(t *testing.T) {
		p := newParser(t, (&recorder{}).handle)
		require.NoError(t, p.Parse(buff.New([]byte(`"ab`))))
		require.ErrorIs(t, p.Finish(), errs.ErrIncomplete)
	})

	t.Run("empty stream", func(t *testing.T) {
		p := newParser(t, (&recorder{}).handle)
		require.False(t, p.Empty())
		require.ErrorIs(t, p.Finish(), errs.ErrIncomplete)
	})

	t.Run("whitespace only", func(t *testing.T) {
		p := newParser(t, (&recorder{}).handle)
		require.NoError(t, p.Parse(buff.New([]byte(" \n\t\r "))))
		require.False(t, p.Empty())
		require.ErrorIs(t, p.Finish(), errs.ErrIncomplete)

		require.NoError(t, p.Parse(buff.New([]byte("null "))))
		require.True(t, p.Empty())
		require.NoError(t, p.Finish())
	})
}

func TestParseAllocation(t *testing.T) {
	t.Run("zero-copy strings need no scratch", func(t *testing.T) {
		a := alloc.NewLimited(alloc.Heap(), 0)
		rec := &recorder{}
		p, err := NewParser(a, rec.handle, nil)
		require.NoError(t, err)
		defer p.Close()

		require.NoError(t, p.Parse(buff.New([]byte(`["ab", 1]`))))
		require.Equal(t, 0, a.InUse())
	})

	t.Run("scratch failure is terminal", func(t *testing.T) {
		a := alloc.NewLimited(alloc.Heap(), 0)
		p, err := NewParser(a, (&recorder{}).handle, nil)
		require.NoError(t, err)
		defer p.Close()

		require.ErrorIs(t, p.Parse(buff.New([]byte(`["ab`))), errs.ErrAllocFailed)
		require.ErrorIs(t, p.Parse(buff.New([]byte(`"]`))), errs.ErrAllocFailed)
	})

	t.Run("close releases scratch", func(t *testing.T) {
		a := alloc.NewLimited(alloc.Heap(), 1<<20)
		p, err := NewParser(a, (&recorder{}).handle, nil)
		require.NoError(t, err)

		require.NoError(t, p.Parse(buff.New([]byte(`["a\tb`))))
		require.Positive(t, a.InUse())

		p.Close()
		require.Equal(t, 0, a.InUse())
		require.ErrorIs(t, p.Parse(buff.New([]byte(`"]`))), errs.ErrClosed)
		require.ErrorIs(t, p.Finish(), errs.ErrClosed)
	})
}

func TestParserLogger(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := newParser(t, (&recorder{}).handle, WithParserLogger(logger))
	require.Error(t, p.Parse(buff.New([]byte(`[}`))))
	require.Contains(t, out.String(), "json parse failed")
}

func BenchmarkParse(b *testing.B) {
	doc := []byte(`{"id":12345,"name":"sensor \"alpha\"","values":[1.5,2.25,-3.125,4e10],` +
		`"ok":true,"meta":{"unit":"kW","tags":["a","b","c"],"none":null}}` + "\n")
	p, err := NewParser(alloc.Heap(), func(Token, Value, any) any { return nil }, nil)
	require.NoError(b, err)
	defer p.Close()

	b.SetBytes(int64(len(doc)))
	for b.Loop() {
		if err := p.Parse(buff.New(doc)); err != nil {
			b.Fatal(err)
		}
	}
}
