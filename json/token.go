package json

import "strconv"

// Token identifies the kind of a parsed or written JSON item.
type Token uint8

const (
	Null Token = iota
	Bool
	Int
	Real
	Str
	Arr
	ArrEnd
	Obj
	ObjKey
	ObjEnd
)

var tokenNames = [...]string{
	Null:   "null",
	Bool:   "bool",
	Int:    "int",
	Real:   "real",
	Str:    "str",
	Arr:    "arr",
	ArrEnd: "arr_end",
	Obj:    "obj",
	ObjKey: "obj_key",
	ObjEnd: "obj_end",
}

func (t Token) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}

	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Value carries the decoded payload of a token. Only the field matching the
// token is meaningful: Bool for Bool, Int for Int, Real for Real and Str for
// Str and ObjKey.
type Value struct {
	Bool bool
	Int  int64
	Real float64
	Str  []byte
}

// Handler receives parsed tokens. The returned value is the ctx for the
// tokens nested under an Arr, Obj or ObjKey token and is ignored otherwise.
type Handler func(tok Token, v Value, ctx any) any
