package json

import (
	"bytes"
	"testing"

	"github.com/hat-open/hat-util/alloc"
	"github.com/hat-open/hat-util/buff"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue()
	p, err := NewParser(alloc.Heap(), q.Handle, 0)
	require.NoError(t, err)
	defer p.Close()

	data := []byte(`{"a":[1,"x\ty"],"b":{}}`)
	require.NoError(t, p.Parse(buff.New(data)))
	require.True(t, p.Empty())

	// overwrite the input: queued strings must be copies
	for i := range data {
		data[i] = '#'
	}

	want := []Event{
		{Token: Obj, Depth: 0},
		{Token: ObjKey, Value: str("a"), Depth: 1},
		{Token: Arr, Depth: 1},
		{Token: Int, Value: Value{Int: 1}, Depth: 2},
		{Token: Str, Value: str("x\ty"), Depth: 2},
		{Token: ArrEnd, Depth: 1},
		{Token: ObjKey, Value: str("b"), Depth: 1},
		{Token: Obj, Depth: 1},
		{Token: ObjEnd, Depth: 1},
		{Token: ObjEnd, Depth: 0},
	}
	require.Equal(t, len(want), q.Len())

	for i, w := range want {
		e, ok := q.Next()
		require.True(t, ok)
		require.Equal(t, w, e, "event %d", i)
	}

	_, ok := q.Next()
	require.False(t, ok)
	require.Zero(t, q.Len())
}

func TestQueueDrain(t *testing.T) {
	doc := `{"a":[1,2.5,null,true,"x\"y"],"b":{"c":[]}}` + "\n" + `[false]`

	q := NewQueue()
	p, err := NewParser(alloc.Heap(), q.Handle, nil)
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Parse(buff.New([]byte(doc))))

	var out bytes.Buffer
	w := collect(t, &out)
	require.NoError(t, q.Drain(w))

	require.Equal(t, doc, out.String())
	require.Zero(t, q.Len())
	require.True(t, w.Complete())
}
