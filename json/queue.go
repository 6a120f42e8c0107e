package json

import (
	"bytes"

	"github.com/eapache/queue"
)

// Event is a parsed token recorded by a Queue.
type Event struct {
	Token Token
	Value Value
	// Depth is the number of containers enclosing the token. Container and
	// end tokens report the depth of the container itself.
	Depth int
}

// Queue turns the push parser into a pull source: its Handle method records
// every token as an Event that the caller later takes with Next.
//
// Handle tracks nesting through the ctx values, so a parser feeding a Queue
// must be created with a root ctx of 0 (or nil).
type Queue struct {
	q *queue.Queue
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{q: queue.New()}
}

// Handle is a Handler recording tok. Str values are copied, so events stay
// valid after the parser moves on.
func (q *Queue) Handle(tok Token, v Value, ctx any) any {
	depth, _ := ctx.(int)
	if v.Str != nil {
		v.Str = bytes.Clone(v.Str)
	}

	switch tok {
	case Arr, Obj:
		q.q.Add(Event{Token: tok, Value: v, Depth: depth})
		return depth + 1
	case ArrEnd, ObjEnd:
		q.q.Add(Event{Token: tok, Value: v, Depth: depth - 1})
	default:
		q.q.Add(Event{Token: tok, Value: v, Depth: depth})
	}

	return ctx
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return q.q.Length()
}

// Next removes and returns the oldest event. It reports false when the queue
// is empty.
func (q *Queue) Next() (Event, bool) {
	if q.q.Length() == 0 {
		return Event{}, false
	}

	return q.q.Remove().(Event), true
}

// Drain writes every queued event to w in order.
func (q *Queue) Drain(w *Writer) error {
	for {
		e, ok := q.Next()
		if !ok {
			return nil
		}
		if err := w.WriteEvent(e.Token, e.Value); err != nil {
			return err
		}
	}
}
