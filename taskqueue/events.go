// events.go
//
// EventQueue: the thin sibling of Queue for payload-carrying events with
// no cancellation surface. Ordering is the composite (priority, post
// sequence) key — equal priorities drain strictly FIFO, which is what
// makes dispatch order testable. Posts against a full queue drop the
// event and count the loss, mirroring the ring buffer's
// producer-never-blocks stance.

package taskqueue

import "github.com/ypradera/staticsched/minheap"

// EventQueue is a fixed-capacity priority event queue over payloads of T.
type EventQueue[T any] struct {
	h       *minheap.Heap[T]
	dropped uint64
}

// NewEvents returns an event queue holding at most capacity events.
func NewEvents[T any](capacity int) *EventQueue[T] {
	return &EventQueue[T]{h: minheap.New[T](capacity)}
}

// Post enqueues ev under priority. Returns false (and counts the drop)
// when the queue is full.
//
//go:nosplit
//go:inline
func (q *EventQueue[T]) Post(priority int64, ev T) bool {
	if !q.h.Push(priority, ev) {
		q.dropped++
		return false
	}
	return true
}

// Next pops the highest-priority event, FIFO among equal priorities.
//
//go:nosplit
//go:inline
func (q *EventQueue[T]) Next() (T, bool) {
	_, ev, ok := q.h.Pop()
	return ev, ok
}

// PeekNext returns the next event without consuming it.
//
//go:nosplit
//go:inline
func (q *EventQueue[T]) PeekNext() (T, bool) {
	_, ev, ok := q.h.Peek()
	return ev, ok
}

// Len returns the number of queued events.
//
//go:nosplit
//go:inline
func (q *EventQueue[T]) Len() int { return q.h.Len() }

// Dropped returns the count of events rejected by Post since creation.
//
//go:nosplit
//go:inline
func (q *EventQueue[T]) Dropped() uint64 { return q.dropped }
