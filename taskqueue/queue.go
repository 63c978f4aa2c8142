// Package taskqueue layers priority dispatch on top of the heap family:
// a fixed task-slot table (fixedpool) plus a binary heap of
// (priority, slot) pairs. Lower priority value runs first; equal
// priorities run in submission order via the heap's sequence tie-break.
//
// Task identifiers pack a per-slot reuse stamp next to the slot index, so
// a stale TaskID held across slot reuse is detected instead of cancelling
// or running somebody else's task. Cancellation leaves its heap entry
// behind as a tombstone; RunOne and a rare compaction sweep discard
// tombstones lazily.
package taskqueue

import (
	"errors"

	"github.com/ypradera/staticsched/fixedpool"
	"github.com/ypradera/staticsched/minheap"
)

// TaskID names a pending task: reuse stamp in the high half, slot index in
// the low half.
type TaskID uint32

// TaskFunc is invoked by RunOne. Same discipline as timer callbacks: no
// blocking, no re-entrant mutation of this queue beyond Add.
type TaskFunc func(id TaskID, arg any)

var (
	ErrBadID      = errors.New("taskqueue: task id out of range")
	ErrNotPending = errors.New("taskqueue: task not pending")
)

// task is one slot-table entry.
type task struct {
	fn  TaskFunc
	arg any
}

// hentry is the heap payload: which slot, under which stamp.
type hentry struct {
	slot  fixedpool.Handle
	stamp uint16
}

// Queue is a fixed-capacity priority task queue.
type Queue struct {
	slots  *fixedpool.Pool[task]
	pq     *minheap.Heap[hentry]
	stamps []uint16 // per-slot reuse stamps, bumped on every release

	// compaction scratch, allocated once
	scratchK []int64
	scratchE []hentry
}

// New returns a queue holding at most capacity pending tasks. Capacity is
// limited to 65535 by the TaskID packing; panics beyond that or at zero.
func New(capacity int) *Queue {
	if capacity <= 0 || capacity > 0xffff {
		panic("taskqueue: capacity must be in [1, 65535]")
	}
	return &Queue{
		slots:    fixedpool.New[task](capacity),
		pq:       minheap.New[hentry](capacity),
		stamps:   make([]uint16, capacity),
		scratchK: make([]int64, capacity),
		scratchE: make([]hentry, capacity),
	}
}

func makeID(stamp uint16, slot fixedpool.Handle) TaskID {
	return TaskID(uint32(stamp)<<16 | uint32(slot)&0xffff)
}

// live reports whether a heap entry still names a pending task.
//
//go:nosplit
//go:inline
func (q *Queue) live(e hentry) bool {
	return q.slots.Live(e.slot) && q.stamps[e.slot] == e.stamp
}

// compact rebuilds the heap keeping only live entries. Only reachable
// when cancellations have tombstoned enough heap capacity to block an
// Add; O(n log n), and the queue is small by construction.
func (q *Queue) compact() {
	n := 0
	for {
		k, e, ok := q.pq.Pop()
		if !ok {
			break
		}
		if q.live(e) {
			q.scratchK[n], q.scratchE[n] = k, e
			n++
		}
	}
	// Pops surface in dispatch order, so re-pushing in that order hands
	// out fresh sequence stamps that preserve FIFO among equal keys.
	for i := 0; i < n; i++ {
		q.pq.Push(q.scratchK[i], q.scratchE[i])
	}
}

// Add schedules fn under the given priority. Returns (id, true), or
// (_, false) when the slot table is exhausted.
func (q *Queue) Add(priority int64, fn TaskFunc, arg any) (TaskID, bool) {
	if fn == nil {
		return 0, false
	}
	slot, ok := q.slots.Alloc()
	if !ok {
		return 0, false
	}
	*q.slots.Get(slot) = task{fn: fn, arg: arg}
	e := hentry{slot: slot, stamp: q.stamps[slot]}
	if !q.pq.Push(priority, e) {
		q.compact()
		q.pq.Push(priority, e) // cannot fail: live entries ≤ slot capacity
	}
	return makeID(e.stamp, slot), true
}

// Cancel withdraws a pending task. The heap tombstone is left for lazy
// removal; the slot frees immediately.
func (q *Queue) Cancel(id TaskID) error {
	slot := fixedpool.Handle(uint32(id) & 0xffff)
	stamp := uint16(uint32(id) >> 16)
	if int(slot) >= q.slots.Capacity() {
		return ErrBadID
	}
	if !q.slots.Live(slot) || q.stamps[slot] != stamp {
		return ErrNotPending
	}
	q.stamps[slot]++
	_ = q.slots.Free(slot)
	return nil
}

// RunOne pops and invokes the highest-priority pending task. Returns
// false when nothing is pending. The slot frees before the callback runs,
// so a task may re-Add even from a full-at-dispatch queue.
func (q *Queue) RunOne() bool {
	for {
		_, e, ok := q.pq.Pop()
		if !ok {
			return false
		}
		if !q.live(e) {
			continue // cancellation tombstone
		}
		t := q.slots.Get(e.slot)
		fn, arg := t.fn, t.arg
		id := makeID(e.stamp, e.slot)
		q.stamps[e.slot]++
		_ = q.slots.Free(e.slot)
		fn(id, arg)
		return true
	}
}

// Pending returns the number of live (not cancelled, not yet run) tasks.
//
//go:nosplit
//go:inline
func (q *Queue) Pending() int {
	return q.slots.Capacity() - q.slots.Available()
}

// Cap returns the fixed task capacity.
//
//go:nosplit
//go:inline
func (q *Queue) Cap() int { return q.slots.Capacity() }
