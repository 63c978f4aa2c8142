// ============================================================================
// TIMERWHEEL: SINGLE-LEVEL TICK WHEEL FOR SHORT-RANGE TIMEOUTS
// ============================================================================
//
// A fixed arena of timer nodes bucketed by `expiry mod WheelSize`, with a
// doubly-linked LIFO chain per bucket threaded through the arena. Add and
// Cancel are O(1); Tick is O(1) amortized — each tick drains exactly one
// bucket.
//
// Architecture overview:
//   - arena:    [MaxTimers]timer, intrusive prev/next links, freelist reuse
//   - buckets:  [WheelSize]Handle chain heads
//   - occupied: per-bucket bitmap for the NextAfter idle-skip scan
//
// Wraparound aliasing: the bucket index is expiry modulo WheelSize while the
// true expiry is an unbounded counter, so a timer whose delay exceeds
// WheelSize lands in a bucket that comes up before it is due. Tick detects
// this (expiry > now) and re-inserts the node into the **same** bucket
// unchanged; it fires on a later revolution. This is a documented precision
// boundary of the single-level design — the hierarchical wheel exists to
// remove it.
//
// Dispatch model: single logical driver. Callbacks run inside Tick and must
// not block. A callback may Add a new timer (it only touches the freelist
// and a bucket that is not the detached batch); cancelling a sibling that
// sits in the same in-flight batch is refused with ErrFiring rather than
// corrupting the chain.

package timerwheel

import (
	"errors"
	"math/bits"
)

// ============================================================================
// CONFIGURATION CONSTANTS
// ============================================================================

const (
	// WheelSize is the bucket count; power of two so the modulo is a mask.
	WheelSize = 256

	// MaxTimers bounds concurrently armed timers across all buckets.
	MaxTimers = 1024

	wheelMask = WheelSize - 1
	wordCount = WheelSize / 64
)

// Compile-time guards: mask arithmetic and the bitmap layout both require
// these divisibility properties.
var _ [-int(WheelSize & (WheelSize - 1))]byte
var _ [-int(WheelSize % 64)]byte
var _ [-int(wordCount & (wordCount - 1))]byte

// Handle is an opaque arena index for armed timers.
type Handle uint32

// nilIdx terminates bucket chains and the freelist.
const nilIdx Handle = ^Handle(0)

// Callback is invoked from Tick when a timer fires. It must not block and
// must not Cancel a timer that is firing in the same tick batch.
type Callback func(h Handle, arg any)

// Timer lifecycle states.
const (
	stateFree   uint8 = iota
	stateActive       // linked into a bucket
	stateFiring       // detached into the current tick batch
)

var (
	ErrBadHandle = errors.New("timerwheel: handle out of range")
	ErrNotActive = errors.New("timerwheel: timer not armed")
	ErrFiring    = errors.New("timerwheel: timer is mid-dispatch in the current tick")
)

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// timer is one arena slot: scheduling state plus intrusive chain links.
// bucket records which chain currently holds the node — after an aliasing
// re-insert this is NOT derivable from expiry, so it must be stored.
type timer struct {
	expiry uint64
	period uint64 // 0 = one-shot
	cb     Callback
	arg    any
	prev   Handle
	next   Handle
	bucket uint32
	state  uint8
}

// Wheel is a single-level timing wheel. All storage is fixed at New; the
// tick path never allocates.
type Wheel struct {
	arena    [MaxTimers]timer
	buckets  [WheelSize]Handle
	occupied [wordCount]uint64 // bit per non-empty bucket
	freeHead Handle
	now      uint64
	active   int
}

// ============================================================================
// CONSTRUCTOR
// ============================================================================

// New returns a wheel at tick 0 with every arena slot on the freelist.
func New() *Wheel {
	w := &Wheel{}
	for i := 0; i < MaxTimers-1; i++ {
		w.arena[i].next = Handle(i + 1)
	}
	w.arena[MaxTimers-1].next = nilIdx
	for i := range w.buckets {
		w.buckets[i] = nilIdx
	}
	return w
}

// ============================================================================
// INTERNAL CHAIN OPERATIONS
// ============================================================================

// link inserts h at the head of bucket b and marks the bucket occupied.
//
//go:nosplit
func (w *Wheel) link(h Handle, b uint32) {
	n := &w.arena[h]
	n.bucket = b
	n.prev = nilIdx
	n.next = w.buckets[b]
	if n.next != nilIdx {
		w.arena[n.next].prev = h
	}
	w.buckets[b] = h
	w.occupied[b>>6] |= 1 << (b & 63)
}

// unlink removes h from its current bucket chain, clearing the occupancy
// bit when the bucket empties.
//
//go:nosplit
func (w *Wheel) unlink(h Handle) {
	n := &w.arena[h]
	b := n.bucket
	if n.prev != nilIdx {
		w.arena[n.prev].next = n.next
	} else {
		w.buckets[b] = n.next
	}
	if n.next != nilIdx {
		w.arena[n.next].prev = n.prev
	}
	if w.buckets[b] == nilIdx {
		w.occupied[b>>6] &^= 1 << (b & 63)
	}
}

// release returns h to the freelist and drops callback references.
//
//go:nosplit
func (w *Wheel) release(h Handle) {
	n := &w.arena[h]
	n.cb = nil
	n.arg = nil
	n.prev = nilIdx
	n.next = w.freeHead
	n.state = stateFree
	w.freeHead = h
	w.active--
}

// ============================================================================
// PUBLIC API
// ============================================================================

// Add arms a timer firing after delay ticks, re-arming every period ticks
// if period > 0. Returns (handle, true), or (_, false) when the arena is
// exhausted or cb is nil. A zero delay is clamped to 1: the current bucket
// has already been processed, so "now" can only mean "next tick".
//
//go:nosplit
func (w *Wheel) Add(delay, period uint64, cb Callback, arg any) (Handle, bool) {
	if cb == nil {
		return nilIdx, false
	}
	h := w.freeHead
	if h == nilIdx {
		return nilIdx, false
	}
	w.freeHead = w.arena[h].next

	if delay == 0 {
		delay = 1
	}
	n := &w.arena[h]
	n.expiry = w.now + delay
	n.period = period
	n.cb = cb
	n.arg = arg
	n.state = stateActive
	w.link(h, uint32(n.expiry&wheelMask))
	w.active++
	return h, true
}

// Cancel disarms a timer. Errors distinguish misuse: out-of-range handles,
// already-inactive timers (including double-cancel), and timers detached
// into the tick batch currently being dispatched.
//
//go:nosplit
func (w *Wheel) Cancel(h Handle) error {
	if int(h) >= MaxTimers {
		return ErrBadHandle
	}
	switch w.arena[h].state {
	case stateFree:
		return ErrNotActive
	case stateFiring:
		return ErrFiring
	}
	w.unlink(h)
	w.release(h)
	return nil
}

// Tick advances time by one tick and drains the corresponding bucket.
// Returns the number of timers fired.
//
// The bucket chain is detached wholesale before any callback runs, so
// callbacks observe a consistent wheel: re-entrant Add lands in live
// buckets, never the batch under iteration.
func (w *Wheel) Tick() int {
	w.now++
	b := uint32(w.now & wheelMask)

	head := w.buckets[b]
	w.buckets[b] = nilIdx
	w.occupied[b>>6] &^= 1 << (b & 63)

	// Mark the detached batch so Cancel can refuse to touch it mid-flight.
	for h := head; h != nilIdx; h = w.arena[h].next {
		w.arena[h].state = stateFiring
	}

	fired := 0
	for h := head; h != nilIdx; {
		next := w.arena[h].next
		n := &w.arena[h]

		if n.expiry <= w.now {
			cb, arg := n.cb, n.arg
			if n.period > 0 {
				// Periodic: recompute and re-insert before dispatch so the
				// callback can Cancel its own next occurrence.
				n.expiry = w.now + n.period
				n.state = stateActive
				w.link(h, uint32(n.expiry&wheelMask))
			} else {
				w.release(h)
			}
			fired++
			cb(h, arg)
		} else {
			// Wraparound alias: due in a later revolution. Same bucket,
			// unchanged expiry.
			n.state = stateActive
			w.link(h, b)
		}
		h = next
	}
	return fired
}

// NextAfter returns how many ticks from now until the first occupied
// bucket comes up, and false when nothing is armed. Because of wraparound
// aliasing the result is a lower bound on the next actual firing — a
// multi-revolution timer occupies its bucket early — but it never
// overshoots, which is the safe direction for tickless idle.
//
//go:nosplit
func (w *Wheel) NextAfter() (uint64, bool) {
	if w.active == 0 {
		return 0, false
	}
	start := uint32((w.now + 1) & wheelMask)
	for i := 0; i <= wordCount; i++ {
		wi := (int(start>>6) + i) & (wordCount - 1)
		word := w.occupied[wi]
		if i == 0 {
			word &= ^uint64(0) << (start & 63)
		} else if i == wordCount {
			word &= (1 << (start & 63)) - 1
		}
		if word == 0 {
			continue
		}
		slot := uint32(wi<<6) | uint32(bits.TrailingZeros64(word))
		delta := (slot - start) & wheelMask
		return uint64(delta) + 1, true
	}
	return 0, false
}

// Now returns the current tick counter.
//
//go:nosplit
//go:inline
func (w *Wheel) Now() uint64 { return w.now }

// Active returns the number of currently armed timers.
//
//go:nosplit
//go:inline
func (w *Wheel) Active() int { return w.active }
