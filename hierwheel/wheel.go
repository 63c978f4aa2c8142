// ============================================================================
// HIERWHEEL: HIERARCHICAL TIMING WHEEL WITH LEVEL-BY-LEVEL CASCADE
// ============================================================================
//
// Solves the single wheel's large-delay problem: instead of one bucket ring
// aliasing multi-revolution timers, delays are bit-sliced across Levels
// wheels of SlotsPerLevel slots. Level 0 resolves single ticks; level l
// resolves runs of SlotsPerLevel^l ticks.
//
//   level 0 covers delays [1, 64)
//   level 1 covers delays [64, 4096)
//   level 2 covers delays [4096, 262144)
//   level 3 covers delays [262144, 16777216)
//
// Cascade semantics (deliberate choice): strict level-by-level on rollover.
// Whenever level l-1 completes a revolution (now ≡ 0 mod 64^l), the level-l
// bucket indexed by now's level-l digit is drained and every timer in it is
// re-placed by its remaining delay — down a level, or straight into the
// level-0 slot that fires this very tick when the remainder is zero. Each
// cascade strictly refines "which coarse window" into "which exact tick",
// so a cascaded timer fires at exactly its absolute expiry, ±0.
//
// Same dispatch discipline as the single wheel: callbacks run inside Tick,
// may Add, must not cancel a sibling in the in-flight level-0 batch.

package hierwheel

import "errors"

// ============================================================================
// CONFIGURATION CONSTANTS
// ============================================================================

const (
	// SlotBits is the digit width; each level resolves 6 more bits.
	SlotBits = 6

	// SlotsPerLevel is the bucket count per level (power of two by
	// construction from SlotBits).
	SlotsPerLevel = 1 << SlotBits

	// Levels is the wheel count; total range is 64^4 = 2^24 ticks.
	Levels = 4

	// MaxTimers bounds concurrently armed timers across all levels.
	MaxTimers = 1024

	// MaxDelay is the largest schedulable delay.
	MaxDelay = 1<<(SlotBits*Levels) - 1

	slotMask = SlotsPerLevel - 1
)

// Handle is an opaque arena index for armed timers.
type Handle uint32

// nilIdx terminates bucket chains and the freelist.
const nilIdx Handle = ^Handle(0)

// Callback is invoked from Tick when a timer fires.
type Callback func(h Handle, arg any)

const (
	stateFree uint8 = iota
	stateActive
	stateFiring
)

var (
	ErrBadHandle  = errors.New("hierwheel: handle out of range")
	ErrNotActive  = errors.New("hierwheel: timer not armed")
	ErrFiring     = errors.New("hierwheel: timer is mid-dispatch in the current tick")
	ErrDelayRange = errors.New("hierwheel: delay exceeds wheel range")
)

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// timer is one arena slot. level/slot record the bucket currently holding
// the node so Cancel can unlink without recomputing placement.
type timer struct {
	expiry uint64
	period uint64 // 0 = one-shot
	cb     Callback
	arg    any
	prev   Handle
	next   Handle
	level  uint8
	slot   uint8
	state  uint8
}

// Wheel is a hierarchical timing wheel. External surface matches the
// single-level wheel: Add, Cancel, Tick.
type Wheel struct {
	arena    [MaxTimers]timer
	buckets  [Levels][SlotsPerLevel]Handle
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
	for l := range w.buckets {
		for s := range w.buckets[l] {
			w.buckets[l][s] = nilIdx
		}
	}
	return w
}

// ============================================================================
// PLACEMENT
// ============================================================================

// levelFor returns the wheel level whose range contains delta (>= 1).
//
//go:nosplit
//go:inline
func levelFor(delta uint64) int {
	for l := 0; l < Levels; l++ {
		if delta < 1<<(SlotBits*(l+1)) {
			return l
		}
	}
	return Levels - 1
}

// place links h into the bucket its expiry demands, given current time.
// A remainder of zero routes to the level-0 slot draining this tick.
//
//go:nosplit
func (w *Wheel) place(h Handle) {
	n := &w.arena[h]
	var l int
	if delta := n.expiry - w.now; delta > 0 {
		l = levelFor(delta)
	}
	s := uint32(n.expiry>>(SlotBits*l)) & slotMask

	n.level = uint8(l)
	n.slot = uint8(s)
	n.prev = nilIdx
	n.next = w.buckets[l][s]
	if n.next != nilIdx {
		w.arena[n.next].prev = h
	}
	w.buckets[l][s] = h
}

// unlink removes h from its recorded bucket chain.
//
//go:nosplit
func (w *Wheel) unlink(h Handle) {
	n := &w.arena[h]
	if n.prev != nilIdx {
		w.arena[n.prev].next = n.next
	} else {
		w.buckets[n.level][n.slot] = n.next
	}
	if n.next != nilIdx {
		w.arena[n.next].prev = n.prev
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
// if period > 0. Returns ErrDelayRange-shaped failure (false) when delay
// or period exceed the wheel's total range, and false on arena exhaustion
// or nil callback. Zero delay clamps to 1.
//
//go:nosplit
func (w *Wheel) Add(delay, period uint64, cb Callback, arg any) (Handle, bool) {
	if cb == nil || delay > MaxDelay || period > MaxDelay {
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
	w.place(h)
	w.active++
	return h, true
}

// Cancel disarms a timer with the same error taxonomy as the single wheel.
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

// cascade drains level l's bucket s, re-placing every timer by its now
// more precisely known remaining delay. No callbacks run here; timers due
// this tick land in the level-0 slot drained immediately after.
func (w *Wheel) cascade(l int, s uint32) {
	head := w.buckets[l][s]
	w.buckets[l][s] = nilIdx
	for h := head; h != nilIdx; {
		next := w.arena[h].next
		w.place(h)
		h = next
	}
}

// Tick advances time by one tick: cascade whichever higher levels just
// crossed a rollover boundary, then drain the level-0 bucket. Returns the
// number of timers fired.
func (w *Wheel) Tick() int {
	w.now++

	// Level l cascades when every lower level completed a revolution.
	for l := 1; l < Levels; l++ {
		if w.now&(1<<(SlotBits*l)-1) != 0 {
			break
		}
		w.cascade(l, uint32(w.now>>(SlotBits*l))&slotMask)
	}

	s := uint32(w.now) & slotMask
	head := w.buckets[0][s]
	w.buckets[0][s] = nilIdx

	for h := head; h != nilIdx; h = w.arena[h].next {
		w.arena[h].state = stateFiring
	}

	fired := 0
	for h := head; h != nilIdx; {
		next := w.arena[h].next
		n := &w.arena[h]

		// Level-0 placement is exact: everything here is due. The guard
		// stays for defence against a corrupted expiry, not as a path.
		if n.expiry <= w.now {
			cb, arg := n.cb, n.arg
			if n.period > 0 {
				n.expiry = w.now + n.period
				n.state = stateActive
				w.place(h)
			} else {
				w.release(h)
			}
			fired++
			cb(h, arg)
		} else {
			n.state = stateActive
			w.place(h)
		}
		h = next
	}
	return fired
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
