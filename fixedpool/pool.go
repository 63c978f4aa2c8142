// Package fixedpool is a fixed-capacity slot allocator with an intrusive
// freelist. Alloc and Free are O(1); handles are plain indices into a flat
// arena, never pointers. Capacity is fixed at construction — there is no
// resize, no defragmentation, and no backing heap after New returns.
//
// Free slots are chained through the pool's own link array, so the freelist
// costs zero memory beyond the per-slot link word. LIFO reuse keeps freshly
// released slots cache-hot for the next Alloc.
package fixedpool

import "errors"

// Handle is an opaque arena index for pool slots.
type Handle uint32

// nilIdx terminates the freelist chain.
const nilIdx Handle = ^Handle(0)

// Slot lifecycle states. A state byte per slot is what makes double-free
// detection possible without walking the freelist.
const (
	slotFree uint8 = iota
	slotLive
)

var (
	ErrBadHandle  = errors.New("fixedpool: handle out of range")
	ErrDoubleFree = errors.New("fixedpool: slot already free")
)

// Pool hands out slots of T from a flat arena. All storage is allocated
// once in New; steady-state operation never touches the Go heap.
type Pool[T any] struct {
	slots    []T
	next     []Handle // freelist links, threaded through free slots
	state    []uint8  // slotFree / slotLive, guards Free misuse
	freeHead Handle
	avail    int
}

// New builds a pool of capacity slots with every slot on the freelist.
// Panics on a non-positive capacity; a pool that can never allocate is a
// build-time configuration bug, not a runtime condition.
func New[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		panic("fixedpool: capacity must be positive")
	}
	p := &Pool[T]{
		slots:    make([]T, capacity),
		next:     make([]Handle, capacity),
		state:    make([]uint8, capacity),
		freeHead: 0,
		avail:    capacity,
	}
	for i := 0; i < capacity-1; i++ {
		p.next[i] = Handle(i + 1)
	}
	p.next[capacity-1] = nilIdx
	return p
}

// Alloc pops the freelist head. Returns (handle, true) on success and
// (_, false) when the pool is exhausted — callers must handle exhaustion;
// there is no fallback allocation path.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Alloc() (Handle, bool) {
	h := p.freeHead
	if h == nilIdx {
		return nilIdx, false
	}
	p.freeHead = p.next[h]
	p.next[h] = nilIdx
	p.state[h] = slotLive
	p.avail--
	return h, true
}

// Free pushes a slot back onto the freelist head. Rejects out-of-range
// handles and double-frees with distinct errors instead of corrupting the
// chain — a poisoned freelist is the worst failure mode this structure has.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Free(h Handle) error {
	if int(h) >= len(p.slots) {
		return ErrBadHandle
	}
	if p.state[h] != slotLive {
		return ErrDoubleFree
	}
	var zero T
	p.slots[h] = zero // drop payload references so the GC can reclaim them
	p.state[h] = slotFree
	p.next[h] = p.freeHead
	p.freeHead = h
	p.avail++
	return nil
}

// Get returns the slot storage for a live handle, or nil for an invalid or
// free one. The pointer is stable for the lifetime of the allocation.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Get(h Handle) *T {
	if int(h) >= len(p.slots) || p.state[h] != slotLive {
		return nil
	}
	return &p.slots[h]
}

// Live reports whether h currently references an allocated slot.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Live(h Handle) bool {
	return int(h) < len(p.slots) && p.state[h] == slotLive
}

// Available returns the number of slots currently on the freelist.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Available() int {
	return p.avail
}

// Capacity returns the fixed slot count chosen at construction.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Capacity() int {
	return len(p.slots)
}
