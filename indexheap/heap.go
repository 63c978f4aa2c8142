// ============================================================================
// INDEXHEAP: FIXED-CAPACITY INDEXED MIN-HEAP WITH DECREASE-KEY
// ============================================================================
//
// Indexheap adds what a plain binary heap cannot offer: O(log n) "find this
// item and change its key" addressed by a stable external handle. A position
// map pos[handle] tracks where each handle currently sits in the heap array
// and is maintained symmetrically on every swap.
//
// Architecture overview:
//   - heap[]: array positions → handles (the binary heap proper)
//   - pos[]:  handles → array positions, npos when absent
//   - keys[]: handles → current priority key
//
// Invariant (tested exhaustively): after any sequence of Insert /
// DecreaseKey / Update / PopMin, pos[h] is either npos or names the array
// slot whose stored handle is exactly h.
//
// Ties on equal keys break by ascending handle so orderings stay
// deterministic under test.

package indexheap

import "errors"

// Handle is a stable external identifier in [0, capacity), decoupled from
// the entry's current heap array position.
type Handle uint32

// npos marks a handle as not present in the heap.
const npos = ^uint32(0)

var (
	ErrBadHandle   = errors.New("indexheap: handle out of range")
	ErrPresent     = errors.New("indexheap: handle already present")
	ErrAbsent      = errors.New("indexheap: handle not present")
	ErrKeyNotLower = errors.New("indexheap: new key does not decrease")
)

// Heap is a fixed-capacity indexed min-heap keyed by int64.
type Heap struct {
	keys []int64  // key per handle, valid only while present
	heap []Handle // position → handle
	pos  []uint32 // handle → position, npos when absent
	size int
}

// New returns a heap addressing handles [0, capacity). Panics on a
// non-positive capacity.
func New(capacity int) *Heap {
	if capacity <= 0 {
		panic("indexheap: capacity must be positive")
	}
	h := &Heap{
		keys: make([]int64, capacity),
		heap: make([]Handle, capacity),
		pos:  make([]uint32, capacity),
	}
	for i := range h.pos {
		h.pos[i] = npos
	}
	return h
}

// less orders positions i, j by (key, handle) ascending.
//
//go:nosplit
//go:inline
func (h *Heap) less(i, j int) bool {
	a, b := h.heap[i], h.heap[j]
	if h.keys[a] != h.keys[b] {
		return h.keys[a] < h.keys[b]
	}
	return a < b
}

// swap exchanges positions i, j and keeps the pos map bijective.
//
//go:nosplit
//go:inline
func (h *Heap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i]] = uint32(i)
	h.pos[h.heap[j]] = uint32(j)
}

// Insert places handle hd with the given key. Fails if hd is out of range
// or already present; the heap itself can never fill before every handle
// is in it, so presence is the only capacity condition.
//
//go:nosplit
func (h *Heap) Insert(hd Handle, key int64) error {
	if int(hd) >= len(h.pos) {
		return ErrBadHandle
	}
	if h.pos[hd] != npos {
		return ErrPresent
	}
	i := h.size
	h.size++
	h.heap[i] = hd
	h.pos[hd] = uint32(i)
	h.keys[hd] = key
	h.siftUp(i)
	return nil
}

// DecreaseKey lowers hd's key, sifting up from its current position.
// This is a DECREASE-only primitive: a key that fails to strictly decrease
// is rejected, not silently applied as an increase.
//
//go:nosplit
func (h *Heap) DecreaseKey(hd Handle, key int64) error {
	if int(hd) >= len(h.pos) {
		return ErrBadHandle
	}
	if h.pos[hd] == npos {
		return ErrAbsent
	}
	if key >= h.keys[hd] {
		return ErrKeyNotLower
	}
	h.keys[hd] = key
	h.siftUp(int(h.pos[hd]))
	return nil
}

// Update rewrites hd's key in either direction, sifting whichever way the
// change demands. For callers that do not know the old key's relation to
// the new one.
//
//go:nosplit
func (h *Heap) Update(hd Handle, key int64) error {
	if int(hd) >= len(h.pos) {
		return ErrBadHandle
	}
	if h.pos[hd] == npos {
		return ErrAbsent
	}
	old := h.keys[hd]
	h.keys[hd] = key
	i := int(h.pos[hd])
	switch {
	case key < old:
		h.siftUp(i)
	case key > old:
		h.siftDown(i)
	}
	return nil
}

// PopMin extracts the minimum (handle, key) pair. The last position swaps
// into the root, both pos entries update, the extracted handle's pos entry
// is invalidated, and the root sifts down.
//
//go:nosplit
func (h *Heap) PopMin() (Handle, int64, bool) {
	if h.size == 0 {
		return Handle(npos), 0, false
	}
	hd := h.heap[0]
	key := h.keys[hd]
	h.size--
	if h.size > 0 {
		h.heap[0] = h.heap[h.size]
		h.pos[h.heap[0]] = 0
		h.siftDown(0)
	}
	h.pos[hd] = npos
	return hd, key, true
}

// Min returns the minimum pair without extraction.
//
//go:nosplit
//go:inline
func (h *Heap) Min() (Handle, int64, bool) {
	if h.size == 0 {
		return Handle(npos), 0, false
	}
	hd := h.heap[0]
	return hd, h.keys[hd], true
}

// Contains reports whether hd is currently in the heap.
//
//go:nosplit
//go:inline
func (h *Heap) Contains(hd Handle) bool {
	return int(hd) < len(h.pos) && h.pos[hd] != npos
}

// KeyOf returns hd's current key, false if absent.
//
//go:nosplit
//go:inline
func (h *Heap) KeyOf(hd Handle) (int64, bool) {
	if !h.Contains(hd) {
		return 0, false
	}
	return h.keys[hd], true
}

// Len returns the number of present handles.
//
//go:nosplit
//go:inline
func (h *Heap) Len() int { return h.size }

// Cap returns the handle-space size chosen at construction.
//
//go:nosplit
//go:inline
func (h *Heap) Cap() int { return len(h.pos) }

// siftUp restores heap order above position i, dragging pos updates along.
//
//go:nosplit
func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

// siftDown restores heap order below position i.
//
//go:nosplit
func (h *Heap) siftDown(i int) {
	for {
		left := 2*i + 1
		if left >= h.size {
			return
		}
		best := left
		if right := left + 1; right < h.size && h.less(right, left) {
			best = right
		}
		if !h.less(best, i) {
			return
		}
		h.swap(i, best)
		i = best
	}
}
