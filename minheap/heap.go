// Package minheap is a fixed-capacity array-backed binary heap with a
// composite (key, sequence) ordering. The sequence stamp is assigned at
// Push time and strictly increases, so equal keys pop in insertion order —
// the tie-break is part of the contract, not an accident of sifting.
//
// Storage is allocated once in New; Push against a full heap is rejected,
// never grown. The same machinery serves both orderings: Min pops the
// smallest key first, Max the largest.
package minheap

// entry pairs a priority key with its FIFO stamp and payload.
type entry[T any] struct {
	key int64
	seq uint64
	val T
}

// Heap is a capacity-bounded binary heap over payloads of T.
// The zero value is not usable; construct with New or NewMax.
type Heap[T any] struct {
	items []entry[T]
	size  int
	seq   uint64
	max   bool
}

// New returns a min-ordered heap holding at most capacity elements.
// Panics on a non-positive capacity.
func New[T any](capacity int) *Heap[T] {
	if capacity <= 0 {
		panic("minheap: capacity must be positive")
	}
	return &Heap[T]{items: make([]entry[T], capacity)}
}

// NewMax returns the mirror-image max-ordered heap.
func NewMax[T any](capacity int) *Heap[T] {
	h := New[T](capacity)
	h.max = true
	return h
}

// before reports whether a should surface ahead of b. Equal keys fall back
// to the sequence stamp, ascending, under both orderings: FIFO among ties.
//
//go:nosplit
//go:inline
func (h *Heap[T]) before(a, b *entry[T]) bool {
	if a.key != b.key {
		if h.max {
			return a.key > b.key
		}
		return a.key < b.key
	}
	return a.seq < b.seq
}

// Push inserts val under key, returning false when the heap is full.
// O(log n) via sift-up from the appended leaf.
//
//go:nosplit
func (h *Heap[T]) Push(key int64, val T) bool {
	if h.size == len(h.items) {
		return false
	}
	i := h.size
	h.items[i] = entry[T]{key: key, seq: h.seq, val: val}
	h.seq++
	h.size++
	h.siftUp(i)
	return true
}

// Pop removes and returns the surface element, or (_, _, false) when empty.
// O(log n): the last leaf overwrites the root, then sifts down.
//
//go:nosplit
func (h *Heap[T]) Pop() (int64, T, bool) {
	var zero T
	if h.size == 0 {
		return 0, zero, false
	}
	root := h.items[0]
	h.size--
	if h.size > 0 {
		h.items[0] = h.items[h.size]
		h.siftDown(0)
	}
	h.items[h.size] = entry[T]{} // release payload reference
	return root.key, root.val, true
}

// Peek returns the surface element without removing it.
//
//go:nosplit
//go:inline
func (h *Heap[T]) Peek() (int64, T, bool) {
	var zero T
	if h.size == 0 {
		return 0, zero, false
	}
	return h.items[0].key, h.items[0].val, true
}

// Len returns the current element count.
//
//go:nosplit
//go:inline
func (h *Heap[T]) Len() int { return h.size }

// Cap returns the fixed capacity chosen at construction.
//
//go:nosplit
//go:inline
func (h *Heap[T]) Cap() int { return len(h.items) }

// Empty reports whether no elements are stored.
//
//go:nosplit
//go:inline
func (h *Heap[T]) Empty() bool { return h.size == 0 }

// Full reports whether the next Push would be rejected.
//
//go:nosplit
//go:inline
func (h *Heap[T]) Full() bool { return h.size == len(h.items) }

// siftUp restores heap order after an append at position i.
//
//go:nosplit
func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.before(&h.items[i], &h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// siftDown restores heap order after the root is overwritten.
//
//go:nosplit
func (h *Heap[T]) siftDown(i int) {
	for {
		left := 2*i + 1
		if left >= h.size {
			return
		}
		best := left
		if right := left + 1; right < h.size && h.before(&h.items[right], &h.items[left]) {
			best = right
		}
		if !h.before(&h.items[best], &h.items[i]) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
