// ring.go
//
// Fixed-capacity circular FIFO with explicit overflow accounting. This is
// the single-context variant: one logical driver performs all mutations
// (main loop, or an ISR with interrupts already masked). For cross-thread
// hand-off use SPSC in this package instead.
//
// A write against a full ring is non-fatal data loss: the producer cannot
// block, so the item is dropped and a sticky overflow flag records that it
// happened. The flag stays set until the consumer explicitly clears it —
// loss must be visible, not silently absorbed.

package ringbuffer

// Ring is a counted power-of-two circular buffer over elements of T.
type Ring[T any] struct {
	buf      []T
	mask     uint32
	head     uint32 // read cursor
	tail     uint32 // write cursor
	count    int
	overflow bool
}

// New allocates a ring whose size must be a power-of-two; otherwise it
// panics so that the bit-masking arithmetic stays valid.
func New[T any](size int) *Ring[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("ringbuffer: size must be >0 and a power of two")
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint32(size - 1),
	}
}

// Write enqueues v, returning false (and latching the overflow flag) if the
// ring is full. The readable contents are untouched on rejection.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Write(v T) bool {
	if r.count == len(r.buf) {
		r.overflow = true
		return false
	}
	r.buf[r.tail&r.mask] = v
	r.tail++
	r.count++
	return true
}

// Read dequeues the oldest element, or returns (_, false) when empty.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Read() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.buf[r.head&r.mask]
	r.buf[r.head&r.mask] = zero // no stale payload references
	r.head++
	r.count--
	return v, true
}

// Peek returns the oldest element without consuming it.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Peek() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.buf[r.head&r.mask], true
}

// Len returns the number of buffered elements.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the fixed capacity.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Empty reports whether no elements are buffered.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Empty() bool { return r.count == 0 }

// Full reports whether the next Write would be rejected.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Full() bool { return r.count == len(r.buf) }

// Overflowed reports whether any Write has been rejected since the last
// ClearOverflow. Sticky by design: one dropped item anywhere in a burst
// must remain observable after the burst drains.
//
//go:nosplit
//go:inline
func (r *Ring[T]) Overflowed() bool { return r.overflow }

// ClearOverflow rearms overflow detection. Only the consumer should call
// this, after it has acted on the loss.
//
//go:nosplit
//go:inline
func (r *Ring[T]) ClearOverflow() { r.overflow = false }
