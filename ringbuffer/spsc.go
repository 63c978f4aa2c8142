// spsc.go
//
// Lock-free single-producer/single-consumer ring tuned for low hand-off
// latency. The structure deliberately separates producer and consumer
// fields with full cache-lines to eliminate false-sharing, and each slot
// carries a sequence number so Push/Pop can be wait-free without
// additional atomics.
//
// This is the cross-thread half of the ISR discipline: the producer side
// does only the O(1) slot publish, and all heavier processing happens on
// the consumer thread (see PinnedConsumer).

package ringbuffer

// spscSlot couples a payload with its sequence stamp.
type spscSlot[T any] struct {
	seq uint64 // position in the sequence space
	val T      // user payload
}

// SPSC is a fixed-capacity circular buffer dedicated to one producer and
// one consumer.
type SPSC[T any] struct {
	_    [64]byte // producer head isolated on its own cache-line
	head uint64
	//lint:ignore U1000 padding to keep head & tail on different cache-lines
	_pad1 [64]byte
	tail  uint64
	//lint:ignore U1000 padding to keep hot fields from colliding with metadata
	_pad2 [64]byte
	mask  uint64
	buf   []spscSlot[T]
	drops uint64 // producer-side count of rejected pushes
}

// NewSPSC allocates a ring whose size must be a power-of-two; otherwise it
// panics so that the bit-masking arithmetic stays valid.
func NewSPSC[T any](size int) *SPSC[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("ringbuffer: size must be >0 and a power of two")
	}
	r := &SPSC[T]{
		mask: uint64(size - 1),
		buf:  make([]spscSlot[T], size),
	}
	for i := range r.buf {
		r.buf[i].seq = uint64(i)
	}
	return r
}

// Push enqueues v, returning false if the buffer is full. A rejected push
// increments the producer-side drop counter; the producer must never block.
//
//go:nosplit
func (r *SPSC[T]) Push(v T) bool {
	t := r.tail
	s := &r.buf[t&r.mask]
	if loadAcquireUint64(&s.seq) != t {
		r.drops++
		return false // consumer has not yet reclaimed the slot
	}
	s.val = v
	storeReleaseUint64(&s.seq, t+1)
	r.tail = t + 1
	return true
}

// Pop dequeues one element, or returns (_, false) if the buffer is empty.
//
//go:nosplit
func (r *SPSC[T]) Pop() (T, bool) {
	var zero T
	h := r.head
	s := &r.buf[h&r.mask]
	if loadAcquireUint64(&s.seq) != h+1 {
		return zero, false // producer has not yet published to the slot
	}
	v := s.val
	s.val = zero
	storeReleaseUint64(&s.seq, h+uint64(len(r.buf)))
	r.head = h + 1
	return v, true
}

// PopWait busy-spins until an item becomes available.
//
//go:nosplit
func (r *SPSC[T]) PopWait() T {
	for {
		if v, ok := r.Pop(); ok {
			return v
		}
		cpuRelax()
	}
}

// Drops returns the producer-side count of rejected pushes. Producer-owned;
// only meaningful when read from the producer thread or after shutdown.
//
//go:nosplit
//go:inline
func (r *SPSC[T]) Drops() uint64 { return r.drops }
