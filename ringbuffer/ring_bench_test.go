// ring_bench_test.go
//
// Benchmarks for the counted ring and the SPSC variant:
//   - Write/Read       – counted ring round-trip inside one goroutine
//   - SPSC_PushPop     – SPSC round-trip inside one goroutine
//   - SPSC_CrossCore   – producer & consumer on two goroutines
//
// A fixed-capacity ring (1 Ki slots) keeps every benchmark cache-resident.
// If a path would fail (ring full/empty) the loop performs the opposite
// operation once and retries.

package ringbuffer

import (
	"sync/atomic"
	"testing"
)

const benchCap = 1024 // power-of-two, comfortably cache-resident

var sink uint64 // blocks DCE on Pop payloads

func BenchmarkRing_WriteRead(b *testing.B) {
	r := New[uint64](benchCap)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !r.Write(uint64(i)) {
			v, _ := r.Read()
			sink = v
			r.Write(uint64(i))
		}
		if v, ok := r.Read(); ok {
			sink = v
		}
	}
}

func BenchmarkSPSC_PushPop(b *testing.B) {
	r := NewSPSC[uint64](benchCap)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !r.Push(uint64(i)) {
			v, _ := r.Pop()
			sink = v
			r.Push(uint64(i))
		}
		if v, ok := r.Pop(); ok {
			sink = v
		}
	}
}

func BenchmarkSPSC_CrossCore(b *testing.B) {
	r := NewSPSC[uint64](benchCap)
	var stopFlag atomic.Bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		for !stopFlag.Load() {
			if v, ok := r.Pop(); ok {
				sink = v
			}
		}
		// drain leftovers so the producer never wedges on a full ring
		for {
			if _, ok := r.Pop(); !ok {
				return
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for !r.Push(uint64(i)) {
		}
	}
	b.StopTimer()
	stopFlag.Store(true)
	<-done
}
