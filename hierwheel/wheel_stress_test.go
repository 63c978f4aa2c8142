// Randomized soak over the full delay range against a brute-force model.
package hierwheel

import (
	"testing"

	"golang.org/x/crypto/sha3"
)

type shakeStream struct {
	r sha3.ShakeHash
}

func newShakeStream(seed string) *shakeStream {
	r := sha3.NewShake256()
	r.Write([]byte(seed))
	return &shakeStream{r: r}
}

func (s *shakeStream) next() uint64 {
	var b [8]byte
	s.r.Read(b[:])
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

type refTimer struct {
	expiry uint64
	period uint64
}

func TestHierWheelStressAgainstModel(t *testing.T) {
	const iterations = 300_000
	rng := newShakeStream("hierwheel-stress-v1")

	w := New()
	model := make(map[Handle]refTimer)
	firedThisTick := make(map[Handle]int)

	for i := 0; i < iterations; i++ {
		switch rng.next() % 8 {
		case 0: // Add across all level ranges, biased toward cascade-heavy delays
			var delay uint64
			switch rng.next() % 4 {
			case 0:
				delay = rng.next()%63 + 1
			case 1:
				delay = rng.next()%4032 + 64
			case 2:
				delay = rng.next()%258048 + 4096
			default:
				delay = rng.next()%(MaxDelay-262144) + 262144
			}
			var period uint64
			if rng.next()%5 == 0 {
				period = rng.next()%500 + 1
			}
			h, ok := w.Add(delay, period, func(h Handle, _ any) {
				firedThisTick[h]++
			}, nil)
			if len(model) == MaxTimers {
				if ok {
					t.Fatalf("iter %d: Add succeeded on full arena", i)
				}
				continue
			}
			if !ok {
				t.Fatalf("iter %d: Add failed with %d armed", i, len(model))
			}
			model[h] = refTimer{expiry: w.Now() + delay, period: period}

		case 1: // Cancel
			if len(model) == 0 {
				continue
			}
			var h Handle
			for k := range model {
				h = k
				break
			}
			if err := w.Cancel(h); err != nil {
				t.Fatalf("iter %d: Cancel(%d): %v", i, h, err)
			}
			delete(model, h)

		default: // Tick — weighted heavily to cross cascade boundaries
			clear(firedThisTick)
			fired := w.Tick()
			now := w.Now()

			expect := 0
			for h, rt := range model {
				if rt.expiry == now {
					expect++
					if firedThisTick[h] != 1 {
						t.Fatalf("tick %d: timer %d fired %d times, want 1",
							now, h, firedThisTick[h])
					}
					if rt.period > 0 {
						rt.expiry = now + rt.period
						model[h] = rt
					} else {
						delete(model, h)
					}
				} else if firedThisTick[h] != 0 {
					t.Fatalf("tick %d: timer %d fired at wrong time (expiry %d)",
						now, h, rt.expiry)
				}
			}
			if fired != expect {
				t.Fatalf("tick %d: fired %d, model expects %d", now, fired, expect)
			}
		}

		if w.Active() != len(model) {
			t.Fatalf("iter %d: Active = %d, model says %d", i, w.Active(), len(model))
		}
	}
}

func BenchmarkTickQuiet(b *testing.B) {
	w := New()
	w.Add(MaxDelay, 0, func(Handle, any) {}, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick()
	}
}

func BenchmarkAddLevel2(b *testing.B) {
	w := New()
	cb := func(Handle, any) {}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, _ := w.Add(5000, 0, cb, nil)
		w.Cancel(h)
	}
}
