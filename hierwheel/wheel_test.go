package hierwheel

import "testing"

// runUntil ticks the wheel n times, asserting no timer fires before its
// recorded due tick.
func runUntil(t *testing.T, w *Wheel, n uint64) {
	t.Helper()
	for i := uint64(0); i < n; i++ {
		w.Tick()
	}
}

// TestCascadeExactExpiry is the core property of the hierarchical design:
// timers whose delay exceeds the level-0 span fire at exactly their
// absolute expiry tick after cascading, ±0.
func TestCascadeExactExpiry(t *testing.T) {
	delays := []uint64{
		1, 63, // level 0
		64, 100, 4095, // level 1
		4096, 5000, 262143, // level 2
		262144, 300000, // level 3
	}
	for _, delay := range delays {
		w := New()
		var fired []uint64
		if _, ok := w.Add(delay, 0, func(Handle, any) {
			fired = append(fired, w.Now())
		}, nil); !ok {
			t.Fatalf("Add(delay=%d) failed", delay)
		}
		runUntil(t, w, delay)
		if len(fired) != 1 || fired[0] != delay {
			t.Fatalf("delay %d: fired = %v, want [%d]", delay, fired, delay)
		}
		if w.Active() != 0 {
			t.Fatalf("delay %d: Active = %d after firing", delay, w.Active())
		}
	}
}

// TestCascadeFromOffset arms timers from a non-zero, non-aligned start
// tick so cascades land mid-revolution.
func TestCascadeFromOffset(t *testing.T) {
	w := New()
	runUntil(t, w, 777) // arbitrary unaligned start

	const delay = 10_000 // level 2 from here
	due := w.Now() + delay
	var fired []uint64
	w.Add(delay, 0, func(Handle, any) {
		fired = append(fired, w.Now())
	}, nil)

	runUntil(t, w, delay)
	if len(fired) != 1 || fired[0] != due {
		t.Fatalf("fired = %v, want [%d]", fired, due)
	}
}

func TestNeverEarly(t *testing.T) {
	const delay = 4100
	w := New()
	fired := false
	w.Add(delay, 0, func(Handle, any) { fired = true }, nil)
	for i := uint64(1); i < delay; i++ {
		w.Tick()
		if fired {
			t.Fatalf("fired early at tick %d, due %d", w.Now(), delay)
		}
	}
	w.Tick()
	if !fired {
		t.Fatalf("did not fire at due tick %d", delay)
	}
}

// TestPeriodicAcrossLevels uses a period wider than the level-0 span, so
// every re-arm goes through at least one cascade.
func TestPeriodicAcrossLevels(t *testing.T) {
	const period = 100
	w := New()
	var fires []uint64
	h, _ := w.Add(period, period, func(Handle, any) {
		fires = append(fires, w.Now())
	}, nil)

	runUntil(t, w, 3*period)
	want := []uint64{period, 2 * period, 3 * period}
	if len(fires) != len(want) {
		t.Fatalf("fires = %v, want %v", fires, want)
	}
	for i := range want {
		if fires[i] != want[i] {
			t.Fatalf("fire #%d at %d, want %d", i, fires[i], want[i])
		}
	}

	if err := w.Cancel(h); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	runUntil(t, w, 2*period)
	if len(fires) != 3 {
		t.Fatalf("fired %d times after cancel, want 3", len(fires))
	}
}

func TestCancelWhileParkedHigh(t *testing.T) {
	w := New()
	h, _ := w.Add(50_000, 0, func(Handle, any) {}, nil) // parked at level 2

	runUntil(t, w, 6000) // past at least one cascade boundary
	if err := w.Cancel(h); err != nil {
		t.Fatalf("Cancel after cascade: %v", err)
	}
	if err := w.Cancel(h); err != ErrNotActive {
		t.Fatalf("double Cancel = %v, want ErrNotActive", err)
	}
	runUntil(t, w, 60_000)
	if w.Active() != 0 {
		t.Fatalf("Active = %d after cancel", w.Active())
	}
}

func TestDelayRangeRejected(t *testing.T) {
	w := New()
	if _, ok := w.Add(MaxDelay+1, 0, func(Handle, any) {}, nil); ok {
		t.Fatal("Add accepted delay beyond wheel range")
	}
	if _, ok := w.Add(10, MaxDelay+1, func(Handle, any) {}, nil); ok {
		t.Fatal("Add accepted period beyond wheel range")
	}
	if _, ok := w.Add(MaxDelay, 0, func(Handle, any) {}, nil); !ok {
		t.Fatal("Add rejected maximum in-range delay")
	}
}

func TestArenaExhaustion(t *testing.T) {
	w := New()
	for i := 0; i < MaxTimers; i++ {
		if _, ok := w.Add(1000, 0, func(Handle, any) {}, nil); !ok {
			t.Fatalf("Add %d failed below MaxTimers", i)
		}
	}
	if _, ok := w.Add(1000, 0, func(Handle, any) {}, nil); ok {
		t.Fatal("Add succeeded past MaxTimers")
	}
}

// TestManyTimersSameExpiry checks a whole cohort cascades and fires
// together at the right tick.
func TestManyTimersSameExpiry(t *testing.T) {
	const delay = 4096 // exactly one level-2 span
	w := New()
	fired := 0
	for i := 0; i < 100; i++ {
		w.Add(delay, 0, func(Handle, any) { fired++ }, nil)
	}
	runUntil(t, w, delay-1)
	if fired != 0 {
		t.Fatalf("%d fired before due tick", fired)
	}
	if n := w.Tick(); n != 100 {
		t.Fatalf("Tick fired %d, want 100", n)
	}
}

func TestReentrantAddFromCallback(t *testing.T) {
	w := New()
	var fires []uint64
	w.Add(70, 0, func(Handle, any) {
		fires = append(fires, w.Now())
		w.Add(70, 0, func(Handle, any) {
			fires = append(fires, w.Now())
		}, nil)
	}, nil)

	runUntil(t, w, 140)
	if len(fires) != 2 || fires[0] != 70 || fires[1] != 140 {
		t.Fatalf("fires = %v, want [70 140]", fires)
	}
}
