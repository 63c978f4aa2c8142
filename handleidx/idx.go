// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ HANDLE INDEX — ROBIN HOOD OPEN-ADDRESSING MAP
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Fixed-Capacity uint32 → uint32 Index
//
// Description:
//   Zero-allocation hash index mapping external identifiers (scenario timer
//   ids) to structure handles. Robin Hood displacement keeps worst-case probe
//   chains short and deterministic; parallel key/value arrays keep lookups on
//   one cache line per probe.
//
// Design principles:
//   - Power-of-2 table sized with 2× headroom at construction, never resized
//   - Key 0 is the reserved empty sentinel; callers use ids ≥ 1
//   - Keys are avalanche-mixed before probing so sequential ids spread out
//   - Single-threaded by contract, like every structure in this module
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package handleidx

import "github.com/ypradera/staticsched/utils"

// Index is a fixed-capacity Robin Hood hash map for single-threaded use.
type Index struct {
	keys []uint32 // stored keys (0 = empty sentinel)
	vals []uint32 // values parallel to keys
	mask uint32   // size-1, for mask-based modulo
	used int
}

// nextPow2 rounds n up to the nearest power of two.
func nextPow2(n int) uint32 {
	s := uint32(1)
	for s < uint32(n) {
		s <<= 1
	}
	return s
}

// New creates an index able to hold capacity entries at ≤50% load. The 2×
// sizing keeps probe chains short for the whole advertised capacity.
func New(capacity int) *Index {
	if capacity <= 0 {
		panic("handleidx: capacity must be positive")
	}
	sz := nextPow2(capacity * 2)
	return &Index{
		keys: make([]uint32, sz),
		vals: make([]uint32, sz),
		mask: sz - 1,
	}
}

// home is a key's ideal probe position.
//
//go:nosplit
//go:inline
func (x *Index) home(key uint32) uint32 {
	return utils.Mix32(key) & x.mask
}

// probeDist is how far position i sits from key's home, circularly.
//
//go:nosplit
//go:inline
func (x *Index) probeDist(key, i uint32) uint32 {
	return (i + x.mask + 1 - x.home(key)) & x.mask
}

// Put inserts key → val, or returns the existing value if key is already
// present (first write wins, matching handle registration semantics).
// Key 0 is reserved and must not be used.
//
//go:nosplit
func (x *Index) Put(key, val uint32) uint32 {
	i := x.home(key)
	dist := uint32(0)

	for {
		k := x.keys[i]
		if k == 0 {
			x.keys[i], x.vals[i] = key, val
			x.used++
			return val
		}
		if k == key {
			return x.vals[i]
		}
		// Robin Hood: displace the resident if it sits closer to home
		// than we currently are, then keep walking with its burden.
		if kd := x.probeDist(k, i); kd < dist {
			key, x.keys[i] = x.keys[i], key
			val, x.vals[i] = x.vals[i], val
			dist = kd
		}
		i = (i + 1) & x.mask
		dist++
	}
}

// Get retrieves the value for key. The Robin Hood invariant allows early
// termination: passing a resident closer to home than our probe distance
// proves key is absent.
//
//go:nosplit
func (x *Index) Get(key uint32) (uint32, bool) {
	i := x.home(key)
	dist := uint32(0)

	for {
		k := x.keys[i]
		if k == 0 {
			return 0, false
		}
		if k == key {
			return x.vals[i], true
		}
		if x.probeDist(k, i) < dist {
			return 0, false
		}
		i = (i + 1) & x.mask
		dist++
	}
}

// Len returns the number of stored entries.
//
//go:nosplit
//go:inline
func (x *Index) Len() int { return x.used }
