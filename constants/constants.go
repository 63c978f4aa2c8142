// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Harness-wide tunables for the soak driver
//
// Purpose:
//   - Defines the knobs shared by the root soak harness: tick pacing, trace
//     batching, and scenario table limits.
//   - Per-structure capacities (wheel sizes, arena depths, heap capacities)
//     live with their owning packages; only cross-package glue belongs here.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Tick Pacing ──────────────────────────────

const (
	// DefaultTickHz is the simulated tick frequency used by the soak
	// harness when the scenario file does not pin one. 1 kHz matches the
	// usual SysTick configuration the structures are modeled around.
	DefaultTickHz = 1000

	// DefaultSoakTicks bounds a soak run when the scenario omits a
	// duration. Large enough to force several full wheel revolutions and
	// at least one full hierarchical cascade at every level below 2.
	DefaultSoakTicks = 1 << 20
)

// ───────────────────────────── Trace Recording ──────────────────────────

const (
	// TraceBatchSize is the number of dispatch records accumulated inside
	// one sqlite transaction before an implicit flush. Batching keeps the
	// writer off the per-tick path; 512 rows keeps the journal small while
	// amortizing fsync cost to noise.
	TraceBatchSize = 512

	// TraceRingBits sizes the SPSC hand-off ring between the tick loop
	// (producer) and the pinned trace consumer: 2^12 = 4096 slots.
	// A full ring drops the record and bumps a counter rather than ever
	// stalling the producer.
	TraceRingBits = 12

	// DefaultTracePath is where the soak harness writes its dispatch
	// trace when the scenario file does not name one.
	DefaultTracePath = "staticsched_trace.db"
)

// ───────────────────────────── Scenario Limits ──────────────────────────

const (
	// MaxScenarioTimers caps how many timer definitions a scenario file
	// may carry. Sized to the timer arenas so a valid scenario can never
	// exhaust a wheel at load time.
	MaxScenarioTimers = 1024

	// MaxScenarioTasks caps the task definitions per scenario, matching
	// the task-slot table depth.
	MaxScenarioTasks = 256
)

// ───────────────────────────── Consumer Pinning ─────────────────────────

const (
	// TraceConsumerCore is the logical CPU the trace consumer thread is
	// pinned to. Core 1 keeps it off the boot CPU where the tick loop and
	// signal handling usually land.
	TraceConsumerCore = 1
)
