// control.go — Global control flags and activity management for the dispatch loop
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control provides lightweight global signaling infrastructure for
// coordinating activity states and graceful shutdown between the tick loop
// and the pinned trace consumer.
//
// Architecture overview:
//   • Global hot/stop flags for lock-free inter-thread communication
//   • Nanosecond-precision activity tracking with automatic cooldown
//   • Zero-allocation flag access for hot path performance
//
// Threading model:
//   • The tick loop signals activity via SignalActivity() whenever it
//     publishes a dispatch record
//   • The pinned consumer polls flags via Flags() for spin-mode selection
//   • Automatic cooldown prevents unnecessary hot spinning once the
//     scenario drains
//   • Shutdown() broadcasts termination; consumers exit on observation

package control

import (
	"sync/atomic"
	"time"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// Global coordination flags - polled by the pinned consumer
	hot  uint32 // Activity indicator: 1 = tick loop actively dispatching
	stop uint32 // Shutdown signal: 1 = initiate graceful shutdown

	// Activity timing for automatic cooldown management
	lastHot    atomic.Int64             // Nanosecond timestamp of last dispatch activity
	cooldownNs = int64(1 * time.Second) // Idle period before dropping out of hot mode
)

// ============================================================================
// ACTIVITY SIGNALING
// ============================================================================

// SignalActivity marks the system as active and records precise timing for
// automatic cooldown management. Called by the tick loop each time it hands
// a record to the trace ring.
//
//go:nosplit
//go:inline
func SignalActivity() {
	atomic.StoreUint32(&hot, 1)
	lastHot.Store(time.Now().UnixNano())
}

// ============================================================================
// COOLDOWN MANAGEMENT
// ============================================================================

// PollCooldown clears the hot flag once no activity has been signaled for
// the cooldown window. Intended to be called inline from spin loops.
//
//go:nosplit
//go:inline
func PollCooldown() {
	if atomic.LoadUint32(&hot) == 1 && time.Now().UnixNano()-lastHot.Load() > cooldownNs {
		atomic.StoreUint32(&hot, 0)
	}
}

// ============================================================================
// SYSTEM SHUTDOWN
// ============================================================================

// Shutdown initiates graceful termination by setting the global stop flag.
// The pinned consumer observes the flag and exits after draining its ring.
//
//go:nosplit
//go:inline
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Reset rearms the flags. Test-only convenience; production code never
// restarts a stopped system.
func Reset() {
	atomic.StoreUint32(&stop, 0)
	atomic.StoreUint32(&hot, 0)
	lastHot.Store(0)
}

// ============================================================================
// FLAG ACCESS
// ============================================================================

// Flags returns direct pointers to the global coordination flags for
// zero-allocation polling by the pinned consumer.
//
// Return values: (*stop_flag, *hot_flag)
//
//go:nosplit
//go:inline
func Flags() (*uint32, *uint32) {
	return &stop, &hot
}
