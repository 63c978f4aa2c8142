// relax.go
//
// Spin-loop back-off hint. On amd64 this would ideally emit a single PAUSE
// instruction; the portable definition below keeps the call sites identical
// on every architecture and lets a platform asm stub replace it later.

package ringbuffer

// cpuRelax politely yields pipeline resources inside a busy-wait loop.
func cpuRelax() {}
