//go:build !linux || tinygo

// setaffinity_stub.go
//
// Portable fall-back: platforms without sched_setaffinity simply run the
// consumer wherever the scheduler places it.

package ringbuffer

// setAffinity is a no-op on unsupported targets.
func setAffinity(int) {}
