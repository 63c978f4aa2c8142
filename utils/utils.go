// utils.go — low-level helpers shared by the scheduling core and harness.
package utils

import (
	"os"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Number Formatting — Stack Buffers, No fmt
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer using a stack scratch buffer. One small
// allocation for the result string only; no fmt machinery, safe on cold
// diagnostic paths.
//
//go:nosplit
//go:inline
func Itoa(v int) string {
	if v < 0 {
		return "-" + Utoa(uint64(-v))
	}
	return Utoa(uint64(v))
}

// Utoa formats an unsigned 64-bit integer.
//
//go:nosplit
//go:inline
func Utoa(v uint64) string {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Stderr Print Path — Cold Diagnostics Only
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr. No timestamping, no levels,
// no buffering: the caller is on a cold failure path and just needs the
// bytes out before anything else goes wrong.
//
//go:nosplit
func PrintWarning(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// PrintInfo writes msg to stdout. Used by the harness for phase banners.
//
//go:nosplit
func PrintInfo(msg string) {
	_, _ = os.Stdout.WriteString(msg)
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers — Index Scrambling for Fixed-Capacity Maps
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to randomize slot mapping inside the handle index.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Mix32 folds Mix64 down to 32 bits for uint32 keyspaces.
//
//go:nosplit
//go:inline
func Mix32(x uint32) uint32 {
	return uint32(Mix64(uint64(x)) >> 32)
}
