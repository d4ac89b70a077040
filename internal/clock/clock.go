// Package clock provides the engine's nanosecond timestamp source (C1).
package clock

import "time"

// start anchors NowNs: its wall-clock reading gives the Unix-epoch origin
// and its monotonic reading is the base for elapsed time.
var (
	start       = time.Now()
	startUnixNs = start.UnixNano()
)

// NowNs returns a monotonic nanosecond timestamp on the Unix-epoch scale:
// the wall-clock time at process start plus the monotonic time elapsed
// since, so later wall-clock adjustments do not move it. The Rust original
// this spec was distilled from reads the x86 cycle counter (RDTSC) directly
// and falls back to a wall-clock read off that architecture; Go has no
// portable cycle-counter primitive without cgo/assembly, so this uses
// time.Now()'s OS monotonic clock reading - acceptable per-call precision
// (tens of ns) for the hot-path latency measurements this feeds.
func NowNs() uint64 {
	return uint64(startUnixNs + int64(time.Since(start)))
}
