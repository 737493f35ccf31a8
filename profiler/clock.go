package profiler

import "time"

// clockBase anchors CPU timestamps. time.Since reads the monotonic clock,
// so recorded times are immune to wall-clock adjustments.
var clockBase = time.Now()

var nowNanos = func() int64 {
	return time.Since(clockBase).Nanoseconds()
}
