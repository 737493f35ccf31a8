// Package device declares the accelerator timing backend the profiler
// delegates to. The profiler core never talks to a device directly; a
// vendor integration registers a Backend once at startup and everything
// device-related goes through it.
package device

import "sync/atomic"

// Marker is an opaque timestamp token issued by a device's own clock. A
// marker is only comparable with markers recorded on the same device, and
// only by the backend that issued it.
type Marker any

// Backend is an accelerator timing backend.
type Backend interface {
	// Available reports whether the backend can time device work right now.
	Available() bool

	// Record issues a marker on the current device, correlated with the
	// caller's CPU timestamp in nanoseconds. It returns the marker and
	// the ID of the device it was recorded on.
	Record(cpuNs int64) (marker Marker, deviceID int)

	// Synchronize blocks until all device work issued so far has completed.
	Synchronize()

	// Elapsed returns the time between two markers of the same device, in
	// microseconds. Both markers must have been issued by this backend.
	Elapsed(start, end Marker) float64

	// EachDevice runs f once per device, with the device made current.
	EachDevice(f func(deviceID int))

	// RangePush opens a named range in the vendor's own tooling.
	RangePush(name string)

	// RangePop closes the most recent vendor range.
	RangePop()

	// Mark records a named instant in the vendor's own tooling.
	Mark(name string)
}

// current holds the registered backend. Device-timed sessions look it up
// once per recorded event, so the lookup must not take a lock.
var current atomic.Pointer[Backend]

// Use registers the process-wide backend and returns the previous one.
// Register during startup, before any profiling session begins.
func Use(b Backend) Backend {
	if b == nil {
		panic("device: backend must not be nil")
	}

	if prev := current.Swap(&b); prev != nil {
		return *prev
	}

	return unavailable{}
}

// Registered returns the current backend. Without a registration it returns
// a backend that reports unavailable and panics on every timing call.
func Registered() Backend {
	if p := current.Load(); p != nil {
		return *p
	}

	return unavailable{}
}

// unavailable is the default backend. Sessions that need a device check
// Available before touching it, so its timing methods only trigger on
// misuse.
type unavailable struct{}

func (unavailable) Available() bool {
	return false
}

func (unavailable) Record(int64) (Marker, int) {
	panic(noBackendMsg)
}

func (unavailable) Synchronize() {
	panic(noBackendMsg)
}

func (unavailable) Elapsed(_, _ Marker) float64 {
	panic(noBackendMsg)
}

func (unavailable) EachDevice(_ func(int)) {
	panic(noBackendMsg)
}

func (unavailable) RangePush(_ string) {
	panic(noBackendMsg)
}

func (unavailable) RangePop() {
	panic(noBackendMsg)
}

func (unavailable) Mark(_ string) {
	panic(noBackendMsg)
}

const noBackendMsg = "device: no timing backend registered; " +
	"call device.Use with a vendor backend before device-timed profiling"
