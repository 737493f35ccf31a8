package profiler

import (
	"github.com/tracelab/optrace/device"
)

// EventKind tells range boundaries and point marks apart.
type EventKind int

const (
	EventMark EventKind = iota
	EventRangeStart
	EventRangeEnd
)

func (k EventKind) String() string {
	switch k {
	case EventMark:
		return "mark"
	case EventRangeStart:
		return "range_start"
	case EventRangeEnd:
		return "range_end"
	default:
		panic("profiler: unknown event kind")
	}
}

// Event is one recorded occurrence. Range-end events carry no name; they
// close the most recent unmatched range-start of the same flow.
type Event struct {
	Kind EventKind

	Name string

	// FlowID identifies the flow that recorded the event.
	FlowID uint64

	// CPUTimeNs is the host timestamp, in nanoseconds since an arbitrary
	// but session-stable origin.
	CPUTimeNs int64

	// Marker is the device timestamp handle, set only in ModeDeviceTimed.
	Marker device.Marker

	// DeviceID is the device Marker was recorded on, -1 when Marker is nil.
	DeviceID int

	// Shapes holds the input dimensions of a range-start event when the
	// installing session asked for them. One entry per input; inputs
	// without dimensions contribute an empty entry.
	Shapes [][]int64
}

// HasDeviceTime reports whether the event carries a device marker.
func (e Event) HasDeviceTime() bool {
	return e.Marker != nil
}

// CPUElapsedUs returns the host-clock microseconds from e to later.
func (e Event) CPUElapsedUs(later Event) float64 {
	return float64(later.CPUTimeNs-e.CPUTimeNs) / 1000.0
}

// DeviceElapsedUs returns the device-side microseconds from e to later. It
// fails with ErrNoDeviceTime when either event has no marker and with
// ErrDeviceMismatch when the markers belong to different devices.
func (e Event) DeviceElapsedUs(later Event) (float64, error) {
	if !e.HasDeviceTime() || !later.HasDeviceTime() {
		return 0, ErrNoDeviceTime
	}

	if e.DeviceID != later.DeviceID {
		return 0, ErrDeviceMismatch
	}

	return device.Registered().Elapsed(e.Marker, later.Marker), nil
}
