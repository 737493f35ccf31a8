package profiler

// Mode selects how a session timestamps and stores events.
type Mode int

const (
	// ModeDisabled records nothing. A session in this mode satisfies
	// Enabled-style checks for "no profiling" and turns all recording
	// operations into no-ops.
	ModeDisabled Mode = iota

	// ModeCPU timestamps events with the host's monotonic clock.
	ModeCPU

	// ModeDeviceTimed timestamps events with the host clock and
	// additionally attaches a device marker to each event, so
	// device-side durations can be queried with Event.DeviceElapsedUs.
	// Requires a registered device backend.
	ModeDeviceTimed

	// ModeDeviceMarkers forwards ranges and marks to the vendor's own
	// annotation facility and buffers nothing in the session. Requires
	// a registered device backend. Stop returns an empty Trace.
	ModeDeviceMarkers
)

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeCPU:
		return "cpu"
	case ModeDeviceTimed:
		return "device-timed"
	case ModeDeviceMarkers:
		return "device-markers"
	default:
		panic("profiler: unknown mode")
	}
}

// Config carries the immutable settings of one session.
type Config struct {
	Mode Mode

	// CaptureInputShapes asks instrumented call sites to report the
	// dimensions of their inputs, which are then stored on range-start
	// events. Only honored when this session is the one that installs
	// the callbacks; nested sessions inherit the outermost setting.
	CaptureInputShapes bool
}
