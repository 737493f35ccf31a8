package profiler

import "errors"

// Errors fall into three groups. Configuration errors mean the setup is
// wrong and the caller can fix it before retrying (ErrNoDeviceBackend).
// Protocol errors mean operations ran in an order the lifecycle does not
// allow (ErrNoSession). Measurement errors mean the recorded data cannot
// answer the question asked of it (ErrNoDeviceTime, ErrDeviceMismatch).
// Recording itself never returns an error.
var (
	// ErrNoDeviceBackend is returned by Start when the configuration asks
	// for device timing or vendor markers but no device backend is
	// registered or the registered one reports no usable device.
	ErrNoDeviceBackend = errors.New(
		"profiler: device profiling requested but no device backend is available")

	// ErrNoSession is returned by Stop when the context carries no
	// stoppable session.
	ErrNoSession = errors.New("profiler: no active session to stop")

	// ErrNoDeviceTime is returned by Event.DeviceElapsedUs when either
	// event carries no device marker.
	ErrNoDeviceTime = errors.New("profiler: event carries no device timestamp")

	// ErrDeviceMismatch is returned by Event.DeviceElapsedUs when the two
	// events were recorded on different devices.
	ErrDeviceMismatch = errors.New("profiler: events were recorded on different devices")
)
