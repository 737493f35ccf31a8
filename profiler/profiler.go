package profiler

import (
	"context"

	"github.com/tracelab/optrace/device"
	"github.com/tracelab/optrace/hooking"
	"github.com/tracelab/optrace/propagation"
)

// sessionSlot publishes the active session on the context. The install
// transform drops the cached event list so a handed-off flow binds one of
// its own instead of writing into its parent's.
var sessionSlot = propagation.NewSlot[*flowState]("profiler.session",
	propagation.WithInstallTransform(func(fs *flowState) *flowState {
		return &flowState{sess: fs.sess}
	}))

// Start begins a session and returns a context that carries it. Every
// recording operation and every instrumented call site running with a
// descendant of the returned context reports into this session until the
// matching Stop. Sessions nest: an inner Start shadows the outer session
// for as long as its context is in use.
//
// Device modes fail with ErrNoDeviceBackend when no usable backend is
// registered. A ModeDisabled session is inert: it suppresses recording on
// its contexts and cannot be stopped.
func Start(ctx context.Context, cfg Config) (context.Context, error) {
	mustBeKnownMode(cfg.Mode)

	if cfg.Mode == ModeDeviceTimed || cfg.Mode == ModeDeviceMarkers {
		if !device.Registered().Available() {
			return ctx, ErrNoDeviceBackend
		}
	}

	fs := &flowState{sess: newSession(cfg)}
	ctx = sessionSlot.Push(ctx, fs)

	if cfg.Mode == ModeDisabled {
		return ctx, nil
	}

	retainCallbacks(cfg.CaptureInputShapes)
	trackSession(fs.sess)

	if cfg.Mode == ModeDeviceTimed {
		warmUpDevices(ctx, fs)
	}

	fs.mark(ctx, StartProfileMark, false)

	return ctx, nil
}

// Stop ends the session carried by ctx, removes the callback pair once no
// activation needs it anymore, and returns the consolidated trace. In
// ModeDeviceMarkers the events went to the vendor tool, so the returned
// trace is empty.
//
// Stop fails with ErrNoSession when ctx carries no session, a session that
// is already stopped, or a ModeDisabled one. Nothing is mutated then.
func Stop(ctx context.Context) (Trace, error) {
	fs, ok := sessionSlot.Get(ctx)
	if !ok || fs.sess.cfg.Mode == ModeDisabled {
		return Trace{}, ErrNoSession
	}

	if !fs.sess.stopped.CompareAndSwap(false, true) {
		return Trace{}, ErrNoSession
	}

	releaseCallbacks()
	untrackSession(fs.sess)

	if fs.sess.cfg.Mode == ModeDeviceMarkers {
		fs.sess.finished.Store(true)
		return Trace{}, nil
	}

	fs.mark(ctx, StopProfileMark, true)
	fs.sess.finished.Store(true)

	return fs.sess.consolidate(), nil
}

// Enabled reports whether ctx carries a session that is actively recording.
func Enabled(ctx context.Context) bool {
	fs, ok := sessionSlot.Get(ctx)
	return ok && fs.sess.cfg.Mode != ModeDisabled && !fs.sess.stopped.Load()
}

// Mark records a named point event on the session carried by ctx. Without
// an active session it does nothing.
func Mark(ctx context.Context, name string) {
	fs, ok := sessionSlot.Get(ctx)
	if !ok || fs.sess.stopped.Load() {
		return
	}

	fs.mark(ctx, name, true)
}

// Range opens a user range and returns the function that closes it. Ranges
// nest; close them innermost first.
//
//	done := profiler.Range(ctx, "encode")
//	defer done()
//
// The range goes through the hooking registry, so observers other than the
// profiler see it too.
func Range(ctx context.Context, name string) func() {
	span := hooking.Begin(ctx, name, hooking.ScopeUser, hooking.NoSeq, nil)
	return span.End
}

func mustBeKnownMode(m Mode) {
	switch m {
	case ModeDisabled, ModeCPU, ModeDeviceTimed, ModeDeviceMarkers:
	default:
		panic("profiler: unknown mode")
	}
}

// warmUpDevices pays the one-time marker costs on every device and records
// a start event per device as the device-side time origin.
func warmUpDevices(ctx context.Context, fs *flowState) {
	b := device.Registered()

	for i := 0; i < deviceWarmupRounds; i++ {
		b.EachDevice(func(int) {
			fs.mark(ctx, DeviceStartupMark, true)
			b.Synchronize()
		})
	}

	b.EachDevice(func(int) {
		fs.mark(ctx, DeviceStartEventMark, true)
	})
}
