// Package profiler records timestamped ranges and marks from instrumented
// code with as little overhead as the measurements can bear.
//
// A session is one contiguous period of capture. Start publishes the
// session on the calling flow's context and, for the outermost session,
// installs the profiler's callback pair into the hooking registry; from
// then on every instrumented call site that runs with a descendant of that
// context reports into the session. Stop removes the session, uninstalls
// the callbacks when no other activation needs them, and consolidates the
// per-flow event buffers into a Trace.
//
//	ctx, err := profiler.Start(ctx, profiler.Config{Mode: profiler.ModeCPU})
//	if err != nil { ... }
//
//	end := profiler.Range(ctx, "step")
//	work(ctx)
//	end()
//
//	trace, err := profiler.Stop(ctx)
//
// Sessions nest: an inner Start shadows the outer session, so events
// recorded until the matching Stop belong to the inner session only.
// Handoffs to other goroutines go through the executor package (or
// propagation.Capture directly); the child flow inherits the active
// session and buffers its events in a list of its own, so recording stays
// lock-free after a flow's first event.
//
// Four modes are supported. ModeCPU timestamps events with the host clock.
// ModeDeviceTimed additionally attaches device markers so device-side
// durations can be queried afterwards. ModeDeviceMarkers forwards ranges
// and marks to the vendor's own tooling and buffers nothing locally.
// ModeDisabled turns every recording operation into a no-op.
package profiler
