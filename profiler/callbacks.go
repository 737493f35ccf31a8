package profiler

import (
	"context"
	"sync"

	"github.com/tracelab/optrace/hooking"
	"github.com/tracelab/optrace/propagation"
)

// Callback installation is reference counted across all live activations:
// the first Start installs the pair, the last Stop removes it. Flows that
// inherit a session through a handoff retain it via callbackSetting, so a
// worker keeps reporting even when the flow that started the session stops
// before the worker finishes.
var (
	callbackMu    sync.Mutex
	callbackDepth int
)

func retainCallbacks(needsShapes bool) {
	callbackMu.Lock()
	defer callbackMu.Unlock()

	if callbackDepth == 0 {
		installCallbacks(needsShapes)
	}
	callbackDepth++
}

func releaseCallbacks() {
	callbackMu.Lock()
	defer callbackMu.Unlock()

	if callbackDepth == 0 {
		panic("profiler: callback release without a matching retain")
	}

	callbackDepth--
	if callbackDepth == 0 {
		hooking.RemoveKind(hooking.KindProfiler)
	}
}

// installCallbacks registers the enter/exit pair that turns instrumented
// call sites into range events. Enter never declines, so exit always runs;
// a flow without an active session records nothing on either side.
func installCallbacks(needsShapes bool) {
	enter := func(rec *hooking.Record) bool {
		fs, ok := sessionSlot.Get(rec.Ctx)
		if !ok || fs.sess.cfg.Mode == ModeDisabled {
			return true
		}

		var shapes [][]int64
		if needsShapes {
			shapes = inputShapes(rec.Inputs)
		}

		fs.pushRange(rec.Ctx, rec.Name, rec.SeqNr, shapes)

		return true
	}

	exit := func(rec *hooking.Record) {
		fs, ok := sessionSlot.Get(rec.Ctx)
		if !ok || fs.sess.cfg.Mode == ModeDisabled {
			return
		}

		fs.popRange(rec.Ctx)
	}

	hooking.Register(hooking.Callback{
		Enter:       enter,
		Exit:        exit,
		Kind:        hooking.KindProfiler,
		NeedsInputs: needsShapes,
	})
}

// inputShapes copies the dimensions out of the call site's input
// descriptors. Inputs that expose no dimensions contribute an empty entry,
// so positions still line up with the call's inputs.
func inputShapes(inputs []hooking.Value) [][]int64 {
	shapes := make([][]int64, len(inputs))
	for i, in := range inputs {
		dims, ok := in.Dims()
		if !ok {
			shapes[i] = []int64{}
			continue
		}

		shapes[i] = make([]int64, len(dims))
		copy(shapes[i], dims)
	}

	return shapes
}

// callbackSetting keeps the callback pair installed on flows that inherit
// an active session. Capture answers at handoff time; Install retains on
// the child flow and returns the matching release.
//
// A child that happens to be the first installer retains without input
// shapes. The outermost Start is the only place the shapes flag is read.
type callbackSetting struct{}

func (callbackSetting) Capture(ctx context.Context) bool {
	fs, ok := sessionSlot.Get(ctx)
	return ok && fs.sess.cfg.Mode != ModeDisabled && !fs.sess.stopped.Load()
}

func (callbackSetting) Install(active bool) func() {
	if !active {
		return nil
	}

	retainCallbacks(false)

	return releaseCallbacks
}

func init() {
	propagation.RegisterSetting("profiler.callbacks", callbackSetting{})
}
