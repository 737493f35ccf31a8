// Package hooking maintains the process-wide registry of instrumentation
// callbacks that instrumented call sites invoke.
//
// A consumer registers a pair of enter/exit callbacks tagged with its Kind.
// Call sites bracket every operation with Begin and End; the registry
// dispatches to each admitted callback pair. When the registry is empty,
// Begin is a single atomic load and End is a no-op, so idle instrumentation
// costs nearly nothing.
package hooking

import (
	"sync"
	"sync/atomic"
)

// Kind tags a callback pair with its consumer, so one consumer's callbacks
// can be removed without disturbing the others.
type Kind int

const (
	// KindObserver marks general-purpose instrumentation consumers.
	KindObserver Kind = iota

	// KindProfiler marks the execution profiler's callback pair.
	KindProfiler
)

// Scope is the category of an instrumented call site.
type Scope int

const (
	// ScopeFunction covers operations reported by framework dispatch.
	ScopeFunction Scope = iota

	// ScopeUser covers ranges opened explicitly by user code.
	ScopeUser
)

// EnterFunc observes the start of an operation. Returning false tells the
// registry not to run the paired ExitFunc for this operation.
type EnterFunc func(rec *Record) bool

// ExitFunc observes the end of an operation. It must tolerate any state the
// enter callback left behind; exits never fail.
type ExitFunc func(rec *Record)

// Callback is one registered enter/exit pair.
type Callback struct {
	Enter EnterFunc
	Exit  ExitFunc

	// Kind tags the pair for selective removal.
	Kind Kind

	// Scopes lists the call-site categories the pair admits. An empty list
	// admits every scope.
	Scopes []Scope

	// NeedsInputs asks call sites to attach argument descriptors.
	NeedsInputs bool
}

func (c Callback) admits(scope Scope) bool {
	if len(c.Scopes) == 0 {
		return true
	}

	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}

	return false
}

// registry is the immutable callback list. Register and RemoveKind swap in
// a rebuilt copy; Begin reads it with one atomic load.
type registry struct {
	callbacks   []Callback
	needsInputs bool
}

// maxCallbacks bounds the registry so spans can track enter results in a
// single word.
const maxCallbacks = 64

var (
	registryMu sync.Mutex
	current    atomic.Pointer[registry]
)

// Register adds a callback pair to the registry.
func Register(cb Callback) {
	if cb.Enter == nil && cb.Exit == nil {
		panic("hooking: callback must have an enter or an exit function")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	old := current.Load()

	var callbacks []Callback
	if old != nil {
		callbacks = append(callbacks, old.callbacks...)
	}
	if len(callbacks) == maxCallbacks {
		panic("hooking: callback registry is full")
	}
	callbacks = append(callbacks, cb)

	current.Store(buildRegistry(callbacks))
}

// RemoveKind removes every callback pair tagged with the kind.
func RemoveKind(kind Kind) {
	registryMu.Lock()
	defer registryMu.Unlock()

	old := current.Load()
	if old == nil {
		return
	}

	callbacks := make([]Callback, 0, len(old.callbacks))
	for _, cb := range old.callbacks {
		if cb.Kind != kind {
			callbacks = append(callbacks, cb)
		}
	}

	current.Store(buildRegistry(callbacks))
}

func buildRegistry(callbacks []Callback) *registry {
	r := &registry{callbacks: callbacks}
	for _, cb := range callbacks {
		if cb.NeedsInputs {
			r.needsInputs = true
		}
	}

	return r
}

// InputsNeeded reports whether any registered callback asked for argument
// descriptors. Call sites check it before doing the work of describing
// their arguments.
func InputsNeeded() bool {
	r := current.Load()
	return r != nil && r.needsInputs
}

// Active reports whether any callback pair is registered. It doubles as the
// dispatch-inclusion flag: instrumented frameworks may skip their hook site
// entirely while it is false.
func Active() bool {
	r := current.Load()
	return r != nil && len(r.callbacks) > 0
}
