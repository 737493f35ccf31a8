package propagation

import (
	"context"
	"sync"
)

// A Setting is flow-bound state owned by another package that must travel
// with task handoffs alongside the slot store. The profiler registers one to
// keep its instrumentation callbacks installed while inherited sessions are
// still running on worker flows.
type Setting interface {
	// Capture reads the setting's current value on the launching flow.
	Capture(ctx context.Context) bool

	// Install applies a captured value on the adopting flow. The returned
	// teardown runs when the adopting flow releases the state; it may be
	// nil when there is nothing to undo.
	Install(value bool) (teardown func())
}

var (
	settingsMu sync.Mutex
	settings   []registeredSetting
)

type registeredSetting struct {
	name    string
	setting Setting
}

// RegisterSetting adds a setting to every future Capture. Settings are meant
// to be registered from init functions; registering the same name twice
// panics.
func RegisterSetting(name string, s Setting) {
	if name == "" {
		panic("propagation: setting name must not be empty")
	}
	if s == nil {
		panic("propagation: setting must not be nil")
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	for _, r := range settings {
		if r.name == name {
			panic("propagation: duplicated setting " + name)
		}
	}

	settings = append(settings, registeredSetting{name: name, setting: s})
}

func registeredSettings() []registeredSetting {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	return settings[:len(settings):len(settings)]
}

// State is a snapshot of one flow's slot store and settings, taken at task
// launch time. It is immutable and may be installed on any number of flows;
// each Install produces an independent flow with its own ID.
type State struct {
	store    *store
	captured []capturedSetting
}

type capturedSetting struct {
	setting Setting
	value   bool
}

// ReleaseFunc undoes a State installation. It is safe to call more than
// once; only the first call runs the teardowns.
type ReleaseFunc func()

// Capture snapshots the flow's current slot store together with every
// registered setting. The snapshot observes the values current at call
// time; later Push/Pop activity on the launching flow does not affect it.
func Capture(ctx context.Context) *State {
	s := &State{store: storeFrom(ctx)}

	regs := registeredSettings()
	s.captured = make([]capturedSetting, 0, len(regs))
	for _, r := range regs {
		s.captured = append(s.captured, capturedSetting{
			setting: r.setting,
			value:   r.setting.Capture(ctx),
		})
	}

	return s
}

// Install grafts the snapshot onto base, which is typically the adopting
// worker's own context. The returned context carries a copy of the captured
// store under a fresh flow ID, with each slot's install transform applied.
// Slot traffic on the new flow stays invisible to the launching flow and
// vice versa.
//
// The ReleaseFunc must run when the task body completes; it tears down the
// installed settings in reverse order.
func (s *State) Install(base context.Context) (context.Context, ReleaseFunc) {
	ctx := base
	if s.store != nil {
		ctx = context.WithValue(base, storeKey, s.store.installCopy())
	}

	teardowns := make([]func(), 0, len(s.captured))
	for _, c := range s.captured {
		if td := c.setting.Install(c.value); td != nil {
			teardowns = append(teardowns, td)
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			for i := len(teardowns) - 1; i >= 0; i-- {
				teardowns[i]()
			}
		})
	}

	return ctx, release
}

// installCopy clones the store for an adopting flow: fresh flow ID, slot
// install transforms applied to every stacked value.
func (s *store) installCopy() *store {
	next := &store{
		flow:  newFlowID(),
		slots: make(map[*slotKey][]any, len(s.slots)),
	}

	for k, stack := range s.slots {
		if k.transform == nil {
			next.slots[k] = stack[:len(stack):len(stack)]
			continue
		}

		copied := make([]any, len(stack))
		for i, v := range stack {
			copied[i] = k.transform(v)
		}
		next.slots[k] = copied
	}

	return next
}
