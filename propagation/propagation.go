// Package propagation carries per-flow instrumentation state across task
// boundaries.
//
// A flow is one logical thread of control: a goroutine together with the
// context chain it was handed. Flows keep their state in a slot store that
// travels inside a context.Context. The store is immutable; Push and Pop
// derive new contexts instead of mutating shared state, so values published
// on one flow can never leak into another one retroactively.
//
// Handoffs between flows are explicit. The launching flow calls Capture to
// snapshot its store and any registered settings, and the adopting flow
// installs the snapshot before running the task body (see the executor
// package). A child flow observes the slot values that were current at
// capture time; later changes on either side stay invisible to the other.
package propagation

import (
	"context"
	"sync/atomic"
)

type ctxKey struct{}

var storeKey ctxKey

// slotKey identifies one slot. Every NewSlot call allocates a distinct key,
// so two slots never collide even if they share a name.
type slotKey struct {
	name      string
	transform func(any) any
}

// Slot is a typed key into the per-flow store. The zero Slot is invalid;
// create slots with NewSlot, typically in a package var.
type Slot[T any] struct {
	key *slotKey
}

// SlotOption configures a slot at creation time.
type SlotOption[T any] func(*slotKey)

// WithInstallTransform registers a function that rewrites the slot's values
// when a captured store is installed on a new flow. Packages use it to renew
// per-flow caches inside a handle while keeping the shared part intact.
func WithInstallTransform[T any](f func(T) T) SlotOption[T] {
	return func(k *slotKey) {
		k.transform = func(v any) any {
			return f(v.(T))
		}
	}
}

// NewSlot creates a slot holding values of type T. The name is used in
// diagnostics only.
func NewSlot[T any](name string, opts ...SlotOption[T]) Slot[T] {
	if name == "" {
		panic("propagation: slot name must not be empty")
	}

	k := &slotKey{name: name}
	for _, opt := range opts {
		opt(k)
	}

	return Slot[T]{key: k}
}

// Name returns the diagnostic name the slot was created with.
func (s Slot[T]) Name() string {
	return s.key.name
}

// Push installs v as the slot's current value on the flow, shadowing
// whatever was there before. The previous value becomes visible again after
// a matching Pop.
func (s Slot[T]) Push(ctx context.Context, v T) context.Context {
	st := cloneStore(ctx)
	st.slots[s.key] = append(st.slots[s.key], v)

	return context.WithValue(ctx, storeKey, st)
}

// Pop removes the slot's current value, returning it and revealing the
// shadowed one. Popping an empty slot is a logic error and panics.
func (s Slot[T]) Pop(ctx context.Context) (context.Context, T) {
	st := storeFrom(ctx)
	if st == nil || len(st.slots[s.key]) == 0 {
		panic("propagation: pop on empty slot " + s.key.name)
	}

	next := cloneStore(ctx)
	stack := next.slots[s.key]
	top := stack[len(stack)-1]

	if len(stack) == 1 {
		delete(next.slots, s.key)
	} else {
		next.slots[s.key] = stack[:len(stack)-1:len(stack)-1]
	}

	return context.WithValue(ctx, storeKey, next), top.(T)
}

// Get returns the slot's current value on the flow, if any.
func (s Slot[T]) Get(ctx context.Context) (T, bool) {
	st := storeFrom(ctx)
	if st == nil {
		var zero T
		return zero, false
	}

	stack := st.slots[s.key]
	if len(stack) == 0 {
		var zero T
		return zero, false
	}

	return stack[len(stack)-1].(T), true
}

// FlowID returns the ID of the flow the context belongs to, or 0 when the
// context carries no store yet. IDs are assigned when a store is first
// created and renewed when a capture is installed, so two flows never share
// one.
func FlowID(ctx context.Context) uint64 {
	st := storeFrom(ctx)
	if st == nil {
		return 0
	}

	return st.flow
}

// store is the immutable slot mapping for one flow. Deriving operations
// always copy; a store is never written after it is published in a context.
type store struct {
	flow  uint64
	slots map[*slotKey][]any
}

var nextFlowID atomic.Uint64

func newFlowID() uint64 {
	return nextFlowID.Add(1)
}

func storeFrom(ctx context.Context) *store {
	st, _ := ctx.Value(storeKey).(*store)
	return st
}

// cloneStore copies the context's store, or starts a fresh one bound to a
// new flow ID. Slot stacks are shallow-copied; values themselves are shared.
func cloneStore(ctx context.Context) *store {
	prev := storeFrom(ctx)

	if prev == nil {
		return &store{
			flow:  newFlowID(),
			slots: make(map[*slotKey][]any, 1),
		}
	}

	next := &store{
		flow:  prev.flow,
		slots: make(map[*slotKey][]any, len(prev.slots)),
	}
	for k, stack := range prev.slots {
		next.slots[k] = stack[:len(stack):len(stack)]
	}

	return next
}
