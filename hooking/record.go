package hooking

import "context"

// NoSeq marks a call site without a sequence number.
const NoSeq int64 = -1

// Value describes one argument at an instrumented call site. Only the shape
// is observable; profilers use it to record input shapes without holding on
// to the argument itself.
type Value interface {
	// Dims returns the tensor-like shape of the value. It returns false for
	// values that have no shape; such arguments still occupy a position in
	// the input list.
	Dims() ([]int64, bool)
}

// Record carries everything a callback may learn about one instrumented
// operation. Records are created by Begin and shared between the enter and
// exit callbacks of the same operation.
type Record struct {
	// Ctx is the context of the flow executing the operation.
	Ctx context.Context

	// Name identifies the operation.
	Name string

	// SeqNr is the operation's sequence number, or NoSeq.
	SeqNr int64

	// Scope is the call-site category.
	Scope Scope

	// Inputs lists the argument descriptors, when a registered callback
	// asked for them. Nil otherwise.
	Inputs []Value
}

// Span tracks the callbacks that admitted one operation. The zero Span is
// inert: End on it does nothing.
type Span struct {
	rec       Record
	callbacks []Callback
	entered   uint64
}

// Begin notifies registered callbacks that an operation is entering. Pass
// seqNr NoSeq when the site has no sequence number and nil inputs when it
// has no argument descriptors. The returned Span must be closed with End
// when the operation leaves.
func Begin(
	ctx context.Context,
	name string,
	scope Scope,
	seqNr int64,
	inputs []Value,
) Span {
	r := current.Load()
	if r == nil || len(r.callbacks) == 0 {
		return Span{}
	}

	if !r.needsInputs {
		inputs = nil
	}

	span := Span{
		rec: Record{
			Ctx:    ctx,
			Name:   name,
			SeqNr:  seqNr,
			Scope:  scope,
			Inputs: inputs,
		},
		callbacks: r.callbacks,
	}

	for i, cb := range r.callbacks {
		if !cb.admits(scope) {
			continue
		}

		if cb.Enter == nil {
			span.entered |= 1 << uint(i)
			continue
		}

		if cb.Enter(&span.rec) {
			span.entered |= 1 << uint(i)
		}
	}

	return span
}

// End notifies the callbacks whose enter admitted the operation that it is
// leaving. End never fails, regardless of what the enter callbacks did or
// found; calling it again, or on a zero Span, is a no-op.
func (s *Span) End() {
	if s.entered == 0 {
		s.callbacks = nil
		return
	}

	for i, cb := range s.callbacks {
		if s.entered&(1<<uint(i)) == 0 {
			continue
		}

		if cb.Exit != nil {
			cb.Exit(&s.rec)
		}
	}

	s.entered = 0
	s.callbacks = nil
}
