// Package executor launches goroutines that inherit the caller's
// propagation state. Both the one-shot Go and the Pool capture the state
// at submission time and install it around the task body, so a task sees
// the session and slot values of the flow that submitted it, on a fresh
// flow of its own.
package executor

import (
	"context"

	"github.com/tracelab/optrace/propagation"
)

// Task is a handle to one launched function.
type Task struct {
	done chan struct{}
}

// Go runs fn on a new goroutine with the propagation state captured from
// ctx. The context handed to fn derives from ctx, so cancellation still
// reaches the task.
func Go(ctx context.Context, fn func(context.Context)) *Task {
	st := propagation.Capture(ctx)
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		cctx, release := st.Install(ctx)
		defer release()

		fn(cctx)
	}()

	return t
}

// Wait blocks until the function has returned.
func (t *Task) Wait() {
	<-t.done
}
