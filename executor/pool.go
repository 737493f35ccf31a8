package executor

import (
	"context"
	"runtime"
	"sync"

	"github.com/tracelab/optrace/propagation"
)

// Pool runs submitted functions on a fixed set of worker goroutines.
// Propagation state is captured when a task is submitted, not when it
// runs, so a task is unaffected by what its submitter does afterwards.
type Pool struct {
	tasks chan poolTask

	workers  sync.WaitGroup
	inflight sync.WaitGroup

	// mu orders Submit against Shutdown: the channel only closes once no
	// Submit holds the read side, so a racing Submit fails with the
	// shut-down panic rather than a send on a closed channel.
	mu     sync.RWMutex
	closed bool
}

type poolTask struct {
	state *propagation.State
	base  context.Context
	fn    func(context.Context)
}

// NewPool starts a pool with n workers. Zero or negative n means one
// worker per available CPU.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		tasks: make(chan poolTask, n),
	}

	for i := 0; i < n; i++ {
		p.workers.Add(1)
		go p.worker()
	}

	return p
}

// Submit queues fn with the propagation state captured from ctx. It blocks
// when every worker is busy and the queue is full. Submitting to a shut
// down pool panics.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) {
	t := poolTask{
		state: propagation.Capture(ctx),
		base:  ctx,
		fn:    fn,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		panic("executor: submit on a shut down pool")
	}

	p.inflight.Add(1)
	p.tasks <- t
}

// Wait blocks until every task submitted so far has finished. The pool
// stays usable.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Shutdown drains the queue and stops the workers. Calling it again is a
// no-op.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()

	for t := range p.tasks {
		p.runTask(t)
	}
}

func (p *Pool) runTask(t poolTask) {
	defer p.inflight.Done()

	ctx, release := t.state.Install(t.base)
	defer release()

	t.fn(ctx)
}
