package chrometrace

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/tracelab/optrace/profiler"
)

// Recorder couples a CPU session to an output file: StartRecording begins
// the session, Close stops it and writes the trace out. Close is also
// registered to run at process exit, so the trace survives an early
// atexit.Exit elsewhere in the program.
type Recorder struct {
	path string
	file *os.File
	ctx  context.Context

	closeOnce sync.Once
	closeErr  error
}

// StartRecording opens the output file, starts a ModeCPU session, and
// returns the context carrying it. An empty path picks a fresh
// "optrace_<id>.json" name in the working directory and announces it.
func StartRecording(
	ctx context.Context,
	path string,
) (context.Context, *Recorder, error) {
	if path == "" {
		path = "optrace_" + xid.New().String() + ".json"
		fmt.Printf("Recording trace in %s\n", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return ctx, nil, fmt.Errorf("chrometrace: create %s: %w", path, err)
	}

	sctx, err := profiler.Start(ctx, profiler.Config{Mode: profiler.ModeCPU})
	if err != nil {
		f.Close()
		return ctx, nil, err
	}

	r := &Recorder{path: path, file: f, ctx: sctx}
	atexit.Register(func() { r.Close() })

	return sctx, r, nil
}

// Path returns the file the trace is written to.
func (r *Recorder) Path() string {
	return r.path
}

// Close stops the session and writes the trace. Calling it again returns
// the first result.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		tr, err := profiler.Stop(r.ctx)
		if err != nil {
			r.closeErr = err
			r.file.Close()

			return
		}

		if err := Write(r.file, tr); err != nil {
			r.closeErr = err
			r.file.Close()

			return
		}

		r.closeErr = r.file.Close()
	})

	return r.closeErr
}
