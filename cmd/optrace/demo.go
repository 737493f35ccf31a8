package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tracelab/optrace/chrometrace"
	"github.com/tracelab/optrace/executor"
	"github.com/tracelab/optrace/hooking"
	"github.com/tracelab/optrace/monitor"
	"github.com/tracelab/optrace/profiler"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an instrumented matrix pipeline and record its trace",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true
		runDemo()
	},
}

var (
	demoOutput  string
	demoWorkers int
	demoRounds  int
	demoMonitor bool
	demoShapes  bool
)

func init() {
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "",
		"trace file to write (default optrace_<id>.json)")
	demoCmd.Flags().IntVar(&demoWorkers, "workers", 0,
		"pool size (default one per CPU)")
	demoCmd.Flags().IntVar(&demoRounds, "rounds", 16,
		"pipeline rounds per batch")
	demoCmd.Flags().BoolVar(&demoMonitor, "monitor", false,
		"serve the live monitor and run batches until interrupted")
	demoCmd.Flags().BoolVar(&demoShapes, "shapes", false,
		"record input shapes at instrumented call sites")
	rootCmd.AddCommand(demoCmd)
}

func runDemo() {
	logger := newLogger()
	defer logger.Sync()

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if demoMonitor {
		monitor.NewMonitor().WithLogger(logger).StartServer()
	}

	ctx, err := profiler.Start(runCtx, profiler.Config{
		Mode:               profiler.ModeCPU,
		CaptureInputShapes: demoShapes,
	})
	if err != nil {
		logger.Fatal("starting session", zap.Error(err))
	}

	pool := executor.NewPool(demoWorkers)

	logger.Info("running pipeline",
		zap.Int("rounds", demoRounds),
		zap.Int("workers", demoWorkers))

	round := 0
	for {
		for i := 0; i < demoRounds; i++ {
			name := fmt.Sprintf("round-%d", round)
			round++

			pool.Submit(ctx, func(ctx context.Context) {
				runRound(ctx, name)
			})
		}
		pool.Wait()

		if !demoMonitor || runCtx.Err() != nil {
			break
		}
	}
	pool.Shutdown()

	trace, err := profiler.Stop(ctx)
	if err != nil {
		logger.Fatal("stopping session", zap.Error(err))
	}

	path := demoOutput
	if path == "" {
		path = "optrace_" + xid.New().String() + ".json"
	}

	f, err := os.Create(path)
	if err != nil {
		logger.Fatal("creating trace file", zap.Error(err))
	}

	if err := chrometrace.Write(f, trace); err != nil {
		logger.Fatal("writing trace", zap.Error(err))
	}
	dieOnErr(f.Close())

	logger.Info("trace written",
		zap.String("path", path),
		zap.Int("events", len(trace.Events())))
}

func runRound(ctx context.Context, name string) {
	end := profiler.Range(ctx, name)
	defer end()

	a := newMatrix(64, 48)
	b := newMatrix(48, 32)

	c := matmul(ctx, a, b)
	relu(ctx, c)
}

// matrix is a dense row-major matrix that reports its dimensions at
// instrumented call sites.
type matrix struct {
	rows, cols int
	data       []float64
}

func (m *matrix) Dims() ([]int64, bool) {
	return []int64{int64(m.rows), int64(m.cols)}, true
}

func newMatrix(rows, cols int) *matrix {
	m := &matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
	for i := range m.data {
		m.data[i] = float64(i%7) * 0.5
	}

	return m
}

var demoSeq atomic.Int64

func nextSeq() int64 {
	return demoSeq.Add(1)
}

func matmul(ctx context.Context, a, b *matrix) *matrix {
	span := hooking.Begin(ctx, "matmul", hooking.ScopeFunction, nextSeq(),
		[]hooking.Value{a, b})
	defer span.End()

	c := &matrix{rows: a.rows, cols: b.cols, data: make([]float64, a.rows*b.cols)}
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.data[i*a.cols+k]
			for j := 0; j < b.cols; j++ {
				c.data[i*c.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}

	return c
}

func relu(ctx context.Context, m *matrix) {
	span := hooking.Begin(ctx, "relu", hooking.ScopeFunction, nextSeq(),
		[]hooking.Value{m})
	defer span.End()

	for i, v := range m.data {
		if v < 0 {
			m.data[i] = 0
		}
	}
}
