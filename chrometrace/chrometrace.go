// Package chrometrace renders consolidated traces as Chrome trace viewer
// JSON, an array of complete events that chrome://tracing and Perfetto
// both load.
package chrometrace

import (
	"errors"
	"io"

	"github.com/tracelab/optrace/profiler"
)

// ErrNoStartMark is returned by Write when the trace carries no session
// start mark to anchor timestamps on.
var ErrNoStartMark = errors.New("chrometrace: trace has no session start mark")

// TraceEvent is one complete event in the Chrome trace format. Timestamps
// and durations are microseconds relative to the session start.
type TraceEvent struct {
	Name      string   `json:"name"`
	Phase     string   `json:"ph"`
	Timestamp float64  `json:"ts"`
	Duration  float64  `json:"dur"`
	ThreadID  uint64   `json:"tid"`
	ProcessID string   `json:"pid"`
	Args      struct{} `json:"args"`
}

// processName groups all flows under one process row in the viewer.
const processName = "CPU Functions"

// completePhase marks an event that carries its start and duration at once.
const completePhase = "X"

// Write renders the trace as a Chrome trace JSON array. Each matched
// range-start/range-end pair becomes one complete event on its flow's row.
// Point marks, range ends without an open range, and ranges left open at
// consolidation are skipped.
func Write(w io.Writer, tr profiler.Trace) error {
	origin, ok := findOrigin(tr)
	if !ok {
		return ErrNoStartMark
	}

	wr := NewWriter(w)

	for _, list := range tr.Lists {
		var stack []profiler.Event

		for _, e := range list.Events {
			switch e.Kind {
			case profiler.EventRangeStart:
				stack = append(stack, e)

			case profiler.EventRangeEnd:
				if len(stack) == 0 {
					continue
				}

				start := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				err := wr.WriteEvent(TraceEvent{
					Name:      start.Name,
					Phase:     completePhase,
					Timestamp: origin.CPUElapsedUs(start),
					Duration:  start.CPUElapsedUs(e),
					ThreadID:  list.FlowID,
					ProcessID: processName,
				})
				if err != nil {
					return err
				}

			case profiler.EventMark:
			}
		}
	}

	return wr.Close()
}

func findOrigin(tr profiler.Trace) (profiler.Event, bool) {
	for _, list := range tr.Lists {
		for _, e := range list.Events {
			if e.Kind == profiler.EventMark &&
				e.Name == profiler.StartProfileMark {
				return e, true
			}
		}
	}

	return profiler.Event{}, false
}
