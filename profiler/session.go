package profiler

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/tracelab/optrace/device"
	"github.com/tracelab/optrace/propagation"
)

// Bookkeeping marks recorded at session boundaries. StartProfileMark is the
// first event of every buffering session and serves exporters as the
// session's time origin.
const (
	StartProfileMark = "__start_profile"
	StopProfileMark  = "__stop_profile"

	DeviceStartupMark    = "__device_startup"
	DeviceStartEventMark = "__device_start_event"
)

// deviceWarmupRounds is how many record-and-synchronize rounds Start runs
// per device before the first measured event, so marker recording is in
// steady state when measurements begin.
const deviceWarmupRounds = 5

// session is one capture period, shared by every flow it propagates to.
type session struct {
	cfg       Config
	id        string
	startedAt time.Time

	mu    sync.Mutex
	lists map[uint64]*eventList

	// stopped marks the session claimed by a Stop call; finished closes
	// the recording gate once the final bookkeeping mark is in.
	stopped  atomic.Bool
	finished atomic.Bool
}

func newSession(cfg Config) *session {
	return &session{
		cfg:       cfg,
		id:        xid.New().String(),
		startedAt: time.Now(),
		lists:     make(map[uint64]*eventList),
	}
}

// list returns the event list of the given flow, creating it on first use.
func (s *session) list(flow uint64) *eventList {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[flow]
	if !ok {
		l = newEventList(flow)
		s.lists[flow] = l
	}

	return l
}

// consolidate drains the per-flow lists into a Trace ordered by flow ID.
// The recording gate must be closed before calling it.
func (s *session) consolidate() Trace {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows := make([]uint64, 0, len(s.lists))
	for f := range s.lists {
		flows = append(flows, f)
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i] < flows[j] })

	tr := Trace{Lists: make([]FlowEvents, 0, len(flows))}
	for _, f := range flows {
		tr.Lists = append(tr.Lists, FlowEvents{
			FlowID: f,
			Events: s.lists[f].snapshot(),
		})
	}

	return tr
}

// flowState is what the propagation slot carries: the shared session plus
// this flow's event list, bound on the flow's first record. The cached
// list is what keeps steady-state recording free of locks; the slot's
// install transform clears it so a handed-off flow binds a list of its own.
type flowState struct {
	sess *session
	list *eventList
}

func (fs *flowState) mark(ctx context.Context, name string, withDevice bool) {
	if fs.sess.finished.Load() {
		return
	}

	switch fs.sess.cfg.Mode {
	case ModeDisabled:
	case ModeDeviceMarkers:
		device.Registered().Mark(name)
	case ModeCPU, ModeDeviceTimed:
		fs.record(ctx, Event{Kind: EventMark, Name: name}, withDevice)
	}
}

func (fs *flowState) pushRange(ctx context.Context, name string, seqNr int64, shapes [][]int64) {
	if fs.sess.finished.Load() {
		return
	}

	switch fs.sess.cfg.Mode {
	case ModeDisabled:
	case ModeDeviceMarkers:
		device.Registered().RangePush(vendorRangeName(name, seqNr, shapes))
	case ModeCPU, ModeDeviceTimed:
		fs.record(ctx, Event{Kind: EventRangeStart, Name: name, Shapes: shapes}, true)
	}
}

func (fs *flowState) popRange(ctx context.Context) {
	if fs.sess.finished.Load() {
		return
	}

	switch fs.sess.cfg.Mode {
	case ModeDisabled:
	case ModeDeviceMarkers:
		device.Registered().RangePop()
	case ModeCPU, ModeDeviceTimed:
		fs.record(ctx, Event{Kind: EventRangeEnd}, true)
	}
}

// record stamps the event and appends it to the flow's list. Every event
// takes its CPU timestamp from the package clock, whatever the mode, so
// all timestamps of a session share one origin; in ModeDeviceTimed the
// backend additionally issues a marker correlated with that stamp.
func (fs *flowState) record(ctx context.Context, e Event, withDevice bool) {
	e.CPUTimeNs = nowNanos()
	e.DeviceID = -1

	if withDevice && fs.sess.cfg.Mode == ModeDeviceTimed {
		e.Marker, e.DeviceID = device.Registered().Record(e.CPUTimeNs)
	}

	if fs.list == nil {
		fs.list = fs.sess.list(propagation.FlowID(ctx))
	}
	e.FlowID = fs.list.flow

	fs.list.record(e)
}

// vendorRangeName decorates a range name with its sequence number and input
// sizes for the vendor's annotation stream, for example
// "mul, seq = 4, sizes = [[2, 3], []]".
func vendorRangeName(name string, seqNr int64, shapes [][]int64) string {
	if seqNr < 0 && len(shapes) == 0 {
		return name
	}

	var b strings.Builder
	b.WriteString(name)

	if seqNr >= 0 {
		b.WriteString(", seq = ")
		b.WriteString(strconv.FormatInt(seqNr, 10))
	}

	if len(shapes) > 0 {
		b.WriteString(", sizes = [")
		for i, shape := range shapes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('[')
			for d, dim := range shape {
				if d > 0 {
					b.WriteString(", ")
				}
				b.WriteString(strconv.FormatInt(dim, 10))
			}
			b.WriteByte(']')
		}
		b.WriteByte(']')
	}

	return b.String()
}
