package profiler

import "sync/atomic"

// eventBlockSize is the capacity of one allocation block. Growing by whole
// blocks means an append never moves events that are already recorded.
const eventBlockSize = 1024

// eventList buffers the events of one flow. Exactly one goroutine appends
// to it. The count is atomic so observers can report the list's size
// while the flow is still recording.
type eventList struct {
	flow   uint64
	blocks [][]Event
	count  atomic.Int64
}

func newEventList(flow uint64) *eventList {
	return &eventList{flow: flow}
}

func (l *eventList) record(e Event) {
	if n := len(l.blocks); n == 0 || len(l.blocks[n-1]) == cap(l.blocks[n-1]) {
		l.blocks = append(l.blocks, make([]Event, 0, eventBlockSize))
	}

	last := len(l.blocks) - 1
	l.blocks[last] = append(l.blocks[last], e)
	l.count.Add(1)
}

// snapshot flattens the blocks into one slice. Only safe once the owning
// flow has stopped recording.
func (l *eventList) snapshot() []Event {
	events := make([]Event, 0, l.count.Load())
	for _, b := range l.blocks {
		events = append(events, b...)
	}

	return events
}
