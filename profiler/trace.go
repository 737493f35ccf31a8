package profiler

// FlowEvents is the ordered event list of one flow.
type FlowEvents struct {
	FlowID uint64
	Events []Event
}

// Trace is the consolidated result of a session, one list per flow that
// recorded at least one event, ordered by flow ID. Within a list the
// events keep their recording order.
type Trace struct {
	Lists []FlowEvents
}

// Events returns every event of the trace in a single slice, lists
// concatenated in order.
func (t Trace) Events() []Event {
	var n int
	for _, l := range t.Lists {
		n += len(l.Events)
	}

	events := make([]Event, 0, n)
	for _, l := range t.Lists {
		events = append(events, l.Events...)
	}

	return events
}
