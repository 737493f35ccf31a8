package profiler

import (
	"sort"
	"sync"
	"time"
)

// Live-session registry for inspection tooling. The monitor package lists
// sessions and serializes their state through it.
var (
	trackMu      sync.Mutex
	liveSessions = map[string]*session{}
)

func trackSession(s *session) {
	trackMu.Lock()
	defer trackMu.Unlock()

	liveSessions[s.id] = s
}

func untrackSession(s *session) {
	trackMu.Lock()
	defer trackMu.Unlock()

	delete(liveSessions, s.id)
}

// SessionInfo describes one live session.
type SessionInfo struct {
	ID                 string
	Mode               string
	CaptureInputShapes bool
	StartedAt          time.Time
	Flows              int
	Events             int64
}

// Sessions lists the live sessions, oldest first.
func Sessions() []SessionInfo {
	trackMu.Lock()
	defer trackMu.Unlock()

	infos := make([]SessionInfo, 0, len(liveSessions))
	for _, s := range liveSessions {
		infos = append(infos, s.info())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})

	return infos
}

// FlowCount is one flow's recorded-event tally inside a SessionDetail.
type FlowCount struct {
	FlowID uint64
	Events int64
}

// SessionDetail is a point-in-time copy of one session's state. It shares
// nothing with the live session, so callers may serialize it at leisure
// while flows keep recording.
type SessionDetail struct {
	SessionInfo
	FlowCounts []FlowCount
}

// SessionState returns a snapshot of the session behind an ID for deep
// serialization, or false when no live session has that ID.
func SessionState(id string) (any, bool) {
	trackMu.Lock()
	s, ok := liveSessions[id]
	trackMu.Unlock()

	if !ok {
		return nil, false
	}

	return s.detail(), true
}

func (s *session) info() SessionInfo {
	s.mu.Lock()
	flows := len(s.lists)
	var events int64
	for _, l := range s.lists {
		events += l.count.Load()
	}
	s.mu.Unlock()

	return SessionInfo{
		ID:                 s.id,
		Mode:               s.cfg.Mode.String(),
		CaptureInputShapes: s.cfg.CaptureInputShapes,
		StartedAt:          s.startedAt,
		Flows:              flows,
		Events:             events,
	}
}

// detail copies the per-flow tallies out under the session mutex, the same
// mutex that guards flow-list creation, so the copy observes a consistent
// point in the session's life.
func (s *session) detail() SessionDetail {
	s.mu.Lock()
	counts := make([]FlowCount, 0, len(s.lists))
	for f, l := range s.lists {
		counts = append(counts, FlowCount{FlowID: f, Events: l.count.Load()})
	}
	s.mu.Unlock()

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].FlowID < counts[j].FlowID
	})

	var events int64
	for _, c := range counts {
		events += c.Events
	}

	return SessionDetail{
		SessionInfo: SessionInfo{
			ID:                 s.id,
			Mode:               s.cfg.Mode.String(),
			CaptureInputShapes: s.cfg.CaptureInputShapes,
			StartedAt:          s.startedAt,
			Flows:              len(counts),
			Events:             events,
		},
		FlowCounts: counts,
	}
}
