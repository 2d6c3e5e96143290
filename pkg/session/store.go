package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/gen"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

// Store holds the open session (at most one) and the history of closed
// sessions. History is append-only, except for Clear.
//
// The store is mutated by the foreground in response to runner
// notifications, so in practice all mutation is single threaded, but the
// store carries its own lock so that misuse cannot corrupt it.
type Store struct {
	log logs.Log

	lock    sync.Mutex
	current *Session
	history []*Session
	lastID  string
	idSeq   int
}

func NewStore(logger logs.Log) *Store {
	return &Store{log: logger}
}

// Start opens a new session. If a session is already open we reject with
// ErrSessionState rather than silently discarding its state; callers that
// want replacement semantics must End first.
func (s *Store) Start(mode source.Mode, model string) (*Session, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current != nil {
		return nil, fmt.Errorf("%w: session %v is still open", ErrSessionState, s.current.ID)
	}
	now := time.Now()
	id := now.Format("20060102_150405")
	if id == s.lastID {
		// Two sessions within the same second. Suffix to keep IDs unique
		// within this run of the application.
		s.idSeq++
		id = fmt.Sprintf("%v_%v", id, s.idSeq)
	} else {
		s.lastID = id
		s.idSeq = 1
	}
	s.current = newSession(id, mode, model, now)
	s.log.Infof("Session %v started (mode %v, model %v)", id, mode, model)
	return s.current, nil
}

// AddDetections records one processed frame in the open session.
// A no-op when no session is open.
func (s *Store) AddDetections(frameID int, detections []nn.Detection) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current == nil {
		return
	}
	s.current.addFrame(frameID, detections)
}

// End closes the open session and moves it into history. Idempotent: ending
// when nothing is open does nothing and returns nil.
func (s *Store) End() *Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current == nil {
		return nil
	}
	closed := s.current
	closed.EndTime = time.Now()
	s.history = append(s.history, closed)
	s.current = nil
	stats := closed.Stats()
	s.log.Infof("Session %v ended: %v frames, %v detections, avg confidence %.2f",
		closed.ID, stats.TotalFrames, stats.TotalDetections, stats.AvgConfidence)
	return closed
}

// CurrentStats returns live statistics of the open session, or nil.
func (s *Store) CurrentStats() *Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Stats()
}

// Current returns the open session, or nil.
func (s *Store) Current() *Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current
}

// Sessions returns the closed sessions, oldest first.
func (s *Store) Sessions() []*Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	return gen.CopySlice(s.history)
}

// Clear discards all closed sessions and any open session.
func (s *Store) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.history = nil
	s.current = nil
}
