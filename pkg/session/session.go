// Package session accumulates detection results and derived statistics for
// bounded runs of detection activity, and keeps the history of completed
// runs for export and analytics.
package session

import (
	"errors"
	"sort"
	"time"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/perfstats"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

// ErrSessionState means a store operation was attempted when its
// precondition did not hold (eg starting a session while one is open).
// Never fatal to a run.
var ErrSessionState = errors.New("session state error")

// FrameRecord is one processed frame inside a session.
// Insertion order is temporal order.
type FrameRecord struct {
	FrameID    int            `json:"frame_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Detections []nn.Detection `json:"detections"`
}

// Stats is a snapshot of the aggregate statistics of a session.
// It is derived state, always consistent with the frames recorded so far.
type Stats struct {
	TotalFrames     int            `json:"total_frames"`
	TotalDetections int            `json:"total_detections"`
	UniqueClasses   []string       `json:"unique_classes"`
	AvgConfidence   float64        `json:"avg_confidence"`
	ClassCounts     map[string]int `json:"class_counts"`
}

// Session is one bounded run of detection activity.
type Session struct {
	ID        string
	Mode      source.Mode
	Model     string
	StartTime time.Time
	EndTime   time.Time // zero until the session is closed
	Frames    []FrameRecord

	classCounts     map[string]int
	totalDetections int
	confidence      perfstats.Accumulator
}

func newSession(id string, mode source.Mode, model string, start time.Time) *Session {
	return &Session{
		ID:          id,
		Mode:        mode,
		Model:       model,
		StartTime:   start,
		classCounts: map[string]int{},
	}
}

// IsOpen returns true until the session has been closed by its store.
func (s *Session) IsOpen() bool {
	return s.EndTime.IsZero()
}

func (s *Session) addFrame(frameID int, detections []nn.Detection) {
	s.Frames = append(s.Frames, FrameRecord{
		FrameID:    frameID,
		Timestamp:  time.Now(),
		Detections: detections,
	})
	s.totalDetections += len(detections)
	for _, det := range detections {
		s.classCounts[det.ClassName]++
		s.confidence.AddSample(float64(det.Confidence))
	}
}

// Stats computes a snapshot of the session's aggregate statistics.
func (s *Session) Stats() *Stats {
	classes := make([]string, 0, len(s.classCounts))
	counts := make(map[string]int, len(s.classCounts))
	for name, count := range s.classCounts {
		classes = append(classes, name)
		counts[name] = count
	}
	sort.Strings(classes)
	return &Stats{
		TotalFrames:     len(s.Frames),
		TotalDetections: s.totalDetections,
		UniqueClasses:   classes,
		AvgConfidence:   s.confidence.Average(),
		ClassCounts:     counts,
	}
}
