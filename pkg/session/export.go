package session

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Wire shape of the JSON export. Boxes are flattened to [x1,y1,x2,y2] and
// timestamps are ISO-8601, so the files are easy to consume from other
// tooling.

type jsonDetection struct {
	Bbox       [4]float32 `json:"bbox"`
	Confidence float32    `json:"confidence"`
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
}

type jsonFrame struct {
	FrameID    int             `json:"frame_id"`
	Timestamp  string          `json:"timestamp"`
	Detections []jsonDetection `json:"detections"`
}

type jsonSession struct {
	SessionID  string      `json:"session_id"`
	Mode       string      `json:"mode"`
	Model      string      `json:"model"`
	StartTime  string      `json:"start_time"`
	EndTime    string      `json:"end_time"`
	Detections []jsonFrame `json:"detections"`
	Stats      *Stats      `json:"stats"`
}

const csvTimeFormat = "2006-01-02 15:04:05"

func sessionToJSON(s *Session) *jsonSession {
	out := &jsonSession{
		SessionID:  s.ID,
		Mode:       string(s.Mode),
		Model:      s.Model,
		StartTime:  s.StartTime.Format(time.RFC3339),
		EndTime:    s.EndTime.Format(time.RFC3339),
		Detections: make([]jsonFrame, 0, len(s.Frames)),
		Stats:      s.Stats(),
	}
	for _, frame := range s.Frames {
		jf := jsonFrame{
			FrameID:    frame.FrameID,
			Timestamp:  frame.Timestamp.Format(time.RFC3339),
			Detections: make([]jsonDetection, 0, len(frame.Detections)),
		}
		for _, det := range frame.Detections {
			jf.Detections = append(jf.Detections, jsonDetection{
				Bbox:       [4]float32{det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2},
				Confidence: det.Confidence,
				ClassID:    det.Class,
				ClassName:  det.ClassName,
			})
		}
		out.Detections = append(out.Detections, jf)
	}
	return out
}

// ExportJSON writes the full history (every frame and detection of every
// closed session) to a JSON file.
func (s *Store) ExportJSON(path string) error {
	sessions := s.Sessions()
	out := make([]*jsonSession, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionToJSON(sess))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// ExportCSV writes a summary of the history, one row per closed session.
func (s *Store) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	writer := csv.NewWriter(f)
	if err := writer.Write([]string{
		"Session ID", "Mode", "Model", "Start Time", "End Time",
		"Total Frames", "Total Detections", "Unique Classes", "Avg Confidence",
	}); err != nil {
		return err
	}
	for _, sess := range s.Sessions() {
		stats := sess.Stats()
		if err := writer.Write([]string{
			sess.ID,
			string(sess.Mode),
			sess.Model,
			sess.StartTime.Format(csvTimeFormat),
			sess.EndTime.Format(csvTimeFormat),
			strconv.Itoa(stats.TotalFrames),
			strconv.Itoa(stats.TotalDetections),
			strconv.Itoa(len(stats.UniqueClasses)),
			fmt.Sprintf("%.2f", stats.AvgConfidence),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
