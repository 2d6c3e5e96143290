package session

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

func TestExportJSON(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeImage, "yolov8n")
	require.NoError(t, err)
	store.AddDetections(0, []nn.Detection{
		{Box: nn.MakeBox(1, 2, 3, 4), Confidence: 0.75, Class: 0, ClassName: "person"},
	})
	closed := store.End()

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, store.ExportJSON(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	sessions := []jsonSession{}
	require.NoError(t, json.Unmarshal(raw, &sessions))
	require.Len(t, sessions, 1)

	s := sessions[0]
	require.Equal(t, closed.ID, s.SessionID)
	require.Equal(t, "image", s.Mode)
	require.Equal(t, "yolov8n", s.Model)
	require.NotEmpty(t, s.StartTime)
	require.NotEmpty(t, s.EndTime)
	require.Len(t, s.Detections, 1)
	require.Equal(t, 0, s.Detections[0].FrameID)
	require.Len(t, s.Detections[0].Detections, 1)
	d := s.Detections[0].Detections[0]
	require.Equal(t, [4]float32{1, 2, 3, 4}, d.Bbox)
	require.Equal(t, float32(0.75), d.Confidence)
	require.Equal(t, "person", d.ClassName)
	require.Equal(t, 1, s.Stats.TotalFrames)
	require.Equal(t, 1, s.Stats.TotalDetections)
}

func TestExportCSV(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeFolder, "yolov8s")
	require.NoError(t, err)
	store.AddDetections(0, []nn.Detection{
		{Box: nn.MakeBox(1, 2, 3, 4), Confidence: 0.5, Class: 0, ClassName: "person"},
		{Box: nn.MakeBox(5, 6, 7, 8), Confidence: 0.7, Class: 2, ClassName: "car"},
	})
	store.End()

	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, store.ExportCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{
		"Session ID", "Mode", "Model", "Start Time", "End Time",
		"Total Frames", "Total Detections", "Unique Classes", "Avg Confidence",
	}, rows[0])
	require.Equal(t, "folder", rows[1][1])
	require.Equal(t, "yolov8s", rows[1][2])
	require.Equal(t, "1", rows[1][5])
	require.Equal(t, "2", rows[1][6])
	require.Equal(t, "2", rows[1][7])
	require.Equal(t, "0.60", rows[1][8])
}
