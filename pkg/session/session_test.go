package session

import (
	"testing"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

func det(class int, name string, confidence float32) nn.Detection {
	return nn.Detection{
		Box:        nn.MakeBox(0, 0, 10, 10),
		Confidence: confidence,
		Class:      class,
		ClassName:  name,
	}
}

func TestStats(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeFolder, "yolov8n")
	require.NoError(t, err)

	store.AddDetections(0, []nn.Detection{
		det(0, "person", 0.9),
		det(0, "person", 0.8),
		det(2, "car", 0.7),
	})
	store.AddDetections(1, nil)

	stats := store.CurrentStats()
	require.NotNil(t, stats)
	require.Equal(t, 2, stats.TotalFrames)
	require.Equal(t, 3, stats.TotalDetections)
	require.InDelta(t, 0.8, stats.AvgConfidence, 1e-6)
	require.Equal(t, []string{"car", "person"}, stats.UniqueClasses)
	require.Equal(t, map[string]int{"person": 2, "car": 1}, stats.ClassCounts)
}

func TestSingleFrameAverage(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeImage, "yolov8n")
	require.NoError(t, err)
	store.AddDetections(0, []nn.Detection{
		det(15, "cat", 0.6),
		det(16, "dog", 0.4),
	})
	closed := store.End()
	require.NotNil(t, closed)
	stats := closed.Stats()
	require.Equal(t, 1, stats.TotalFrames)
	require.Equal(t, 2, stats.TotalDetections)
	require.InDelta(t, 0.5, stats.AvgConfidence, 1e-6)
}

func TestStartRejectsWhenOpen(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeImage, "a")
	require.NoError(t, err)
	_, err = store.Start(source.ModeImage, "b")
	require.ErrorIs(t, err, ErrSessionState)

	store.End()
	_, err = store.Start(source.ModeImage, "b")
	require.NoError(t, err)
}

func TestEndIsIdempotent(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	require.Nil(t, store.End())

	_, err := store.Start(source.ModeImage, "a")
	require.NoError(t, err)
	first := store.End()
	require.NotNil(t, first)
	require.False(t, first.EndTime.IsZero())
	require.Nil(t, store.End())
	require.Len(t, store.Sessions(), 1)
}

func TestAddDetectionsWithoutSession(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	store.AddDetections(0, []nn.Detection{det(0, "person", 0.9)})
	require.Nil(t, store.CurrentStats())
	require.Empty(t, store.Sessions())
}

func TestUniqueIDsWithinSameSecond(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	seen := map[string]bool{}
	start := time.Now()
	for i := 0; i < 3; i++ {
		sess, err := store.Start(source.ModeImage, "a")
		require.NoError(t, err)
		require.False(t, seen[sess.ID], "duplicate session id %v", sess.ID)
		seen[sess.ID] = true
		store.End()
	}
	// The loop runs in well under a second, so at least two sessions shared
	// a wall clock second and needed the suffix.
	require.Less(t, time.Since(start), time.Second)
}

func TestClear(t *testing.T) {
	store := NewStore(logs.NewTestingLog(t))
	_, err := store.Start(source.ModeImage, "a")
	require.NoError(t, err)
	store.End()
	require.Len(t, store.Sessions(), 1)
	store.Clear()
	require.Empty(t, store.Sessions())
	require.Nil(t, store.Current())
}
