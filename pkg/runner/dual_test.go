package runner

import (
	"fmt"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

func testDualConfig(mode source.Mode, engines map[string]*fakeEngine, reader *fakeReader) DualConfig {
	cfg := NewDualConfig("alpha", "beta", source.Spec{Mode: mode, Path: "testdata"})
	cfg.LoadModel = func(modelName string) (nn.ObjectDetector, error) {
		engine := engines[modelName]
		if engine == nil {
			return nil, fmt.Errorf("%w: %v", nn.ErrModelLoad, modelName)
		}
		return engine, nil
	}
	cfg.OpenSource = func(spec source.Spec) (source.Reader, error) { return reader, nil }
	return cfg
}

func TestDualRunFeedsBothModelsTheSameFrame(t *testing.T) {
	engineA := &fakeEngine{detections: []nn.Detection{{Confidence: 0.9, ClassName: "person"}}}
	engineB := &fakeEngine{detections: []nn.Detection{{Confidence: 0.8, ClassName: "person"}, {Confidence: 0.7, ClassName: "dog"}}}
	reader := &fakeReader{n: 4}
	engines := map[string]*fakeEngine{"alpha": engineA, "beta": engineB}
	r := NewDualRunner(logs.NewTestingLog(t), testDualConfig(source.ModeFolder, engines, reader))
	require.NoError(t, r.Start())

	pairs := []*PairResult{}
	throughputs := []*Throughput{}
	var finished *Finished
	for n := range r.Notifications() {
		switch {
		case n.Pair != nil:
			pairs = append(pairs, n.Pair)
		case n.Throughput != nil:
			throughputs = append(throughputs, n.Throughput)
		case n.Finished != nil:
			finished = n.Finished
		}
	}
	r.Wait()

	require.Len(t, pairs, 4)
	for i, p := range pairs {
		require.Equal(t, i, p.Index)
		require.Len(t, p.DetectionsA, 1)
		require.Len(t, p.DetectionsB, 2)
	}
	// The comparison is only meaningful if both engines saw identical pixels.
	require.Equal(t, 4, engineA.calls)
	require.Equal(t, 4, engineB.calls)
	for i := range engineA.images {
		require.Same(t, engineA.images[i], engineB.images[i])
	}
	require.Len(t, throughputs, 4)
	require.Equal(t, StateFinished, finished.State)
	require.Equal(t, 4, finished.Frames)
	require.True(t, engineA.closed)
	require.True(t, engineB.closed)
	require.True(t, reader.closed)
}

func TestDualRunRejectsCamera(t *testing.T) {
	engines := map[string]*fakeEngine{"alpha": {}, "beta": {}}
	reader := &fakeReader{n: 1}
	r := NewDualRunner(logs.NewTestingLog(t), testDualConfig(source.ModeCamera, engines, reader))
	err := r.Start()
	require.ErrorIs(t, err, source.ErrSourceOpen)
	require.Equal(t, StateIdle, r.State())
}

func TestDualRunModelBLoadFailure(t *testing.T) {
	engineA := &fakeEngine{}
	engines := map[string]*fakeEngine{"alpha": engineA}
	reader := &fakeReader{n: 1}
	r := NewDualRunner(logs.NewTestingLog(t), testDualConfig(source.ModeImage, engines, reader))
	require.NoError(t, r.Start())

	var runErr *RunError
	for n := range r.Notifications() {
		if n.Error != nil {
			runErr = n.Error
		}
	}
	r.Wait()
	require.ErrorIs(t, runErr.Err, nn.ErrModelLoad)
	// model A was loaded before B failed, and must still be released
	require.True(t, engineA.closed)
	require.Equal(t, StateFailed, r.State())
}

func TestDualRunStop(t *testing.T) {
	engines := map[string]*fakeEngine{"alpha": {}, "beta": {}}
	reader := &fakeReader{n: 1000}
	r := NewDualRunner(logs.NewTestingLog(t), testDualConfig(source.ModeFolder, engines, reader))
	reader.onNext = func(i int) {
		if i == 1 {
			r.Stop()
		}
	}
	require.NoError(t, r.Start())

	pairs := 0
	var finished *Finished
	for n := range r.Notifications() {
		switch {
		case n.Pair != nil:
			pairs++
		case n.Finished != nil:
			finished = n.Finished
		}
	}
	r.Wait()
	require.Equal(t, 2, pairs)
	require.Equal(t, StateStopped, finished.State)
}
