package runner

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nnload"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/perfstats"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

// DualConfig configures a two-model comparison run. Model A is ModelName;
// Model B is ModelNameB. Camera sources are not supported for comparison.
type DualConfig struct {
	Config
	ModelNameB string
}

// NewDualConfig returns a DualConfig with the usual defaults. Note the
// smaller throughput window compared to single model runs.
func NewDualConfig(modelA, modelB string, src source.Spec) DualConfig {
	cfg := DualConfig{
		Config:     NewConfig(modelA, src),
		ModelNameB: modelB,
	}
	cfg.FPSWindow = DefaultCompareFPSWindow
	return cfg
}

// DualRunner drives two models over the same source in lock-step. Each frame
// is decoded once and fed to both engines, and the paired results travel in
// one message, so the comparison is always over pixel-identical input.
type DualRunner struct {
	Log logs.Log

	cfg      DualConfig
	state    atomic.Int32
	mustStop atomic.Bool
	stopped  chan bool
	notify   chan Notification

	// Worker-goroutine only, read by run() after the loop exits
	frames    int
	inference perfstats.TimeAccumulator
}

func NewDualRunner(logger logs.Log, cfg DualConfig) *DualRunner {
	if cfg.FPSWindow <= 0 {
		cfg.FPSWindow = DefaultCompareFPSWindow
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
	if cfg.LoadModel == nil {
		modelsDir := cfg.ModelsDir
		cfg.LoadModel = func(modelName string) (nn.ObjectDetector, error) {
			return nnload.LoadModel(logger, modelsDir, modelName)
		}
	}
	if cfg.OpenSource == nil {
		cfg.OpenSource = func(spec source.Spec) (source.Reader, error) {
			return source.Open(logger, spec)
		}
	}
	return &DualRunner{
		Log:     logger,
		cfg:     cfg,
		stopped: make(chan bool),
		notify:  make(chan Notification, notifyChannelSize),
	}
}

func (r *DualRunner) Notifications() <-chan Notification {
	return r.notify
}

func (r *DualRunner) State() State {
	return State(r.state.Load())
}

// Start launches the background worker. The runner is single use.
func (r *DualRunner) Start() error {
	if r.cfg.Source.Mode == source.ModeCamera {
		return fmt.Errorf("%w: camera sources are not supported for comparison runs", source.ErrSourceOpen)
	}
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return fmt.Errorf("runner already started (state %v)", r.State())
	}
	go r.run()
	return nil
}

// Stop requests a cooperative stop, observed at the next frame boundary.
func (r *DualRunner) Stop() {
	r.mustStop.Store(true)
}

// Wait blocks until the worker has fully wound down.
func (r *DualRunner) Wait() {
	<-r.stopped
}

func (r *DualRunner) run() {
	endState, err := r.runInner()
	if err != nil {
		r.Log.Errorf("Comparison run failed (%v, %v vs %v): %v", r.cfg.Source, r.cfg.ModelName, r.cfg.ModelNameB, err)
		endState = StateFailed
		r.state.Store(int32(StateFailed))
		r.notify <- Notification{Error: &RunError{Err: err}}
	} else {
		r.state.Store(int32(endState))
	}
	r.notify <- Notification{Finished: &Finished{State: endState, Frames: r.frames, InferenceTotal: r.inference.Total}}
	close(r.notify)
	close(r.stopped)
}

func (r *DualRunner) runInner() (State, error) {
	detectorA, err := r.cfg.LoadModel(r.cfg.ModelName)
	if err != nil {
		return StateFailed, fmt.Errorf("model A: %w", err)
	}
	defer detectorA.Close()

	detectorB, err := r.cfg.LoadModel(r.cfg.ModelNameB)
	if err != nil {
		return StateFailed, fmt.Errorf("model B: %w", err)
	}
	defer detectorB.Close()

	src, err := r.cfg.OpenSource(r.cfg.Source)
	if err != nil {
		return StateFailed, err
	}
	defer src.Close()

	r.state.Store(int32(StateRunning))
	r.Log.Infof("Comparison run started: %v, %v vs %v", r.cfg.Source, r.cfg.ModelName, r.cfg.ModelNameB)

	params := &nn.DetectionParams{
		ConfidenceThreshold: r.cfg.Confidence,
		NmsIouThreshold:     r.cfg.IOU,
	}
	windowA := newFPSWindow(r.cfg.FPSWindow)
	windowB := newFPSWindow(r.cfg.FPSWindow)
	checkStop := r.cfg.Source.Mode != source.ModeImage
	total := src.Total()

	for {
		if checkStop && r.mustStop.Load() {
			r.Log.Infof("Comparison run stopped after %v frames, total inference %v", r.frames, r.inference.Total)
			return StateStopped, nil
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			r.Log.Infof("Comparison run finished: %v frames, total inference %v", r.frames, r.inference.Total)
			return StateFinished, nil
		}
		if err != nil {
			return StateFailed, err
		}

		startA := time.Now()
		detectionsA, err := detectorA.DetectObjects(frame.Image, params)
		if err != nil {
			return StateFailed, fmt.Errorf("%w: model A, frame %v: %v", nn.ErrInference, frame.Index, err)
		}
		elapsedA := time.Since(startA)
		timeA := float64(elapsedA.Nanoseconds()) / 1e6

		startB := time.Now()
		detectionsB, err := detectorB.DetectObjects(frame.Image, params)
		if err != nil {
			return StateFailed, fmt.Errorf("%w: model B, frame %v: %v", nn.ErrInference, frame.Index, err)
		}
		elapsedB := time.Since(startB)
		timeB := float64(elapsedB.Nanoseconds()) / 1e6

		windowA.Add(timeA)
		windowB.Add(timeB)
		r.inference.AddSample(elapsedA)
		r.inference.AddSample(elapsedB)
		r.frames++

		r.notify <- Notification{Pair: &PairResult{
			Index:        frame.Index,
			Path:         frame.Path,
			Image:        frame.Image,
			DetectionsA:  detectionsA,
			DetectionsB:  detectionsB,
			InferenceAMS: timeA,
			InferenceBMS: timeB,
		}}
		r.notify <- Notification{Throughput: &Throughput{FPSA: windowA.FPS(), FPSB: windowB.FPS()}}
		if r.cfg.Source.Mode == source.ModeFolder {
			r.notify <- Notification{Progress: &Progress{Done: r.frames, Total: total}}
		}

		if r.cfg.DelayMS > 0 {
			time.Sleep(time.Duration(r.cfg.DelayMS) * time.Millisecond)
		}
	}
}
