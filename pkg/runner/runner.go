// Package runner drives detection models against frame sources on a
// background goroutine, publishing results to the foreground through a
// notification channel. At most one runner is active at a time; see
// detector.Controller for the join-before-replace discipline.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nnload"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/overlay"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/perfstats"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/source"
)

// ErrOutputWrite is a fatal error for video runs: the output artifact could
// not be created or written.
var ErrOutputWrite = errors.New("output write failed")

// Size of the notification channel. When the foreground falls behind, the
// worker blocks rather than dropping frames, so every processed frame yields
// exactly one result message.
const notifyChannelSize = 64

// Config for a single model run.
type Config struct {
	ModelName string
	Source    source.Spec
	ModelsDir string // where model weights live (default "models")
	OutputDir string // where video auto-save artifacts go (default "results")

	Confidence       float32 // confidence threshold, 0 means default
	IOU              float32 // NMS IOU threshold, 0 means default
	LineWidth        int     // overlay line width, display hint only
	DelayMS          int     // artificial per-frame delay for pacing
	InferenceEnabled bool    // false = camera preview without detection
	FPSWindow        int     // rolling throughput window in frames, 0 means DefaultFPSWindow

	// Seams for tests. Left nil, the real implementations are used.
	LoadModel    func(modelName string) (nn.ObjectDetector, error)
	OpenSource   func(spec source.Spec) (source.Reader, error)
	NewVideoSink func(path string, fps float64, width, height int) (VideoSink, error)
}

// NewConfig returns a Config with the usual defaults.
func NewConfig(modelName string, src source.Spec) Config {
	return Config{
		ModelName:        modelName,
		Source:           src,
		ModelsDir:        "models",
		OutputDir:        "results",
		Confidence:       nn.DefaultConfidenceThreshold,
		IOU:              nn.DefaultNmsIouThreshold,
		LineWidth:        1,
		InferenceEnabled: true,
		FPSWindow:        DefaultFPSWindow,
	}
}

// Runner drives one model over one source on a background goroutine.
type Runner struct {
	Log logs.Log

	cfg      Config
	state    atomic.Int32
	mustStop atomic.Bool
	stopped  chan bool
	notify   chan Notification

	// Worker-goroutine only, read by run() after the loop exits
	frames    int
	inference perfstats.TimeAccumulator
}

func NewRunner(logger logs.Log, cfg Config) *Runner {
	if cfg.FPSWindow <= 0 {
		cfg.FPSWindow = DefaultFPSWindow
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "results"
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
	if cfg.NewVideoSink == nil {
		cfg.NewVideoSink = newVideoSink
	}
	return &Runner{
		Log:     logger,
		cfg:     cfg,
		stopped: make(chan bool),
		notify:  make(chan Notification, notifyChannelSize),
	}
}

// Notifications returns the channel of result messages. It is closed after
// the Finished message.
func (r *Runner) Notifications() <-chan Notification {
	return r.notify
}

func (r *Runner) State() State {
	return State(r.state.Load())
}

// Start launches the background worker. The runner is single use.
func (r *Runner) Start() error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return fmt.Errorf("runner already started (state %v)", r.State())
	}
	go r.run()
	return nil
}

// Stop requests a cooperative stop. The worker observes the flag at the next
// frame boundary, never mid-inference, and then winds down in an orderly way.
func (r *Runner) Stop() {
	r.mustStop.Store(true)
}

// Wait blocks until the worker has fully wound down and released its
// resources. Callers replacing an active run must Stop and Wait first.
func (r *Runner) Wait() {
	<-r.stopped
}

func (r *Runner) run() {
	endState, err := r.runInner()
	if err != nil {
		r.Log.Errorf("Run failed (%v, model %v): %v", r.cfg.Source, r.cfg.ModelName, err)
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

// runInner performs the whole run and releases every resource before
// returning, so that a Failed run is just as clean as a stopped one.
func (r *Runner) runInner() (State, error) {
	var detector nn.ObjectDetector
	if r.cfg.InferenceEnabled {
		d, err := r.cfg.LoadModel(r.cfg.ModelName)
		if err != nil {
			return StateFailed, err
		}
		detector = d
		defer detector.Close()
	}

	src, err := r.cfg.OpenSource(r.cfg.Source)
	if err != nil {
		return StateFailed, err
	}
	defer src.Close()

	var sink VideoSink
	defer func() {
		if sink != nil {
			sink.Close()
		}
	}()

	r.state.Store(int32(StateRunning))
	r.Log.Infof("Run started: %v, model %v", r.cfg.Source, r.cfg.ModelName)

	params := &nn.DetectionParams{
		ConfidenceThreshold: r.cfg.Confidence,
		NmsIouThreshold:     r.cfg.IOU,
	}
	window := newFPSWindow(r.cfg.FPSWindow)
	// Single images are one-shot: there is no frame boundary at which a stop
	// could be observed.
	checkStop := r.cfg.Source.Mode != source.ModeImage
	total := src.Total()

	for {
		if checkStop && r.mustStop.Load() {
			r.Log.Infof("Run stopped after %v frames, total inference %v", r.frames, r.inference.Total)
			return StateStopped, nil
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			r.Log.Infof("Run finished: %v frames, total inference %v (avg %v)", r.frames, r.inference.Total, r.inference.Average())
			return StateFinished, nil
		}
		if err != nil {
			return StateFailed, err
		}

		result := FrameResult{
			Index:   frame.Index,
			Path:    frame.Path,
			Image:   frame.Image,
			Preview: detector == nil,
		}
		if detector != nil {
			start := time.Now()
			detections, err := detector.DetectObjects(frame.Image, params)
			if err != nil {
				return StateFailed, fmt.Errorf("%w: frame %v: %v", nn.ErrInference, frame.Index, err)
			}
			result.Detections = detections
			elapsed := time.Since(start)
			result.InferenceMS = float64(elapsed.Nanoseconds()) / 1e6
			window.Add(result.InferenceMS)
			r.inference.AddSample(elapsed)
		}

		if r.cfg.Source.Mode == source.ModeVideo {
			if sink == nil {
				sink, err = r.createVideoSink(src, frame)
				if err != nil {
					return StateFailed, err
				}
			}
			annotated := overlay.Draw(frame.Image, result.Detections, r.cfg.LineWidth)
			if err := sink.Write(annotated); err != nil {
				return StateFailed, fmt.Errorf("%w: %v", ErrOutputWrite, err)
			}
		}

		r.frames++
		r.notify <- Notification{Frame: &result}
		if detector != nil {
			r.notify <- Notification{Throughput: &Throughput{FPSA: window.FPS()}}
		}
		if r.cfg.Source.Mode == source.ModeFolder {
			r.notify <- Notification{Progress: &Progress{Done: r.frames, Total: total}}
		}

		if r.cfg.DelayMS > 0 {
			time.Sleep(time.Duration(r.cfg.DelayMS) * time.Millisecond)
		}
	}
}

func (r *Runner) createVideoSink(src source.Reader, frame *source.Frame) (VideoSink, error) {
	fps := src.FPS()
	if fps <= 0 {
		fps = 20
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0777); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	path := filepath.Join(r.cfg.OutputDir, "output_"+time.Now().Format("20060102_150405")+".mp4")
	sink, err := r.cfg.NewVideoSink(path, fps, frame.Image.Width, frame.Image.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	r.Log.Infof("Auto-saving annotated video to %v (%.1f FPS)", path, fps)
	return sink, nil
}
