package runner

import (
	"time"

	"github.com/bmharper/cimg/v2"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

// Notification is one message from a worker to the foreground. Exactly one
// field is non-nil. Messages are published in strict source order: frame N
// is always published before frame N+1, and a dual run's paired results for
// one frame always travel in a single message.
type Notification struct {
	Frame      *FrameResult
	Pair       *PairResult
	Progress   *Progress
	Throughput *Throughput
	Error      *RunError
	Finished   *Finished
}

// FrameResult is the outcome of one inference call on one frame.
//
// Image is owned by the runner for the duration of the publish call;
// receivers that retain it must copy (imagex.Clone).
type FrameResult struct {
	Index       int
	Path        string // originating file for folder runs, else empty
	Image       *cimg.Image
	Detections  []nn.Detection
	InferenceMS float64 // wall clock duration of the inference call
	Preview     bool    // true when inference was administratively disabled for this frame
}

// PairResult carries both engines' results for the same underlying frame,
// so comparisons are apples-to-apples. Image ownership is the same as
// FrameResult.
type PairResult struct {
	Index        int
	Path         string
	Image        *cimg.Image
	DetectionsA  []nn.Detection
	DetectionsB  []nn.Detection
	InferenceAMS float64
	InferenceBMS float64
}

// Progress is published after each item of a folder run.
type Progress struct {
	Done  int
	Total int
}

// Throughput is the rolling-window inference-only frame rate: 1000 divided
// by the average per-frame inference milliseconds over the last few frames.
// This is a theoretical rate that excludes publish and pacing overhead, so
// it can overstate real-world throughput. FPSB is only set for dual runs.
type Throughput struct {
	FPSA float64
	FPSB float64
}

// RunError is the single fatal error of a failed run. The worker releases
// all of its resources before this message is observable.
type RunError struct {
	Err error
}

// Finished is the last message of every run; the channel is closed after it.
// InferenceTotal is the summed wall clock time of every inference call made
// during the run (both engines, for a comparison run).
type Finished struct {
	State          State
	Frames         int
	InferenceTotal time.Duration
}
