package runner

import (
	"math"

	"github.com/bmharper/ringbuffer"
)

// DefaultFPSWindow is the rolling window (in frames) for single model runs.
const DefaultFPSWindow = 10

// DefaultCompareFPSWindow is the rolling window for dual model runs.
const DefaultCompareFPSWindow = 5

// fpsWindow keeps the last few per-frame inference times and turns their
// average into a frames-per-second figure.
type fpsWindow struct {
	window int
	ring   ringbuffer.RingP[float64]
}

func newFPSWindow(window int) *fpsWindow {
	if window < 1 {
		window = 1
	}
	return &fpsWindow{
		window: window,
		ring:   ringbuffer.NewRingP[float64](nextPowerOf2(window)),
	}
}

func (w *fpsWindow) Add(ms float64) {
	w.ring.Add(ms)
}

// AverageMS is the mean of the last 'window' samples (fewer if the run is
// younger than the window).
func (w *fpsWindow) AverageMS() float64 {
	n := w.ring.Len()
	count := n
	if count > w.window {
		count = w.window
	}
	if count == 0 {
		return 0
	}
	sum := 0.0
	for i := n - count; i < n; i++ {
		sum += w.ring.Peek(i)
	}
	return sum / float64(count)
}

// FPS is 1000 / AverageMS, or 0 before any samples exist.
func (w *fpsWindow) FPS() float64 {
	avg := w.AverageMS()
	if avg <= 0 {
		return 0
	}
	return 1000.0 / avg
}

func nextPowerOf2(n int) int {
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
