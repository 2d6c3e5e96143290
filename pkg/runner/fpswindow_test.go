package runner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFPSWindow(t *testing.T) {
	w := newFPSWindow(10)
	require.Equal(t, 0.0, w.FPS())

	for i := 0; i < 5; i++ {
		w.Add(10)
	}
	require.InDelta(t, 10.0, w.AverageMS(), 1e-9)
	require.InDelta(t, 100.0, w.FPS(), 1e-9)
}

func TestFPSWindowRollsOldSamplesOut(t *testing.T) {
	w := newFPSWindow(4)
	for i := 0; i < 8; i++ {
		w.Add(100)
	}
	for i := 0; i < 4; i++ {
		w.Add(20)
	}
	// only the last 4 samples count
	require.InDelta(t, 20.0, w.AverageMS(), 1e-9)
	require.InDelta(t, 50.0, w.FPS(), 1e-9)
}

func TestNextPowerOf2(t *testing.T) {
	require.Equal(t, 1, nextPowerOf2(1))
	require.Equal(t, 4, nextPowerOf2(3))
	require.Equal(t, 8, nextPowerOf2(8))
	require.Equal(t, 16, nextPowerOf2(10))
}
