package overlay

import (
	"testing"

	"github.com/bmharper/cimg/v2"
	"github.com/stretchr/testify/require"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

func TestDrawDoesNotModifyInput(t *testing.T) {
	img := cimg.NewImage(64, 48, cimg.PixelFormatRGB)
	for i := range img.Pixels {
		img.Pixels[i] = 40
	}
	before := make([]byte, len(img.Pixels))
	copy(before, img.Pixels)

	detections := []nn.Detection{
		{Box: nn.MakeBox(10, 10, 40, 30), Confidence: 0.85, Class: 0, ClassName: "person"},
	}
	out := Draw(img, detections, 2)

	require.NotSame(t, img, out)
	require.Equal(t, img.Width, out.Width)
	require.Equal(t, img.Height, out.Height)
	require.Equal(t, before, img.Pixels)

	// Something must actually have been drawn
	changed := false
	for i := range out.Pixels {
		if out.Pixels[i] != before[i] {
			changed = true
			break
		}
	}
	require.True(t, changed)
}

func TestDrawWithNoDetections(t *testing.T) {
	img := cimg.NewImage(16, 16, cimg.PixelFormatRGB)
	out := Draw(img, nil, 1)
	require.Equal(t, img.Pixels, out.Pixels)
}

func TestClassColorIsStable(t *testing.T) {
	require.Equal(t, classColor(3), classColor(3))
	require.Equal(t, classColor(0), classColor(len(palette)))
	require.Equal(t, classColor(0), classColor(-7))
}

func TestResizeToFit(t *testing.T) {
	img := cimg.NewImage(100, 50, cimg.PixelFormatRGB)

	out := ResizeToFit(img, 50, 50)
	require.Equal(t, 50, out.Width)
	require.Equal(t, 25, out.Height)

	// never upscale
	require.Same(t, img, ResizeToFit(img, 200, 200))
	require.Same(t, img, ResizeToFit(img, 0, 0))

	out = ResizeToFit(img, 0, 25)
	require.Equal(t, 50, out.Width)
	require.Equal(t, 25, out.Height)
}
