//go:build !gocv

package runner

import "fmt"

func newVideoSink(path string, fps float64, width, height int) (VideoSink, error) {
	return nil, fmt.Errorf("%w: video output requires a binary built with the gocv tag", ErrOutputWrite)
}
