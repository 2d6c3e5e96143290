//go:build !gocv
// +build !gocv

package source

import (
	"fmt"

	"github.com/cyclopcam/logs"
)

// Built without the gocv tag: video and camera sources are unavailable.

func openVideo(logger logs.Log, path string) (Reader, error) {
	return nil, fmt.Errorf("%w: binary built without the gocv tag, cannot open video '%v'", ErrSourceOpen, path)
}

func openCamera(logger logs.Log, device int) (Reader, error) {
	return nil, fmt.Errorf("%w: binary built without the gocv tag, cannot open camera %v", ErrSourceOpen, device)
}

// ListCameras always reports no devices without the gocv tag.
func ListCameras(maxProbe int) []int {
	return nil
}
