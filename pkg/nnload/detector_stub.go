//go:build !gocv
// +build !gocv

package nnload

import (
	"fmt"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

// Built without the gocv tag, so there is no detection backend available.
func newDetector(modelPath string, config *nn.ModelConfig) (nn.ObjectDetector, error) {
	return nil, fmt.Errorf("%w: binary built without the gocv tag, no detection backend for '%v'", nn.ErrModelLoad, modelPath)
}
