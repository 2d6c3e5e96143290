// Package nn is the object detection interface layer.
// To load a concrete model, use the nnload package.
package nn

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/bmharper/cimg/v2"
)

const DefaultConfidenceThreshold = 0.25
const DefaultNmsIouThreshold = 0.45

// ErrModelLoad is a fatal error for a run: the model file could not be
// resolved, read, or parsed.
var ErrModelLoad = errors.New("model load failed")

// ErrInference is a fatal error for a run: the engine failed on a frame.
// We do not retry a failed frame.
var ErrInference = errors.New("inference failed")

// Object detection parameters
type DetectionParams struct {
	ConfidenceThreshold float32 // Value between 0 and 1. Lower values will find more objects. Zero value will use the default.
	NmsIouThreshold     float32 // Value between 0 and 1. Lower values will merge more boxes together into one. Zero value will use the default.
}

// Create a default DetectionParams object
func NewDetectionParams() *DetectionParams {
	return &DetectionParams{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		NmsIouThreshold:     DefaultNmsIouThreshold,
	}
}

// ObjectDetector is given an image, and returns zero or more detected objects
type ObjectDetector interface {
	// Close closes the detector (you MUST call this when finished, because there
	// may be native resources underneath)
	Close()

	// DetectObjects returns a list of objects detected in the image.
	// img is expected to be a 24-bit RGB image.
	// You can create a default DetectionParams with NewDetectionParams()
	DetectObjects(img *cimg.Image, params *DetectionParams) ([]Detection, error)

	// Classes returns the label table of the model. Detection.Class is an
	// index into this slice. Callers assume the slice remains constant once
	// the detector has been created.
	Classes() []string
}

// ModelConfig is saved in a JSON file along with the weights of the model
type ModelConfig struct {
	Architecture string   `json:"architecture"` // eg "yolov8"
	Width        int      `json:"width"`        // eg 640
	Height       int      `json:"height"`       // eg 640
	Classes      []string `json:"classes"`      // eg ["person", "bicycle", "car", ...]
}

// Load model config from a JSON file
func LoadModelConfig(filename string) (*ModelConfig, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config := &ModelConfig{}
	err = json.Unmarshal(b, config)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Load a text file with class names on each line
func LoadClassFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	classes := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			classes = append(classes, line)
		}
	}
	return classes, nil
}
