// Package nnload wraps up our 'nn' interface layer, and has a concrete
// reference to the detection backend (OpenCV DNN via gocv), so that callers
// can load a model with one function and not know the implementation details.
//
// Model weights live in a conventional models directory. A model name such
// as "yolov8n" resolves to "<modelsDir>/yolov8n.onnx", with a fallback to a
// bare "yolov8n.onnx" in the working directory.
package nnload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cyclopcam/logs"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

const modelExtension = ".onnx"

// DefaultModelName is what we advertise when the models directory is empty
// or absent.
const DefaultModelName = "yolov8n"

// ResolveModelPath turns a model name into a weights file on disk.
// We first look inside modelsDir, and then for a bare filename relative to
// the working directory. If neither exists, we fail with nn.ErrModelLoad.
func ResolveModelPath(modelsDir, modelName string) (string, error) {
	name := strings.TrimSuffix(modelName, modelExtension)
	primary := filepath.Join(modelsDir, name+modelExtension)
	if _, err := os.Stat(primary); err == nil {
		return primary, nil
	}
	fallback := name + modelExtension
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: model '%v' not found at '%v' or '%v'", nn.ErrModelLoad, modelName, primary, fallback)
}

// ListModels returns the sorted names of all model files in modelsDir,
// without their extension. If the directory is missing or holds no models,
// we return the default model name, so that a UI always has something to show.
func ListModels(modelsDir string) []string {
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		return []string{DefaultModelName}
	}
	models := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), modelExtension) {
			models = append(models, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		}
	}
	if len(models) == 0 {
		return []string{DefaultModelName}
	}
	sort.Strings(models)
	return models
}

// LoadModel loads a detection model from disk.
// The label table is read from "<model>.json" (a nn.ModelConfig), or from a
// "<model>.txt" class file, falling back to the COCO classes.
func LoadModel(logger logs.Log, modelsDir, modelName string) (nn.ObjectDetector, error) {
	modelPath, err := ResolveModelPath(modelsDir, modelName)
	if err != nil {
		return nil, err
	}
	config := configForModel(logger, modelPath)
	logger.Infof("Loading model '%v' from %v (%v classes)", modelName, modelPath, len(config.Classes))
	return newDetector(modelPath, config)
}

func configForModel(logger logs.Log, modelPath string) *nn.ModelConfig {
	base := strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
	if config, err := nn.LoadModelConfig(base + ".json"); err == nil && len(config.Classes) != 0 {
		return config
	}
	config := &nn.ModelConfig{}
	if classes, err := nn.LoadClassFile(base + ".txt"); err == nil && len(classes) != 0 {
		config.Classes = classes
		return config
	}
	logger.Infof("No class file for %v, assuming COCO classes", modelPath)
	config.Classes = nn.COCOClasses
	return config
}
