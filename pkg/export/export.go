// Package export saves annotated detection results to disk: single frame
// snapshots with a text sidecar, raw detections as JSON, and batch runs with
// a summary report.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmharper/cimg/v2"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/overlay"
)

const timestampFormat = "20060102_150405"

// BatchItem is one processed image in a batch run.
type BatchItem struct {
	Path       string
	Image      *cimg.Image
	Detections []nn.Detection
}

func writeJPEG(path string, img *cimg.Image) error {
	return img.WriteJPEG(path, cimg.MakeCompressParams(cimg.Sampling420, 95, 0), 0644)
}

// SaveFrame writes the frame with detections drawn onto it as
// detection_<timestamp>.jpg inside outputDir, alongside a .txt sidecar
// listing each detection. Returns the path of the saved image.
func SaveFrame(img *cimg.Image, detections []nn.Detection, outputDir string, lineWidth int) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	timestamp := time.Now().Format(timestampFormat)
	path := filepath.Join(outputDir, "detection_"+timestamp+".jpg")

	annotated := overlay.Draw(img, detections, lineWidth)
	if err := writeJPEG(path, annotated); err != nil {
		return "", err
	}

	sidecar := strings.Builder{}
	fmt.Fprintf(&sidecar, "Detection Results - %v\n", timestamp)
	fmt.Fprintf(&sidecar, "Total Detections: %v\n\n", len(detections))
	for i, det := range detections {
		fmt.Fprintf(&sidecar, "%v. %v: %.2f\n", i+1, det.ClassName, det.Confidence)
	}
	txtPath := strings.TrimSuffix(path, ".jpg") + ".txt"
	if err := os.WriteFile(txtPath, []byte(sidecar.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type jsonDetection struct {
	ClassName  string     `json:"class_name"`
	Class      int        `json:"class_id"`
	Confidence float32    `json:"confidence"`
	Bbox       [4]float32 `json:"bbox"`
}

// SaveFrameJSON writes the raw detections (no image) to outputPath.
func SaveFrameJSON(detections []nn.Detection, outputPath string) error {
	out := make([]jsonDetection, 0, len(detections))
	for _, det := range detections {
		out = append(out, jsonDetection{
			ClassName:  det.ClassName,
			Class:      det.Class,
			Confidence: det.Confidence,
			Bbox:       [4]float32{det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2},
		})
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, raw, 0644)
}

// SaveBatch writes every item's annotated image into a fresh
// batch_<timestamp> directory under outputDir, as <original>_detected.jpg,
// plus a detection_report.txt summary. Returns the batch directory path.
func SaveBatch(items []BatchItem, outputDir string, lineWidth int) (string, error) {
	timestamp := time.Now().Format(timestampFormat)
	batchDir := filepath.Join(outputDir, "batch_"+timestamp)
	if err := os.MkdirAll(batchDir, 0755); err != nil {
		return "", err
	}

	for _, item := range items {
		base := filepath.Base(item.Path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		annotated := overlay.Draw(item.Image, item.Detections, lineWidth)
		if err := writeJPEG(filepath.Join(batchDir, name+"_detected.jpg"), annotated); err != nil {
			return "", err
		}
	}

	if err := writeBatchReport(items, batchDir, timestamp); err != nil {
		return "", err
	}
	return batchDir, nil
}

func writeBatchReport(items []BatchItem, batchDir, timestamp string) error {
	report := strings.Builder{}
	report.WriteString("Batch Detection Report\n")
	fmt.Fprintf(&report, "Generated: %v\n", timestamp)
	report.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&report, "Total Images Processed: %v\n\n", len(items))

	totalDetections := 0
	for _, item := range items {
		totalDetections += len(item.Detections)
	}
	fmt.Fprintf(&report, "Total Detections: %v\n\n", totalDetections)

	report.WriteString("Per-Image Results:\n")
	report.WriteString(strings.Repeat("-", 60) + "\n")
	for i, item := range items {
		fmt.Fprintf(&report, "\n%v. %v\n", i+1, filepath.Base(item.Path))
		fmt.Fprintf(&report, "   Detections: %v\n", len(item.Detections))
		if len(item.Detections) > 0 {
			seen := map[string]bool{}
			classes := []string{}
			for _, det := range item.Detections {
				if !seen[det.ClassName] {
					seen[det.ClassName] = true
					classes = append(classes, det.ClassName)
				}
			}
			sort.Strings(classes)
			fmt.Fprintf(&report, "   Classes: %v\n", strings.Join(classes, ", "))
			for j, det := range item.Detections {
				fmt.Fprintf(&report, "      %v. %v: %.2f\n", j+1, det.ClassName, det.Confidence)
			}
		}
	}

	return os.WriteFile(filepath.Join(batchDir, "detection_report.txt"), []byte(report.String()), 0644)
}
