package nn

import "fmt"

// Detection is one object that a model has found in an image.
// Immutable once produced.
type Detection struct {
	Box        Box     `json:"bbox"`
	Confidence float32 `json:"confidence"`
	Class      int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
}

// ValidateDetections normalizes raw engine output at the boundary:
// box corners are ordered, boxes are clamped to the image, confidence is
// clamped into [0,1], and the class name is resolved from the label table.
// A negative class id is an engine bug, and fails the whole frame.
func ValidateDetections(raw []Detection, imageWidth, imageHeight int, classes []string) ([]Detection, error) {
	out := make([]Detection, 0, len(raw))
	for _, d := range raw {
		if d.Class < 0 {
			return nil, fmt.Errorf("%w: negative class id %v", ErrInference, d.Class)
		}
		d.Box = MakeBox(d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2).Clamp(imageWidth, imageHeight)
		if d.Confidence < 0 {
			d.Confidence = 0
		} else if d.Confidence > 1 {
			d.Confidence = 1
		}
		if d.ClassName == "" {
			d.ClassName = ClassName(classes, d.Class)
		}
		out = append(out, d)
	}
	return out, nil
}

// ClassName resolves a class id against a label table, falling back to a
// numeric name for ids beyond the table.
func ClassName(classes []string, class int) string {
	if class >= 0 && class < len(classes) {
		return classes[class]
	}
	return fmt.Sprintf("class_%v", class)
}
