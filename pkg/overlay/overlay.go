// Package overlay renders detection boxes and labels onto frames, for the
// live view, the video auto-save path, and annotated image exports.
package overlay

import (
	"fmt"

	"github.com/bmharper/cimg/v2"
	"github.com/fogleman/gg"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/imagex"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

type color struct {
	r, g, b int
}

// Fixed palette, indexed by class id, so a class keeps its color across
// frames and across runs.
var palette = []color{
	{231, 76, 60},
	{46, 204, 113},
	{52, 152, 219},
	{241, 196, 15},
	{155, 89, 182},
	{26, 188, 156},
	{230, 126, 34},
	{236, 64, 122},
	{96, 125, 139},
	{124, 179, 66},
}

func classColor(class int) color {
	if class < 0 {
		class = 0
	}
	return palette[class%len(palette)]
}

// Draw returns a copy of img with one box and label per detection burned in.
// The input image is not modified. lineWidth below 1 is treated as 1.
func Draw(img *cimg.Image, detections []nn.Detection, lineWidth int) *cimg.Image {
	if lineWidth < 1 {
		lineWidth = 1
	}
	rgba := imagex.ToRGBA(img)
	dc := gg.NewContextForRGBA(rgba)
	for _, det := range detections {
		col := classColor(det.Class)
		label := fmt.Sprintf("%v %.2f", det.ClassName, det.Confidence)

		dc.SetRGB255(col.r, col.g, col.b)
		dc.SetLineWidth(float64(lineWidth))
		dc.DrawRectangle(float64(det.Box.X1), float64(det.Box.Y1), float64(det.Box.Width()), float64(det.Box.Height()))
		dc.Stroke()

		labelW, labelH := dc.MeasureString(label)
		labelY := float64(det.Box.Y1) - labelH - 4
		if labelY < 0 {
			labelY = float64(det.Box.Y1)
		}
		dc.DrawRectangle(float64(det.Box.X1), labelY, labelW+6, labelH+4)
		dc.Fill()

		dc.SetRGB255(255, 255, 255)
		dc.DrawString(label, float64(det.Box.X1)+3, labelY+labelH)
	}
	return imagex.FromRGBA(rgba)
}

// ResizeToFit scales img down (never up) to fit within maxWidth x maxHeight,
// preserving aspect ratio. Non-positive constraints are ignored.
func ResizeToFit(img *cimg.Image, maxWidth, maxHeight int) *cimg.Image {
	scale := 1.0
	if maxWidth > 0 {
		scale = min(scale, float64(maxWidth)/float64(img.Width))
	}
	if maxHeight > 0 {
		scale = min(scale, float64(maxHeight)/float64(img.Height))
	}
	if scale >= 1.0 {
		return img
	}
	newWidth := int(float64(img.Width)*scale + 0.5)
	newHeight := int(float64(img.Height)*scale + 0.5)
	return cimg.ResizeNew(img, newWidth, newHeight, nil)
}
