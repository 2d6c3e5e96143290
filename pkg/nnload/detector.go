//go:build gocv
// +build gocv

package nnload

import (
	"fmt"
	"image"

	"github.com/bmharper/cimg/v2"
	"gocv.io/x/gocv"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
)

// dnnDetector runs YOLO ONNX models through the OpenCV DNN module.
type dnnDetector struct {
	net         gocv.Net
	classes     []string
	inputWidth  int
	inputHeight int
}

func newDetector(modelPath string, config *nn.ModelConfig) (nn.ObjectDetector, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: unreadable ONNX network '%v'", nn.ErrModelLoad, modelPath)
	}
	d := &dnnDetector{
		net:         net,
		classes:     config.Classes,
		inputWidth:  config.Width,
		inputHeight: config.Height,
	}
	if d.inputWidth <= 0 {
		d.inputWidth = 640
	}
	if d.inputHeight <= 0 {
		d.inputHeight = 640
	}
	return d, nil
}

func (d *dnnDetector) Close() {
	d.net.Close()
}

func (d *dnnDetector) Classes() []string {
	return d.classes
}

func (d *dnnDetector) DetectObjects(img *cimg.Image, params *nn.DetectionParams) ([]nn.Detection, error) {
	if params == nil {
		params = nn.NewDetectionParams()
	}
	confThreshold := params.ConfidenceThreshold
	if confThreshold == 0 {
		confThreshold = nn.DefaultConfidenceThreshold
	}
	iouThreshold := params.NmsIouThreshold
	if iouThreshold == 0 {
		iouThreshold = nn.DefaultNmsIouThreshold
	}

	mat, err := matFromRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", nn.ErrInference, err)
	}
	defer mat.Close()

	// swapRB converts our BGR mat back to the RGB ordering YOLO expects
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.inputWidth, d.inputHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	raw, err := d.decodeOutput(output, img.Width, img.Height, confThreshold, iouThreshold)
	if err != nil {
		return nil, err
	}
	return nn.ValidateDetections(raw, img.Width, img.Height, d.classes)
}

// decodeOutput parses a YOLOv8-style output tensor of shape
// [1, 4+numClasses, numCandidates], or its transpose.
func (d *dnnDetector) decodeOutput(output gocv.Mat, imgWidth, imgHeight int, confThreshold, iouThreshold float32) ([]nn.Detection, error) {
	dims := output.Size()
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("%w: unexpected output shape %v", nn.ErrInference, dims)
	}
	attrs, candidates := dims[1], dims[2]
	flat := output.Reshape(1, attrs)
	defer flat.Close()
	if attrs > candidates {
		// [1, numCandidates, 4+numClasses] layout
		transposed := gocv.NewMat()
		defer transposed.Close()
		gocv.Transpose(flat, &transposed)
		return d.decodeRows(transposed, imgWidth, imgHeight, confThreshold, iouThreshold)
	}
	return d.decodeRows(flat, imgWidth, imgHeight, confThreshold, iouThreshold)
}

// decodeRows expects a 2D mat of [4+numClasses, numCandidates]: rows 0-3 are
// cx,cy,w,h in network input space, remaining rows are per-class scores.
func (d *dnnDetector) decodeRows(flat gocv.Mat, imgWidth, imgHeight int, confThreshold, iouThreshold float32) ([]nn.Detection, error) {
	numClasses := flat.Rows() - 4
	if numClasses <= 0 {
		return nil, fmt.Errorf("%w: output has no class scores", nn.ErrInference)
	}
	scaleX := float32(imgWidth) / float32(d.inputWidth)
	scaleY := float32(imgHeight) / float32(d.inputHeight)

	boxes := []image.Rectangle{}
	scores := []float32{}
	classIds := []int{}
	realBoxes := []nn.Box{}

	for c := 0; c < flat.Cols(); c++ {
		bestScore := float32(0)
		bestClass := 0
		for k := 0; k < numClasses; k++ {
			score := flat.GetFloatAt(4+k, c)
			if score > bestScore {
				bestScore = score
				bestClass = k
			}
		}
		if bestScore < confThreshold {
			continue
		}
		cx := flat.GetFloatAt(0, c)
		cy := flat.GetFloatAt(1, c)
		w := flat.GetFloatAt(2, c)
		h := flat.GetFloatAt(3, c)
		box := nn.MakeBox((cx-w/2)*scaleX, (cy-h/2)*scaleY, (cx+w/2)*scaleX, (cy+h/2)*scaleY)
		boxes = append(boxes, image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2)))
		scores = append(scores, bestScore)
		classIds = append(classIds, bestClass)
		realBoxes = append(realBoxes, box)
	}

	keep := gocv.NMSBoxes(boxes, scores, confThreshold, iouThreshold)
	detections := make([]nn.Detection, 0, len(keep))
	for _, i := range keep {
		detections = append(detections, nn.Detection{
			Box:        realBoxes[i],
			Confidence: scores[i],
			Class:      classIds[i],
		})
	}
	return detections, nil
}

// matFromRGB copies a packed RGB cimg image into a BGR OpenCV mat.
func matFromRGB(img *cimg.Image) (gocv.Mat, error) {
	bgr := make([]byte, img.Width*img.Height*3)
	for y := 0; y < img.Height; y++ {
		src := img.Pixels[y*img.Stride:]
		dst := bgr[y*img.Width*3:]
		for x := 0; x < img.Width; x++ {
			dst[x*3+0] = src[x*3+2]
			dst[x*3+1] = src[x*3+1]
			dst[x*3+2] = src[x*3+0]
		}
	}
	return gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, bgr)
}
