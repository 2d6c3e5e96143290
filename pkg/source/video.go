//go:build gocv
// +build gocv

package source

import (
	"fmt"
	"io"

	"github.com/cyclopcam/logs"
	"gocv.io/x/gocv"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/imagex"
)

// videoReader pulls frames from a video file or a live camera through OpenCV.
type videoReader struct {
	log      logs.Log
	capture  *gocv.VideoCapture
	mat      gocv.Mat
	isCamera bool
	fps      float64
	index    int
}

func openVideo(logger logs.Log, path string) (Reader, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open video '%v': %v", ErrSourceOpen, path, err)
	}
	return &videoReader{
		log:     logger,
		capture: capture,
		mat:     gocv.NewMat(),
		fps:     capture.Get(gocv.VideoCaptureFPS),
	}, nil
}

func openCamera(logger logs.Log, device int) (Reader, error) {
	capture, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open camera %v: %v", ErrSourceOpen, device, err)
	}
	return &videoReader{
		log:      logger,
		capture:  capture,
		mat:      gocv.NewMat(),
		isCamera: true,
		fps:      capture.Get(gocv.VideoCaptureFPS),
	}, nil
}

func (r *videoReader) Next() (*Frame, error) {
	if !r.capture.Read(&r.mat) || r.mat.Empty() {
		// For a file this is the end of the stream. For a camera it means
		// the device went away, which we also surface as end-of-stream.
		return nil, io.EOF
	}
	img, err := r.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %v: %w", r.index, err)
	}
	frame := &Frame{Index: r.index, Image: imagex.FromImage(img)}
	r.index++
	return frame, nil
}

func (r *videoReader) Total() int {
	return -1
}

func (r *videoReader) FPS() float64 {
	return r.fps
}

func (r *videoReader) Close() error {
	r.mat.Close()
	return r.capture.Close()
}

// ListCameras probes the first maxProbe device indices and returns those that
// can be opened.
func ListCameras(maxProbe int) []int {
	available := []int{}
	for i := 0; i < maxProbe; i++ {
		capture, err := gocv.VideoCaptureDevice(i)
		if err == nil {
			available = append(available, i)
			capture.Close()
		}
	}
	return available
}
