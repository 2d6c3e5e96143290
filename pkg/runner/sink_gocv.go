//go:build gocv

package runner

import (
	"fmt"

	"github.com/bmharper/cimg/v2"
	"gocv.io/x/gocv"
)

type videoFileSink struct {
	writer *gocv.VideoWriter
	width  int
	height int
}

func newVideoSink(path string, fps float64, width, height int) (VideoSink, error) {
	writer, err := gocv.VideoWriterFile(path, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrOutputWrite, path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("%w: failed to open video writer for %v", ErrOutputWrite, path)
	}
	return &videoFileSink{writer: writer, width: width, height: height}, nil
}

func (s *videoFileSink) Write(img *cimg.Image) error {
	if img.Width != s.width || img.Height != s.height {
		return fmt.Errorf("%w: frame size %vx%v does not match sink %vx%v", ErrOutputWrite, img.Width, img.Height, s.width, s.height)
	}
	// VideoWriter wants BGR
	bgr := make([]byte, s.width*s.height*3)
	for y := 0; y < s.height; y++ {
		src := img.Pixels[y*img.Stride:]
		dst := bgr[y*s.width*3:]
		for x := 0; x < s.width; x++ {
			dst[x*3] = src[x*3+2]
			dst[x*3+1] = src[x*3+1]
			dst[x*3+2] = src[x*3]
		}
	}
	mat, err := gocv.NewMatFromBytes(s.height, s.width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	defer mat.Close()
	if err := s.writer.Write(mat); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return nil
}

func (s *videoFileSink) Close() error {
	return s.writer.Close()
}
