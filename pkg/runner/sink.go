package runner

import (
	"github.com/bmharper/cimg/v2"
)

// VideoSink receives annotated frames during a video run and writes them to
// an output file. Frames arrive in order, all with the dimensions that the
// sink was created with.
type VideoSink interface {
	Write(img *cimg.Image) error
	Close() error
}
