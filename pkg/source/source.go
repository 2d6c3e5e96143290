// Package source supplies sequences of frames from images, folders of
// images, video files, and live cameras. Image and folder sources are pure
// Go. Video and camera sources need OpenCV, and are only available when
// building with the gocv tag.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
)

// ErrSourceOpen is a fatal error for a run: the media could not be opened.
var ErrSourceOpen = errors.New("source open failed")

type Mode string

const (
	ModeImage  Mode = "image"
	ModeFolder Mode = "folder"
	ModeVideo  Mode = "video"
	ModeCamera Mode = "camera"
)

// Spec identifies a frame source before it is opened.
type Spec struct {
	Mode   Mode
	Path   string // image file, folder, or video file (unused for camera)
	Camera int    // camera device index (camera mode only)
}

func (s Spec) String() string {
	if s.Mode == ModeCamera {
		return fmt.Sprintf("camera:%v", s.Camera)
	}
	return fmt.Sprintf("%v:%v", s.Mode, s.Path)
}

// Frame is one decoded frame from a source.
// Index is the position in the sequence, usable as a frame identifier.
type Frame struct {
	Index int
	Path  string // originating file, when the source is file-backed
	Image *cimg.Image
}

// Reader produces a lazy sequence of frames.
// Next returns io.EOF when a finite source is exhausted. A camera source is
// effectively infinite and only terminates via Close or a read failure.
type Reader interface {
	// Next returns the next frame, or io.EOF at the end of the sequence.
	Next() (*Frame, error)

	// Total returns the number of frames this source will produce, or -1
	// when that is unknown (video, camera).
	Total() int

	// FPS returns the native frame rate of the source, or 0 when the source
	// has no inherent rate.
	FPS() float64

	Close() error
}

// Open a frame source described by spec.
func Open(logger logs.Log, spec Spec) (Reader, error) {
	switch spec.Mode {
	case ModeImage:
		return openImage(spec.Path)
	case ModeFolder:
		return openFolder(spec.Path)
	case ModeVideo:
		return openVideo(logger, spec.Path)
	case ModeCamera:
		return openCamera(logger, spec.Camera)
	}
	return nil, fmt.Errorf("%w: unknown source mode '%v'", ErrSourceOpen, spec.Mode)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile returns true if the path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImageFiles returns every supported image file under dir (recursively),
// sorted by path so that folder runs are reproducible.
func ListImageFiles(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceOpen, err)
	}
	sort.Strings(files)
	return files, nil
}
