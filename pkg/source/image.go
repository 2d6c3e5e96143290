package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/bmharper/cimg/v2"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/imagex"
)

// decodeImageFile reads and decodes one image file into a packed RGB image.
func decodeImageFile(path string) (*cimg.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image '%v': %w", path, err)
	}
	return imagex.FromImage(img), nil
}

// imageReader produces exactly one frame.
type imageReader struct {
	path string
	img  *cimg.Image
	done bool
}

func openImage(path string) (Reader, error) {
	img, err := decodeImageFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceOpen, err)
	}
	return &imageReader{path: path, img: img}, nil
}

func (r *imageReader) Next() (*Frame, error) {
	if r.done {
		return nil, io.EOF
	}
	r.done = true
	return &Frame{Index: 0, Path: r.path, Image: r.img}, nil
}

func (r *imageReader) Total() int {
	return 1
}

func (r *imageReader) FPS() float64 {
	return 0
}

func (r *imageReader) Close() error {
	r.img = nil
	return nil
}

// folderReader walks a sorted list of image files, decoding lazily.
type folderReader struct {
	files []string
	next  int
}

func openFolder(dir string) (Reader, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: '%v' is not a folder", ErrSourceOpen, dir)
	}
	files, err := ListImageFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no image files found in '%v'", ErrSourceOpen, dir)
	}
	return &folderReader{files: files}, nil
}

func (r *folderReader) Next() (*Frame, error) {
	if r.next >= len(r.files) {
		return nil, io.EOF
	}
	path := r.files[r.next]
	img, err := decodeImageFile(path)
	if err != nil {
		return nil, err
	}
	frame := &Frame{Index: r.next, Path: path, Image: img}
	r.next++
	return frame, nil
}

func (r *folderReader) Total() int {
	return len(r.files)
}

func (r *folderReader) FPS() float64 {
	return 0
}

func (r *folderReader) Close() error {
	return nil
}
