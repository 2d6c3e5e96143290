// Package imagex converts between the stdlib image types and the packed RGB
// images (cimg) that the rest of the pipeline works in.
package imagex

import (
	"image"
	"image/draw"

	"github.com/bmharper/cimg/v2"
)

// ToRGBA expands a packed RGB image into an *image.RGBA (alpha 255).
func ToRGBA(src *cimg.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pixels[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < src.Width; x++ {
			dstRow[x*4+0] = srcRow[x*3+0]
			dstRow[x*4+1] = srcRow[x*3+1]
			dstRow[x*4+2] = srcRow[x*3+2]
			dstRow[x*4+3] = 255
		}
	}
	return dst
}

// FromRGBA packs an *image.RGBA into a 24-bit RGB image, dropping alpha.
func FromRGBA(src *image.RGBA) *cimg.Image {
	width := src.Rect.Dx()
	height := src.Rect.Dy()
	dst := cimg.NewImage(width, height, cimg.PixelFormatRGB)
	for y := 0; y < height; y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pixels[y*dst.Stride:]
		for x := 0; x < width; x++ {
			dstRow[x*3+0] = srcRow[x*4+0]
			dstRow[x*3+1] = srcRow[x*4+1]
			dstRow[x*3+2] = srcRow[x*4+2]
		}
	}
	return dst
}

// FromImage converts any stdlib image into a packed RGB image.
func FromImage(src image.Image) *cimg.Image {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return FromRGBA(rgba)
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	return FromRGBA(rgba)
}

// Clone makes a deep copy of an RGB image. Collaborators that retain a frame
// beyond a publish call must copy it, because the runner owns the buffer.
func Clone(src *cimg.Image) *cimg.Image {
	dst := cimg.NewImage(src.Width, src.Height, cimg.PixelFormatRGB)
	for y := 0; y < src.Height; y++ {
		copy(dst.Pixels[y*dst.Stride:y*dst.Stride+src.Width*3], src.Pixels[y*src.Stride:])
	}
	return dst
}
