package nn

import (
	"github.com/chewxy/math32"
)

// Box is an axis-aligned bounding box in image-space pixel coordinates.
// Invariant: X1 <= X2 and Y1 <= Y2.
type Box struct {
	X1 float32 `json:"x1"`
	Y1 float32 `json:"y1"`
	X2 float32 `json:"x2"`
	Y2 float32 `json:"y2"`
}

func MakeBox(x1, y1, x2, y2 float32) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (b Box) Width() float32 {
	return b.X2 - b.X1
}

func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

func (b Box) Intersection(c Box) Box {
	x1 := math32.Max(b.X1, c.X1)
	y1 := math32.Max(b.Y1, c.Y1)
	x2 := math32.Min(b.X2, c.X2)
	y2 := math32.Min(b.Y2, c.Y2)
	return Box{
		X1: x1,
		Y1: y1,
		X2: math32.Max(x1, x2),
		Y2: math32.Max(y1, y2),
	}
}

func (b Box) Union(c Box) Box {
	return Box{
		X1: math32.Min(b.X1, c.X1),
		Y1: math32.Min(b.Y1, c.Y1),
		X2: math32.Max(b.X2, c.X2),
		Y2: math32.Max(b.Y2, c.Y2),
	}
}

// Intersection over Union
func (b Box) IOU(c Box) float32 {
	intersection := b.Intersection(c).Area()
	union := b.Area() + c.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func (b Box) Center() (float32, float32) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Clamp the box to the image rectangle [0,0 - width,height]
func (b Box) Clamp(width, height int) Box {
	return Box{
		X1: math32.Max(0, math32.Min(b.X1, float32(width))),
		Y1: math32.Max(0, math32.Min(b.Y1, float32(height))),
		X2: math32.Max(0, math32.Min(b.X2, float32(width))),
		Y2: math32.Max(0, math32.Min(b.Y2, float32(height))),
	}
}
