package images

import (
	"fmt"
	"image"

	"github.com/nvr-ai/go-vision/common"
)

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// RectFromXYWH builds a Rect from an origin and a size, the form in which
// seed rectangles are configured.
//
// Arguments:
//   - x, y: The top-left corner.
//   - width, height: The size in pixels.
//
// Returns:
//   - Rect: The rectangle covering [x, x+width) x [y, y+height).
//
// @example
// seed := RectFromXYWH(50, 50, 450, 290) // Rect{50, 50, 500, 340}
func RectFromXYWH(x, y, width, height int) Rect {
	return Rect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// Width returns X2 - X1.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Area returns the pixel area, zero for empty rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle has zero or negative width or height.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Image converts the rectangle to an image.Rectangle for gocv calls.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// String formats the rectangle as x,y widthxheight.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X1, r.Y1, r.Width(), r.Height())
}

// ValidateWithin requires a non-empty rectangle lying fully inside a
// width x height image.
//
// Arguments:
//   - width, height: The image dimensions.
//
// Returns:
//   - error: KindInvalidArgument for a degenerate or out-of-bounds rectangle.
func (r Rect) ValidateWithin(width, height int) error {
	const op = "images.Rect.ValidateWithin"

	if r.Empty() {
		return common.Errorf(common.KindInvalidArgument, op, "rectangle %s has zero area", r)
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > width || r.Y2 > height {
		return common.Errorf(common.KindInvalidArgument, op, "rectangle %s exceeds image bounds %dx%d", r, width, height)
	}
	return nil
}

// CalculateIoU measures the overlap of two rectangles as the area of their
// intersection divided by the area of their union.
//
//	IoU = Area of Intersection / Area of Union
//
// A value of 1.0 means identical rectangles; 0.0 means no overlap. Touching
// edges do not overlap because X2 and Y2 are exclusive.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//
//	iouScore := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	// No overlap, or at least one degenerate rectangle.
	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Inclusion-exclusion: Union(A, B) = Area(A) + Area(B) - Intersection(A, B).
	unionArea := r.Area() + o.Area() - interArea

	return float32(interArea) / float32(unionArea)
}
