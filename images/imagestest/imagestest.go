// Package imagestest generates deterministic synthetic images for tests that
// exercise OpenCV without fixture files.
package imagestest

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

// Generator creates deterministic test images of a fixed size.
//
// @example
// gen := imagestest.NewGenerator(500, 350)
// img := gen.Uniform(128)
// defer img.Close()
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new generator with specified dimensions.
//
// Arguments:
//   - width: Image width in pixels.
//   - height: Image height in pixels.
//
// Returns:
//   - A configured Generator instance.
func NewGenerator(width, height int) *Generator {
	return &Generator{width: width, height: height}
}

// Uniform creates a featureless BGR image with every channel set to value.
func (g *Generator) Uniform(value uint8) gocv.Mat {
	v := float64(value)
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), g.height, g.width, gocv.MatTypeCV8UC3)
}

// Shapes creates a BGR image with high-contrast filled squares and discs on a
// mid-gray background. Their corners and blobs give feature detectors
// something to find at several scales.
func (g *Generator) Shapes() gocv.Mat {
	img := g.Uniform(96)

	white := color.RGBA{R: 255, G: 255, B: 255}
	black := color.RGBA{}
	step := max(g.width, g.height) / 6
	if step < 8 {
		step = 8
	}

	i := 0
	for y := step / 2; y+step/2 < g.height; y += step {
		for x := step / 2; x+step/2 < g.width; x += step {
			c := white
			if i%2 == 1 {
				c = black
			}
			if i%3 == 0 {
				gocv.Circle(&img, image.Pt(x+step/4, y+step/4), step/5, c, -1)
			} else {
				gocv.Rectangle(&img, image.Rect(x, y, x+step/2, y+step/2), c, -1)
			}
			i++
		}
	}
	return img
}

// Foreground creates a BGR image with a textured blue-green background and a
// solid red disc centred inside subject. The disc is the intended foreground.
func (g *Generator) Foreground(subject image.Rectangle) gocv.Mat {
	img := gocv.NewMatWithSize(g.height, g.width, gocv.MatTypeCV8UC3)
	gocv.RandU(&img, gocv.NewScalar(60, 40, 0, 0), gocv.NewScalar(140, 120, 40, 0))

	center := image.Pt((subject.Min.X+subject.Max.X)/2, (subject.Min.Y+subject.Max.Y)/2)
	radius := min(subject.Dx(), subject.Dy()) / 3
	gocv.Circle(&img, center, radius, color.RGBA{R: 220, G: 20, B: 20}, -1)
	return img
}

// WritePNG saves m as a PNG inside a per-test temporary directory and returns its path.
func WritePNG(t testing.TB, name string, m gocv.Mat) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".png")
	if ok := gocv.IMWrite(path, m); !ok {
		t.Fatalf("write %s", path)
	}
	return path
}
