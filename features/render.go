package features

import (
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/images"
)

// RenderOptions controls how keypoints are drawn.
type RenderOptions struct {
	// Color of the keypoint markers.
	Color color.RGBA
	// Rich draws each keypoint as a circle sized by its scale with a radial
	// line showing its orientation. Otherwise small fixed circles are drawn.
	Rich bool
}

// DefaultRenderOptions draws rich green markers.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Color: color.RGBA{G: 255, A: 255}, Rich: true}
}

// Render draws keypoints over a colour copy of the grayscale image. The
// input is left untouched and the output has the same width and height.
// With no keypoints the output equals the grayscale image expanded to three
// channels.
//
// Arguments:
//   - gray: The single-channel image the keypoints were detected in.
//   - kps: The keypoints to draw.
//   - opts: Marker colour and style.
//
// Returns:
//   - gocv.Mat: A BGR image owned by the caller.
//   - error: KindInvalidArgument or KindUnsupported for unusable input.
func Render(gray gocv.Mat, kps []Keypoint, opts RenderOptions) (gocv.Mat, error) {
	canvas, err := images.GrayToBGR(gray)
	if err != nil {
		return gocv.NewMat(), err
	}
	if len(kps) == 0 {
		return canvas, nil
	}

	flag := gocv.DrawDefault
	if opts.Rich {
		flag = gocv.DrawRichKeyPoints
	}
	// Markers are drawn over the BGR copy; untouched pixels stay gray.
	gocv.DrawKeyPoints(canvas, ToGoCV(kps), &canvas, opts.Color, flag|gocv.DrawOverOutImg)
	return canvas, nil
}
