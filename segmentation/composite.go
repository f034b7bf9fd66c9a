package segmentation

import (
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images"
)

// Composite keeps the pixels of img where binary is 1 and zeroes the rest.
// The 0/1 mask is broadcast to every channel and multiplied in.
//
// Arguments:
//   - img: An 8-bit 3-channel BGR image.
//   - binary: A 0/1 mask with the same width and height as img.
//
// Returns:
//   - gocv.Mat: The composited image. The caller must Close it.
//   - error: KindInvalidArgument or KindUnsupported for mismatched inputs.
func Composite(img, binary gocv.Mat) (gocv.Mat, error) {
	const op = "segmentation.Composite"

	if err := images.ValidateColor(img, op); err != nil {
		return gocv.NewMat(), err
	}
	if binary.Type() != gocv.MatTypeCV8UC1 {
		return gocv.NewMat(), common.Errorf(common.KindUnsupported, op, "expected an 8-bit single-channel mask, got %v", binary.Type())
	}
	if binary.Rows() != img.Rows() || binary.Cols() != img.Cols() {
		return gocv.NewMat(), common.Errorf(common.KindInvalidArgument, op,
			"mask is %dx%d but image is %dx%d", binary.Cols(), binary.Rows(), img.Cols(), img.Rows())
	}

	broadcast := gocv.NewMat()
	defer broadcast.Close()
	if err := gocv.Merge([]gocv.Mat{binary, binary, binary}, &broadcast); err != nil {
		return gocv.NewMat(), common.E(common.KindUnsupported, op, err)
	}

	out := gocv.NewMat()
	if err := gocv.Multiply(img, broadcast, &out); err != nil {
		out.Close()
		return gocv.NewMat(), common.E(common.KindUnsupported, op, err)
	}
	return out, nil
}
