package images

import (
	"image"

	"github.com/nfnt/resize"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// Grayscale converts a BGR colour image to a single-channel intensity image.
//
// Arguments:
//   - src: An 8-bit 3-channel BGR image.
//
// Returns:
//   - gocv.Mat: A single-channel image with the width and height of src. The
//     caller owns it and must Close it.
//   - error: KindInvalidArgument or KindUnsupported if src is not a colour image.
func Grayscale(src gocv.Mat) (gocv.Mat, error) {
	const op = "images.Grayscale"

	if err := ValidateColor(src, op); err != nil {
		return gocv.NewMat(), err
	}

	gray := gocv.NewMat()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return gocv.NewMat(), common.E(common.KindUnsupported, op, err)
	}
	return gray, nil
}

// GrayToBGR expands a single-channel image to three identical channels.
func GrayToBGR(src gocv.Mat) (gocv.Mat, error) {
	const op = "images.GrayToBGR"

	if err := ValidateMat(src, op); err != nil {
		return gocv.NewMat(), err
	}
	if src.Channels() != 1 {
		return gocv.NewMat(), common.Errorf(common.KindUnsupported, op, "expected 1 channel, got %d", src.Channels())
	}

	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR); err != nil {
		dst.Close()
		return gocv.NewMat(), common.E(common.KindUnsupported, op, err)
	}
	return dst, nil
}

// ToImage converts a 1, 3 or 4 channel 8-bit Mat into a Go image.
func ToImage(m gocv.Mat) (image.Image, error) {
	const op = "images.ToImage"

	if err := ValidateMat(m, op); err != nil {
		return nil, err
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, common.E(common.KindUnsupported, op, err)
	}
	return img, nil
}

// Preview shrinks an image so that neither side exceeds maxSide, keeping the
// aspect ratio. Images already small enough, and a maxSide of zero or less,
// return img unchanged; Preview never upscales.
//
// Arguments:
//   - img: The image to shrink.
//   - maxSide: The largest allowed width or height in pixels.
//
// Returns:
//   - image.Image: The preview image.
//
// @example
// preview := Preview(img, 1024) // 4000x3000 becomes 1024x768
func Preview(img image.Image, maxSide int) image.Image {
	if maxSide <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxSide), uint(maxSide), img, resize.Lanczos3)
}
