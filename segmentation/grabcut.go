package segmentation

import (
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images"
)

// ModelSize is the length of each GrabCut colour model buffer.
const ModelSize = 65

// DefaultIterations is the number of GrabCut refinement passes.
const DefaultIterations = 5

// MinSamples is the fewest pixels GrabCut needs on each side of the seed
// rectangle: one per Gaussian mixture component.
const MinSamples = 5

// Models holds the background and foreground Gaussian mixture models that
// GrabCut reads and updates. Their contents are opaque.
type Models struct {
	Background gocv.Mat
	Foreground gocv.Mat
}

// NewModels returns two zeroed 1x65 float64 buffers.
func NewModels() Models {
	return Models{
		Background: gocv.Zeros(1, ModelSize, gocv.MatTypeCV64FC1),
		Foreground: gocv.Zeros(1, ModelSize, gocv.MatTypeCV64FC1),
	}
}

// Close releases both buffers.
func (m Models) Close() error {
	if err := m.Background.Close(); err != nil {
		return err
	}
	return m.Foreground.Close()
}

// NewMask returns a rows x cols label mask of definite background.
func NewMask(rows, cols int) gocv.Mat {
	return gocv.Zeros(rows, cols, gocv.MatTypeCV8UC1)
}

// Segmenter runs rectangle-seeded GrabCut. It owns its label mask and model
// buffers, so a Segmenter is used for one image and then closed.
//
// @example
// seg, err := segmentation.NewSegmenter(img)
// if err != nil { ... }
// defer seg.Close()
// err = seg.Segment(images.RectFromXYWH(50, 50, 450, 290), 5)
type Segmenter struct {
	img    gocv.Mat
	Mask   gocv.Mat
	Models Models
}

// NewSegmenter prepares a zero label mask and zero models sized for img.
//
// Arguments:
//   - img: An 8-bit 3-channel BGR image. It is borrowed, not copied.
//
// Returns:
//   - *Segmenter: Ready to Segment.
//   - error: KindInvalidArgument or KindUnsupported for unusable images.
func NewSegmenter(img gocv.Mat) (*Segmenter, error) {
	if err := images.ValidateColor(img, "segmentation.NewSegmenter"); err != nil {
		return nil, err
	}
	return &Segmenter{
		img:    img,
		Mask:   NewMask(img.Rows(), img.Cols()),
		Models: NewModels(),
	}, nil
}

// Segment runs GrabCut initialised from rect. Pixels outside rect are fixed
// as definite background; pixels inside start as probable foreground and are
// refined over iterations passes. Afterwards Mask holds one label per pixel.
//
// Arguments:
//   - rect: The seed rectangle. It must lie inside the image and leave at
//     least MinSamples pixels both inside and outside it.
//   - iterations: The number of refinement passes, at least 1.
//
// Returns:
//   - error: KindInvalidArgument for a degenerate, out-of-bounds or
//     unmodellable rect, for fewer than one iteration, or when OpenCV
//     rejects the seed.
func (s *Segmenter) Segment(rect images.Rect, iterations int) error {
	const op = "segmentation.Segmenter.Segment"

	if iterations < 1 {
		return common.Errorf(common.KindInvalidArgument, op, "iterations must be at least 1, got %d", iterations)
	}
	if err := rect.ValidateWithin(s.img.Cols(), s.img.Rows()); err != nil {
		return err
	}

	if inside := rect.Area(); inside < MinSamples {
		return common.Errorf(common.KindInvalidArgument, op,
			"seed %s holds %d pixels, GrabCut needs at least %d foreground samples", rect, inside, MinSamples)
	}
	if outside := s.img.Cols()*s.img.Rows() - rect.Area(); outside < MinSamples {
		return common.Errorf(common.KindInvalidArgument, op,
			"seed %s leaves %d pixels outside, GrabCut needs at least %d background samples", rect, outside, MinSamples)
	}

	err := gocv.GrabCut(s.img, &s.Mask, rect.Image(), &s.Models.Background, &s.Models.Foreground, iterations, gocv.GCInitWithRect)
	if err != nil {
		return common.E(common.KindInvalidArgument, op, err)
	}
	return nil
}

// Binary returns the binarized copy of the current label mask.
func (s *Segmenter) Binary() (gocv.Mat, error) {
	return Binarize(s.Mask)
}

// Close releases the mask and model buffers. The image is not closed.
func (s *Segmenter) Close() error {
	if err := s.Mask.Close(); err != nil {
		return err
	}
	return s.Models.Close()
}
