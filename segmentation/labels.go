// Package segmentation separates a foreground subject from its background
// with GrabCut seeded by a rectangle.
package segmentation

import (
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// Label is a per-pixel GrabCut classification.
type Label uint8

// Label constants
const (
	// LabelBackground is definite background.
	LabelBackground Label = 0
	// LabelForeground is definite foreground.
	LabelForeground Label = 1
	// LabelProbableBackground is probable background.
	LabelProbableBackground Label = 2
	// LabelProbableForeground is probable foreground.
	LabelProbableForeground Label = 3
)

// IsForeground reports whether the label counts as foreground once the mask
// is binarized.
func (l Label) IsForeground() bool {
	return l == LabelForeground || l == LabelProbableForeground
}

func (l Label) String() string {
	switch l {
	case LabelBackground:
		return "background"
	case LabelForeground:
		return "foreground"
	case LabelProbableBackground:
		return "probable_background"
	case LabelProbableForeground:
		return "probable_foreground"
	default:
		return "invalid"
	}
}

// BinarizeLabels maps labels in place: foreground and probable foreground
// become 1, everything else becomes 0. Already binary input is unchanged.
func BinarizeLabels(labels []uint8) {
	for i, l := range labels {
		if Label(l).IsForeground() {
			labels[i] = 1
		} else {
			labels[i] = 0
		}
	}
}

// Binarize collapses a GrabCut label mask to a 0/1 mask of the same size.
//
// Arguments:
//   - mask: A single-channel 8-bit label mask.
//
// Returns:
//   - gocv.Mat: A new mask holding only 0 and 1. The caller must Close it.
//   - error: KindInvalidArgument or KindUnsupported for a mask of the wrong type.
func Binarize(mask gocv.Mat) (gocv.Mat, error) {
	const op = "segmentation.Binarize"

	if mask.Empty() || mask.Rows() <= 0 || mask.Cols() <= 0 {
		return gocv.NewMat(), common.Errorf(common.KindInvalidArgument, op, "mask is empty")
	}
	if mask.Type() != gocv.MatTypeCV8UC1 {
		return gocv.NewMat(), common.Errorf(common.KindUnsupported, op, "expected an 8-bit single-channel mask, got %v", mask.Type())
	}

	out := mask.Clone()
	data, err := out.DataPtrUint8()
	if err != nil {
		out.Close()
		return gocv.NewMat(), common.E(common.KindUnsupported, op, err)
	}
	BinarizeLabels(data)
	return out, nil
}
