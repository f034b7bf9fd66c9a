package features

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// Detector finds SIFT keypoints and computes their descriptors using the
// OpenCV defaults (no feature cap, 3 octave layers, contrast threshold 0.04,
// edge threshold 10, sigma 1.6).
//
// A Detector owns native memory and must be closed. It is safe for
// concurrent use; calls are serialised.
//
// @example
// det := features.NewDetector()
// defer det.Close()
// kps, desc, err := det.Detect(gray)
type Detector struct {
	mu     sync.Mutex
	sift   gocv.SIFT
	closed bool
}

// NewDetector creates a SIFT detector with library defaults.
func NewDetector() *Detector {
	return &Detector{sift: gocv.NewSIFT()}
}

// Detect runs keypoint detection followed by descriptor computation over the
// whole image.
//
// Arguments:
//   - gray: A non-empty single-channel 8-bit image.
//
// Returns:
//   - []Keypoint: Zero or more keypoints. A featureless image yields none.
//   - Descriptors: One row per keypoint, SIFTDescriptorWidth columns.
//   - error: KindInvalidArgument or KindUnsupported for unusable input.
func (d *Detector) Detect(gray gocv.Mat) ([]Keypoint, Descriptors, error) {
	const op = "features.Detector.Detect"

	if gray.Empty() || gray.Rows() <= 0 || gray.Cols() <= 0 {
		return nil, Descriptors{}, common.Errorf(common.KindInvalidArgument, op, "image is empty")
	}
	if gray.Type() != gocv.MatTypeCV8UC1 {
		return nil, Descriptors{}, common.Errorf(common.KindUnsupported, op, "expected a single-channel 8-bit image, got %v", gray.Type())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, Descriptors{}, common.Errorf(common.KindInvalidArgument, op, "detector is closed")
	}

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := d.sift.DetectAndCompute(gray, mask)
	defer desc.Close()

	descriptors, err := NewDescriptors(desc)
	if err != nil {
		return nil, Descriptors{}, err
	}
	if descriptors.Rows() != len(kps) {
		return nil, Descriptors{}, common.Errorf(common.KindUnknown, op,
			"%d descriptors for %d keypoints", descriptors.Rows(), len(kps))
	}
	return FromGoCV(kps), descriptors, nil
}

// Close releases the native detector. It is safe to call more than once.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.sift.Close()
}
