// Package features detects SIFT keypoints in an image, computes their
// descriptors and renders them for inspection.
package features

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Keypoint is a salient image location found by the detector.
type Keypoint struct {
	// X, Y is the sub-pixel position.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Size is the diameter of the meaningful neighbourhood.
	Size float64 `json:"size"`
	// Angle is the dominant orientation in degrees, -1 when not applicable.
	Angle float64 `json:"angle"`
	// Response is the detector strength of the keypoint.
	Response float64 `json:"response"`
	Octave   int     `json:"octave"`
	ClassID  int     `json:"class_id"`
}

// FromGoCV converts OpenCV keypoints.
func FromGoCV(kps []gocv.KeyPoint) []Keypoint {
	out := make([]Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = Keypoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
			ClassID:  kp.ClassID,
		}
	}
	return out
}

// ToGoCV converts keypoints back into the OpenCV representation for drawing.
func ToGoCV(kps []Keypoint) []gocv.KeyPoint {
	out := make([]gocv.KeyPoint, len(kps))
	for i, kp := range kps {
		out[i] = gocv.KeyPoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
			ClassID:  kp.ClassID,
		}
	}
	return out
}

func (k Keypoint) String() string {
	return fmt.Sprintf("(%.1f,%.1f size=%.1f angle=%.0f)", k.X, k.Y, k.Size, k.Angle)
}
