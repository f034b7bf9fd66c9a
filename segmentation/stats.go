package segmentation

import (
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images"
)

// Stats summarises a binary foreground mask.
type Stats struct {
	// Pixels is the number of foreground pixels.
	Pixels int `json:"pixels"`
	// Ratio is Pixels over the image area.
	Ratio float64 `json:"ratio"`
	// Bounds is the tightest box around the foreground, empty when there is none.
	Bounds images.Rect `json:"bounds"`
	// SeedIoU is the overlap of Bounds with the seed rectangle.
	SeedIoU float32 `json:"seed_iou"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("pixels", s.Pixels).
		Float64("ratio", s.Ratio).
		Stringer("bounds", s.Bounds).
		Float32("seed_iou", s.SeedIoU)
}

// Measure computes Stats for a 0/1 mask against the seed rectangle.
func Measure(binary gocv.Mat, seed images.Rect) (Stats, error) {
	const op = "segmentation.Measure"

	if binary.Empty() || binary.Type() != gocv.MatTypeCV8UC1 {
		return Stats{}, common.Errorf(common.KindInvalidArgument, op, "expected a non-empty 8-bit single-channel mask")
	}
	data, err := binary.DataPtrUint8()
	if err != nil {
		return Stats{}, common.E(common.KindUnsupported, op, err)
	}

	return measure(data, binary.Cols(), binary.Rows(), seed), nil
}

func measure(data []uint8, cols, rows int, seed images.Rect) Stats {
	var s Stats
	bounds := images.Rect{X1: cols, Y1: rows, X2: 0, Y2: 0}

	for y := 0; y < rows; y++ {
		row := data[y*cols : (y+1)*cols]
		for x, v := range row {
			if v == 0 {
				continue
			}
			s.Pixels++
			bounds.X1 = min(bounds.X1, x)
			bounds.Y1 = min(bounds.Y1, y)
			bounds.X2 = max(bounds.X2, x+1)
			bounds.Y2 = max(bounds.Y2, y+1)
		}
	}

	if s.Pixels == 0 {
		return s
	}
	s.Bounds = bounds
	s.Ratio = float64(s.Pixels) / float64(cols*rows)
	s.SeedIoU = images.CalculateIoU(bounds, seed)
	return s
}
