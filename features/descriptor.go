package features

import (
	"github.com/chewxy/math32"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-vision/common"
)

// SIFTDescriptorWidth is the length of a SIFT descriptor vector.
const SIFTDescriptorWidth = 128

// Descriptors is a row-major float32 matrix with one row per keypoint.
//
// The values are copied out of OpenCV memory into a tensor, so Descriptors
// stays valid after the Mat it came from is closed. The zero value is an
// empty matrix.
type Descriptors struct {
	t *tensor.Dense
}

// NewDescriptors copies a CV_32F descriptor Mat.
//
// Arguments:
//   - m: The descriptor Mat returned by DetectAndCompute. It may be empty.
//
// Returns:
//   - Descriptors: A matrix with m.Rows() rows and m.Cols() columns.
//   - error: KindUnsupported if m is not a single-channel float32 Mat.
func NewDescriptors(m gocv.Mat) (Descriptors, error) {
	const op = "features.NewDescriptors"

	if m.Empty() || m.Rows() == 0 {
		return Descriptors{}, nil
	}
	if m.Type() != gocv.MatTypeCV32FC1 {
		return Descriptors{}, common.Errorf(common.KindUnsupported, op, "expected CV_32FC1 descriptors, got %v", m.Type())
	}

	src, err := m.DataPtrFloat32()
	if err != nil {
		return Descriptors{}, common.E(common.KindUnsupported, op, err)
	}
	data := make([]float32, len(src))
	copy(data, src)

	return DescriptorsFromSlice(m.Rows(), m.Cols(), data)
}

// DescriptorsFromSlice wraps rows x width values as a descriptor matrix. The
// slice is used as backing storage without copying.
func DescriptorsFromSlice(rows, width int, data []float32) (Descriptors, error) {
	if rows == 0 {
		return Descriptors{}, nil
	}
	if rows < 0 || width <= 0 || len(data) != rows*width {
		return Descriptors{}, common.Errorf(common.KindInvalidArgument, "features.DescriptorsFromSlice",
			"%d values cannot form a %dx%d matrix", len(data), rows, width)
	}

	t := tensor.New(
		tensor.WithShape(rows, width),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	)
	return Descriptors{t: t}, nil
}

// Rows returns the number of descriptors.
func (d Descriptors) Rows() int {
	if d.t == nil {
		return 0
	}
	return d.t.Shape()[0]
}

// Width returns the descriptor length, 0 for an empty matrix.
func (d Descriptors) Width() int {
	if d.t == nil {
		return 0
	}
	return d.t.Shape()[1]
}

// Row returns the i-th descriptor. The slice aliases the matrix storage.
func (d Descriptors) Row(i int) []float32 {
	if i < 0 || i >= d.Rows() {
		return nil
	}
	w := d.Width()
	return d.data()[i*w : (i+1)*w]
}

// Norms returns the L2 norm of every descriptor.
func (d Descriptors) Norms() []float32 {
	norms := make([]float32, d.Rows())
	for i := range norms {
		var sum float32
		for _, v := range d.Row(i) {
			sum += v * v
		}
		norms[i] = math32.Sqrt(sum)
	}
	return norms
}

// MeanNorm is the average L2 norm, 0 for an empty matrix.
func (d Descriptors) MeanNorm() float32 {
	norms := d.Norms()
	if len(norms) == 0 {
		return 0
	}
	var sum float32
	for _, n := range norms {
		sum += n
	}
	return sum / float32(len(norms))
}

// Tensor exposes the underlying tensor, nil when empty.
func (d Descriptors) Tensor() *tensor.Dense { return d.t }

func (d Descriptors) data() []float32 {
	return d.t.Data().([]float32)
}
