// Package images - loading, saving and validating the images handled by the pipelines.
package images

import (
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// ImageFormat represents supported image formats.
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
)

// Info describes an image loaded from disk.
type Info struct {
	// Path is the file the image was read from.
	Path string `json:"path" yaml:"path"`
	// Format is derived from the file extension.
	Format ImageFormat `json:"format" yaml:"format"`
	// Width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// Height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// Channels is 3 for the colour images the pipelines accept.
	Channels int `json:"channels" yaml:"channels"`
}

// FormatFromPath derives the image format from a file extension.
//
// Arguments:
//   - path: A file name or path such as "out/result.JPG".
//
// Returns:
//   - ImageFormat: The matching format.
//   - error: KindUnsupported when the extension is not a known image format.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", common.Errorf(common.KindUnsupported, "images.FormatFromPath", "unsupported image extension %q", filepath.Ext(path))
	}
}

// Load reads a colour image from disk.
//
// OpenCV returns an empty Mat, not an error, when a file is missing or cannot
// be decoded. Load turns both cases into typed errors so that no later step
// runs on an empty image.
//
// Arguments:
//   - path: The image file to read.
//
// Returns:
//   - gocv.Mat: A 3-channel BGR image. The caller owns it and must Close it.
//   - Info: Path, format and dimensions of the image.
//   - error: KindNotFound, KindDecode or KindUnsupported.
func Load(path string) (gocv.Mat, Info, error) {
	const op = "images.Load"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return gocv.NewMat(), Info{}, common.E(common.KindNotFound, op, err)
		}
		return gocv.NewMat(), Info{}, common.E(common.KindIO, op, err)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), Info{}, common.Errorf(common.KindDecode, op, "cannot decode %s as an image", path)
	}

	info := Info{
		Path:     path,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}
	if format, err := FormatFromPath(path); err == nil {
		info.Format = format
	}

	if err := ValidateColor(mat, op); err != nil {
		mat.Close()
		return gocv.NewMat(), Info{}, err
	}
	return mat, info, nil
}

// Decode decodes an encoded image held in memory into a 3-channel BGR Mat.
func Decode(data []byte) (gocv.Mat, error) {
	const op = "images.Decode"

	if len(data) == 0 {
		return gocv.NewMat(), common.Errorf(common.KindDecode, op, "no image data")
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), common.E(common.KindDecode, op, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), common.Errorf(common.KindDecode, op, "cannot decode %d bytes as an image", len(data))
	}
	return mat, nil
}

// ValidateMat rejects empty Mats and Mats without positive dimensions.
//
// Arguments:
//   - m: The Mat about to be handed to OpenCV.
//   - op: The operation name used in the error.
//
// Returns:
//   - error: KindInvalidArgument if the Mat is unusable.
func ValidateMat(m gocv.Mat, op string) error {
	if m.Empty() {
		return common.Errorf(common.KindInvalidArgument, op, "image is empty")
	}
	if m.Rows() <= 0 || m.Cols() <= 0 {
		return common.Errorf(common.KindInvalidArgument, op, "image has invalid dimensions %dx%d", m.Cols(), m.Rows())
	}
	return nil
}

// ValidateColor requires a non-empty 3-channel 8-bit image.
func ValidateColor(m gocv.Mat, op string) error {
	if err := ValidateMat(m, op); err != nil {
		return err
	}
	if m.Type() != gocv.MatTypeCV8UC3 {
		return common.Errorf(common.KindUnsupported, op, "expected an 8-bit 3-channel image, got %d channels of type %v", m.Channels(), m.Type())
	}
	return nil
}
