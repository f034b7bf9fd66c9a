package images

import (
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// WebPQuality is the lossy quality used when saving WebP output.
const WebPQuality = 90

// Save writes an image to path, choosing the encoder from the file extension.
// Missing parent directories are created.
//
// Arguments:
//   - path: Destination file ending in .jpg, .jpeg, .png, .bmp or .webp.
//   - m: The image to write.
//
// Returns:
//   - error: KindUnsupported for an unknown extension, KindInvalidArgument
//     for an empty image, KindIO when the file cannot be written.
func Save(path string, m gocv.Mat) error {
	const op = "images.Save"

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := ValidateMat(m, op); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.E(common.KindIO, op, err)
		}
	}

	if format == FormatWebP {
		return saveWebP(path, m)
	}

	if ok := gocv.IMWrite(path, m); !ok {
		return common.Errorf(common.KindIO, op, "OpenCV could not write %s", path)
	}
	return nil
}

func saveWebP(path string, m gocv.Mat) error {
	const op = "images.Save"

	img, err := ToImage(m)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return common.E(common.KindIO, op, err)
	}

	if err := webp.Encode(f, img, &webp.Options{Quality: WebPQuality}); err != nil {
		f.Close()
		return common.E(common.KindIO, op, err)
	}
	if err := f.Close(); err != nil {
		return common.E(common.KindIO, op, err)
	}
	return nil
}
