package images

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images/imagestest"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ImageFormat
	}{
		{"a.jpg", FormatJPEG},
		{"dir/b.JPEG", FormatJPEG},
		{"c.png", FormatPNG},
		{"d.webp", FormatWebP},
		{"e.bmp", FormatBMP},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatFromPath("f.tiff")
	assert.True(t, common.Is(err, common.KindUnsupported))
}

func TestLoad_MissingFile(t *testing.T) {
	m, _, err := Load(filepath.Join(t.TempDir(), "missing.jpg"))
	defer m.Close()

	require.Error(t, err)
	assert.True(t, common.Is(err, common.KindNotFound))
	assert.True(t, m.Empty())
}

func TestLoad_UndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	m, _, err := Load(path)
	defer m.Close()

	require.Error(t, err)
	assert.True(t, common.Is(err, common.KindDecode))
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	src := imagestest.NewGenerator(64, 48).Shapes()
	defer src.Close()

	for _, ext := range []string{".png", ".bmp", ".jpg", ".webp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out"+ext)
			require.NoError(t, Save(path, src))

			m, info, err := Load(path)
			require.NoError(t, err)
			defer m.Close()

			assert.Equal(t, 64, info.Width)
			assert.Equal(t, 48, info.Height)
			assert.Equal(t, 3, info.Channels)
			assert.Equal(t, path, info.Path)
		})
	}
}

func TestSave_LosslessKeepsPixels(t *testing.T) {
	src := imagestest.NewGenerator(32, 32).Shapes()
	defer src.Close()

	path := filepath.Join(t.TempDir(), "exact.png")
	require.NoError(t, Save(path, src))

	m, _, err := Load(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, Checksum(src), Checksum(m))
}

func TestSave_Rejects(t *testing.T) {
	src := imagestest.NewGenerator(8, 8).Uniform(0)
	defer src.Close()

	err := Save(filepath.Join(t.TempDir(), "out.tiff"), src)
	assert.True(t, common.Is(err, common.KindUnsupported))

	empty := gocv.NewMat()
	defer empty.Close()
	err = Save(filepath.Join(t.TempDir(), "out.png"), empty)
	assert.True(t, common.Is(err, common.KindInvalidArgument))
}

func TestDecode(t *testing.T) {
	src := imagestest.NewGenerator(20, 10).Uniform(200)
	defer src.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, src)
	require.NoError(t, err)
	defer buf.Close()

	m, err := Decode(buf.GetBytes())
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, 20, m.Cols())
	assert.Equal(t, 10, m.Rows())

	bad, err := Decode(nil)
	defer bad.Close()
	assert.True(t, common.Is(err, common.KindDecode))
}

func TestGrayscale_KeepsShapeWithOneChannel(t *testing.T) {
	for _, size := range []image.Point{{500, 350}, {1, 1}, {31, 77}} {
		src := imagestest.NewGenerator(size.X, size.Y).Shapes()

		gray, err := Grayscale(src)
		require.NoError(t, err)

		assert.Equal(t, src.Cols(), gray.Cols())
		assert.Equal(t, src.Rows(), gray.Rows())
		assert.Equal(t, 1, gray.Channels())

		gray.Close()
		src.Close()
	}
}

func TestGrayscale_RejectsNonColour(t *testing.T) {
	single := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer single.Close()

	out, err := Grayscale(single)
	defer out.Close()
	assert.True(t, common.Is(err, common.KindUnsupported))

	empty := gocv.NewMat()
	defer empty.Close()
	out2, err := Grayscale(empty)
	defer out2.Close()
	assert.True(t, common.Is(err, common.KindInvalidArgument))
}

func TestGrayToBGR(t *testing.T) {
	src := imagestest.NewGenerator(16, 8).Uniform(77)
	defer src.Close()

	gray, err := Grayscale(src)
	require.NoError(t, err)
	defer gray.Close()

	bgr, err := GrayToBGR(gray)
	require.NoError(t, err)
	defer bgr.Close()

	assert.Equal(t, 3, bgr.Channels())
	assert.Equal(t, Checksum(src), Checksum(bgr))
}

func TestToImage(t *testing.T) {
	src := imagestest.NewGenerator(12, 6).Uniform(10)
	defer src.Close()

	img, err := ToImage(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 6), img.Bounds())
}

func TestPreview(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		big.Set(x, 100, color.RGBA{R: 255, A: 255})
	}

	small := Preview(big, 100)
	assert.Equal(t, 100, small.Bounds().Dx())
	assert.Equal(t, 50, small.Bounds().Dy())

	// never upscales
	assert.Same(t, big, Preview(big, 1000))
	assert.Same(t, big, Preview(big, 0))
}
