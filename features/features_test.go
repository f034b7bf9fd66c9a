package features

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/config"
	"github.com/nvr-ai/go-vision/display"
	"github.com/nvr-ai/go-vision/images"
	"github.com/nvr-ai/go-vision/images/imagestest"
)

func grayOf(t *testing.T, src gocv.Mat) gocv.Mat {
	t.Helper()
	gray, err := images.Grayscale(src)
	require.NoError(t, err)
	return gray
}

func TestDetect_FeaturelessImageYieldsNothing(t *testing.T) {
	src := imagestest.NewGenerator(200, 150).Uniform(128)
	defer src.Close()
	gray := grayOf(t, src)
	defer gray.Close()

	det := NewDetector()
	defer det.Close()

	kps, desc, err := det.Detect(gray)
	require.NoError(t, err)
	assert.Empty(t, kps)
	assert.Equal(t, 0, desc.Rows())
	assert.Nil(t, desc.Tensor())

	rendered, err := Render(gray, kps, DefaultRenderOptions())
	require.NoError(t, err)
	defer rendered.Close()

	expected, err := images.GrayToBGR(gray)
	require.NoError(t, err)
	defer expected.Close()

	assert.Equal(t, images.Checksum(expected), images.Checksum(rendered))
}

func TestDetect_DescriptorsAlignWithKeypoints(t *testing.T) {
	src := imagestest.NewGenerator(500, 350).Shapes()
	defer src.Close()
	gray := grayOf(t, src)
	defer gray.Close()

	det := NewDetector()
	defer det.Close()

	kps, desc, err := det.Detect(gray)
	require.NoError(t, err)
	require.NotEmpty(t, kps)

	assert.Equal(t, len(kps), desc.Rows())
	assert.Equal(t, SIFTDescriptorWidth, desc.Width())
	for i, n := range desc.Norms() {
		assert.Greater(t, n, float32(0), "descriptor %d", i)
	}
	for _, kp := range kps {
		assert.True(t, kp.X >= 0 && kp.X < 500, kp.String())
		assert.True(t, kp.Y >= 0 && kp.Y < 350, kp.String())
		assert.Greater(t, kp.Size, 0.0)
	}
}

func TestDetect_RejectsUnusableInput(t *testing.T) {
	det := NewDetector()
	defer det.Close()

	colour := imagestest.NewGenerator(20, 20).Uniform(10)
	defer colour.Close()
	_, _, err := det.Detect(colour)
	assert.True(t, common.Is(err, common.KindUnsupported))

	empty := gocv.NewMat()
	defer empty.Close()
	_, _, err = det.Detect(empty)
	assert.True(t, common.Is(err, common.KindInvalidArgument))
}

func TestDetector_CloseIsIdempotent(t *testing.T) {
	det := NewDetector()
	require.NoError(t, det.Close())
	require.NoError(t, det.Close())

	gray := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer gray.Close()
	_, _, err := det.Detect(gray)
	assert.Error(t, err)
}

func TestRender_KeepsDimensionsAndInput(t *testing.T) {
	src := imagestest.NewGenerator(320, 240).Shapes()
	defer src.Close()
	gray := grayOf(t, src)
	defer gray.Close()
	before := images.Checksum(gray)

	det := NewDetector()
	defer det.Close()
	kps, _, err := det.Detect(gray)
	require.NoError(t, err)
	require.NotEmpty(t, kps)

	for _, rich := range []bool{true, false} {
		rendered, err := Render(gray, kps, RenderOptions{Color: color.RGBA{R: 255, A: 255}, Rich: rich})
		require.NoError(t, err)

		assert.Equal(t, gray.Cols(), rendered.Cols())
		assert.Equal(t, gray.Rows(), rendered.Rows())
		assert.Equal(t, 3, rendered.Channels())

		plain, err := images.GrayToBGR(gray)
		require.NoError(t, err)
		assert.NotEqual(t, images.Checksum(plain), images.Checksum(rendered), "markers drawn")

		plain.Close()
		rendered.Close()
	}
	assert.Equal(t, before, images.Checksum(gray))
}

func TestDescriptors(t *testing.T) {
	d, err := DescriptorsFromSlice(2, 2, []float32{3, 4, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Rows())
	assert.Equal(t, 2, d.Width())
	assert.Equal(t, []float32{3, 4}, d.Row(0))
	assert.Nil(t, d.Row(2))
	assert.Equal(t, []float32{5, 0}, d.Norms())
	assert.InDelta(t, 2.5, d.MeanNorm(), 1e-6)

	var empty Descriptors
	assert.Equal(t, 0, empty.Rows())
	assert.Equal(t, 0, empty.Width())
	assert.Empty(t, empty.Norms())
	assert.Zero(t, empty.MeanNorm())

	_, err = DescriptorsFromSlice(2, 3, []float32{1, 2})
	assert.True(t, common.Is(err, common.KindInvalidArgument))
}

func TestKeypointConversion(t *testing.T) {
	in := []gocv.KeyPoint{{X: 1.5, Y: 2.5, Size: 3, Angle: 90, Response: 0.1, Octave: 2, ClassID: -1}}
	kps := FromGoCV(in)

	assert.Equal(t, Keypoint{X: 1.5, Y: 2.5, Size: 3, Angle: 90, Response: 0.1, Octave: 2, ClassID: -1}, kps[0])
	assert.Equal(t, in, ToGoCV(kps))
}

func testConfig(t *testing.T, input string) config.KeypointsConfig {
	t.Helper()
	cfg := config.Default().Keypoints
	cfg.Input = input
	cfg.Surface = config.SurfaceNone
	return cfg
}

func TestRun(t *testing.T) {
	src := imagestest.NewGenerator(400, 300).Shapes()
	defer src.Close()
	input := imagestest.WritePNG(t, "shapes", src)

	cfg := testConfig(t, input)
	cfg.Output = filepath.Join(t.TempDir(), "out", "keypoints.png")

	res, err := Run(context.Background(), cfg, display.Nop{}, zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 400, res.Rendered.Cols())
	assert.Equal(t, 300, res.Rendered.Rows())
	assert.Equal(t, len(res.Keypoints), res.Descriptors.Rows())
	assert.Equal(t, display.ReasonDisabled, res.Dismissal.Reason)
	assert.Equal(t, []string{StageLoad, StageGrayscale, StageDetect, StageRender, StageSave, StageDisplay}, res.Stages.Names())

	saved, _, err := images.Load(res.OutputPath)
	require.NoError(t, err)
	defer saved.Close()
	assert.Equal(t, images.Checksum(res.Rendered), images.Checksum(saved))
}

func TestRun_WritesPlot(t *testing.T) {
	src := imagestest.NewGenerator(200, 100).Shapes()
	defer src.Close()

	cfg := testConfig(t, imagestest.WritePNG(t, "shapes", src))
	cfg.Surface = config.SurfacePlot
	cfg.PlotPath = filepath.Join(t.TempDir(), "plot.png")

	res, err := Run(context.Background(), cfg, display.NewPlot(cfg.PlotPath, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, display.ReasonWritten, res.Dismissal.Reason)
	assert.FileExists(t, cfg.PlotPath)
}

func TestRun_SkipsDisplayWhenDisabled(t *testing.T) {
	src := imagestest.NewGenerator(50, 50).Uniform(0)
	defer src.Close()

	cfg := testConfig(t, imagestest.WritePNG(t, "black", src))
	cfg.Display = false

	res, err := Run(context.Background(), cfg, display.NewPlot(filepath.Join(t.TempDir(), "never.png"), zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()

	assert.Empty(t, res.Keypoints)
	assert.NotContains(t, res.Stages.Names(), StageDisplay)
	assert.NotContains(t, res.Stages.Names(), StageSave)
}

func TestRun_Failures(t *testing.T) {
	src := imagestest.NewGenerator(40, 40).Shapes()
	defer src.Close()
	input := imagestest.WritePNG(t, "shapes", src)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		mutate func(*config.KeypointsConfig)
		kind   common.Kind
	}{
		{"missing input", context.Background(), func(c *config.KeypointsConfig) { c.Input = filepath.Join(t.TempDir(), "nope.jpg") }, common.KindNotFound},
		{"empty input path", context.Background(), func(c *config.KeypointsConfig) { c.Input = "" }, common.KindInvalidArgument},
		{"bad colour", context.Background(), func(c *config.KeypointsConfig) { c.Color = "green" }, common.KindInvalidArgument},
		{"unsupported output", context.Background(), func(c *config.KeypointsConfig) { c.Output = filepath.Join(t.TempDir(), "out.gif") }, common.KindUnsupported},
		{"canceled", canceled, func(*config.KeypointsConfig) {}, common.KindCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, input)
			tt.mutate(&cfg)

			res, err := Run(tt.ctx, cfg, display.Nop{}, zerolog.Nop())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.kind, common.KindOf(err), err.Error())
		})
	}
}
