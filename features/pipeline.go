package features

import (
	"context"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/config"
	"github.com/nvr-ai/go-vision/display"
	"github.com/nvr-ai/go-vision/images"
	"github.com/nvr-ai/go-vision/logger"
	"github.com/nvr-ai/go-vision/profiler"
)

// Stage names recorded in Result.Stages.
const (
	StageLoad      = "load"
	StageGrayscale = "grayscale"
	StageDetect    = "detect"
	StageRender    = "render"
	StageSave      = "save"
	StageDisplay   = "display"
)

// Result is the outcome of one keypoint visualization run.
type Result struct {
	// RunID tags every log line of the run.
	RunID string
	// Input describes the loaded image.
	Input images.Info
	// Rendered is the grayscale image with keypoints drawn over it in colour.
	Rendered    gocv.Mat
	Keypoints   []Keypoint
	Descriptors Descriptors
	// OutputPath is where Rendered was saved, empty when persistence is off.
	OutputPath string
	// Dismissal records how the display surface was closed.
	Dismissal display.Dismissal
	Stages    *profiler.Stages
}

// Close releases the rendered image.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	return r.Rendered.Close()
}

// Run loads cfg.Input, detects SIFT keypoints in its grayscale version,
// draws them and shows the drawing on surface until it is dismissed.
//
// Arguments:
//   - ctx: Cancels the run between stages and while the image is displayed.
//   - cfg: Input, optional output path, display and marker settings.
//   - surface: Where to show the result. nil or cfg.Display false skips display.
//   - log: Parent logger; the run adds component and run_id fields.
//
// Returns:
//   - *Result: The rendered image and detection output. The caller must Close it.
//   - error: A *common.Error whose kind tells which input was at fault.
//
// @example
// res, err := features.Run(ctx, cfg.Keypoints, display.Nop{}, log)
// if err != nil { ... }
// defer res.Close()
func Run(ctx context.Context, cfg config.KeypointsConfig, surface display.Surface, log zerolog.Logger) (*Result, error) {
	const op = "features.Run"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	markerColor, err := config.ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}

	log, runID := logger.WithRun(logger.Component(log, "keypoints"))
	res := &Result{
		RunID:     runID,
		Rendered:  gocv.NewMat(),
		Dismissal: display.Dismissal{Key: -1, Reason: display.ReasonDisabled},
		Stages:    profiler.NewStages(),
	}
	fail := func(err error) (*Result, error) {
		res.Close()
		log.Error().Err(err).Str("kind", common.KindOf(err).String()).Msg("keypoint run failed")
		return nil, err
	}

	done := res.Stages.Start(StageLoad)
	src, info, err := images.Load(cfg.Input)
	done()
	if err != nil {
		return fail(err)
	}
	defer src.Close()
	res.Input = info
	log.Debug().Str("path", info.Path).Int("width", info.Width).Int("height", info.Height).Msg("image loaded")

	if err := ctx.Err(); err != nil {
		return fail(common.E(common.KindCanceled, op, err))
	}

	done = res.Stages.Start(StageGrayscale)
	gray, err := images.Grayscale(src)
	done()
	if err != nil {
		return fail(err)
	}
	defer gray.Close()

	det := NewDetector()
	defer det.Close()

	done = res.Stages.Start(StageDetect)
	res.Keypoints, res.Descriptors, err = det.Detect(gray)
	done()
	if err != nil {
		return fail(err)
	}
	log.Debug().Int("keypoints", len(res.Keypoints)).Int("descriptor_width", res.Descriptors.Width()).Msg("keypoints detected")

	if err := ctx.Err(); err != nil {
		return fail(common.E(common.KindCanceled, op, err))
	}

	done = res.Stages.Start(StageRender)
	rendered, err := Render(gray, res.Keypoints, RenderOptions{Color: markerColor, Rich: cfg.Rich})
	done()
	if err != nil {
		return fail(err)
	}
	res.Rendered.Close()
	res.Rendered = rendered

	if cfg.Output != "" {
		done = res.Stages.Start(StageSave)
		err := images.Save(cfg.Output, res.Rendered)
		done()
		if err != nil {
			return fail(err)
		}
		res.OutputPath = cfg.Output
		log.Debug().Str("path", cfg.Output).Msg("rendered image saved")
	}

	if cfg.Display && surface != nil {
		done = res.Stages.Start(StageDisplay)
		res.Dismissal, err = surface.Show(ctx, cfg.WindowName, res.Rendered)
		done()
		if err != nil {
			return fail(err)
		}
	}

	log.Info().
		Int("keypoints", len(res.Keypoints)).
		Int("descriptor_width", res.Descriptors.Width()).
		Float32("mean_descriptor_norm", res.Descriptors.MeanNorm()).
		Object("dismissal", res.Dismissal).
		Object("stages", res.Stages).
		Dur("total", res.Stages.Total()).
		Msg("keypoint run complete")
	return res, nil
}
