package segmentation

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
	StageGrabCut   = "grabcut"
	StageBinarize  = "binarize"
	StageComposite = "composite"
	StageSave      = "save"
	StageDisplay   = "display"
)

// Result is the outcome of one foreground extraction run.
type Result struct {
	RunID string
	Input images.Info
	// Seed is the rectangle GrabCut was initialised with.
	Seed images.Rect
	// Labels is the raw GrabCut label mask.
	Labels gocv.Mat
	// Binary is Labels collapsed to 0 (background) and 1 (foreground).
	Binary gocv.Mat
	// Foreground is the input with every background pixel set to black.
	Foreground gocv.Mat
	Stats      Stats
	OutputPath string
	Dismissal  display.Dismissal
	Stages     *profiler.Stages
}

// Close releases the masks and the composited image.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var first error
	for _, m := range []*gocv.Mat{&r.Labels, &r.Binary, &r.Foreground} {
		if err := m.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run loads cfg.Input, segments it with GrabCut seeded by cfg.Rect, blacks out
// the background and shows the result on surface until it is dismissed.
//
// The seed rectangle is checked against the image before GrabCut runs: a
// rectangle with zero size or reaching outside the image fails with
// KindInvalidArgument.
//
// Arguments:
//   - ctx: Cancels the run between stages and while the image is displayed.
//   - cfg: Input, seed rectangle, iterations, output and display settings.
//   - surface: Where to show the result. nil or cfg.Display false skips display.
//   - log: Parent logger; the run adds component and run_id fields.
//
// Returns:
//   - *Result: Masks, composited image and statistics. The caller must Close it.
//   - error: A *common.Error.
func Run(ctx context.Context, cfg config.ForegroundConfig, surface display.Surface, log zerolog.Logger) (*Result, error) {
	const op = "segmentation.Run"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, runID := logger.WithRun(logger.Component(log, "foreground"))
	res := &Result{
		RunID:      runID,
		Seed:       images.RectFromXYWH(cfg.Rect.X, cfg.Rect.Y, cfg.Rect.Width, cfg.Rect.Height),
		Labels:     gocv.NewMat(),
		Binary:     gocv.NewMat(),
		Foreground: gocv.NewMat(),
		Dismissal:  display.Dismissal{Key: -1, Reason: display.ReasonDisabled},
		Stages:     profiler.NewStages(),
	}
	fail := func(err error) (*Result, error) {
		res.Close()
		log.Error().Err(err).Str("kind", common.KindOf(err).String()).Msg("foreground run failed")
		return nil, err
	}

	done := res.Stages.Start(StageLoad)
	img, info, err := images.Load(cfg.Input)
	done()
	if err != nil {
		return fail(err)
	}
	defer img.Close()
	res.Input = info
	log.Debug().Str("path", info.Path).Int("width", info.Width).Int("height", info.Height).Msg("image loaded")

	if err := res.Seed.ValidateWithin(info.Width, info.Height); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(common.E(common.KindCanceled, op, err))
	}

	seg, err := NewSegmenter(img)
	if err != nil {
		return fail(err)
	}
	defer seg.Close()

	done = res.Stages.Start(StageGrabCut)
	err = seg.Segment(res.Seed, cfg.Iterations)
	done()
	if err != nil {
		return fail(err)
	}
	res.Labels.Close()
	res.Labels = seg.Mask.Clone()
	log.Debug().Stringer("seed", res.Seed).Int("iterations", cfg.Iterations).Msg("grabcut finished")

	if err := ctx.Err(); err != nil {
		return fail(common.E(common.KindCanceled, op, err))
	}

	done = res.Stages.Start(StageBinarize)
	binary, err := seg.Binary()
	done()
	if err != nil {
		return fail(err)
	}
	res.Binary.Close()
	res.Binary = binary

	if res.Stats, err = Measure(res.Binary, res.Seed); err != nil {
		return fail(err)
	}

	done = res.Stages.Start(StageComposite)
	fg, err := Composite(img, res.Binary)
	done()
	if err != nil {
		return fail(err)
	}
	res.Foreground.Close()
	res.Foreground = fg

	if cfg.Output != "" {
		done = res.Stages.Start(StageSave)
		err := images.Save(cfg.Output, res.Foreground)
		done()
		if err != nil {
			return fail(err)
		}
		res.OutputPath = cfg.Output
		log.Debug().Str("path", cfg.Output).Msg("foreground image saved")
	}

	if cfg.Display && surface != nil {
		done = res.Stages.Start(StageDisplay)
		res.Dismissal, err = surface.Show(ctx, cfg.WindowName, res.Foreground)
		done()
		if err != nil {
			return fail(err)
		}
	}

	log.Info().
		Object("stats", res.Stats).
		Object("dismissal", res.Dismissal).
		Object("stages", res.Stages).
		Dur("total", res.Stages.Total()).
		Msg("foreground run complete")
	return res, nil
}
