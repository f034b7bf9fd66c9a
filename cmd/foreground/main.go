// Command foreground extracts the subject inside a seed rectangle with
// GrabCut, blacks out the background and shows the result.
//
// Usage:
//
//	foreground [-config configs/config.yaml]
//
// The seed can be overridden from the environment, e.g.
// CV_FOREGROUND_RECT_X=10 CV_FOREGROUND_RECT_WIDTH=300.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/config"
	"github.com/nvr-ai/go-vision/display"
	"github.com/nvr-ai/go-vision/logger"
	"github.com/nvr-ai/go-vision/segmentation"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(config.ParseConfigFlag())
	if err != nil {
		fmt.Fprintf(os.Stderr, "foreground: %v\n", err)
		return 2
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "foreground: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fg := cfg.Foreground
	kind := display.KindNone
	if fg.Display {
		kind = display.Kind(fg.Surface)
	}
	surface, err := display.New(kind, display.Options{
		WindowName: fg.WindowName,
		PlotPath:   fg.PlotPath,
		MaxPreview: fg.MaxPreview,
		Logger:     logger.Component(log, "display"),
	})
	if err != nil {
		log.Error().Err(err).Str("kind", common.KindOf(err).String()).Msg("cannot build display surface")
		return exitCode(err)
	}
	defer surface.Close()

	res, err := segmentation.Run(ctx, fg, surface, log)
	if err != nil {
		return exitCode(err)
	}
	defer res.Close()

	fmt.Printf("foreground: %d pixels (%.1f%%) inside %s, seed IoU %.3f\n",
		res.Stats.Pixels, res.Stats.Ratio*100, res.Stats.Bounds, res.Stats.SeedIoU)
	return 0
}

// exitCode maps a failure kind to the process exit status. The pipeline has
// already logged the failure.
func exitCode(err error) int {
	switch common.KindOf(err) {
	case common.KindCanceled:
		return 130
	case common.KindInvalidArgument:
		return 2
	default:
		return 1
	}
}
