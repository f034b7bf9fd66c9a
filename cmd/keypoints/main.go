// Command keypoints detects SIFT keypoints in an image and shows them drawn
// over its grayscale version until a key is pressed.
//
// Usage:
//
//	keypoints [-config configs/config.yaml]
//
// Settings not in the file come from CV_ prefixed environment variables,
// e.g. CV_KEYPOINTS_INPUT=photo.jpg.
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
	"github.com/nvr-ai/go-vision/features"
	"github.com/nvr-ai/go-vision/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(config.ParseConfigFlag())
	if err != nil {
		fmt.Fprintf(os.Stderr, "keypoints: %v\n", err)
		return 2
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keypoints: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind := display.KindNone
	if cfg.Keypoints.Display {
		kind = display.Kind(cfg.Keypoints.Surface)
	}
	surface, err := display.New(kind, display.Options{
		WindowName: cfg.Keypoints.WindowName,
		PlotPath:   cfg.Keypoints.PlotPath,
		Logger:     logger.Component(log, "display"),
	})
	if err != nil {
		log.Error().Err(err).Str("kind", common.KindOf(err).String()).Msg("cannot build display surface")
		return exitCode(err)
	}
	defer surface.Close()

	res, err := features.Run(ctx, cfg.Keypoints, surface, log)
	if err != nil {
		return exitCode(err)
	}
	defer res.Close()

	fmt.Printf("%d keypoints in %s (%dx%d)\n", len(res.Keypoints), res.Input.Path, res.Input.Width, res.Input.Height)
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
