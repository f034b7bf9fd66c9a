// Package config - configuration for the keypoint and foreground pipelines.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// CV_ prefixed environment variables. CV_FOREGROUND_RECT_X=10 sets
// foreground.rect.x.
package config

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/logger"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "CV_"

// Surface names accepted in the surface fields.
const (
	// SurfaceWindow is an OpenCV HighGUI window.
	SurfaceWindow = "window"
	// SurfaceViewer is an interactive desktop viewer window.
	SurfaceViewer = "viewer"
	// SurfacePlot writes a figure with axes to PlotPath.
	SurfacePlot = "plot"
	// SurfaceNone disables display.
	SurfaceNone = "none"
)

// Config is the full configuration of both binaries.
type Config struct {
	Log        logger.Config    `koanf:"log"`
	Keypoints  KeypointsConfig  `koanf:"keypoints"`
	Foreground ForegroundConfig `koanf:"foreground"`
}

// KeypointsConfig configures the keypoint visualization pipeline.
type KeypointsConfig struct {
	// Input is the colour image to analyse.
	Input string `koanf:"input"`
	// Output, when set, receives the rendered image. Empty disables persistence.
	Output string `koanf:"output"`
	// Display shows the rendered image on Surface.
	Display bool `koanf:"display"`
	// Surface is one of window, viewer, plot, none.
	Surface string `koanf:"surface"`
	// WindowName titles the display window.
	WindowName string `koanf:"windowname"`
	// PlotPath is where the plot surface writes its figure.
	PlotPath string `koanf:"plotpath"`
	// Color is the keypoint marker colour as #rrggbb.
	Color string `koanf:"color"`
	// Rich draws each keypoint with a scale-sized circle and an orientation line.
	Rich bool `koanf:"rich"`
}

// RectConfig is a seed rectangle in x, y, width, height form.
type RectConfig struct {
	X      int `koanf:"x"`
	Y      int `koanf:"y"`
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// ForegroundConfig configures the foreground extraction pipeline.
type ForegroundConfig struct {
	// Input is the colour image to segment.
	Input string `koanf:"input"`
	// Output, when set, receives the composited image. Empty disables persistence.
	Output string `koanf:"output"`
	// Rect seeds the segmentation: inside is probable foreground, outside is background.
	Rect RectConfig `koanf:"rect"`
	// Iterations is the number of GrabCut refinement iterations.
	Iterations int `koanf:"iterations"`
	// Display shows the composited image on Surface.
	Display bool `koanf:"display"`
	// Surface is one of viewer, window, plot, none.
	Surface string `koanf:"surface"`
	// WindowName titles the display window.
	WindowName string `koanf:"windowname"`
	// PlotPath is where the plot surface writes its figure.
	PlotPath string `koanf:"plotpath"`
	// MaxPreview caps the longest side, in pixels, of the image shown by the viewer.
	MaxPreview int `koanf:"maxpreview"`
}

// defaults sit beneath the YAML file and environment layers.
var defaults = map[string]interface{}{
	"log.level":  "info",
	"log.format": string(logger.FormatConsole),

	"keypoints.input":      "input-files/zaha-hadid.jpg",
	"keypoints.output":     "",
	"keypoints.display":    true,
	"keypoints.surface":    SurfaceWindow,
	"keypoints.windowname": "Result",
	"keypoints.plotpath":   "output-files/sift-keypoints-plot.png",
	"keypoints.color":      "#00ff00",
	"keypoints.rich":       true,

	"foreground.input":       "input-files/messi.jpg",
	"foreground.output":      "",
	"foreground.rect.x":      50,
	"foreground.rect.y":      50,
	"foreground.rect.width":  450,
	"foreground.rect.height": 290,
	"foreground.iterations":  5,
	"foreground.display":     true,
	"foreground.surface":     SurfaceViewer,
	"foreground.windowname":  "Foreground",
	"foreground.plotpath":    "output-files/foreground-plot.png",
	"foreground.maxpreview":  1024,
}

// Default returns the built-in configuration without reading files or the environment.
func Default() Config {
	cfg, err := load("", false)
	if err != nil {
		// The defaults map is static; failing to decode it is a programming error.
		panic(err)
	}
	return cfg
}

// Load reads the configuration.
//
// Arguments:
//   - path: Optional YAML file. Empty means defaults and environment only.
//
// Returns:
//   - Config: The decoded and validated configuration.
//   - error: KindNotFound for a missing file, KindInvalidArgument for a
//     malformed file or a value rejected by Validate.
func Load(path string) (Config, error) {
	cfg, err := load(path, true)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(path string, withEnv bool) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, common.E(common.KindInvalidArgument, "config.Load", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, common.E(common.KindNotFound, "config.Load", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, common.E(common.KindInvalidArgument, "config.Load", err)
		}
	}

	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return Config{}, common.E(common.KindInvalidArgument, "config.Load", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, common.E(common.KindInvalidArgument, "config.Load", err)
	}
	return cfg, nil
}

// envKey maps CV_FOREGROUND_RECT_X to foreground.rect.x.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate checks every field that the pipelines would otherwise pass
// unchecked to OpenCV.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return invalid("log.format: unknown format %q", c.Log.Format)
	}

	if err := c.Keypoints.Validate(); err != nil {
		return err
	}
	return c.Foreground.Validate()
}

// Validate checks the keypoint pipeline settings.
func (c KeypointsConfig) Validate() error {
	if c.Input == "" {
		return invalid("keypoints.input: must not be empty")
	}
	if err := validateSurface("keypoints", c.Surface, c.PlotPath, SurfaceWindow, SurfaceViewer, SurfacePlot, SurfaceNone); err != nil {
		return err
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	return nil
}

// Validate checks the foreground pipeline settings. A seed rectangle with
// zero width or height is rejected here instead of being passed to GrabCut.
func (c ForegroundConfig) Validate() error {
	if c.Input == "" {
		return invalid("foreground.input: must not be empty")
	}
	if c.Iterations < 1 {
		return invalid("foreground.iterations: must be at least 1, got %d", c.Iterations)
	}
	if c.Rect.X < 0 || c.Rect.Y < 0 {
		return invalid("foreground.rect: origin (%d, %d) must not be negative", c.Rect.X, c.Rect.Y)
	}
	if c.Rect.Width <= 0 || c.Rect.Height <= 0 {
		return invalid("foreground.rect: size %dx%d must be positive", c.Rect.Width, c.Rect.Height)
	}
	if c.MaxPreview < 0 {
		return invalid("foreground.maxpreview: must not be negative, got %d", c.MaxPreview)
	}
	return validateSurface("foreground", c.Surface, c.PlotPath, SurfaceViewer, SurfaceWindow, SurfacePlot, SurfaceNone)
}

func validateSurface(section, surface, plotPath string, allowed ...string) error {
	for _, a := range allowed {
		if surface != a {
			continue
		}
		if surface == SurfacePlot && plotPath == "" {
			return invalid("%s.plotpath: required by the plot surface", section)
		}
		return nil
	}
	return invalid("%s.surface: %q is not one of %s", section, surface, strings.Join(allowed, ", "))
}

// ParseColor parses a #rrggbb colour.
func ParseColor(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, invalid("color: %q is not #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, invalid("color: %q is not #rrggbb", s)
	}
	return c, nil
}

func invalid(format string, args ...interface{}) error {
	return common.Errorf(common.KindInvalidArgument, "config.Validate", format, args...)
}

var defaultConfigPath = ""

// ParseConfigFlag allows clients to specify the YAML file from which the
// configuration will be loaded.
func ParseConfigFlag() string {
	configPath := flag.String("config", defaultConfigPath, "configuration file (YAML)")
	flag.Parse()

	return *configPath
}
