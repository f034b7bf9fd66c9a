package display

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images"
)

// PlotWidth is the width of the written figure; the height follows the
// image aspect ratio.
const PlotWidth = 8 * vg.Inch

// Plot renders the image as a figure with pixel-coordinate axes and writes it
// to a file. The file type follows the extension (.png, .svg, .pdf, ...).
type Plot struct {
	path string
	log  zerolog.Logger
}

// NewPlot creates a plot surface writing to path.
func NewPlot(path string, log zerolog.Logger) *Plot {
	return &Plot{path: path, log: log}
}

// Path returns the file the figure is written to.
func (p *Plot) Path() string { return p.path }

// Show writes the figure and returns without waiting for the user.
func (p *Plot) Show(ctx context.Context, title string, img gocv.Mat) (Dismissal, error) {
	const op = "display.Plot.Show"

	if err := checkShow(ctx, img, op); err != nil {
		return failed(err), err
	}

	goImg, err := images.ToImage(img)
	if err != nil {
		return failed(err), common.E(common.KindDisplay, op, err)
	}

	w, h := float64(img.Cols()), float64(img.Rows())
	fig := plot.New()
	fig.Title.Text = title
	fig.X.Label.Text = "x (px)"
	fig.Y.Label.Text = "y (px)"
	fig.X.Min, fig.X.Max = 0, w
	fig.Y.Min, fig.Y.Max = 0, h
	fig.Add(plotter.NewImage(goImg, 0, 0, w, h))

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failed(err), common.E(common.KindIO, op, err)
		}
	}

	height := vg.Length(float64(PlotWidth) * h / w)
	height = min(max(height, 2*vg.Inch), 24*vg.Inch)
	if err := fig.Save(PlotWidth, height, p.path); err != nil {
		return noKey(""), common.E(common.KindIO, op, err)
	}

	p.log.Info().Str("path", p.path).Str("title", title).Msg("plot written")
	return noKey(ReasonWritten), nil
}

// Close does nothing.
func (p *Plot) Close() error { return nil }
