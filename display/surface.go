// Package display presents result images and blocks until the user dismisses
// them.
//
// Every Surface owns whatever native window it opens and tears it down before
// Show returns, whatever the outcome.
package display

import (
	"context"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// EscapeKey is the key code reported for the Escape key.
const EscapeKey = 27

// Kind names a Surface implementation.
type Kind string

// Kind constants
const (
	// KindWindow is an OpenCV HighGUI window dismissed by any key.
	KindWindow Kind = "window"
	// KindViewer is a fyne window showing a downscaled preview.
	KindViewer Kind = "viewer"
	// KindPlot writes a figure with pixel axes to a PNG file.
	KindPlot Kind = "plot"
	// KindNone disables display.
	KindNone Kind = "none"
)

// Reason explains why Show returned.
type Reason string

// Reason constants
const (
	ReasonKey      Reason = "key"
	ReasonClosed   Reason = "closed"
	ReasonCanceled Reason = "canceled"
	ReasonWritten  Reason = "written"
	ReasonDisabled Reason = "disabled"
)

// Dismissal describes how a shown image was dismissed.
type Dismissal struct {
	// Key is the key code that dismissed the surface, -1 when none was pressed.
	Key int `json:"key"`
	// Escape is true when Key is EscapeKey.
	Escape bool   `json:"escape"`
	Reason Reason `json:"reason"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (d Dismissal) MarshalZerologObject(e *zerolog.Event) {
	e.Str("reason", string(d.Reason)).Int("key", d.Key).Bool("escape", d.Escape)
}

func keyDismissal(key int) Dismissal {
	return Dismissal{Key: key, Escape: key == EscapeKey, Reason: ReasonKey}
}

func noKey(reason Reason) Dismissal {
	return Dismissal{Key: -1, Reason: reason}
}

// Surface shows an image and waits for it to be dismissed.
type Surface interface {
	// Show presents img under title and blocks until the user dismisses it,
	// ctx is done, or, for non-interactive surfaces, the image is written.
	// A canceled ctx yields a KindCanceled error.
	Show(ctx context.Context, title string, img gocv.Mat) (Dismissal, error)
	// Close releases anything the surface still holds.
	Close() error
}

// Options configures the surface built by New.
type Options struct {
	// WindowName titles the OpenCV window.
	WindowName string
	// PlotPath is where the plot surface writes its figure.
	PlotPath string
	// MaxPreview bounds the longest side of the viewer preview, 0 for none.
	MaxPreview int
	Logger     zerolog.Logger
}

// New builds the surface named by kind.
//
// Arguments:
//   - kind: One of window, viewer, plot or none.
//   - opts: Settings for the chosen surface.
//
// Returns:
//   - Surface: The surface. Callers must Close it.
//   - error: KindInvalidArgument for an unknown kind or missing plot path.
func New(kind Kind, opts Options) (Surface, error) {
	const op = "display.New"

	switch kind {
	case KindWindow:
		return NewWindow(opts.WindowName, opts.Logger), nil
	case KindViewer:
		return NewViewer(opts.MaxPreview, opts.Logger), nil
	case KindPlot:
		if opts.PlotPath == "" {
			return nil, common.Errorf(common.KindInvalidArgument, op, "plot surface needs an output path")
		}
		return NewPlot(opts.PlotPath, opts.Logger), nil
	case KindNone, "":
		return Nop{}, nil
	default:
		return nil, common.Errorf(common.KindInvalidArgument, op, "unknown display surface %q", kind)
	}
}

// failed is the dismissal returned alongside an error.
func failed(err error) Dismissal {
	if common.Is(err, common.KindCanceled) {
		return noKey(ReasonCanceled)
	}
	return noKey("")
}

func checkShow(ctx context.Context, img gocv.Mat, op string) error {
	if err := ctx.Err(); err != nil {
		return common.E(common.KindCanceled, op, err)
	}
	if img.Empty() || img.Rows() <= 0 || img.Cols() <= 0 {
		return common.Errorf(common.KindInvalidArgument, op, "nothing to show: image is empty")
	}
	return nil
}
