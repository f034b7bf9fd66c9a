package display

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
)

// DefaultPollInterval is how long each WaitKey call blocks while waiting for
// a key press.
const DefaultPollInterval = 50 * time.Millisecond

// Window shows images in an OpenCV HighGUI window.
//
// Any key press dismisses the window; Escape is recorded in the Dismissal
// but handled like every other key. The native window is created by Show and
// destroyed before Show returns.
type Window struct {
	name string
	poll time.Duration
	log  zerolog.Logger
}

// NewWindow creates a window surface.
//
// Arguments:
//   - name: The window identifier, "Result" when empty.
//   - log: Logger for window lifecycle events.
//
// Returns:
//   - *Window: The surface.
func NewWindow(name string, log zerolog.Logger) *Window {
	if name == "" {
		name = "Result"
	}
	return &Window{name: name, poll: DefaultPollInterval, log: log}
}

// Show displays img and waits for a key press, for the user to close the
// window, or for ctx to be done.
func (w *Window) Show(ctx context.Context, title string, img gocv.Mat) (Dismissal, error) {
	const op = "display.Window.Show"

	if err := checkShow(ctx, img, op); err != nil {
		return failed(err), err
	}

	// HighGUI calls must stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win := gocv.NewWindow(w.name)
	defer func() {
		if err := win.Close(); err != nil {
			w.log.Warn().Err(err).Str("window", w.name).Msg("failed to destroy window")
		}
	}()

	if title != "" {
		if err := win.SetWindowTitle(title); err != nil {
			return noKey(""), common.E(common.KindDisplay, op, err)
		}
	}
	if err := win.IMShow(img); err != nil {
		return noKey(""), common.E(common.KindDisplay, op, err)
	}
	w.log.Debug().Str("window", w.name).Int("width", img.Cols()).Int("height", img.Rows()).Msg("window shown")

	delay := int(w.poll / time.Millisecond)
	if delay < 1 {
		delay = 1
	}
	for {
		if err := ctx.Err(); err != nil {
			return noKey(ReasonCanceled), common.E(common.KindCanceled, op, err)
		}
		if key := win.WaitKey(delay); key >= 0 {
			return keyDismissal(key & 0xFF), nil
		}
		if win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return noKey(ReasonClosed), nil
		}
	}
}

// Close does nothing; Show never leaves a window open.
func (w *Window) Close() error { return nil }
