package display

import (
	"context"
	"sync"
	"unicode"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images"
)

// AppID identifies the fyne application.
const AppID = "ai.nvr.go-vision"

// Viewer shows images in a fyne window scaled down to a preview.
//
// fyne runs one event loop per process, so a Viewer can Show a single image.
// Show must be called from the main goroutine.
type Viewer struct {
	maxPreview int
	log        zerolog.Logger
	newApp     func() fyne.App

	mu   sync.Mutex
	used bool
}

// NewViewer creates a viewer surface.
//
// Arguments:
//   - maxPreview: Longest side of the shown preview in pixels, 0 to show the
//     image at full size.
//   - log: Logger for viewer lifecycle events.
//
// Returns:
//   - *Viewer: The surface.
func NewViewer(maxPreview int, log zerolog.Logger) *Viewer {
	return &Viewer{
		maxPreview: maxPreview,
		log:        log,
		newApp:     func() fyne.App { return app.NewWithID(AppID) },
	}
}

// Show opens a window with a preview of img and runs the fyne event loop
// until a key is typed, the window is closed or ctx is done.
func (v *Viewer) Show(ctx context.Context, title string, img gocv.Mat) (Dismissal, error) {
	const op = "display.Viewer.Show"

	if err := checkShow(ctx, img, op); err != nil {
		return failed(err), err
	}

	v.mu.Lock()
	if v.used {
		v.mu.Unlock()
		err := common.Errorf(common.KindDisplay, op, "viewer already ran its event loop")
		return failed(err), err
	}
	v.used = true
	v.mu.Unlock()

	goImg, err := images.ToImage(img)
	if err != nil {
		return failed(err), common.E(common.KindDisplay, op, err)
	}
	preview := images.Preview(goImg, v.maxPreview)
	bounds := preview.Bounds()

	a := v.newApp()
	win := a.NewWindow(title)

	picture := canvas.NewImageFromImage(preview)
	picture.FillMode = canvas.ImageFillContain
	picture.SetMinSize(fyne.NewSize(float32(bounds.Dx()), float32(bounds.Dy())))
	win.SetContent(picture)

	var (
		once   sync.Once
		mu     sync.Mutex
		result = noKey(ReasonClosed)
	)
	finish := func(d Dismissal) {
		once.Do(func() {
			mu.Lock()
			result = d
			mu.Unlock()
			a.Quit()
		})
	}

	win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		finish(keyDismissal(keyCode(ev.Name)))
	})
	win.SetOnClosed(func() {
		finish(noKey(ReasonClosed))
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(func() { finish(noKey(ReasonCanceled)) })
		case <-stop:
		}
	}()

	v.log.Debug().
		Int("width", img.Cols()).
		Int("height", img.Rows()).
		Int("preview_width", bounds.Dx()).
		Int("preview_height", bounds.Dy()).
		Msg("viewer shown")
	win.ShowAndRun()

	mu.Lock()
	d := result
	mu.Unlock()
	if d.Reason == ReasonCanceled {
		return d, common.E(common.KindCanceled, op, ctx.Err())
	}
	return d, nil
}

// Close does nothing; the event loop has ended by the time Show returns.
func (v *Viewer) Close() error { return nil }

// keyCode maps a fyne key name to the code OpenCV would report.
func keyCode(name fyne.KeyName) int {
	switch name {
	case fyne.KeyEscape:
		return EscapeKey
	case fyne.KeyReturn, fyne.KeyEnter:
		return 13
	case fyne.KeySpace:
		return 32
	case fyne.KeyTab:
		return 9
	case fyne.KeyBackspace:
		return 8
	}
	if r, size := utf8.DecodeRuneInString(string(name)); size == len(name) && r != utf8.RuneError {
		return int(unicode.ToLower(r))
	}
	return 0
}
