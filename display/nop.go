package display

import (
	"context"

	"gocv.io/x/gocv"
)

// Nop is the surface used when display is disabled. Show returns at once.
type Nop struct{}

// Show validates img and returns a ReasonDisabled dismissal.
func (Nop) Show(ctx context.Context, _ string, img gocv.Mat) (Dismissal, error) {
	if err := checkShow(ctx, img, "display.Nop.Show"); err != nil {
		return failed(err), err
	}
	return noKey(ReasonDisabled), nil
}

// Close does nothing.
func (Nop) Close() error { return nil }
