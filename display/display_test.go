package display

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-vision/common"
	"github.com/nvr-ai/go-vision/images/imagestest"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		opts    Options
		want    any
		wantErr bool
	}{
		{name: "window", kind: KindWindow, want: &Window{}},
		{name: "viewer", kind: KindViewer, want: &Viewer{}},
		{name: "plot", kind: KindPlot, opts: Options{PlotPath: "out.png"}, want: &Plot{}},
		{name: "none", kind: KindNone, want: Nop{}},
		{name: "empty means none", kind: "", want: Nop{}},
		{name: "plot without path", kind: KindPlot, wantErr: true},
		{name: "unknown", kind: "hologram", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.kind, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, common.Is(err, common.KindInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
			assert.NoError(t, s.Close())
		})
	}
}

func TestNewWindow_DefaultName(t *testing.T) {
	w := NewWindow("", zerolog.Nop())
	assert.Equal(t, "Result", w.name)
	assert.Equal(t, DefaultPollInterval, w.poll)
}

func TestNop_Show(t *testing.T) {
	img := imagestest.NewGenerator(10, 10).Uniform(50)
	defer img.Close()

	d, err := Nop{}.Show(context.Background(), "t", img)
	require.NoError(t, err)
	assert.Equal(t, Dismissal{Key: -1, Reason: ReasonDisabled}, d)
}

func TestShow_RejectsEmptyImageAndCanceledContext(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	img := imagestest.NewGenerator(10, 10).Uniform(50)
	defer img.Close()

	surfaces := map[string]Surface{
		"nop":    Nop{},
		"plot":   NewPlot(filepath.Join(t.TempDir(), "p.png"), zerolog.Nop()),
		"window": NewWindow("test", zerolog.Nop()),
		"viewer": NewViewer(0, zerolog.Nop()),
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range surfaces {
		t.Run(name, func(t *testing.T) {
			_, err := s.Show(context.Background(), "empty", empty)
			assert.True(t, common.Is(err, common.KindInvalidArgument))

			d, err := s.Show(canceled, "canceled", img)
			assert.True(t, common.Is(err, common.KindCanceled))
			assert.Equal(t, ReasonCanceled, d.Reason)
		})
	}
}

func TestPlot_WritesFigure(t *testing.T) {
	img := imagestest.NewGenerator(500, 350).Shapes()
	defer img.Close()

	path := filepath.Join(t.TempDir(), "figures", "result.png")
	p := NewPlot(path, zerolog.Nop())

	d, err := p.Show(context.Background(), "Result", img)
	require.NoError(t, err)
	assert.Equal(t, ReasonWritten, d.Reason)
	assert.Equal(t, -1, d.Key)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name fyne.KeyName
		want int
	}{
		{fyne.KeyEscape, EscapeKey},
		{fyne.KeyReturn, 13},
		{fyne.KeySpace, 32},
		{fyne.KeyQ, 'q'},
		{fyne.Key1, '1'},
		{fyne.KeyF1, 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, keyCode(tt.name))
		})
	}
}

func TestKeyDismissal(t *testing.T) {
	assert.Equal(t, Dismissal{Key: EscapeKey, Escape: true, Reason: ReasonKey}, keyDismissal(EscapeKey))
	assert.Equal(t, Dismissal{Key: 'q', Reason: ReasonKey}, keyDismissal('q'))
}
