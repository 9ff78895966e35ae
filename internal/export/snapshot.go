package export

import (
	"fmt"
	"os"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/viz"
	"go.uber.org/zap"
)

// SnapshotOptions size and color the rendered frame.
type SnapshotOptions struct {
	Frames int
	Cols   int
	Rows   int
	Scale  float64
	Theme  string
}

func (o *SnapshotOptions) defaults() {
	if o.Cols <= 0 {
		o.Cols = 80
	}
	if o.Rows <= 0 {
		o.Rows = 30
	}
	if o.Scale <= 0 {
		o.Scale = 4
	}
}

// Snapshot runs a headless demo for opts.Frames frames and renders the
// last one to SVG.
func Snapshot(cfg *config.Config, opts SnapshotOptions, logger *zap.Logger) (string, error) {
	opts.defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	sc := viz.NewScene(opts.Cols, opts.Rows)
	d := demo.FromConfig(cfg, sc, sc, demo.WithLogger(logger))
	if err := d.Init(); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	for i := 0; i < opts.Frames; i++ {
		d.Update()
	}
	sc.Render()
	theme := viz.GetTheme(opts.Theme)
	return CanvasToSVG(sc.Canvas(), opts.Scale, string(theme.Body)), nil
}

func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
