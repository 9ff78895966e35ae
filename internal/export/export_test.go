package export

import (
	"strings"
	"testing"

	"github.com/san-kum/softsim/internal/analysis"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 2, "#ff0000")
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("expected fill color")
	}
	if CanvasToSVG(nil, 2, "#fff") != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestPhasePortraitToSVG(t *testing.T) {
	p := &analysis.PhasePortrait2D{Points: []analysis.Point{{X: 0, Y: -1}, {X: 1, Y: 1}, {X: 2, Y: -1}}}

	svg := PhasePortraitToSVG(p, PlotOptions{Width: 100, Height: 50, Stroke: "#fff"})
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments:\n%s", svg)
	}
	if !strings.Contains(svg, `width="100" height="50"`) || !strings.Contains(svg, `stroke="#fff"`) {
		t.Errorf("options not applied:\n%s", svg)
	}
	if !strings.Contains(svg, "<line") {
		t.Error("expected the zero-velocity line")
	}

	above := &analysis.PhasePortrait2D{Points: []analysis.Point{{X: 0, Y: 1}, {X: 1, Y: 2}}}
	if strings.Contains(PhasePortraitToSVG(above, PlotOptions{}), "<line") {
		t.Error("zero-velocity line drawn outside the plot range")
	}
	if PhasePortraitToSVG(&analysis.PhasePortrait2D{Points: []analysis.Point{{X: 1, Y: 1}}}, PlotOptions{}) != "" {
		t.Error("expected empty output for a single point")
	}
	if PhasePortraitToSVG(nil, PlotOptions{}) != "" {
		t.Error("expected empty output for a nil portrait")
	}
}

func TestPhasePortraitOfRecordedHeights(t *testing.T) {
	heights := []float64{0.5, 0.6, 0.5, 0.4, 0.5, 0.6}
	svg := PhasePortraitToSVG(analysis.GeneratePhasePortrait(heights, 0.1), PlotOptions{})
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if strings.Count(svg, " L") != 3 {
		t.Errorf("expected 3 segments for 4 portrait points:\n%s", svg)
	}
}

func TestSnapshotDrawsBody(t *testing.T) {
	svg, err := Snapshot(config.DefaultConfig(), SnapshotOptions{Frames: 5, Cols: 60, Rows: 24}, nil)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("expected a complete svg document")
	}
	if strings.Count(svg, "<circle") < 50 {
		t.Errorf("expected the body and ground to be drawn, got %d dots", strings.Count(svg, "<circle"))
	}
}
