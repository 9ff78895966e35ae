package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/softsim/internal/analysis"
	"github.com/san-kum/softsim/internal/viz"
)

const (
	svgBackground = "#0a0a0a"
	svgAxis       = "#444444"
)

func svgHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground)
}

// CanvasToSVG draws every lit dot of canvas as a circle of color. Each dot
// becomes a scale x scale cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, float64(canvas.DotWidth())*scale, float64(canvas.DotHeight())*scale)
	fmt.Fprintf(&sb, "<g fill=%q>\n", color)

	r := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if !canvas.Get(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PlotOptions size and color a phase portrait.
type PlotOptions struct {
	Width, Height int
	Stroke        string
}

func (o *PlotOptions) defaults() {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	if o.Stroke == "" {
		o.Stroke = "#00ff00"
	}
}

// PhasePortraitToSVG draws the height/velocity trajectory as one path.
// The zero-velocity line is drawn when it is in view.
func PhasePortraitToSVG(p *analysis.PhasePortrait2D, opts PlotOptions) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	opts.defaults()
	w, h := float64(opts.Width), float64(opts.Height)
	b := p.Bounds(0.1)
	toX := func(v float64) float64 { return (v - b.MinX) / b.Width() * w }
	toY := func(v float64) float64 { return h - (v-b.MinY)/b.Height()*h }

	var sb strings.Builder
	svgHeader(&sb, w, h)

	if b.MinY <= 0 && b.MaxY >= 0 {
		y := toY(0)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%.0f\" y2=\"%.1f\" stroke=%q/>\n", y, w, y, svgAxis)
	}

	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=%q stroke-width=\"1.5\" d=\"", opts.Stroke)
	for i, pt := range p.Points {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, toX(pt.X), toY(pt.Y))
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, "<text x=\"8\" y=\"%.0f\" fill=%q font-family=\"monospace\" font-size=\"12\">height %.3f..%.3f  velocity %.3f..%.3f</text>\n",
		h-8, svgAxis, b.MinX, b.MaxX, b.MinY, b.MaxY)
	sb.WriteString("</svg>")
	return sb.String()
}
