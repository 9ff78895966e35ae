package analysis

import "strings"

// Point is one sample in a 2D plot.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []Point
}

// GeneratePhasePortrait pairs each height sample with its central
// difference velocity.
func GeneratePhasePortrait(heights []float64, dt float64) *PhasePortrait2D {
	if len(heights) < 3 || dt <= 0 {
		return nil
	}
	portrait := &PhasePortrait2D{Points: make([]Point, 0, len(heights)-2)}
	for i := 1; i < len(heights)-1; i++ {
		portrait.Points = append(portrait.Points, Point{
			X: heights[i],
			Y: (heights[i+1] - heights[i-1]) / (2 * dt),
		})
	}
	return portrait
}

// Box is an axis-aligned plot range.
type Box struct {
	MinX, MaxX, MinY, MaxY float64
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Bounds returns the range of the points widened by pad of each extent on
// every side. A flat extent counts as 1.
func (p *PhasePortrait2D) Bounds(pad float64) Box {
	if len(p.Points) == 0 {
		return Box{}
	}
	first := p.Points[0]
	b := Box{first.X, first.X, first.Y, first.Y}
	for _, pt := range p.Points[1:] {
		b.MinX, b.MaxX = min(b.MinX, pt.X), max(b.MaxX, pt.X)
		b.MinY, b.MaxY = min(b.MinY, pt.Y), max(b.MaxY, pt.Y)
	}
	w, h := b.Width(), b.Height()
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	b.MinX -= w * pad
	b.MaxX += w * pad
	b.MinY -= h * pad
	b.MaxY += h * pad
	return b
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	b := portrait.Bounds(0.1)
	minX, maxX, minY, maxY := b.MinX, b.MaxX, b.MinY, b.MaxY
	rangeX, rangeY := b.Width(), b.Height()

	// Create canvas
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	// Plot points
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	// Convert to string
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
