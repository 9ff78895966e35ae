package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas   lipgloss.Style
	body     lipgloss.Style
	sidebar  lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	disabled lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	err      lipgloss.Style
	barFull  lipgloss.Style
	barEmpty lipgloss.Style
}

// canvasOffset is where the canvas starts inside the rendered view, in
// cells. It must match the canvas padding.
var canvasOffset = struct{ X, Y int }{X: 2, Y: 1}

func newStyles(t Theme) styles {
	return styles{
		canvas:   lipgloss.NewStyle().Padding(canvasOffset.Y, canvasOffset.X),
		body:     lipgloss.NewStyle().Foreground(t.Body),
		sidebar:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Border).Padding(1, 2).Width(sidebarWidth),
		header:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(18),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		disabled: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		graph:    lipgloss.NewStyle().Foreground(t.Body).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:  lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:   lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		err:      lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		barFull:  lipgloss.NewStyle().Foreground(t.Body),
		barEmpty: lipgloss.NewStyle().Foreground(t.Border),
	}
}

// slider renders frac of width as a bar.
func (s styles) slider(frac float64, width int) string {
	filled := int(frac*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return s.barFull.Render(strings.Repeat("█", filled)) + s.barEmpty.Render(strings.Repeat("░", width-filled))
}

// Spinner returns one frame of a Braille spinner.
func Spinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}
