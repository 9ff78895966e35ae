package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/softsim/internal/config"
)

var presetInfo = map[string]string{
	"default": "balanced jelly cube",
	"jelly":   "soft, squishy volume",
	"stiff":   "rigid edges",
	"wobbly":  "few substeps, loose",
	"fine":    "6x6x6 cells",
}

const (
	stateMenu = iota
	stateSim
)

// Launcher builds a live model for a chosen preset.
type Launcher func(name string, cfg *config.Config) (Model, error)

type menu struct {
	state, cursor int
	presets       []string
	launch        Launcher
	live          Model
	err           error
}

// NewMenu lists the config presets and starts the chosen one.
func NewMenu(launch Launcher) tea.Model {
	return menu{presets: config.ListPresets(), launch: launch}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		name := m.presets[m.cursor]
		live, err := m.launch(name, config.GetPreset(name))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live, m.state, m.err = live, stateSim, nil
		return m, m.live.Init()
	}
	return m, nil
}

// Err reports the error that ended a started session.
func (m menu) Err() error {
	if m.state == stateSim {
		return m.live.Err()
	}
	return nil
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(ThemeEmber.Body).Bold(true)
	sub := lipgloss.NewStyle().Foreground(ThemeEmber.Muted)
	pick := lipgloss.NewStyle().Foreground(ThemeEmber.Accent).Bold(true)
	name := lipgloss.NewStyle().Foreground(ThemeEmber.Text).Bold(true)
	dim := lipgloss.NewStyle().Foreground(ThemeEmber.Border)

	b.WriteString("\n\n    " + h.Render("SOFTSIM") + "\n    " + sub.Render("tetrahedral soft bodies") + "\n    " + sub.Render("───────────────────────") + "\n\n")
	for i, p := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pick.Render("▸"), name.Render(fmt.Sprintf("%-10s", p)), pick.Render(presetInfo[p])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dim.Render(fmt.Sprintf("%-10s", p)), dim.Render(presetInfo[p])))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(ThemeEmber.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + pick.Render("j/k") + sub.Render(" navigate  ") + pick.Render("enter") + sub.Render(" start  ") + pick.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}
