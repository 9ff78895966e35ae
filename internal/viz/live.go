package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/params"
	"go.uber.org/zap"
)

const (
	sidebarWidth    = 46
	historyCapacity = 300
	minCanvasCols   = 20
	minCanvasRows   = 8
)

type TickMsg time.Time

// ReloadMsg carries a hot-reloaded config into the frame loop.
type ReloadMsg struct {
	Config *config.Config
}

// Options configure the live model.
type Options struct {
	Name   string
	FPS    int
	Theme  string
	GIFDir string
	Logger *zap.Logger
	// OnHeight receives the centroid height after each running frame.
	OnHeight func(float64)
}

// Model is the Bubble Tea model driving one demo. All engine access
// happens inside Update.
type Model struct {
	demo   *demo.Demo
	scene  *Scene
	opts   Options
	logger *zap.Logger
	theme  Theme
	st     styles

	width, height int
	heightMetric  *metrics.Height
	speedMetric   *metrics.Speed
	heights       []float64
	reloads       int
	frame         int
	err           error
	showHelp      bool
	gif           *gifRecorder
	status        string
}

// NewModel wraps an initialized demo whose scene is sc.
func NewModel(d *demo.Demo, sc *Scene, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = config.DefaultFPS
	}
	if opts.Name == "" {
		opts.Name = "soft bodies"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := GetTheme(opts.Theme)
	return Model{
		demo:         d,
		scene:        sc,
		opts:         opts,
		logger:       logger,
		theme:        theme,
		st:           newStyles(theme),
		width:        sc.Canvas().Width + sidebarWidth + 2*canvasOffset.X + 4,
		height:       sc.Canvas().Height + 2*canvasOffset.Y,
		heightMetric: metrics.NewHeight(),
		speedMetric:  metrics.NewSpeed(),
		heights:      make([]float64, 0, historyCapacity),
	}
}

// Err reports the error that ended the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and runs one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case ReloadMsg:
		m.reloads++
		if err := m.demo.Apply(msg.Config.Solver); err != nil {
			m.logger.Warn("reload not applied", zap.Error(err))
			m.status = "reload rejected"
		} else {
			m.status = fmt.Sprintf("config reloaded (%d)", m.reloads)
		}
		return m, nil
	case TickMsg:
		m.frame++
		if m.demo.Update() == frame.Running {
			m.observe()
		}
		if m.gif != nil {
			m.gif.capture(m.scene.Canvas())
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) observe() {
	ctrl := m.demo.Controller()
	pos := m.demo.View().Floats()
	m.heightMetric.Observe(pos, ctrl.Time())
	m.speedMetric.Observe(pos, ctrl.Time())
	h := m.heightMetric.Value()
	m.heights = append(m.heights, h)
	if len(m.heights) > historyCapacity {
		m.heights = m.heights[1:]
	}
	if m.opts.OnHeight != nil {
		m.opts.OnHeight(h)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panel := m.demo.Panel()
	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		m.finishGIF()
		return m, tea.Quit
	case " ":
		err = panel.Toggle(params.KeyAnimate)
	case "r":
		err = m.demo.Reset()
		m.resetMetrics()
	case "s":
		err = m.demo.Squash()
		m.resetMetrics()
	case "tab", "down", "j":
		panel.Next()
	case "shift+tab", "up", "k":
		panel.Prev()
	case "right", "l":
		err = panel.Nudge(1)
	case "left", "h":
		err = panel.Nudge(-1)
	case "enter":
		err = panel.Activate()
	case "a":
		m.scene.Camera.Orbit(-0.1)
	case "d":
		m.scene.Camera.Orbit(0.1)
	case "+", "=":
		m.scene.Camera.ZoomIn()
	case "-", "_":
		m.scene.Camera.ZoomOut()
	case "w":
		m.scene.Wireframe = !m.scene.Wireframe
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.st = newStyles(m.theme)
	case "g":
		if m.gif != nil {
			m.finishGIF()
		} else {
			m.gif = newGIFRecorder()
			m.status = "recording gif"
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	if err != nil {
		return m.fail(err)
	}
	return m, nil
}

// fail ends the session for relocation errors and reports anything else
// in the status line.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, dynamo.ErrBufferRelocated) {
		m.err = err
		m.logger.Error("session stopped", zap.Error(err))
		return m, tea.Quit
	}
	m.status = err.Error()
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X-canvasOffset.X, msg.Y-canvasOffset.Y
	g := m.demo.Grabber()
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		g.Down(x, y)
	case msg.Action == tea.MouseActionMotion:
		g.Drag(x, y)
	case msg.Action == tea.MouseActionRelease:
		g.Up()
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cols := max(minCanvasCols, w-sidebarWidth-2*canvasOffset.X-4)
	rows := max(minCanvasRows, h-2*canvasOffset.Y)
	m.scene.Resize(cols, rows)
}

func (m *Model) resetMetrics() {
	m.heightMetric.Reset()
	m.speedMetric.Reset()
	m.heights = m.heights[:0]
}

func (m *Model) finishGIF() {
	if m.gif == nil {
		return
	}
	path, err := m.gif.save(m.opts.GIFDir)
	if err != nil {
		m.logger.Warn("gif not saved", zap.Error(err))
		m.status = "gif failed: " + err.Error()
	} else {
		m.logger.Info("gif saved", zap.String("path", path))
		m.status = "saved " + path
	}
	m.gif = nil
}

// View renders the canvas next to the control sidebar.
func (m Model) View() string {
	canvas := m.st.canvas.Render(m.st.body.Render(m.scene.Render()))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.st.sidebar.Render(m.sidebar()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) sidebar() string {
	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.opts.Name)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("centroid height"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	ctrl := m.demo.Controller()
	surface := m.demo.Surface()
	stat := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	stat("time", fmt.Sprintf("%.2fs", ctrl.Time()))
	stat("steps", fmt.Sprintf("%d / %d frames", ctrl.Steps(), ctrl.Frames()))
	stat("particles", fmt.Sprintf("%d", m.demo.View().Particles()))
	stat("triangles", fmt.Sprintf("%d", surface.NumTriangles()))
	stat("height", fmt.Sprintf("%.3f", m.heightMetric.Value()))
	stat("speed", fmt.Sprintf("%.3f", m.speedMetric.Value()))
	stat("radius", fmt.Sprintf("%.3f", surface.Bounds().Radius))

	s.WriteString("\n" + m.st.header.Render(strings.ToUpper(m.demo.Panel().Title())) + "\n")
	s.WriteString(m.panelView())
	s.WriteString(m.st.help.Render("SP:animate R:reset S:squash Q:quit\n↑↓:select ←→:adjust ⏎:press\nA/D:orbit +/-:zoom T:theme ?:help"))
	return s.String()
}

func (m Model) statusLine() string {
	var state string
	switch {
	case m.demo.Grabber().Active():
		state = m.st.selected.Render("GRAB")
	case m.demo.Controller().State() == frame.Running:
		state = m.st.running.Render(Spinner(m.frame) + " RUNNING")
	default:
		state = m.st.paused.Render("PAUSED")
	}
	if m.gif != nil {
		state += " " + m.st.err.Render("● REC")
	}
	if m.status != "" {
		state += "  " + m.st.disabled.Render(m.status)
	}
	return state
}

func (m Model) panelView() string {
	var s strings.Builder
	panel := m.demo.Panel()
	for i, e := range panel.Entries() {
		c := e.Control()
		line := fmt.Sprintf("%-18s", c.Label)
		switch c.Kind {
		case params.Int, params.Float:
			frac := 0.0
			if c.Max > c.Min {
				frac = (e.Value() - c.Min) / (c.Max - c.Min)
			}
			line += m.st.slider(frac, 10) + " " + e.Format()
		case params.Bool:
			box := "[ ]"
			if e.Checked() {
				box = "[x]"
			}
			line += box
		case params.Display:
			line += e.Format()
		case params.Action:
			line = fmt.Sprintf("(%s)", c.Label)
		}
		switch {
		case i == panel.Cursor():
			s.WriteString(m.st.selected.Render("> "+line) + "\n")
		case !c.Editable() && c.Kind != params.Action:
			s.WriteString("  " + m.st.disabled.Render(line) + "\n")
		default:
			s.WriteString("  " + m.st.value.Render(line) + "\n")
		}
	}
	return s.String()
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Toggle animate           ║
║  R        - Reset body               ║
║  S        - Squash body              ║
║  Tab/↓    - Next control             ║
║  ←/→      - Adjust control           ║
║  Enter    - Toggle / press control   ║
║  Mouse    - Grab and throw the body  ║
║  A/D      - Orbit camera             ║
║  +/-      - Zoom                     ║
║  W        - Toggle back faces        ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
