package gui

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/params"
	"go.uber.org/zap"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColBody    = rl.NewColor(255, 120, 40, 255)
)

const (
	panelWidth       = 320
	telemetryHistory = 200
	fontPath         = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

type App struct {
	demo   *demo.Demo
	scene  *Scene
	logger *zap.Logger
	font   rl.Font

	width, height int32
	heightMetric  *metrics.Height
	Telemetry     []float64
	Wireframe     bool
	status        string
	err           error
}

// initWindow opens the window and disables the default exit key so Escape
// stays free.
func initWindow(width, height int32, fps int) {
	rl.InitWindow(width, height, "softsim")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont falls back to the raylib default font when Liberation Mono is
// not installed.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens a window for cfg and blocks until it is closed or the particle
// view is lost.
func Run(cfg *config.Config, logger *zap.Logger, obs demo.Observers) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	width, height := int32(cfg.View.Width), int32(cfg.View.Height)
	initWindow(width, height, cfg.View.FPS)
	defer rl.CloseWindow()

	sc := NewScene(width, height, panelWidth)
	d := demo.FromConfig(cfg, sc, sc, demo.WithLogger(logger), demo.WithObservers(obs))
	if err := d.Init(); err != nil {
		return err
	}
	app := &App{
		demo:         d,
		scene:        sc,
		logger:       logger,
		font:         loadFont(),
		width:        width,
		height:       height,
		heightMetric: metrics.NewHeight(),
		Telemetry:    make([]float64, 0, telemetryHistory),
	}
	app.RunLoop()
	return app.err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && a.err == nil {
		if quit := a.Update(); quit {
			return
		}
		a.Draw()
	}
}

// Update handles input and runs one frame. It reports whether the user
// asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	if rl.IsWindowResized() {
		a.width, a.height = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		a.scene.Resize(a.width, a.height)
	}

	a.handleKeys()
	a.handleMouse()

	if a.demo.Update() == frame.Running {
		ctrl := a.demo.Controller()
		a.heightMetric.Observe(a.demo.View().Floats(), ctrl.Time())
		a.Telemetry = append(a.Telemetry, a.heightMetric.Value())
		if len(a.Telemetry) > telemetryHistory {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return false
}

func (a *App) handleKeys() {
	panel := a.demo.Panel()
	var err error
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		err = panel.Toggle(params.KeyAnimate)
	case rl.IsKeyPressed(rl.KeyR):
		err = a.demo.Reset()
		a.resetTelemetry()
	case rl.IsKeyPressed(rl.KeyS):
		err = a.demo.Squash()
		a.resetTelemetry()
	case rl.IsKeyPressed(rl.KeyDown), rl.IsKeyPressed(rl.KeyJ), rl.IsKeyPressed(rl.KeyTab):
		panel.Next()
	case rl.IsKeyPressed(rl.KeyUp), rl.IsKeyPressed(rl.KeyK):
		panel.Prev()
	case rl.IsKeyPressed(rl.KeyRight), rl.IsKeyPressed(rl.KeyL):
		err = a.nudge(1)
	case rl.IsKeyPressed(rl.KeyLeft), rl.IsKeyPressed(rl.KeyH):
		err = a.nudge(-1)
	case rl.IsKeyPressed(rl.KeyEnter):
		err = panel.Activate()
	case rl.IsKeyPressed(rl.KeyW):
		a.Wireframe = !a.Wireframe
	}
	if err != nil {
		a.fail(err)
	}

	if rl.IsKeyDown(rl.KeyA) {
		a.scene.Orbit(-0.03)
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.scene.Orbit(0.03)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.scene.Zoom(wheel * 0.1)
	}
}

// nudge steps the selected control, ten steps at a time with shift held.
func (a *App) nudge(dir int) error {
	if rl.IsKeyDown(rl.KeyLeftShift) {
		dir *= 10
	}
	return a.demo.Panel().Nudge(dir)
}

func (a *App) handleMouse() {
	g := a.demo.Grabber()
	mouse := rl.GetMousePosition()
	x, y := int(mouse.X), int(mouse.Y)
	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		g.Down(x, y)
	case rl.IsMouseButtonReleased(rl.MouseLeftButton):
		g.Up()
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			g.Drag(x, y)
		}
	case rl.IsMouseButtonDown(rl.MouseRightButton):
		a.scene.Orbit(rl.GetMouseDelta().X * 0.01)
	}
}

// fail stops the loop on relocation and shows anything else in the HUD.
func (a *App) fail(err error) {
	if errors.Is(err, dynamo.ErrBufferRelocated) {
		a.logger.Error("session stopped", zap.Error(err))
		a.err = err
		return
	}
	a.status = err.Error()
}

func (a *App) resetTelemetry() {
	a.heightMetric.Reset()
	a.Telemetry = a.Telemetry[:0]
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	a.drawSim()
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("softsim", 30, 30, 24, ColSelect)
	a.drawText(":: "+a.demo.Panel().Title(), 140, 34, 16, ColText)

	a.drawPanel(30, 90)
	a.DrawTelemetry()

	status, col := "PAUSED", ColTextDim
	switch {
	case a.demo.Grabber().Active():
		status, col = "GRAB", ColBody
	case a.demo.Controller().State() == frame.Running:
		status, col = "RUNNING", ColSelect
	}
	a.drawText(status, int(a.width)-130, 30, 16, col)
	if a.status != "" {
		a.drawText(a.status, int(a.width)-400, 56, 14, ColTextDim)
	}

	ctrl := a.demo.Controller()
	a.drawText(fmt.Sprintf("t %.2fs  steps %d  frames %d", ctrl.Time(), ctrl.Steps(), ctrl.Frames()), 30, int(a.height)-70, 14, ColText)
	a.drawText("[SPACE] ANIMATE  [R] RESET  [S] SQUASH  [W] WIRE  [Q] QUIT", int(a.width)-580, int(a.height)-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, int(a.height)-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, int(a.height)-160
	width, height := 260, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("h: %.3f", a.Telemetry[len(a.Telemetry)-1]), rectX, rectY-20, 14, ColText)
}
