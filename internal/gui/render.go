package gui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/scene"
)

// light is the direction toward the light, normalized.
var light = rl.Vector3Normalize(rl.NewVector3(0.4, 1, 0.6))

func (a *App) drawSim() {
	rl.BeginMode3D(a.scene.Camera)
	a.CustomGrid(20, 0.25)
	for _, obj := range a.scene.Objects() {
		a.RenderSurface(obj)
	}
	if g := a.demo.Grabber(); g.Active() {
		rl.DrawSphere(vec(g.Position()), 0.025, ColSelect)
	}
	rl.EndMode3D()
}

func (a *App) CustomGrid(slices int, spacing float32) {
	halfSize := float32(slices) * spacing / 2
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, 0, -halfSize), rl.NewVector3(pos, 0, halfSize), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-halfSize, 0, pos), rl.NewVector3(halfSize, 0, pos), ColGrid)
	}
}

// RenderSurface draws every triangle flat shaded from its vertex normals,
// or as outlines in wireframe mode.
func (a *App) RenderSurface(obj scene.Object) {
	pos, nrm, ids := obj.Positions(), obj.Normals(), obj.Indices()
	at := func(s []float32, i int) rl.Vector3 {
		return rl.NewVector3(s[3*i], s[3*i+1], s[3*i+2])
	}
	for t := 0; t+2 < len(ids); t += 3 {
		i0, i1, i2 := ids[t], ids[t+1], ids[t+2]
		v0, v1, v2 := at(pos, i0), at(pos, i1), at(pos, i2)
		if a.Wireframe {
			rl.DrawLine3D(v0, v1, ColAccent)
			rl.DrawLine3D(v1, v2, ColAccent)
			rl.DrawLine3D(v2, v0, ColAccent)
			continue
		}
		n := rl.Vector3Add(rl.Vector3Add(at(nrm, i0), at(nrm, i1)), at(nrm, i2))
		rl.DrawTriangle3D(v0, v1, v2, shade(ColBody, rl.Vector3DotProduct(rl.Vector3Normalize(n), light)))
	}
}

func shade(c rl.Color, lambert float32) rl.Color {
	k := 0.3 + 0.7*max(0, lambert)
	return rl.NewColor(uint8(float32(c.R)*k), uint8(float32(c.G)*k), uint8(float32(c.B)*k), c.A)
}

func (a *App) drawPanel(x, y int) {
	panel := a.demo.Panel()
	for i, e := range panel.Entries() {
		c := e.Control()
		var line string
		switch c.Kind {
		case params.Int, params.Float:
			frac := 0.0
			if c.Max > c.Min {
				frac = (e.Value() - c.Min) / (c.Max - c.Min)
			}
			filled := int(frac*10 + 0.5)
			line = fmt.Sprintf("%-18s %s%s %s", c.Label, strings.Repeat("#", filled), strings.Repeat(".", 10-filled), e.Format())
		case params.Bool:
			box := "[ ]"
			if e.Checked() {
				box = "[x]"
			}
			line = fmt.Sprintf("%-18s %s", c.Label, box)
		case params.Display:
			line = fmt.Sprintf("%-18s %s", c.Label, e.Format())
		case params.Action:
			line = fmt.Sprintf("(%s)", c.Label)
		}
		switch {
		case i == panel.Cursor():
			a.drawText("> "+line, x, y, 16, ColSelect)
		case !c.Editable() && c.Kind != params.Action:
			a.drawText("  "+line, x, y, 16, ColTextDim)
		default:
			a.drawText("  "+line, x, y, 16, ColText)
		}
		y += 24
	}
}
