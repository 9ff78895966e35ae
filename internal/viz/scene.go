package viz

import (
	"math"

	"github.com/san-kum/softsim/internal/scene"
)

// DefaultPickRadius is the pick tolerance in canvas dots.
const DefaultPickRadius = 6.0

// Scene renders surface meshes onto a Braille canvas. Pointer coordinates
// are terminal cells relative to the canvas origin.
type Scene struct {
	Camera     *Camera
	PickRadius float64
	Wireframe  bool

	canvas  *Canvas
	objects []scene.Object
}

func NewScene(cols, rows int) *Scene {
	s := &Scene{
		Camera:     NewCamera(scene.DefaultConfig()),
		PickRadius: DefaultPickRadius,
		canvas:     NewCanvas(cols, rows),
	}
	s.Resize(cols, rows)
	return s
}

func (s *Scene) Add(obj scene.Object) { s.objects = append(s.objects, obj) }

func (s *Scene) Configure(cfg scene.Config) { s.Camera.Configure(cfg) }

func (s *Scene) Resize(cols, rows int) {
	s.canvas.Resize(cols, rows)
	s.Camera.Width, s.Camera.Height = s.canvas.DotWidth(), s.canvas.DotHeight()
}

func (s *Scene) Canvas() *Canvas { return s.canvas }

// Contains reports whether a cell lies on the canvas.
func (s *Scene) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.canvas.Width && y < s.canvas.Height
}

func (s *Scene) Objects() []scene.Object { return s.objects }

// cellCenter maps a terminal cell to the dot at its center.
func cellCenter(x, y int) (float64, float64) {
	return float64(2*x) + 1, float64(4*y) + 2
}

// Pick returns the nearest projected particle within PickRadius, preferring
// the one closest to the eye on ties.
func (s *Scene) Pick(x, y int) (scene.Hit, bool) {
	px, py := cellCenter(x, y)
	best := scene.Hit{Particle: -1}
	bestDist := s.PickRadius * s.PickRadius
	for _, obj := range s.objects {
		pos := obj.Positions()
		for i := 0; i < len(pos)/3; i++ {
			p := scene.Vec3{X: float64(pos[3*i]), Y: float64(pos[3*i+1]), Z: float64(pos[3*i+2])}
			sx, sy, depth, ok := s.Camera.Project(p)
			if !ok {
				continue
			}
			d := (sx-px)*(sx-px) + (sy-py)*(sy-py)
			if d < bestDist || (d == bestDist && best.Particle >= 0 && depth < best.Depth) {
				best = scene.Hit{Particle: i, Point: p, Depth: depth}
				bestDist = d
			}
		}
	}
	return best, best.Particle >= 0
}

func (s *Scene) Unproject(x, y int, depth float64) scene.Vec3 {
	px, py := cellCenter(x, y)
	return s.Camera.Unproject(px, py, depth)
}

// Render draws the ground line and every front-facing triangle.
func (s *Scene) Render() string {
	c := s.canvas
	c.Clear()
	s.drawGround()
	for _, obj := range s.objects {
		s.drawObject(obj)
	}
	return c.String()
}

func (s *Scene) drawGround() {
	const half, n = 1.0, 4
	for i := -n; i <= n; i++ {
		t := half * float64(i) / n
		s.line(scene.Vec3{X: -half, Z: t}, scene.Vec3{X: half, Z: t})
		s.line(scene.Vec3{X: t, Z: -half}, scene.Vec3{X: t, Z: half})
	}
}

func (s *Scene) line(a, b scene.Vec3) {
	x0, y0, _, ok0 := s.Camera.Project(a)
	x1, y1, _, ok1 := s.Camera.Project(b)
	if !ok0 || !ok1 {
		return
	}
	s.canvas.DrawLine(round(x0), round(y0), round(x1), round(y1))
}

func (s *Scene) drawObject(obj scene.Object) {
	pos, idx := obj.Positions(), obj.Indices()
	vertex := func(i int) scene.Vec3 {
		return scene.Vec3{X: float64(pos[3*i]), Y: float64(pos[3*i+1]), Z: float64(pos[3*i+2])}
	}
	for t := 0; t+2 < len(idx); t += 3 {
		a, b, c := vertex(idx[t]), vertex(idx[t+1]), vertex(idx[t+2])
		if !s.Wireframe {
			n := c.Sub(b).Cross(a.Sub(b))
			if !s.Camera.Facing(a, n) {
				continue
			}
		}
		xa, ya, _, oka := s.Camera.Project(a)
		xb, yb, _, okb := s.Camera.Project(b)
		xc, yc, _, okc := s.Camera.Project(c)
		if !oka || !okb || !okc {
			continue
		}
		s.canvas.DrawTriangle(round(xa), round(ya), round(xb), round(yb), round(xc), round(yc))
	}
}

func round(v float64) int { return int(math.Round(v)) }
