package viz

import (
	"math"

	"github.com/san-kum/softsim/internal/scene"
)

// Camera is a perspective look-at camera projecting onto canvas dots.
type Camera struct {
	Eye, Target, Up scene.Vec3
	FOV             float64
	Near            float64
	Zoom            float64
	Width, Height   int
}

func NewCamera(cfg scene.Config) *Camera {
	c := &Camera{Up: scene.Vec3{Y: 1}, FOV: math.Pi / 3, Near: 0.01, Zoom: 1}
	c.Configure(cfg)
	return c
}

func (c *Camera) Configure(cfg scene.Config) {
	c.Eye = cfg.Eye()
	c.Target = cfg.LookAt
}

// Orbit rotates the eye about the vertical axis through the target.
func (c *Camera) Orbit(a float64) {
	d := c.Eye.Sub(c.Target)
	ca, sa := math.Cos(a), math.Sin(a)
	d.X, d.Z = d.X*ca+d.Z*sa, -d.X*sa+d.Z*ca
	c.Eye = c.Target.Add(d)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) basis() (f, r, u scene.Vec3) {
	f = c.Target.Sub(c.Eye).Normalize()
	r = f.Cross(c.Up).Normalize()
	u = r.Cross(f)
	return
}

func (c *Camera) scale() float64 {
	return float64(min(c.Width, c.Height)) / 2 / math.Tan(c.FOV/2) * c.Zoom
}

// Project maps p to dot coordinates. depth is the distance along the view
// direction; ok is false behind the near plane.
func (c *Camera) Project(p scene.Vec3) (x, y, depth float64, ok bool) {
	f, r, u := c.basis()
	d := p.Sub(c.Eye)
	depth = d.Dot(f)
	if depth < c.Near {
		return 0, 0, depth, false
	}
	s := c.scale() / depth
	x = float64(c.Width)/2 + d.Dot(r)*s
	y = float64(c.Height)/2 - d.Dot(u)*s
	return x, y, depth, true
}

// Unproject inverts Project for a known depth.
func (c *Camera) Unproject(x, y, depth float64) scene.Vec3 {
	f, r, u := c.basis()
	s := c.scale() / depth
	rx := (x - float64(c.Width)/2) / s
	uy := (float64(c.Height)/2 - y) / s
	return c.Eye.Add(f.Scale(depth)).Add(r.Scale(rx)).Add(u.Scale(uy))
}

// Facing reports whether a triangle with normal n at point p faces the eye.
func (c *Camera) Facing(p, n scene.Vec3) bool {
	return c.Eye.Sub(p).Dot(n) > 0
}
