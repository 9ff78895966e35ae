package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/softsim/internal/scene"
)

// pickRadius is the world-space radius tested around each particle.
const pickRadius = 0.04

// Scene is the raylib implementation of scene.Scene. Pointer coordinates
// are window pixels.
type Scene struct {
	Camera  rl.Camera3D
	objects []scene.Object

	// panel is the left strip reserved for the control panel.
	panel         int32
	width, height int32
}

func NewScene(width, height, panel int32) *Scene {
	return &Scene{
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 1, 2),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			70.0,
			rl.CameraPerspective,
		),
		panel:  panel,
		width:  width,
		height: height,
	}
}

func (s *Scene) Add(obj scene.Object) {
	s.objects = append(s.objects, obj)
}

func (s *Scene) Objects() []scene.Object { return s.objects }

func (s *Scene) Configure(cfg scene.Config) {
	s.Camera.Position = vec(cfg.Eye())
	s.Camera.Target = vec(cfg.LookAt)
}

// Contains excludes the panel strip, so clicks on controls never grab.
func (s *Scene) Contains(x, y int) bool {
	return x >= int(s.panel) && x < int(s.width) && y >= 0 && y < int(s.height)
}

func (s *Scene) Resize(width, height int32) {
	s.width, s.height = width, height
}

func (s *Scene) Pick(x, y int) (scene.Hit, bool) {
	ray := rl.GetMouseRay(rl.NewVector2(float32(x), float32(y)), s.Camera)
	forward := rl.Vector3Normalize(rl.Vector3Subtract(s.Camera.Target, s.Camera.Position))

	best := scene.Hit{Particle: -1}
	bestDist := float32(math.MaxFloat32)
	for _, obj := range s.objects {
		pos := obj.Positions()
		for i := 0; i+2 < len(pos); i += 3 {
			p := rl.NewVector3(pos[i], pos[i+1], pos[i+2])
			col := rl.GetRayCollisionSphere(ray, p, pickRadius)
			if !col.Hit || col.Distance >= bestDist {
				continue
			}
			bestDist = col.Distance
			best = scene.Hit{
				Particle: i / 3,
				Point:    scene.FromArray([3]float32{p.X, p.Y, p.Z}),
				Depth:    float64(rl.Vector3DotProduct(rl.Vector3Subtract(p, s.Camera.Position), forward)),
			}
		}
	}
	return best, best.Particle >= 0
}

func (s *Scene) Unproject(x, y int, depth float64) scene.Vec3 {
	ray := rl.GetMouseRay(rl.NewVector2(float32(x), float32(y)), s.Camera)
	forward := rl.Vector3Normalize(rl.Vector3Subtract(s.Camera.Target, s.Camera.Position))
	cos := rl.Vector3DotProduct(ray.Direction, forward)
	if cos <= 0 {
		return scene.FromArray([3]float32{ray.Position.X, ray.Position.Y, ray.Position.Z})
	}
	p := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, float32(depth)/cos))
	return scene.FromArray([3]float32{p.X, p.Y, p.Z})
}

// Orbit rotates the eye around the target about the vertical axis.
func (s *Scene) Orbit(angle float32) {
	d := rl.Vector3Subtract(s.Camera.Position, s.Camera.Target)
	sin, cos := float32(math.Sin(float64(angle))), float32(math.Cos(float64(angle)))
	d = rl.NewVector3(d.X*cos-d.Z*sin, d.Y, d.X*sin+d.Z*cos)
	s.Camera.Position = rl.Vector3Add(s.Camera.Target, d)
}

// Zoom moves the eye toward the target, keeping a minimum distance.
func (s *Scene) Zoom(amount float32) {
	diff := rl.Vector3Subtract(s.Camera.Target, s.Camera.Position)
	dist := rl.Vector3Length(diff)
	if dist-amount < 0.3 {
		return
	}
	s.Camera.Position = rl.Vector3Add(s.Camera.Position, rl.Vector3Scale(rl.Vector3Normalize(diff), amount))
}

func vec(v scene.Vec3) rl.Vector3 {
	a := v.Array()
	return rl.NewVector3(a[0], a[1], a[2])
}
