// Package scene is the contract between the frame layer and a renderer.
package scene

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}

// Array converts to the engine's float32 layout.
func (v Vec3) Array() [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FromArray converts from the engine's float32 layout.
func FromArray(a [3]float32) Vec3 {
	return Vec3{float64(a[0]), float64(a[1]), float64(a[2])}
}

// Sphere is a bounding volume.
type Sphere struct {
	Center Vec3
	Radius float64
}

// Config places the camera: CameraYZ is the (y, z) position of the eye on the
// x = 0 plane, which looks at LookAt.
type Config struct {
	CameraYZ [2]float64 `yaml:"camera_yz"`
	LookAt   Vec3       `yaml:"look_at"`
}

// DefaultConfig matches the soft-body demo framing.
func DefaultConfig() Config {
	return Config{CameraYZ: [2]float64{1, 2}}
}

// Eye returns the camera position.
func (c Config) Eye() Vec3 {
	return Vec3{0, c.CameraYZ[0], c.CameraYZ[1]}
}

// Object is a renderable surface mesh.
type Object interface {
	Positions() []float32
	Normals() []float32
	Indices() []int
	// Version changes every time the positions are marked as updated.
	Version() uint64
	Bounds() Sphere
}

// Hit is the result of picking a particle under a pointer.
type Hit struct {
	Particle int
	Point    Vec3
	// Depth is the distance along the view direction, for Unproject.
	Depth float64
}

// Scene is implemented by each renderer.
type Scene interface {
	Add(obj Object)
	Configure(cfg Config)
	// Pick returns the particle under pointer coordinates (x, y).
	Pick(x, y int) (Hit, bool)
	// Unproject maps pointer coordinates back to world space at depth.
	Unproject(x, y int, depth float64) Vec3
}
