// Package mesh keeps a renderable surface mesh in sync with engine particles.
package mesh

import (
	"math"

	"github.com/san-kum/softsim/internal/bufview"
	"github.com/san-kum/softsim/internal/scene"
)

// Surface is a triangle mesh whose position attribute is the particle view
// itself. The index buffer is fixed at construction.
type Surface struct {
	view      bufview.View
	positions []float32
	indices   []int
	normals   []float32
	version   uint64
	bounds    scene.Sphere
	refreshes int
}

// New builds the surface from an acquired view and the topology it was
// acquired from.
func New(view bufview.View, topo *bufview.Topology) *Surface {
	return &Surface{
		view:      view,
		positions: view.Floats(),
		indices:   topo.Triangles(),
		normals:   make([]float32, view.Len()),
	}
}

// Refresh re-derives everything that depends on positions: vertex normals,
// the attribute version and the bounding sphere.
func (s *Surface) Refresh() {
	s.computeVertexNormals()
	s.version++
	s.computeBoundingSphere()
	s.refreshes++
}

func (s *Surface) Positions() []float32 { return s.positions }
func (s *Surface) Normals() []float32   { return s.normals }
func (s *Surface) Indices() []int       { return s.indices }
func (s *Surface) Version() uint64      { return s.version }
func (s *Surface) Bounds() scene.Sphere { return s.bounds }

// Refreshes reports how many times Refresh has run.
func (s *Surface) Refreshes() int { return s.refreshes }

// View returns the particle view backing the positions.
func (s *Surface) View() bufview.View { return s.view }

// NumTriangles reports len(Indices())/3.
func (s *Surface) NumTriangles() int { return len(s.indices) / 3 }

// computeVertexNormals accumulates unnormalized face normals, so larger
// faces weigh more, then normalizes per vertex.
func (s *Surface) computeVertexNormals() {
	clear(s.normals)
	p := s.positions
	for i := 0; i+2 < len(s.indices); i += 3 {
		a, b, c := s.indices[i], s.indices[i+1], s.indices[i+2]
		var cb, ab [3]float32
		for k := 0; k < 3; k++ {
			cb[k] = p[3*c+k] - p[3*b+k]
			ab[k] = p[3*a+k] - p[3*b+k]
		}
		n := [3]float32{
			cb[1]*ab[2] - cb[2]*ab[1],
			cb[2]*ab[0] - cb[0]*ab[2],
			cb[0]*ab[1] - cb[1]*ab[0],
		}
		for _, v := range [3]int{a, b, c} {
			s.normals[3*v] += n[0]
			s.normals[3*v+1] += n[1]
			s.normals[3*v+2] += n[2]
		}
	}
	for v := 0; v < len(s.normals)/3; v++ {
		x, y, z := s.normals[3*v], s.normals[3*v+1], s.normals[3*v+2]
		l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
		if l == 0 {
			continue
		}
		s.normals[3*v] = x / l
		s.normals[3*v+1] = y / l
		s.normals[3*v+2] = z / l
	}
}

// computeBoundingSphere centers the sphere on the axis-aligned bounds and
// takes the farthest particle as radius.
func (s *Surface) computeBoundingSphere() {
	p := s.positions
	if len(p) < 3 {
		s.bounds = scene.Sphere{}
		return
	}
	lo := [3]float32{p[0], p[1], p[2]}
	hi := lo
	for i := 3; i+2 < len(p); i += 3 {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[i+k])
			hi[k] = max(hi[k], p[i+k])
		}
	}
	center := scene.Vec3{
		X: float64(lo[0]+hi[0]) / 2,
		Y: float64(lo[1]+hi[1]) / 2,
		Z: float64(lo[2]+hi[2]) / 2,
	}
	maxSq := 0.0
	for i := 0; i+2 < len(p); i += 3 {
		d := scene.Vec3{X: float64(p[i]), Y: float64(p[i+1]), Z: float64(p[i+2])}.Sub(center)
		maxSq = math.Max(maxSq, d.Dot(d))
	}
	s.bounds = scene.Sphere{Center: center, Radius: math.Sqrt(maxSq)}
}
