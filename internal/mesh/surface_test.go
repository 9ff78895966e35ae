package mesh

import (
	"math"
	"testing"

	"github.com/san-kum/softsim/internal/bufview"
	"github.com/san-kum/softsim/internal/softbody"
)

// quadEngine exposes a unit square in the xz-plane as two triangles.
type quadEngine struct {
	pos []float32
}

func newQuadEngine() *quadEngine {
	return &quadEngine{pos: []float32{
		0, 0, 0,
		1, 0, 0,
		1, 0, -1,
		0, 0, -1,
	}}
}

func (e *quadEngine) Step()                        {}
func (e *quadEngine) Dt() float64                  { return 1.0 / 60 }
func (e *quadEngine) Reset()                       {}
func (e *quadEngine) NumTets() int                 { return 0 }
func (e *quadEngine) NumParticles() int            { return 4 }
func (e *quadEngine) SurfaceTriIDs() []int         { return []int{0, 1, 2, 0, 2, 3} }
func (e *quadEngine) ParticlePositions() []float32 { return e.pos }
func (e *quadEngine) SetSolverSubsteps(int)        {}
func (e *quadEngine) SetVolumeCompliance(float64)  {}
func (e *quadEngine) SetEdgeCompliance(float64)    {}

func newSurface(t *testing.T, eng *quadEngine) *Surface {
	t.Helper()
	topo := bufview.QueryTopology(eng)
	view, err := bufview.Acquire(topo)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	return New(view, topo)
}

func TestPositionsAliasView(t *testing.T) {
	eng := newQuadEngine()
	s := newSurface(t, eng)

	eng.pos[3] = 5
	if s.Positions()[3] != 5 {
		t.Error("surface positions are a copy, expected alias")
	}
}

func TestRefreshNormals(t *testing.T) {
	s := newSurface(t, newQuadEngine())
	s.Refresh()

	n := s.Normals()
	for v := 0; v < 4; v++ {
		if math.Abs(float64(n[3*v+1])-1) > 1e-6 || n[3*v] != 0 || n[3*v+2] != 0 {
			t.Errorf("vertex %d normal = (%f,%f,%f), want (0,1,0)", v, n[3*v], n[3*v+1], n[3*v+2])
		}
	}
}

func TestRefreshBoundsAndVersion(t *testing.T) {
	eng := newQuadEngine()
	s := newSurface(t, eng)

	s.Refresh()
	if s.Version() != 1 || s.Refreshes() != 1 {
		t.Errorf("expected version 1, got %d", s.Version())
	}
	b := s.Bounds()
	if math.Abs(b.Center.X-0.5) > 1e-9 || math.Abs(b.Center.Z+0.5) > 1e-9 {
		t.Errorf("center = %v, want (0.5,0,-0.5)", b.Center)
	}
	if math.Abs(b.Radius-math.Sqrt(0.5)) > 1e-6 {
		t.Errorf("radius = %f, want %f", b.Radius, math.Sqrt(0.5))
	}

	eng.pos[1] = 2
	s.Refresh()
	if s.Version() != 2 {
		t.Errorf("expected version 2, got %d", s.Version())
	}
	if s.Bounds().Center.Y != 1 {
		t.Errorf("center y = %f after move, want 1", s.Bounds().Center.Y)
	}
}

func TestIndicesFixedAcrossMotion(t *testing.T) {
	sim := softbody.New(10, 100, 0)
	topo := bufview.QueryTopology(sim)
	view, err := bufview.Acquire(topo)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	s := New(view, topo)
	s.Refresh()

	n := len(s.Indices())
	if n == 0 || n%3 != 0 {
		t.Fatalf("unexpected index count %d", n)
	}
	for i := 0; i < 20; i++ {
		sim.Step()
		s.Refresh()
		if len(s.Indices()) != n {
			t.Fatalf("index count changed from %d to %d", n, len(s.Indices()))
		}
	}
	if s.NumTriangles()*3 != n {
		t.Errorf("NumTriangles = %d, want %d", s.NumTriangles(), n/3)
	}
}
