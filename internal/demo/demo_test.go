package demo

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/scene"
	"github.com/san-kum/softsim/internal/softbody"
)

// stubScene picks particle 0 at any pointer position and unprojects to a
// point 0.1 above the origin per pixel of y.
type stubScene struct {
	objects []scene.Object
	cfg     scene.Config
	order   []string
}

func (s *stubScene) Add(obj scene.Object) {
	s.order = append(s.order, "add")
	s.objects = append(s.objects, obj)
}

func (s *stubScene) Configure(cfg scene.Config) {
	s.order = append(s.order, "configure")
	s.cfg = cfg
}

func (s *stubScene) Pick(x, y int) (scene.Hit, bool) {
	if len(s.objects) == 0 {
		return scene.Hit{}, false
	}
	p := s.objects[0].Positions()
	return scene.Hit{Particle: 0, Point: scene.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}, Depth: 1}, true
}

func (s *stubScene) Unproject(x, y int, depth float64) scene.Vec3 {
	return scene.Vec3{Y: 0.1 * float64(y)}
}

func newTestDemo(t *testing.T, policy grab.Policy) (*Demo, *stubScene) {
	t.Helper()
	sc := &stubScene{}
	sim := softbody.New(params.DefaultSubsteps, params.DefaultEdgeCompliance, params.DefaultVolumeCompliance)
	d := New(sim, sc, nil, policy)
	if err := d.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return d, sc
}

func TestInitWiresScene(t *testing.T) {
	d, sc := newTestDemo(t, grab.HoldPause)

	if len(sc.order) != 2 || sc.order[0] != "add" || sc.order[1] != "configure" {
		t.Errorf("scene calls = %v", sc.order)
	}
	if sc.cfg.CameraYZ != [2]float64{1, 2} {
		t.Errorf("camera = %v", sc.cfg.CameraYZ)
	}
	if d.Surface().Version() != 1 {
		t.Errorf("initial refresh missing, version %d", d.Surface().Version())
	}
	if d.View().Len() != 3*d.Engine().NumParticles() {
		t.Errorf("view length %d for %d particles", d.View().Len(), d.Engine().NumParticles())
	}
	if d.Params().Tets != d.Engine().NumTets() {
		t.Errorf("tets = %d, want %d", d.Params().Tets, d.Engine().NumTets())
	}
	if err := d.Init(); err == nil {
		t.Error("second Init should fail")
	}
}

func TestUpdateBeforeInit(t *testing.T) {
	sim := softbody.New(10, 100, 0)
	d := New(sim, nil, nil, grab.HoldPause)

	if d.Update() != frame.Idle {
		t.Error("uninitialized demo should not run")
	}
	if err := d.Reset(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if sim.Steps() != 0 {
		t.Errorf("engine stepped %d times", sim.Steps())
	}
}

func TestPanelButtons(t *testing.T) {
	d, _ := newTestDemo(t, grab.HoldPause)
	for i := 0; i < 5; i++ {
		d.Update()
	}

	if err := d.Panel().Press(params.KeySquash); err != nil {
		t.Fatalf("squash: %v", err)
	}
	if y := d.View().Position(0)[1]; y != softbody.SquashHeight {
		t.Errorf("particle 0 y = %f after squash", y)
	}
	if err := d.Panel().Press(params.KeyReset); err != nil {
		t.Fatalf("reset: %v", err)
	}
	init := softbody.New(10, 100, 0).ParticlePositions()
	for i, v := range d.View().Floats() {
		if v != init[i] {
			t.Fatalf("float %d = %f after reset, want %f", i, v, init[i])
		}
	}
}

func TestGrabPausesAndThrowsOnResume(t *testing.T) {
	d, _ := newTestDemo(t, grab.HoldPause)
	sim := d.Engine().(*softbody.Simulation)

	if !d.Grabber().Down(0, 0) {
		t.Fatal("grab missed")
	}
	if d.Params().Animate {
		t.Fatal("grab should pause animation")
	}
	before := append([]float32(nil), d.View().Floats()...)
	d.Grabber().Drag(0, 20)
	for i := 0; i < 3; i++ {
		d.Update()
	}
	for i, v := range d.View().Floats() {
		if v != before[i] {
			t.Fatalf("paused grab wrote float %d", i)
		}
	}

	d.Grabber().Up()
	if !d.Params().Animate {
		t.Fatal("release should resume animation")
	}
	d.Update()
	if sim.Grabbed() != -1 {
		t.Errorf("particle still pinned: %d", sim.Grabbed())
	}
}

func TestHoldRunDragsParticle(t *testing.T) {
	d, _ := newTestDemo(t, grab.HoldRun)
	sim := d.Engine().(*softbody.Simulation)

	d.Grabber().Down(0, 0)
	d.Grabber().Drag(0, 20)
	d.Update()

	if sim.Grabbed() != 0 {
		t.Fatalf("expected particle 0 pinned, got %d", sim.Grabbed())
	}
	if y := d.View().Position(0)[1]; y < 1.9 || y > 2.1 {
		t.Errorf("dragged particle y = %f, want about 2", y)
	}
	d.Grabber().Up()
	d.Update()
	if sim.Grabbed() != -1 {
		t.Error("release not applied")
	}
}

func TestApplyRoutesThroughPanel(t *testing.T) {
	var edits []string
	sim := softbody.New(10, 100, 0)
	d := New(sim, nil, nil, grab.HoldPause, WithObservers(Observers{
		Edit: []params.Observer{func(key string, _ float64) { edits = append(edits, key) }},
	}))

	s := config.SolverConfig{Substeps: 40, EdgeCompliance: 100, VolumeCompliance: 12, Animate: false}
	if err := d.Apply(s); err != nil {
		t.Fatal(err)
	}
	if d.Params().Substeps != 30 {
		t.Errorf("substeps not constrained: %d", d.Params().Substeps)
	}
	if d.Params().VolumeCompliance != 10 {
		t.Errorf("volume compliance not snapped: %f", d.Params().VolumeCompliance)
	}
	if d.Params().Animate {
		t.Error("animate should be off")
	}
	want := []string{params.KeySubsteps, params.KeyVolumeCompliance, params.KeyAnimate}
	if len(edits) != len(want) {
		t.Fatalf("edits = %v, want %v", edits, want)
	}
	for i := range want {
		if edits[i] != want[i] {
			t.Errorf("edit %d = %s, want %s", i, edits[i], want[i])
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.GetPreset("fine")
	cfg.Solver.Animate = false
	d := FromConfig(cfg, nil, nil)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if d.Engine().NumParticles() != 7*7*7 {
		t.Errorf("particles = %d", d.Engine().NumParticles())
	}
	if d.Update() != frame.Idle {
		t.Error("animate=false preset should start idle")
	}
	if d.Params().Substeps != 15 {
		t.Errorf("substeps = %d", d.Params().Substeps)
	}
}

func TestDefaultBodyStaysAboveGround(t *testing.T) {
	d := FromConfig(config.DefaultConfig(), nil, nil)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	lowest := float32(math.MaxFloat32)
	for i := 0; i < 300; i++ {
		d.Update()
		pos := d.View().Floats()
		for j := 1; j < len(pos); j += 3 {
			lowest = min(lowest, pos[j])
		}
	}
	if lowest < 0 {
		t.Errorf("lowest particle over 300 frames: y=%f", lowest)
	}
}

func TestResetCancelsHeldGrab(t *testing.T) {
	for _, squash := range []bool{false, true} {
		d, _ := newTestDemo(t, grab.HoldPause)
		sim := d.Engine().(*softbody.Simulation)

		if !d.Grabber().Down(0, 0) {
			t.Fatal("grab missed")
		}
		var err error
		if squash {
			err = d.Squash()
		} else {
			err = d.Reset()
		}
		if err != nil {
			t.Fatal(err)
		}

		if d.Grabber().Active() {
			t.Errorf("squash=%v: grab still active", squash)
		}
		if !d.Params().Animate {
			t.Errorf("squash=%v: animate not restored", squash)
		}
		d.Grabber().Drag(0, 20)
		d.Update()
		if sim.Grabbed() != -1 {
			t.Errorf("squash=%v: particle %d pinned after cancel", squash, sim.Grabbed())
		}
	}
}
