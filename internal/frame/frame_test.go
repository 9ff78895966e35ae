package frame_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softsim/internal/bufview"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/softbody"
)

// callLog records the order of calls across the fakes.
type callLog struct {
	calls []string
	dts   []float64
}

type fakeEngine struct {
	log *callLog
	pos []float32
	dt  float64
}

func (e *fakeEngine) Step() {
	e.log.calls = append(e.log.calls, "step")
	e.pos[0] += 1
}
func (e *fakeEngine) Dt() float64                  { return e.dt }
func (e *fakeEngine) Reset()                       { e.log.calls = append(e.log.calls, "reset"); e.pos[0] = 0 }
func (e *fakeEngine) NumTets() int                 { return 1 }
func (e *fakeEngine) NumParticles() int            { return 1 }
func (e *fakeEngine) SurfaceTriIDs() []int         { return []int{0, 0, 0} }
func (e *fakeEngine) ParticlePositions() []float32 { return e.pos }
func (e *fakeEngine) SetSolverSubsteps(int)        {}
func (e *fakeEngine) SetVolumeCompliance(float64)  {}
func (e *fakeEngine) SetEdgeCompliance(float64)    {}

type fakeSurface struct{ log *callLog }

func (s fakeSurface) Refresh() { s.log.calls = append(s.log.calls, "refresh") }

type fakeClock struct{ log *callLog }

func (c fakeClock) IncreaseTime(dt float64) {
	c.log.calls = append(c.log.calls, "increaseTime")
	c.log.dts = append(c.log.dts, dt)
}

type fakeView struct {
	log *callLog
	err error
}

func (v fakeView) Validate() error {
	v.log.calls = append(v.log.calls, "validate")
	return v.err
}

type countingObserver struct {
	frames   map[frame.State]int
	restores []frame.Event
}

func (o *countingObserver) ObserveFrame(s frame.State, _ time.Duration) { o.frames[s]++ }
func (o *countingObserver) ObserveRestore(e frame.Event)                { o.restores = append(o.restores, e) }

// spyTunable records edge compliance edits before forwarding them.
type spyTunable struct {
	*softbody.Simulation
	edge []float64
}

func (s *spyTunable) SetEdgeCompliance(c float64) {
	s.edge = append(s.edge, c)
	s.Simulation.SetEdgeCompliance(c)
}

// realDemo wires a real engine, view and surface the way the demo does.
type realDemo struct {
	sim     *softbody.Simulation
	spy     *spyTunable
	view    bufview.View
	surface *mesh.Surface
	set     *params.ParameterSet
	panel   *params.Panel
	ctrl    *frame.Controller
}

func newRealDemo() *realDemo {
	d := &realDemo{sim: softbody.New(params.DefaultSubsteps, params.DefaultEdgeCompliance, params.DefaultVolumeCompliance)}
	set := params.DefaultSet(d.sim.NumTets())
	d.set = &set
	d.panel = params.NewPanel("controls")
	d.spy = &spyTunable{Simulation: d.sim}
	params.NewBinding(d.spy, d.set).Bind(d.panel)

	topo := bufview.QueryTopology(d.sim)
	view, err := bufview.Acquire(topo)
	Expect(err).NotTo(HaveOccurred())
	d.view = view
	d.surface = mesh.New(view, topo)
	d.surface.Refresh()
	d.ctrl = frame.New(d.sim, d.view, d.surface, d.set)
	return d
}

func snapshot(v bufview.View) []float32 {
	return append([]float32(nil), v.Floats()...)
}

var _ = Describe("Controller", func() {
	var (
		log     *callLog
		eng     *fakeEngine
		set     params.ParameterSet
		obs     *countingObserver
		ctrl    *frame.Controller
		viewErr error
	)

	BeforeEach(func() {
		log = &callLog{}
		eng = &fakeEngine{log: log, pos: []float32{0, 0, 0}, dt: 1.0 / 60}
		set = params.DefaultSet(1)
		obs = &countingObserver{frames: map[frame.State]int{}}
		viewErr = nil
	})

	JustBeforeEach(func() {
		ctrl = frame.New(eng, fakeView{log: log, err: viewErr}, fakeSurface{log: log}, &set,
			frame.WithClock(fakeClock{log: log}),
			frame.WithObserver(obs))
	})

	Context("when animate is on", func() {
		It("steps, refreshes and advances the clock in order", func() {
			Expect(ctrl.Tick()).To(Equal(frame.Running))
			Expect(log.calls).To(Equal([]string{"step", "refresh", "increaseTime"}))
		})

		It("passes the engine dt verbatim to the clock", func() {
			eng.dt = 0.0125
			ctrl.Tick()
			Expect(log.dts).To(Equal([]float64{0.0125}))
			Expect(log.dts[0]).To(BeNumerically(">=", 0))
		})

		It("steps exactly once per tick", func() {
			for i := 0; i < 4; i++ {
				ctrl.Tick()
			}
			Expect(ctrl.Steps()).To(Equal(4))
			Expect(ctrl.Frames()).To(Equal(4))
			Expect(ctrl.Time()).To(BeNumerically("~", 4.0/60, 1e-12))
			Expect(obs.frames[frame.Running]).To(Equal(4))
		})
	})

	Context("when animate is off", func() {
		BeforeEach(func() { set.Animate = false })

		It("touches neither engine nor surface", func() {
			for i := 0; i < 5; i++ {
				Expect(ctrl.Tick()).To(Equal(frame.Idle))
			}
			Expect(log.calls).To(BeEmpty())
			Expect(ctrl.Frames()).To(Equal(5))
			Expect(ctrl.Steps()).To(BeZero())
			Expect(obs.frames[frame.Idle]).To(Equal(5))
		})
	})

	Describe("Reset", func() {
		It("resets, validates and refreshes without stepping", func() {
			Expect(ctrl.Reset()).To(Succeed())
			Expect(log.calls).To(Equal([]string{"reset", "validate", "refresh"}))
			Expect(obs.restores).To(Equal([]frame.Event{frame.EventReset}))
		})

		Context("when the view was relocated", func() {
			BeforeEach(func() {
				viewErr = &dynamo.RelocationError{WantBase: 1, GotBase: 2, WantLen: 3, GotLen: 3}
			})

			It("reports ErrBufferRelocated and skips the refresh", func() {
				err := ctrl.Reset()
				Expect(errors.Is(err, dynamo.ErrBufferRelocated)).To(BeTrue())
				Expect(log.calls).To(Equal([]string{"reset", "validate"}))
				Expect(obs.restores).To(BeEmpty())
			})
		})
	})

	Describe("Squash", func() {
		It("rejects engines without the capability", func() {
			Expect(ctrl.Squash()).To(MatchError(frame.ErrSquashUnsupported))
		})
	})
})

var _ = Describe("Controller with the soft body engine", func() {
	var d *realDemo

	BeforeEach(func() { d = newRealDemo() })

	It("mutates positions in place on the first step", func() {
		before := snapshot(d.view)
		base := d.view.Base()

		d.sim.Step()

		Expect(d.view.Base()).To(Equal(base))
		Expect(d.view.Validate()).To(Succeed())
		Expect(d.view.Floats()).NotTo(Equal(before))
	})

	It("keeps the view stable across reset", func() {
		base, n := d.view.Base(), d.view.Len()
		for i := 0; i < 10; i++ {
			d.ctrl.Tick()
		}
		Expect(d.ctrl.Reset()).To(Succeed())
		Expect(d.sim.NumParticles()).To(Equal(n / 3))
		Expect(d.view.Base()).To(Equal(base))
		Expect(d.view.Len()).To(Equal(n))
	})

	It("keeps the view stable across squash", func() {
		base := d.view.Base()
		Expect(d.ctrl.Squash()).To(Succeed())
		Expect(d.view.Base()).To(Equal(base))
		for i := 1; i < d.view.Len(); i += 3 {
			Expect(d.view.Floats()[i]).To(BeNumerically("~", softbody.SquashHeight, 1e-6))
		}
	})

	It("leaves positions byte-identical while idle", func() {
		Expect(d.panel.Set(params.KeyAnimate, 0)).To(Succeed())
		before := snapshot(d.view)
		for i := 0; i < 25; i++ {
			d.ctrl.Tick()
		}
		Expect(d.view.Floats()).To(Equal(before))
	})

	It("mutates only while animate is on across 3, 5, 3 frames", func() {
		windows := []struct {
			animate bool
			frames  int
		}{{true, 3}, {false, 5}, {true, 3}}

		for _, w := range windows {
			Expect(d.panel.Entry(params.KeyAnimate).SetChecked(w.animate)).To(Succeed())
			for i := 0; i < w.frames; i++ {
				before := snapshot(d.view)
				d.ctrl.Tick()
				if w.animate {
					Expect(d.view.Floats()).NotTo(Equal(before))
				} else {
					Expect(d.view.Floats()).To(Equal(before))
				}
			}
		}
		Expect(d.ctrl.Steps()).To(Equal(6))
		Expect(d.ctrl.Frames()).To(Equal(11))
	})

	It("forwards an edge compliance edit without refreshing the mesh", func() {
		refreshes := d.surface.Refreshes()
		Expect(d.panel.Set(params.KeyEdgeCompliance, 250.0)).To(Succeed())
		Expect(d.spy.edge).To(Equal([]float64{250.0}))
		Expect(d.set.EdgeCompliance).To(Equal(250.0))
		Expect(d.surface.Refreshes()).To(Equal(refreshes))
	})

	It("keeps view and index lengths fixed over the run", func() {
		n, idx := d.view.Len(), len(d.surface.Indices())
		for i := 0; i < 30; i++ {
			d.ctrl.Tick()
			if i == 15 {
				Expect(d.ctrl.Reset()).To(Succeed())
			}
		}
		Expect(d.view.Len()).To(Equal(3 * d.sim.NumParticles()))
		Expect(d.view.Len()).To(Equal(n))
		Expect(d.surface.Indices()).To(HaveLen(idx))
	})
})
