// Package demo composes one soft-body engine with its controls, grab
// subsystem, surface mesh and frame controller.
//
// Construction order matters and is fixed here: the engine and its controls
// first, then every allocating topology query, then the single view
// acquisition, then the mesh, the scene and finally the frame controller.
package demo

import (
	"errors"
	"fmt"

	"github.com/san-kum/softsim/internal/bufview"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/scene"
	"github.com/san-kum/softsim/internal/softbody"
	"go.uber.org/zap"
)

// ErrNotInitialized indicates a frame call before Init.
var ErrNotInitialized = errors.New("demo: not initialized")

// Observers receive notifications from every layer of the demo.
type Observers struct {
	Frame []frame.Observer
	Edit  []params.Observer
	Grab  []grab.Observer
}

// Demo owns one engine and everything aliasing it.
type Demo struct {
	engine dynamo.Interactive
	scene  scene.Scene
	cfg    scene.Config
	logger *zap.Logger
	obs    Observers

	set     params.ParameterSet
	binding *params.Binding
	panel   *params.Panel
	grabber *grab.Proxy

	topo    *bufview.Topology
	view    bufview.View
	surface *mesh.Surface
	ctrl    *frame.Controller
}

// Option configures a Demo.
type Option func(*Demo)

func WithLogger(l *zap.Logger) Option {
	return func(d *Demo) { d.logger = l }
}

func WithObservers(o Observers) Option {
	return func(d *Demo) { d.obs = o }
}

// WithSceneConfig overrides the camera placement applied at Init.
func WithSceneConfig(c scene.Config) Option {
	return func(d *Demo) { d.cfg = c }
}

// FromConfig builds a soft body from cfg and wraps it.
func FromConfig(cfg *config.Config, sc scene.Scene, canvas grab.Canvas, opts ...Option) *Demo {
	sim := softbody.NewWithBox(cfg.Body, cfg.Solver.Substeps, cfg.Solver.EdgeCompliance, cfg.Solver.VolumeCompliance)
	opts = append([]Option{WithSceneConfig(cfg.Scene)}, opts...)
	d := New(sim, sc, canvas, grab.ParsePolicy(cfg.Grab.Policy), opts...)
	d.set.Animate = cfg.Solver.Animate
	d.set.Substeps = cfg.Solver.Substeps
	d.set.EdgeCompliance = cfg.Solver.EdgeCompliance
	d.set.VolumeCompliance = cfg.Solver.VolumeCompliance
	return d
}

// New registers the controls and the grab subsystem for engine. The engine
// must already be configured with the default parameter values.
func New(engine dynamo.Interactive, sc scene.Scene, canvas grab.Canvas, policy grab.Policy, opts ...Option) *Demo {
	d := &Demo{
		engine: engine,
		scene:  sc,
		cfg:    scene.DefaultConfig(),
		logger: zap.NewNop(),
		set:    params.DefaultSet(engine.NumTets()),
	}
	for _, opt := range opts {
		opt(d)
	}

	bopts := []params.Option{
		params.WithReset(d.Reset),
		params.WithObserver(d.logEdit),
	}
	if _, ok := engine.(dynamo.Squasher); ok {
		bopts = append(bopts, params.WithSquash(d.Squash))
	}
	for _, o := range d.obs.Edit {
		bopts = append(bopts, params.WithObserver(o))
	}
	d.binding = params.NewBinding(engine, &d.set, bopts...)
	d.panel = params.NewPanel("soft bodies")
	d.binding.Bind(d.panel)

	gopts := []grab.Option{grab.WithPolicy(policy), grab.WithLogger(d.logger)}
	if len(d.obs.Grab) > 0 {
		gopts = append(gopts, grab.WithObserver(func(p grab.Phase) {
			for _, o := range d.obs.Grab {
				o(p)
			}
		}))
	}
	d.grabber = grab.NewProxy(engine, canvas, sc, &d.set, d.panel.Entry(params.KeyAnimate), gopts...)
	return d
}

// Init acquires the particle view and builds the mesh. It must be called
// exactly once.
func (d *Demo) Init() error {
	if d.ctrl != nil {
		return errors.New("demo: already initialized")
	}
	d.topo = bufview.QueryTopology(d.engine)
	view, err := bufview.Acquire(d.topo)
	if err != nil {
		return fmt.Errorf("acquire particle view: %w", err)
	}
	d.view = view
	d.surface = mesh.New(view, d.topo)
	if d.scene != nil {
		d.scene.Add(d.surface)
		d.scene.Configure(d.cfg)
	}
	d.surface.Refresh()

	fopts := []frame.Option{frame.WithClock(d.grabber), frame.WithLogger(d.logger)}
	for _, o := range d.obs.Frame {
		fopts = append(fopts, frame.WithObserver(o))
	}
	d.ctrl = frame.New(d.engine, d.view, d.surface, &d.set, fopts...)

	d.logger.Info("demo initialized",
		zap.Int("particles", d.topo.NumParticles()),
		zap.Int("tets", d.topo.NumTets()),
		zap.Int("triangles", d.surface.NumTriangles()),
		zap.Uintptr("view_base", d.view.Base()))
	return nil
}

// Update runs one display frame.
func (d *Demo) Update() frame.State {
	if d.ctrl == nil {
		return frame.Idle
	}
	return d.ctrl.Tick()
}

func (d *Demo) Reset() error {
	if d.ctrl == nil {
		return ErrNotInitialized
	}
	d.grabber.Cancel()
	return d.ctrl.Reset()
}

func (d *Demo) Squash() error {
	if d.ctrl == nil {
		return ErrNotInitialized
	}
	d.grabber.Cancel()
	return d.ctrl.Squash()
}

// Apply routes a solver config through the panel, so values are
// constrained exactly like UI edits.
func (d *Demo) Apply(s config.SolverConfig) error {
	edits := []struct {
		key string
		v   float64
	}{
		{params.KeySubsteps, float64(s.Substeps)},
		{params.KeyEdgeCompliance, s.EdgeCompliance},
		{params.KeyVolumeCompliance, s.VolumeCompliance},
	}
	for _, e := range edits {
		cur, err := d.binding.Value(e.key)
		if err != nil {
			return err
		}
		if cur == e.v {
			continue
		}
		if err := d.panel.Set(e.key, e.v); err != nil {
			return err
		}
	}
	if s.Animate != d.set.Animate {
		return d.panel.Entry(params.KeyAnimate).SetChecked(s.Animate)
	}
	return nil
}

func (d *Demo) logEdit(key string, v float64) {
	d.logger.Debug("parameter edit", zap.String("key", key), zap.Float64("value", v))
}

func (d *Demo) Engine() dynamo.Interactive    { return d.engine }
func (d *Demo) Params() *params.ParameterSet  { return &d.set }
func (d *Demo) Panel() *params.Panel          { return d.panel }
func (d *Demo) Grabber() *grab.Proxy          { return d.grabber }
func (d *Demo) Surface() *mesh.Surface        { return d.surface }
func (d *Demo) View() bufview.View            { return d.view }
func (d *Demo) Controller() *frame.Controller { return d.ctrl }
func (d *Demo) Scene() scene.Scene            { return d.scene }
