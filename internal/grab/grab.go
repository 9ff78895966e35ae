// Package grab turns pointer gestures into staged engine grab commands.
package grab

import (
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/scene"
	"go.uber.org/zap"
)

// Canvas reports whether pointer coordinates fall on the drawing surface.
type Canvas interface {
	Contains(x, y int) bool
}

// Picker is the part of a scene the proxy needs.
type Picker interface {
	Pick(x, y int) (scene.Hit, bool)
	Unproject(x, y int, depth float64) scene.Vec3
}

// Toggle is the animate control as registered on the panel.
type Toggle interface {
	Checked() bool
	SetChecked(on bool) error
}

// Policy decides what happens to animation while a grab is held.
type Policy int

const (
	// HoldPause stops the simulation while held. Staged commands are applied
	// when animation resumes.
	HoldPause Policy = iota
	// HoldRun keeps the simulation running so the body follows the pointer.
	HoldRun
)

func (p Policy) String() string {
	if p == HoldRun {
		return "run"
	}
	return "pause"
}

// ParsePolicy maps "pause" and "run" to a Policy. Anything else is HoldPause.
func ParsePolicy(s string) Policy {
	if s == "run" {
		return HoldRun
	}
	return HoldPause
}

// Phase names a grab lifecycle event.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseMove  Phase = "move"
	PhaseEnd   Phase = "end"
	// PhaseCancel is a grab dropped because the engine was reset.
	PhaseCancel Phase = "cancel"
)

// Observer is notified of every command the proxy stages.
type Observer func(p Phase)

// Proxy holds non-owning references to everything a grab touches.
type Proxy struct {
	target  dynamo.Grabbable
	canvas  Canvas
	picker  Picker
	set     *params.ParameterSet
	animate Toggle
	policy  Policy
	logger  *zap.Logger
	observe Observer

	active   bool
	restore  bool
	particle int
	depth    float64
	pos      scene.Vec3
	prevPos  scene.Vec3
	time     float64
}

// Option configures a Proxy.
type Option func(*Proxy)

func WithPolicy(p Policy) Option {
	return func(g *Proxy) { g.policy = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Proxy) { g.logger = l }
}

func WithObserver(o Observer) Option {
	return func(g *Proxy) { g.observe = o }
}

// NewProxy wires the grab subsystem. canvas may be nil, meaning every
// pointer position is on the canvas.
func NewProxy(target dynamo.Grabbable, canvas Canvas, picker Picker, set *params.ParameterSet, animate Toggle, opts ...Option) *Proxy {
	g := &Proxy{
		target:   target,
		canvas:   canvas,
		picker:   picker,
		set:      set,
		animate:  animate,
		logger:   zap.NewNop(),
		particle: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Active reports whether a grab is held.
func (g *Proxy) Active() bool { return g.active }

// Particle reports the picked particle, or -1.
func (g *Proxy) Particle() int { return g.particle }

// Position reports the current grab point in world space.
func (g *Proxy) Position() scene.Vec3 { return g.pos }

func (g *Proxy) Policy() Policy { return g.policy }

// IncreaseTime accumulates interaction time. The frame loop calls it once
// per running frame with the engine's dt.
func (g *Proxy) IncreaseTime(dt float64) {
	g.time += dt
}

// Down starts a grab if the pointer hits the body. It reports whether a
// grab started.
func (g *Proxy) Down(x, y int) bool {
	if g.active || g.picker == nil {
		return false
	}
	if g.canvas != nil && !g.canvas.Contains(x, y) {
		return false
	}
	hit, ok := g.picker.Pick(x, y)
	if !ok {
		return false
	}

	g.active = true
	g.particle = hit.Particle
	g.depth = hit.Depth
	g.pos = hit.Point
	g.prevPos = hit.Point
	g.time = 0

	g.holdAnimate()
	g.target.StartGrab(g.pos.Array())
	g.notify(PhaseStart)
	g.logger.Debug("grab started",
		zap.Int("particle", hit.Particle),
		zap.Float64("depth", hit.Depth),
		zap.Stringer("policy", g.policy))
	return true
}

// Drag moves the grab point to the pointer at the grab depth.
func (g *Proxy) Drag(x, y int) {
	if !g.active {
		return
	}
	g.prevPos = g.pos
	g.pos = g.picker.Unproject(x, y, g.depth)
	g.target.MoveGrabbed(g.pos.Array())
	g.time = 0
	g.notify(PhaseMove)
}

// Up releases the grab. The release velocity is the last drag displacement
// over the interaction time elapsed since that drag.
func (g *Proxy) Up() {
	if !g.active {
		return
	}
	var vel scene.Vec3
	if g.time > 0 {
		vel = g.pos.Sub(g.prevPos).Scale(1 / g.time)
	}
	g.target.EndGrab(g.pos.Array(), vel.Array())
	g.notify(PhaseEnd)
	g.logger.Debug("grab released",
		zap.Int("particle", g.particle),
		zap.Float64("speed", vel.Length()))

	g.active = false
	g.particle = -1
	g.releaseAnimate()
}

// Cancel drops a held grab without staging a release. Reset and Squash
// already unpin the particle on the engine side.
func (g *Proxy) Cancel() {
	if !g.active {
		return
	}
	g.notify(PhaseCancel)
	g.logger.Debug("grab cancelled", zap.Int("particle", g.particle))

	g.active = false
	g.particle = -1
	g.releaseAnimate()
}

// Velocity reports the velocity Up would release with now.
func (g *Proxy) Velocity() scene.Vec3 {
	if !g.active || g.time <= 0 {
		return scene.Vec3{}
	}
	return g.pos.Sub(g.prevPos).Scale(1 / g.time)
}

func (g *Proxy) holdAnimate() {
	g.restore = g.set.Animate
	want := g.policy == HoldRun
	if g.set.Animate == want || g.animate == nil {
		return
	}
	if err := g.animate.SetChecked(want); err != nil {
		g.logger.Warn("animate toggle rejected", zap.Error(err))
	}
}

func (g *Proxy) releaseAnimate() {
	if g.set.Animate == g.restore || g.animate == nil {
		return
	}
	if err := g.animate.SetChecked(g.restore); err != nil {
		g.logger.Warn("animate toggle rejected", zap.Error(err))
	}
}

func (g *Proxy) notify(p Phase) {
	if g.observe != nil {
		g.observe(p)
	}
}
