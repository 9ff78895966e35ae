// Package frame sequences engine advancement against mesh re-derivation.
//
// A [Controller] is driven once per display frame by the frontend. While the
// shared parameter record has Animate set it steps the engine, refreshes the
// surface mesh and advances the interaction clock, in that order. Otherwise a
// tick touches nothing. Reset and Squash rewrite particles in place and then
// re-validate the particle view before the mesh is refreshed.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/params"
	"go.uber.org/zap"
)

// ErrSquashUnsupported indicates an engine without the Squasher capability.
var ErrSquashUnsupported = errors.New("frame: engine cannot squash")

// State is derived from ParameterSet.Animate.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Event names an in-place restore of the particle state.
type Event int

const (
	EventReset Event = iota
	EventSquash
)

func (e Event) String() string {
	if e == EventSquash {
		return "squash"
	}
	return "reset"
}

// Surface is re-derived from particle positions after every write.
type Surface interface {
	Refresh()
}

// Validator re-checks the particle view against its engine.
type Validator interface {
	Validate() error
}

// Clock accumulates interaction time for the grab subsystem.
type Clock interface {
	IncreaseTime(dt float64)
}

// Observer is notified after each tick and each restore.
type Observer interface {
	ObserveFrame(state State, step time.Duration)
	ObserveRestore(e Event)
}

// Controller drives one engine, its surface and its grab clock.
type Controller struct {
	engine    dynamo.Engine
	view      Validator
	surface   Surface
	clock     Clock
	set       *params.ParameterSet
	observers []Observer
	logger    *zap.Logger
	now       func() time.Time

	frames int
	steps  int
	time   float64
}

// Option configures a Controller.
type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the grab clock. Without one, ticks only step and refresh.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// New creates a controller. view must have been acquired from engine.
func New(engine dynamo.Engine, view Validator, surface Surface, set *params.ParameterSet, opts ...Option) *Controller {
	c := &Controller{
		engine:  engine,
		view:    view,
		surface: surface,
		set:     set,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports Running when animation is enabled.
func (c *Controller) State() State {
	if c.set.Animate {
		return Running
	}
	return Idle
}

// Tick runs one frame and returns the state it ran in.
func (c *Controller) Tick() State {
	state := c.State()
	c.frames++

	var elapsed time.Duration
	if state == Running {
		start := c.now()
		c.engine.Step()
		elapsed = c.now().Sub(start)
		c.surface.Refresh()
		dt := c.engine.Dt()
		if c.clock != nil {
			c.clock.IncreaseTime(dt)
		}
		c.steps++
		c.time += dt
	}

	for _, o := range c.observers {
		o.ObserveFrame(state, elapsed)
	}
	return state
}

// Reset restores the initial particle configuration. It never steps the
// engine or advances the clock.
func (c *Controller) Reset() error {
	c.engine.Reset()
	return c.restored(EventReset)
}

// Squash flattens the body in place, then proceeds as Reset does.
func (c *Controller) Squash() error {
	sq, ok := c.engine.(dynamo.Squasher)
	if !ok {
		return ErrSquashUnsupported
	}
	sq.Squash()
	return c.restored(EventSquash)
}

func (c *Controller) restored(e Event) error {
	if err := c.view.Validate(); err != nil {
		fields := []zap.Field{zap.Stringer("event", e), zap.Error(err)}
		var reloc *dynamo.RelocationError
		if errors.As(err, &reloc) {
			fields = append(fields,
				zap.Uintptr("want_base", reloc.WantBase),
				zap.Uintptr("got_base", reloc.GotBase),
				zap.Int("want_len", reloc.WantLen),
				zap.Int("got_len", reloc.GotLen))
		}
		c.logger.Error("particle view invalid after restore", fields...)
		return fmt.Errorf("frame %s: %w", e, err)
	}
	c.surface.Refresh()
	c.logger.Debug("particles restored", zap.Stringer("event", e), zap.Int("frame", c.frames))
	for _, o := range c.observers {
		o.ObserveRestore(e)
	}
	return nil
}

// Frames reports how many ticks ran, in either state.
func (c *Controller) Frames() int { return c.frames }

// Steps reports how many engine steps the controller issued.
func (c *Controller) Steps() int { return c.steps }

// Time reports simulated time covered by issued steps.
func (c *Controller) Time() float64 { return c.time }

func (c *Controller) Engine() dynamo.Engine { return c.engine }
