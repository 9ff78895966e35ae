// Package params maps live control-panel edits onto engine setters.
//
// Every tunable value lives in an explicit [ParameterSet]. A [Binding] holds
// one command per parameter key; applying a command updates the record and
// forwards the raw value to the engine synchronously. Range and step
// validation is the panel's job (see [Control.Constrain]).
package params

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownParameter indicates a key with no command.
	ErrUnknownParameter = errors.New("params: unknown parameter")

	// ErrReadOnly indicates an edit of a display-only or action control.
	ErrReadOnly = errors.New("params: parameter is read-only")

	// ErrNotAction indicates a press on a value control.
	ErrNotAction = errors.New("params: control is not an action")
)

// Parameter keys.
const (
	KeyTets             = "tets"
	KeySubsteps         = "substeps"
	KeyVolumeCompliance = "volumeCompliance"
	KeyEdgeCompliance   = "edgeCompliance"
	KeyAnimate          = "animate"
	KeySquash           = "squash"
	KeyReset            = "reset"
)

// Defaults shared by the panel, the engine and the config layer.
const (
	DefaultSubsteps         = 10
	DefaultEdgeCompliance   = 100.0
	DefaultVolumeCompliance = 0.0

	MinSubsteps    = 1
	MaxSubsteps    = 30
	MaxCompliance  = 500.0
	ComplianceStep = 5.0
)

// ParameterSet is the shared record of tunable values. Tets is derived from
// the engine and never edited.
type ParameterSet struct {
	Tets             int
	Animate          bool
	Substeps         int
	VolumeCompliance float64
	EdgeCompliance   float64
}

// DefaultSet returns the initial record for an engine with numTets tetrahedra.
func DefaultSet(numTets int) ParameterSet {
	return ParameterSet{
		Tets:             numTets,
		Animate:          true,
		Substeps:         DefaultSubsteps,
		VolumeCompliance: DefaultVolumeCompliance,
		EdgeCompliance:   DefaultEdgeCompliance,
	}
}

// Tunable is the setter subset of an engine the binding drives.
type Tunable interface {
	SetSolverSubsteps(n int)
	SetVolumeCompliance(c float64)
	SetEdgeCompliance(c float64)
}

// Kind classifies a control.
type Kind int

const (
	Float Kind = iota
	Int
	Bool
	Display
	Action
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Display:
		return "display"
	case Action:
		return "action"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Control describes one panel entry.
type Control struct {
	Key      string
	Label    string
	Kind     Kind
	Min      float64
	Max      float64
	Step     float64
	Disabled bool
}

// Editable reports whether the control accepts values.
func (c Control) Editable() bool {
	return !c.Disabled && c.Kind != Display && c.Kind != Action
}

// Constrain clamps v to [Min, Max] and snaps it to the nearest Step above
// Min. Bool controls map to 0 or 1.
func (c Control) Constrain(v float64) float64 {
	if math.IsNaN(v) {
		v = c.Min
	}
	if c.Kind == Bool {
		if v != 0 {
			return 1
		}
		return 0
	}
	if c.Max > c.Min {
		v = math.Max(c.Min, math.Min(c.Max, v))
	}
	if c.Step > 0 {
		v = c.Min + math.Round((v-c.Min)/c.Step)*c.Step
		if c.Max > c.Min && v > c.Max {
			v -= c.Step
		}
	}
	if c.Kind == Int {
		v = math.Round(v)
	}
	return v
}

// Observer is notified after each forwarded edit.
type Observer func(key string, value float64)

type command struct {
	control Control
	get     func() float64
	apply   func(v float64)
	press   func() error
}

// Binding is the command table from parameter key to setter.
type Binding struct {
	engine    Tunable
	set       *ParameterSet
	commands  map[string]*command
	order     []string
	observers []Observer
	reset     func() error
	squash    func() error
}

// Option configures a Binding.
type Option func(*Binding)

// WithReset adds a reset action control.
func WithReset(fn func() error) Option {
	return func(b *Binding) { b.reset = fn }
}

// WithSquash adds a squash action control.
func WithSquash(fn func() error) Option {
	return func(b *Binding) { b.squash = fn }
}

// WithObserver registers an edit observer.
func WithObserver(o Observer) Option {
	return func(b *Binding) { b.observers = append(b.observers, o) }
}

// NewBinding builds the command table for engine and set.
func NewBinding(engine Tunable, set *ParameterSet, opts ...Option) *Binding {
	b := &Binding{
		engine:   engine,
		set:      set,
		commands: make(map[string]*command),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.add(&command{
		control: Control{Key: KeyTets, Label: "tets", Kind: Display, Disabled: true},
		get:     func() float64 { return float64(set.Tets) },
	})
	b.add(&command{
		control: Control{Key: KeySubsteps, Label: "substeps", Kind: Int, Min: MinSubsteps, Max: MaxSubsteps, Step: 1},
		get:     func() float64 { return float64(set.Substeps) },
		apply: func(v float64) {
			set.Substeps = int(v)
			engine.SetSolverSubsteps(set.Substeps)
		},
	})
	b.add(&command{
		control: Control{Key: KeyVolumeCompliance, Label: "volume compliance", Kind: Float, Max: MaxCompliance, Step: ComplianceStep},
		get:     func() float64 { return set.VolumeCompliance },
		apply: func(v float64) {
			set.VolumeCompliance = v
			engine.SetVolumeCompliance(v)
		},
	})
	b.add(&command{
		control: Control{Key: KeyEdgeCompliance, Label: "edge compliance", Kind: Float, Max: MaxCompliance, Step: ComplianceStep},
		get:     func() float64 { return set.EdgeCompliance },
		apply: func(v float64) {
			set.EdgeCompliance = v
			engine.SetEdgeCompliance(v)
		},
	})
	b.add(&command{
		control: Control{Key: KeyAnimate, Label: "animate", Kind: Bool, Max: 1, Step: 1},
		get:     func() float64 { return boolValue(set.Animate) },
		apply:   func(v float64) { set.Animate = v != 0 },
	})
	if b.squash != nil {
		b.add(&command{
			control: Control{Key: KeySquash, Label: "squash", Kind: Action},
			press:   b.squash,
		})
	}
	if b.reset != nil {
		b.add(&command{
			control: Control{Key: KeyReset, Label: "reset", Kind: Action},
			press:   b.reset,
		})
	}
	return b
}

func (b *Binding) add(c *command) {
	b.commands[c.control.Key] = c
	b.order = append(b.order, c.control.Key)
}

// Set returns the bound record.
func (b *Binding) Set() *ParameterSet { return b.set }

// Controls lists the controls in panel order.
func (b *Binding) Controls() []Control {
	out := make([]Control, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.commands[k].control)
	}
	return out
}

// Value reads the current value of key.
func (b *Binding) Value(key string) (float64, error) {
	c, ok := b.commands[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	if c.get == nil {
		return 0, nil
	}
	return c.get(), nil
}

// Apply forwards v to the setter bound to key. The value is passed through
// unchanged; exactly one engine setter runs per numeric edit.
func (b *Binding) Apply(key string, v float64) error {
	c, ok := b.commands[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	if c.apply == nil {
		return fmt.Errorf("%w: %q", ErrReadOnly, key)
	}
	c.apply(v)
	for _, o := range b.observers {
		o(key, v)
	}
	return nil
}

// Press runs the action bound to key.
func (b *Binding) Press(key string) error {
	c, ok := b.commands[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	if c.press == nil {
		return fmt.Errorf("%w: %q", ErrNotAction, key)
	}
	if err := c.press(); err != nil {
		return err
	}
	for _, o := range b.observers {
		o(key, 1)
	}
	return nil
}

// Bind registers every control on p and returns the entries in order.
func (b *Binding) Bind(p *Panel) []*Entry {
	entries := make([]*Entry, 0, len(b.order))
	for _, k := range b.order {
		c := b.commands[k]
		key := k
		var onChange func(float64) error
		switch {
		case c.press != nil:
			onChange = func(float64) error { return b.Press(key) }
		case c.apply != nil:
			onChange = func(v float64) error { return b.Apply(key, v) }
		}
		get := c.get
		if get == nil {
			get = func() float64 { return 0 }
		}
		entries = append(entries, p.Add(c.control, get, onChange))
	}
	return entries
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
