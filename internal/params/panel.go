package params

import (
	"fmt"
	"strconv"
)

// Entry is one registered control. Its SetValue is the controller
// reference UI code and the grab subsystem hold on to.
type Entry struct {
	control  Control
	get      func() float64
	onChange func(float64) error
}

func (e *Entry) Control() Control { return e.control }
func (e *Entry) Key() string      { return e.control.Key }
func (e *Entry) Value() float64   { return e.get() }

// SetValue constrains v and fires the change callback, even when the value
// did not change.
func (e *Entry) SetValue(v float64) error {
	if !e.control.Editable() || e.onChange == nil {
		return fmt.Errorf("%w: %q", ErrReadOnly, e.control.Key)
	}
	return e.onChange(e.control.Constrain(v))
}

// Nudge moves the value dir steps. Bool entries flip.
func (e *Entry) Nudge(dir int) error {
	if e.control.Kind == Bool {
		return e.SetChecked(!e.Checked())
	}
	step := e.control.Step
	if step == 0 {
		step = 1
	}
	return e.SetValue(e.Value() + float64(dir)*step)
}

func (e *Entry) Checked() bool { return e.get() != 0 }

func (e *Entry) SetChecked(on bool) error {
	return e.SetValue(boolValue(on))
}

// Press fires an action entry.
func (e *Entry) Press() error {
	if e.control.Kind != Action || e.onChange == nil {
		return fmt.Errorf("%w: %q", ErrNotAction, e.control.Key)
	}
	return e.onChange(0)
}

// Format renders the current value for display.
func (e *Entry) Format() string {
	switch e.control.Kind {
	case Bool:
		if e.Checked() {
			return "on"
		}
		return "off"
	case Action:
		return ""
	case Int, Display:
		return strconv.Itoa(int(e.Value()))
	}
	return strconv.FormatFloat(e.Value(), 'f', 1, 64)
}

// Panel is an ordered list of entries with a selection cursor.
type Panel struct {
	title   string
	entries []*Entry
	index   map[string]*Entry
	cursor  int
}

func NewPanel(title string) *Panel {
	return &Panel{title: title, index: make(map[string]*Entry)}
}

func (p *Panel) Title() string { return p.title }

// Add registers a control. get reads the current value; onChange receives
// constrained values.
func (p *Panel) Add(c Control, get func() float64, onChange func(float64) error) *Entry {
	e := &Entry{control: c, get: get, onChange: onChange}
	p.entries = append(p.entries, e)
	p.index[c.Key] = e
	return e
}

func (p *Panel) Entries() []*Entry { return p.entries }

// Entry returns the entry for key, or nil.
func (p *Panel) Entry(key string) *Entry { return p.index[key] }

func (p *Panel) lookup(key string) (*Entry, error) {
	e, ok := p.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return e, nil
}

// Set routes a programmatic edit through the entry's constraints.
func (p *Panel) Set(key string, v float64) error {
	e, err := p.lookup(key)
	if err != nil {
		return err
	}
	return e.SetValue(v)
}

func (p *Panel) Toggle(key string) error {
	e, err := p.lookup(key)
	if err != nil {
		return err
	}
	return e.SetChecked(!e.Checked())
}

func (p *Panel) Press(key string) error {
	e, err := p.lookup(key)
	if err != nil {
		return err
	}
	return e.Press()
}

// Selected returns the entry under the cursor, or nil for an empty panel.
func (p *Panel) Selected() *Entry {
	if len(p.entries) == 0 {
		return nil
	}
	return p.entries[p.cursor]
}

func (p *Panel) Cursor() int { return p.cursor }

func (p *Panel) Next() {
	if p.cursor < len(p.entries)-1 {
		p.cursor++
	}
}

func (p *Panel) Prev() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Nudge adjusts the selected entry. Display entries are skipped silently.
func (p *Panel) Nudge(dir int) error {
	e := p.Selected()
	if e == nil || !e.control.Editable() {
		return nil
	}
	return e.Nudge(dir)
}

// Activate toggles a bool entry or presses an action entry.
func (p *Panel) Activate() error {
	e := p.Selected()
	if e == nil {
		return nil
	}
	switch e.control.Kind {
	case Bool:
		return e.SetChecked(!e.Checked())
	case Action:
		return e.Press()
	}
	return nil
}
