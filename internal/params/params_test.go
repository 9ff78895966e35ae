package params

import (
	"errors"
	"testing"
)

type setterCall struct {
	name  string
	value float64
}

type recordingEngine struct {
	calls []setterCall
}

func (e *recordingEngine) SetSolverSubsteps(n int) {
	e.calls = append(e.calls, setterCall{"substeps", float64(n)})
}

func (e *recordingEngine) SetVolumeCompliance(c float64) {
	e.calls = append(e.calls, setterCall{"volume", c})
}

func (e *recordingEngine) SetEdgeCompliance(c float64) {
	e.calls = append(e.calls, setterCall{"edge", c})
}

func newTestBinding() (*Binding, *recordingEngine, *ParameterSet) {
	eng := &recordingEngine{}
	set := DefaultSet(48)
	return NewBinding(eng, &set), eng, &set
}

func TestApplyForwardsExactValue(t *testing.T) {
	b, eng, set := newTestBinding()

	if err := b.Apply(KeyEdgeCompliance, 250.0); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(eng.calls) != 1 {
		t.Fatalf("expected 1 setter call, got %d", len(eng.calls))
	}
	if eng.calls[0] != (setterCall{"edge", 250.0}) {
		t.Errorf("unexpected call %+v", eng.calls[0])
	}
	if set.EdgeCompliance != 250.0 {
		t.Errorf("record not updated: %f", set.EdgeCompliance)
	}
}

func TestApplyOneSetterPerEdit(t *testing.T) {
	b, eng, set := newTestBinding()

	edits := []struct {
		key   string
		value float64
		want  setterCall
	}{
		{KeySubsteps, 5, setterCall{"substeps", 5}},
		{KeySubsteps, 5, setterCall{"substeps", 5}},
		{KeyVolumeCompliance, 35, setterCall{"volume", 35}},
		{KeyEdgeCompliance, 0, setterCall{"edge", 0}},
	}
	for i, e := range edits {
		if err := b.Apply(e.key, e.value); err != nil {
			t.Fatalf("edit %d: %v", i, err)
		}
		if len(eng.calls) != i+1 {
			t.Fatalf("edit %d: expected %d calls, got %d", i, i+1, len(eng.calls))
		}
		if eng.calls[i] != e.want {
			t.Errorf("edit %d: got %+v, want %+v", i, eng.calls[i], e.want)
		}
	}
	if set.Substeps != 5 || set.VolumeCompliance != 35 {
		t.Errorf("record = %+v", *set)
	}
}

func TestAnimateHasNoEngineSetter(t *testing.T) {
	b, eng, set := newTestBinding()

	if err := b.Apply(KeyAnimate, 0); err != nil {
		t.Fatal(err)
	}
	if set.Animate {
		t.Error("animate should be off")
	}
	if err := b.Apply(KeyAnimate, 1); err != nil {
		t.Fatal(err)
	}
	if !set.Animate {
		t.Error("animate should be on")
	}
	if len(eng.calls) != 0 {
		t.Errorf("animate reached the engine: %+v", eng.calls)
	}
}

func TestApplyErrors(t *testing.T) {
	b, eng, _ := newTestBinding()

	if err := b.Apply("gravity", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
	if err := b.Apply(KeyTets, 10); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := b.Press(KeySubsteps); !errors.Is(err, ErrNotAction) {
		t.Errorf("expected ErrNotAction, got %v", err)
	}
	if err := b.Press(KeyReset); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("reset without handler should be unknown, got %v", err)
	}
	if len(eng.calls) != 0 {
		t.Errorf("failed edits reached the engine: %+v", eng.calls)
	}
}

func TestControlsOrderAndRanges(t *testing.T) {
	eng := &recordingEngine{}
	set := DefaultSet(48)
	b := NewBinding(eng, &set,
		WithSquash(func() error { return nil }),
		WithReset(func() error { return nil }))

	want := []string{KeyTets, KeySubsteps, KeyVolumeCompliance, KeyEdgeCompliance, KeyAnimate, KeySquash, KeyReset}
	controls := b.Controls()
	if len(controls) != len(want) {
		t.Fatalf("expected %d controls, got %d", len(want), len(controls))
	}
	for i, k := range want {
		if controls[i].Key != k {
			t.Errorf("control %d: got %s, want %s", i, controls[i].Key, k)
		}
	}

	sub := controls[1]
	if sub.Min != 1 || sub.Max != 30 || sub.Step != 1 {
		t.Errorf("substeps range = [%v,%v] step %v", sub.Min, sub.Max, sub.Step)
	}
	for _, c := range controls[2:4] {
		if c.Min != 0 || c.Max != 500 || c.Step != 5 {
			t.Errorf("%s range = [%v,%v] step %v", c.Key, c.Min, c.Max, c.Step)
		}
	}
	if controls[2].Label != "volume compliance" || controls[3].Label != "edge compliance" {
		t.Errorf("unexpected labels %q %q", controls[2].Label, controls[3].Label)
	}
	if !controls[0].Disabled {
		t.Error("tets should be disabled")
	}
}

func TestConstrain(t *testing.T) {
	sub := Control{Kind: Int, Min: 1, Max: 30, Step: 1}
	comp := Control{Kind: Float, Min: 0, Max: 500, Step: 5}
	flag := Control{Kind: Bool, Max: 1, Step: 1}

	tests := []struct {
		name string
		c    Control
		in   float64
		want float64
	}{
		{"substeps in range", sub, 12, 12},
		{"substeps below", sub, 0, 1},
		{"substeps above", sub, 45, 30},
		{"substeps snaps", sub, 7.6, 8},
		{"compliance exact", comp, 250, 250},
		{"compliance snaps down", comp, 252, 250},
		{"compliance snaps up", comp, 253, 255},
		{"compliance below", comp, -10, 0},
		{"compliance above", comp, 900, 500},
		{"bool on", flag, 0.3, 1},
		{"bool off", flag, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Constrain(tt.in); got != tt.want {
				t.Errorf("Constrain(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestObserverSeesForwardedEdits(t *testing.T) {
	eng := &recordingEngine{}
	set := DefaultSet(6)
	var seen []string
	b := NewBinding(eng, &set, WithObserver(func(key string, _ float64) {
		seen = append(seen, key)
	}))

	_ = b.Apply(KeySubsteps, 3)
	_ = b.Apply("nope", 3)
	_ = b.Apply(KeyAnimate, 0)

	if len(seen) != 2 || seen[0] != KeySubsteps || seen[1] != KeyAnimate {
		t.Errorf("observer saw %v", seen)
	}
}
