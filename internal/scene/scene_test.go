package scene

import (
	"math"
	"testing"
)

func TestVec3(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}

	if c := a.Cross(b); c != (Vec3{0, 0, 1}) {
		t.Errorf("cross = %v, want (0,0,1)", c)
	}
	if n := (Vec3{3, 4, 0}).Normalize(); math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("normalize length = %f", n.Length())
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("normalize zero = %v", z)
	}
	if got := FromArray(Vec3{1, 2, 3}.Array()); got != (Vec3{1, 2, 3}) {
		t.Errorf("array roundtrip = %v", got)
	}
}

func TestDefaultConfigEye(t *testing.T) {
	cfg := DefaultConfig()
	if eye := cfg.Eye(); eye != (Vec3{0, 1, 2}) {
		t.Errorf("eye = %v, want (0,1,2)", eye)
	}
	if cfg.LookAt != (Vec3{}) {
		t.Errorf("look at = %v, want origin", cfg.LookAt)
	}
}
