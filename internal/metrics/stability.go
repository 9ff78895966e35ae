package metrics

import (
	"math"

	"github.com/san-kum/softsim/internal/dynamo"
)

// DefaultStabilityBound is the coordinate magnitude treated as divergence.
const DefaultStabilityBound = 1e3

type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	diverged   bool
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(pos []float32, t float64) {
	s.samples++
	for _, p := range pos {
		v := float64(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.diverged = true
			s.violations++
			return
		}
		if math.Abs(v) > s.threshold {
			s.violations++
			return
		}
	}
}

// Value is the fraction of samples within bounds.
func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// Err returns dynamo.ErrUnstable once a non-finite coordinate was seen.
func (s *Stability) Err() error {
	if s.diverged {
		return dynamo.ErrUnstable
	}
	return nil
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.diverged = false
}
