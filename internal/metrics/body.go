package metrics

import "math"

type Height struct {
	name    string
	height  float64
	sum     float64
	samples int
}

func NewHeight() *Height {
	return &Height{name: "centroid_height"}
}

func (h *Height) Name() string { return h.name }

func (h *Height) Observe(pos []float32, t float64) {
	h.height = Centroid(pos)[1]
	h.sum += h.height
	h.samples++
}

// Value is the latest centroid height.
func (h *Height) Value() float64 { return h.height }

func (h *Height) Mean() float64 {
	if h.samples == 0 {
		return 0
	}
	return h.sum / float64(h.samples)
}

func (h *Height) Reset() {
	h.height = 0
	h.sum = 0
	h.samples = 0
}

type MinHeight struct {
	name    string
	min     float64
	samples int
}

func NewMinHeight() *MinHeight {
	return &MinHeight{name: "min_height", min: math.Inf(1)}
}

func (m *MinHeight) Name() string { return m.name }

func (m *MinHeight) Observe(pos []float32, t float64) {
	for i := 1; i < len(pos); i += 3 {
		m.min = math.Min(m.min, float64(pos[i]))
	}
	m.samples++
}

func (m *MinHeight) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinHeight) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}

// Speed is the mean particle speed between consecutive observations.
type Speed struct {
	name  string
	prev  []float32
	prevT float64
	speed float64
}

func NewSpeed() *Speed {
	return &Speed{name: "mean_speed"}
}

func (s *Speed) Name() string { return s.name }

func (s *Speed) Observe(pos []float32, t float64) {
	if len(s.prev) == len(pos) && t > s.prevT {
		dt := t - s.prevT
		n := len(pos) / 3
		total := 0.0
		for i := 0; i < n; i++ {
			dx := float64(pos[3*i] - s.prev[3*i])
			dy := float64(pos[3*i+1] - s.prev[3*i+1])
			dz := float64(pos[3*i+2] - s.prev[3*i+2])
			total += math.Sqrt(dx*dx+dy*dy+dz*dz) / dt
		}
		if n > 0 {
			s.speed = total / float64(n)
		}
	}
	s.prev = append(s.prev[:0], pos...)
	s.prevT = t
}

func (s *Speed) Value() float64 { return s.speed }

func (s *Speed) Reset() {
	s.prev = s.prev[:0]
	s.prevT = 0
	s.speed = 0
}
