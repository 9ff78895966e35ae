package metrics

// Metric accumulates a scalar over observed particle frames. pos is the
// x,y,z position storage at simulated time t.
type Metric interface {
	Name() string
	Observe(pos []float32, t float64)
	Value() float64
	Reset()
}

// Centroid returns the mean particle position.
func Centroid(pos []float32) [3]float64 {
	var c [3]float64
	n := len(pos) / 3
	if n == 0 {
		return c
	}
	for i := 0; i < n; i++ {
		c[0] += float64(pos[3*i])
		c[1] += float64(pos[3*i+1])
		c[2] += float64(pos[3*i+2])
	}
	for k := range c {
		c[k] /= float64(n)
	}
	return c
}

// Standard returns the metrics recorded for every run.
func Standard() []Metric {
	return []Metric{NewHeight(), NewMinHeight(), NewSpeed(), NewStability(DefaultStabilityBound)}
}
