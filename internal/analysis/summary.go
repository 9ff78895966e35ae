package analysis

import "math"

// Summary describes one recorded series.
type Summary struct {
	Samples    int
	Mean       float64
	Min        float64
	Max        float64
	Std        float64
	DominantHz float64
	Amplitude  float64
	// SettleTime is the first time after which the series stays within
	// tolerance of its final value, or -1 when it never settles.
	SettleTime float64
}

// DefaultSettleTolerance is in scene units.
const DefaultSettleTolerance = 0.005

func Summarize(data []float64, dt, tol float64) Summary {
	s := Summary{Samples: len(data), SettleTime: -1}
	if len(data) == 0 {
		return s
	}
	s.Min, s.Max = data[0], data[0]
	for _, v := range data {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(data))
	for _, v := range data {
		s.Std += (v - s.Mean) * (v - s.Mean)
	}
	s.Std = math.Sqrt(s.Std / float64(len(data)))
	s.DominantHz, s.Amplitude = DominantFrequency(data, dt)
	s.SettleTime = SettleTime(data, dt, tol)
	return s
}

func SettleTime(data []float64, dt, tol float64) float64 {
	if len(data) == 0 {
		return -1
	}
	final := data[len(data)-1]
	i := len(data) - 1
	for i > 0 && math.Abs(data[i-1]-final) <= tol {
		i--
	}
	if i == len(data)-1 && len(data) > 1 {
		return -1
	}
	return float64(i) * dt
}
