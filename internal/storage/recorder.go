package storage

import (
	"time"

	"github.com/san-kum/softsim/internal/bufview"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/metrics"
	"github.com/san-kum/softsim/internal/scene"
)

// Source is what a Recorder samples each frame. *mesh.Surface satisfies it.
type Source interface {
	View() bufview.View
	Bounds() scene.Sphere
}

// Recorder is a frame observer that samples body metrics every frame.
// Frames observed before Attach are counted but not sampled.
type Recorder struct {
	src    Source
	frames []FrameSample
	frame  int
	time   float64

	height    *metrics.Height
	minHeight *metrics.MinHeight
	speed     *metrics.Speed
	stability *metrics.Stability

	resets, squashes int
	stepTime         time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		height:    metrics.NewHeight(),
		minHeight: metrics.NewMinHeight(),
		speed:     metrics.NewSpeed(),
		stability: metrics.NewStability(metrics.DefaultStabilityBound),
	}
}

func (r *Recorder) Attach(src Source) {
	r.src = src
}

func (r *Recorder) ObserveFrame(state frame.State, step time.Duration) {
	r.frame++
	if r.src == nil {
		return
	}
	view := r.src.View()
	if state == frame.Running {
		r.time += view.Source().Dt()
		r.stepTime += step
	}
	pos := view.Floats()
	r.height.Observe(pos, r.time)
	r.minHeight.Observe(pos, r.time)
	r.speed.Observe(pos, r.time)
	r.stability.Observe(pos, r.time)

	r.frames = append(r.frames, FrameSample{
		Frame:     r.frame,
		Time:      r.time,
		Animate:   state == frame.Running,
		Centroid:  metrics.Centroid(pos),
		Radius:    r.src.Bounds().Radius,
		Speed:     r.speed.Value(),
		MinHeight: r.minHeight.Value(),
	})
}

// ObserveRestore drops the speed history, since positions jump.
func (r *Recorder) ObserveRestore(e frame.Event) {
	switch e {
	case frame.EventReset:
		r.resets++
	case frame.EventSquash:
		r.squashes++
	}
	r.speed.Reset()
}

func (r *Recorder) Frames() []FrameSample { return r.frames }

// Err reports a blown-up simulation.
func (r *Recorder) Err() error { return r.stability.Err() }

// Run packages the recording. meta supplies the identity and solver fields;
// counters, metrics and the final positions are filled in here.
func (r *Recorder) Run(meta RunMetadata) *Run {
	run := &Run{Meta: meta, Frames: r.frames}
	run.Meta.Frames = r.frame
	run.Meta.Duration = r.time
	if meta.Metrics == nil {
		run.Meta.Metrics = make(map[string]float64)
	}
	run.Meta.Metrics["mean_height"] = r.height.Mean()
	run.Meta.Metrics["final_height"] = r.height.Value()
	run.Meta.Metrics["min_height"] = r.minHeight.Value()
	run.Meta.Metrics["final_speed"] = r.speed.Value()
	run.Meta.Metrics["stability"] = r.stability.Value()
	run.Meta.Metrics["resets"] = float64(r.resets)
	run.Meta.Metrics["squashes"] = float64(r.squashes)
	run.Meta.Metrics["step_seconds"] = r.stepTime.Seconds()
	if r.src != nil {
		run.Positions = append([]float32(nil), r.src.View().Floats()...)
	}
	return run
}
