package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
)

// Collector exports frame loop activity on its own registry.
type Collector struct {
	registry     *prometheus.Registry
	frames       *prometheus.CounterVec
	steps        prometheus.Counter
	restores     *prometheus.CounterVec
	edits        *prometheus.CounterVec
	grabs        *prometheus.CounterVec
	stepDuration prometheus.Histogram
	particles    prometheus.Gauge
	tets         prometheus.Gauge
	height       prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softsim_frames_total",
				Help: "Frame ticks by controller state",
			},
			[]string{"state"},
		),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "softsim_engine_steps_total",
			Help: "Engine macro-steps issued by the frame controller",
		}),
		restores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softsim_restores_total",
				Help: "In-place particle restores by kind",
			},
			[]string{"event"},
		),
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softsim_parameter_edits_total",
				Help: "Forwarded control panel edits by parameter",
			},
			[]string{"key"},
		),
		grabs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softsim_grab_events_total",
				Help: "Grab events by phase",
			},
			[]string{"phase"},
		),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "softsim_step_duration_seconds",
			Help:    "Wall time spent in one engine step",
			Buckets: prometheus.ExponentialBuckets(1e-5, 2, 16),
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softsim_particles",
			Help: "Particles in the simulated body",
		}),
		tets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softsim_tets",
			Help: "Tetrahedra in the simulated body",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softsim_centroid_height",
			Help: "Centroid height after the latest refresh",
		}),
	}
	c.registry.MustRegister(c.frames, c.steps, c.restores, c.edits, c.grabs,
		c.stepDuration, c.particles, c.tets, c.height)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// SetTopology records the fixed body sizes.
func (c *Collector) SetTopology(particles, tets int) {
	c.particles.Set(float64(particles))
	c.tets.Set(float64(tets))
}

func (c *Collector) ObserveFrame(state frame.State, step time.Duration) {
	c.frames.WithLabelValues(state.String()).Inc()
	if state == frame.Running {
		c.steps.Inc()
		c.stepDuration.Observe(step.Seconds())
	}
}

func (c *Collector) ObserveRestore(e frame.Event) {
	c.restores.WithLabelValues(e.String()).Inc()
}

// ObserveEdit has the params.Observer signature.
func (c *Collector) ObserveEdit(key string, _ float64) {
	c.edits.WithLabelValues(key).Inc()
}

// ObserveGrab has the grab.Observer signature.
func (c *Collector) ObserveGrab(p grab.Phase) {
	c.grabs.WithLabelValues(string(p)).Inc()
}

// ObserveHeight publishes the latest centroid height.
func (c *Collector) ObserveHeight(h float64) {
	c.height.Set(h)
}
