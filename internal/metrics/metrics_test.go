package metrics

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/san-kum/softsim/internal/dynamo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroid(t *testing.T) {
	c := Centroid([]float32{0, 0, 0, 2, 4, -2})
	assert.Equal(t, [3]float64{1, 2, -1}, c)
	assert.Equal(t, [3]float64{}, Centroid(nil))
}

func TestHeightAndMinHeight(t *testing.T) {
	h, m := NewHeight(), NewMinHeight()
	frames := [][]float32{
		{0, 1, 0, 0, 3, 0},
		{0, 0.5, 0, 0, 1.5, 0},
	}
	for i, f := range frames {
		h.Observe(f, float64(i))
		m.Observe(f, float64(i))
	}
	assert.Equal(t, 1.0, h.Value())
	assert.Equal(t, 1.5, h.Mean())
	assert.Equal(t, 0.5, m.Value())

	h.Reset()
	m.Reset()
	assert.Zero(t, h.Value())
	assert.Zero(t, m.Value())
}

func TestSpeed(t *testing.T) {
	s := NewSpeed()
	s.Observe([]float32{0, 0, 0, 1, 1, 1}, 0)
	assert.Zero(t, s.Value(), "first sample has no speed")

	s.Observe([]float32{0, 0.5, 0, 1, 1, 1}, 0.5)
	assert.InDelta(t, 0.5, s.Value(), 1e-9)
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	s.Observe([]float32{1, 2, 3}, 0)
	s.Observe([]float32{1, 20, 3}, 1)
	assert.Equal(t, 0.5, s.Value())
	assert.NoError(t, s.Err())

	s.Observe([]float32{float32(math.NaN()), 0, 0}, 2)
	assert.ErrorIs(t, s.Err(), dynamo.ErrUnstable)

	s.Reset()
	assert.Equal(t, 1.0, s.Value())
	assert.NoError(t, s.Err())
}

func TestStandardNames(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Standard() {
		names[m.Name()] = true
	}
	for _, want := range []string{"centroid_height", "min_height", "mean_speed", "stability"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.SetTopology(125, 384)

	c.ObserveFrame(frame.Running, time.Millisecond)
	c.ObserveFrame(frame.Running, 2*time.Millisecond)
	c.ObserveFrame(frame.Idle, 0)
	c.ObserveRestore(frame.EventSquash)
	c.ObserveEdit("edgeCompliance", 250)
	c.ObserveGrab(grab.PhaseStart)
	c.ObserveGrab(grab.PhaseEnd)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.frames.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.frames.WithLabelValues("idle")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.steps))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.restores.WithLabelValues("squash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.edits.WithLabelValues("edgeCompliance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.grabs.WithLabelValues("end")))
	assert.Equal(t, 125.0, testutil.ToFloat64(c.particles))
	assert.Equal(t, 384.0, testutil.ToFloat64(c.tets))
	assert.Equal(t, 1, testutil.CollectAndCount(c.stepDuration))
}

func TestServerExposesRegistry(t *testing.T) {
	c := NewCollector()
	c.ObserveEdit("substeps", 3)

	srv := NewServer(":0", c.Registry())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `softsim_parameter_edits_total{key="substeps"} 1`))
}
