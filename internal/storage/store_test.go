package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/softsim/internal/demo"
	"github.com/san-kum/softsim/internal/frame"
	"github.com/san-kum/softsim/internal/grab"
	"github.com/san-kum/softsim/internal/params"
	"github.com/san-kum/softsim/internal/softbody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *Run {
	return &Run{
		Meta: RunMetadata{
			Name:      "test",
			Dt:        1.0 / 60,
			Particles: 2,
			Metrics:   map[string]float64{"mean_height": 0.75},
		},
		Frames: []FrameSample{
			{Frame: 1, Time: 1.0 / 60, Animate: true, Centroid: [3]float64{0, 1, 0}, Radius: 0.5},
			{Frame: 2, Time: 1.0 / 60, Animate: false, Centroid: [3]float64{0, 0.5, 0}, Radius: 0.5, MinHeight: 0.25},
		},
		Positions: []float32{0, 1, 0, 0, 0.5, 0},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleRun())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "test", meta.Name)
	assert.Equal(t, 2, meta.Particles)
	assert.InDelta(t, 0.75, meta.Metrics["mean_height"], 1e-9)
	assert.False(t, meta.Timestamp.IsZero())

	frames, err := st.LoadFrames(runID)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.True(t, frames[0].Animate)
	assert.False(t, frames[1].Animate)
	assert.InDelta(t, 0.25, frames[1].MinHeight, 1e-6)
	assert.Equal(t, []float64{1}, Heights(frames))

	pos, err := st.LoadPositions(runID)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 0, 0.5, 0}, pos)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(sampleRun())
	require.NoError(t, err)
	_, err = st.Save(sampleRun())
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleRun())
	require.NoError(t, err)

	for _, name := range []string{metadataFile, framesFile, positionsFile} {
		_, err := os.Stat(filepath.Join(dir, runID, name))
		assert.NoError(t, err, name)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrNoRun)
	_, err = st.LoadFrames("nope")
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestRecorderSamplesEveryFrame(t *testing.T) {
	rec := NewRecorder()
	sim := softbody.New(params.DefaultSubsteps, params.DefaultEdgeCompliance, params.DefaultVolumeCompliance)
	d := demo.New(sim, nil, nil, grab.HoldPause, demo.WithObservers(demo.Observers{Frame: []frame.Observer{rec}}))
	require.NoError(t, d.Init())
	rec.Attach(d.Surface())

	for i := 0; i < 10; i++ {
		d.Update()
	}
	require.NoError(t, d.Panel().Toggle(params.KeyAnimate))
	for i := 0; i < 5; i++ {
		d.Update()
	}
	require.NoError(t, d.Reset())

	frames := rec.Frames()
	require.Len(t, frames, 15)
	assert.True(t, frames[9].Animate)
	assert.False(t, frames[10].Animate)
	assert.Equal(t, frames[9].Time, frames[14].Time, "idle frames must not advance time")
	assert.InDelta(t, 10*sim.Dt(), frames[14].Time, 1e-9)
	assert.Len(t, Heights(frames), 10)
	assert.NoError(t, rec.Err())

	run := rec.Run(RunMetadata{Name: "default"})
	assert.Equal(t, 15, run.Meta.Frames)
	assert.Equal(t, 1.0, run.Meta.Metrics["resets"])
	assert.Len(t, run.Positions, 3*sim.NumParticles())

	st := New(t.TempDir())
	runID, err := st.Save(run)
	require.NoError(t, err)
	loaded, err := st.LoadFrames(runID)
	require.NoError(t, err)
	assert.Len(t, loaded, 15)
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(sampleRun())
	require.NoError(t, err)

	data, err := st.Export(runID)
	require.NoError(t, err)
	assert.Len(t, data.Frames, 2)

	var js, cs strings.Builder
	require.NoError(t, ExportJSON(&js, data))
	assert.Contains(t, js.String(), `"name": "test"`)

	require.NoError(t, ExportCSV(&cs, data))
	lines := strings.Split(strings.TrimSpace(cs.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "frame,time,animate"))
}
