// Package bufview aliases an engine's particle position storage without
// copying it.
//
// Acquisition is ordered: engine topology queries may allocate engine-side
// scratch storage, so they must all finish before the position storage is
// aliased. The ordering is carried in the types: [Acquire] only accepts a
// [Topology], and a Topology only exists once [QueryTopology] has performed
// every allocating query. A Topology can be consumed once, and a [View] is
// never re-derived afterwards.
package bufview

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/san-kum/softsim/internal/dynamo"
)

var (
	// ErrTopologyConsumed indicates a second acquisition from the same topology.
	ErrTopologyConsumed = errors.New("bufview: topology already used to acquire a view")

	// ErrBufferLength indicates the engine storage is not 3 floats per particle.
	ErrBufferLength = errors.New("bufview: position storage length does not match particle count")

	// ErrEmptyBuffer indicates an engine without particles.
	ErrEmptyBuffer = errors.New("bufview: engine has no particles")
)

// Topology is the result of the engine's allocating queries. Its indices are
// owned by the caller.
type Topology struct {
	source       dynamo.Engine
	triangles    []int
	numParticles int
	numTets      int
	consumed     bool
}

// QueryTopology runs every engine query that may reallocate engine storage.
func QueryTopology(e dynamo.Engine) *Topology {
	return &Topology{
		source:       e,
		triangles:    e.SurfaceTriIDs(),
		numParticles: e.NumParticles(),
		numTets:      e.NumTets(),
	}
}

// Triangles returns the surface triangle vertex indices.
func (t *Topology) Triangles() []int { return t.triangles }

func (t *Topology) NumParticles() int { return t.numParticles }
func (t *Topology) NumTets() int      { return t.numTets }

// View is a fixed-length, non-owning alias over engine position storage.
type View struct {
	base   unsafe.Pointer
	floats []float32
	source dynamo.Engine
}

// Acquire aliases the engine's particle positions. It must be called once
// per engine, after QueryTopology.
func Acquire(t *Topology) (View, error) {
	if t.consumed {
		return View{}, ErrTopologyConsumed
	}
	t.consumed = true

	floats := t.source.ParticlePositions()
	if t.numParticles == 0 || len(floats) == 0 {
		return View{}, ErrEmptyBuffer
	}
	if len(floats) != 3*t.numParticles {
		return View{}, fmt.Errorf("%w: got %d floats for %d particles", ErrBufferLength, len(floats), t.numParticles)
	}

	return View{
		base:   unsafe.Pointer(unsafe.SliceData(floats)),
		floats: floats[:len(floats):len(floats)],
		source: t.source,
	}, nil
}

// Floats returns the aliased storage. Writes through it are visible to the
// engine; only the engine may write.
func (v View) Floats() []float32 { return v.floats }

// Base reports the address of the first coordinate.
func (v View) Base() uintptr { return uintptr(v.base) }

// Len reports the number of floats, 3 per particle.
func (v View) Len() int { return len(v.floats) }

// Particles reports Len()/3.
func (v View) Particles() int { return len(v.floats) / 3 }

// Source returns the engine the view aliases.
func (v View) Source() dynamo.Engine { return v.source }

// Validate checks that the engine still reports the aliased address and
// length. It never repairs the view.
func (v View) Validate() error {
	floats := v.source.ParticlePositions()
	got := unsafe.Pointer(unsafe.SliceData(floats))
	if got != v.base || len(floats) != len(v.floats) {
		return &dynamo.RelocationError{
			WantBase: uintptr(v.base),
			GotBase:  uintptr(got),
			WantLen:  len(v.floats),
			GotLen:   len(floats),
		}
	}
	return nil
}

// Position returns particle i.
func (v View) Position(i int) [3]float32 {
	return [3]float32{v.floats[3*i], v.floats[3*i+1], v.floats[3*i+2]}
}
