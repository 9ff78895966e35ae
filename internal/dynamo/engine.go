package dynamo

// Engine is the full capability set the frame layer may assume.
type Engine interface {
	// Step advances one macro-step, subdivided into the configured substeps.
	Step()
	// Dt reports the simulated time covered by one Step.
	Dt() float64
	// Reset restores the initial particle configuration in place.
	Reset()

	NumTets() int
	NumParticles() int

	// SurfaceTriIDs returns a freshly allocated slice of surface triangle
	// vertex indices. It may allocate engine scratch storage.
	SurfaceTriIDs() []int

	// ParticlePositions returns the engine-owned x,y,z storage of length
	// 3*NumParticles().
	ParticlePositions() []float32

	SetSolverSubsteps(n int)
	SetVolumeCompliance(c float64)
	SetEdgeCompliance(c float64)
}

// Grabbable is implemented by engines that support interactive dragging.
// Commands are staged and take effect at the beginning of the next Step.
type Grabbable interface {
	StartGrab(pos [3]float32)
	MoveGrabbed(pos [3]float32)
	EndGrab(pos, vel [3]float32)
}

// Squasher is implemented by engines that can flatten their body in place.
type Squasher interface {
	Squash()
}

// Interactive is an engine that can also be grabbed.
type Interactive interface {
	Engine
	Grabbable
}
