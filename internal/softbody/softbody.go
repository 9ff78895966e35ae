package softbody

// DefaultDt is the simulated time covered by one Step.
const DefaultDt = 1.0 / 60.0

// SquashHeight is where Squash places every particle.
const SquashHeight float32 = 0.05

// Vertex orderings used for the volume gradient of each tetrahedron corner.
var volIdOrder = [4][3]int{{1, 3, 2}, {0, 2, 3}, {0, 3, 1}, {0, 1, 2}}

// Simulation is an XPBD soft body. It implements dynamo.Engine,
// dynamo.Grabbable and dynamo.Squasher.
type Simulation struct {
	numParticles int
	numTets      int

	pos     []float32
	prevPos []float32
	vel     []float32
	initPos []float32
	invMass []float32

	tetIds      []int32
	edgeIds     []int32
	restVol     []float32
	edgeLengths []float32

	substeps         int
	edgeCompliance   float64
	volumeCompliance float64
	gravity          [3]float32
	dt               float32

	grabID      int
	grabInvMass float32
	pending     []grabCmd

	steps       int
	substepsRun int
}

// New builds a simulation of the default box.
func New(substeps int, edgeCompliance, volumeCompliance float64) *Simulation {
	return NewWithBox(DefaultBox(), substeps, edgeCompliance, volumeCompliance)
}

// NewWithBox builds a simulation of the given box. All particle storage is
// allocated here and never replaced.
func NewWithBox(spec BoxSpec, substeps int, edgeCompliance, volumeCompliance float64) *Simulation {
	for i := range spec.Cells {
		if spec.Cells[i] < 1 {
			spec.Cells[i] = 1
		}
	}
	mesh := buildBox(spec)
	n := len(mesh.verts) / 3

	s := &Simulation{
		numParticles: n,
		numTets:      len(mesh.tetIds) / 4,
		pos:          make([]float32, 3*n),
		prevPos:      make([]float32, 3*n),
		vel:          make([]float32, 3*n),
		initPos:      mesh.verts,
		invMass:      make([]float32, n),
		tetIds:       mesh.tetIds,
		edgeIds:      mesh.edgeIds,
		restVol:      make([]float32, len(mesh.tetIds)/4),
		edgeLengths:  make([]float32, len(mesh.edgeIds)/2),
		gravity:      [3]float32{0, -10, 0},
		dt:           DefaultDt,
		grabID:       -1,
		pending:      make([]grabCmd, 0, 8),
	}
	s.SetSolverSubsteps(substeps)
	s.SetEdgeCompliance(edgeCompliance)
	s.SetVolumeCompliance(volumeCompliance)

	copy(s.pos, s.initPos)
	copy(s.prevPos, s.initPos)
	s.initPhysics()
	return s
}

func (s *Simulation) initPhysics() {
	for i := 0; i < s.numTets; i++ {
		ids := s.tet(i)
		vol := tetVolume(s.pos, ids)
		s.restVol[i] = vol
		var pInvMass float32
		if vol > 0 {
			pInvMass = 1 / (vol / 4)
		}
		for _, id := range ids {
			s.invMass[id] += pInvMass
		}
	}
	for i := range s.edgeLengths {
		s.edgeLengths[i] = dist(s.pos, s.edgeIds[2*i], s.edgeIds[2*i+1])
	}
}

func (s *Simulation) tet(i int) [4]int32 {
	return [4]int32{s.tetIds[4*i], s.tetIds[4*i+1], s.tetIds[4*i+2], s.tetIds[4*i+3]}
}

// Step advances DefaultDt seconds, applying staged grab commands first.
func (s *Simulation) Step() {
	s.applyGrabs()
	sdt := s.dt / float32(s.substeps)
	for i := 0; i < s.substeps; i++ {
		s.preSolve(sdt)
		s.solve(sdt)
		s.postSolve(sdt)
		s.substepsRun++
	}
	s.steps++
}

func (s *Simulation) Dt() float64 { return float64(s.dt) }

// Reset rewrites the initial configuration into the existing storage.
func (s *Simulation) Reset() {
	s.releaseGrab()
	copy(s.pos, s.initPos)
	copy(s.prevPos, s.initPos)
	clear(s.vel)
}

// Squash flattens every particle onto SquashHeight in place.
func (s *Simulation) Squash() {
	s.releaseGrab()
	for i := 0; i < s.numParticles; i++ {
		s.pos[3*i+1] = SquashHeight
	}
	copy(s.prevPos, s.pos)
	clear(s.vel)
}

func (s *Simulation) NumTets() int      { return s.numTets }
func (s *Simulation) NumParticles() int { return s.numParticles }

// SurfaceTriIDs derives the boundary triangles on every call.
func (s *Simulation) SurfaceTriIDs() []int {
	return surfaceTriangles(s.tetIds)
}

func (s *Simulation) ParticlePositions() []float32 { return s.pos }

func (s *Simulation) SetSolverSubsteps(n int) {
	if n < 1 {
		n = 1
	}
	s.substeps = n
}

func (s *Simulation) SetEdgeCompliance(c float64)   { s.edgeCompliance = c }
func (s *Simulation) SetVolumeCompliance(c float64) { s.volumeCompliance = c }

// Steps reports how many macro-steps have run.
func (s *Simulation) Steps() int { return s.steps }

func (s *Simulation) preSolve(dt float32) {
	for i := 0; i < s.numParticles; i++ {
		if s.invMass[i] == 0 {
			continue
		}
		for k := 0; k < 3; k++ {
			s.vel[3*i+k] += s.gravity[k] * dt
			s.prevPos[3*i+k] = s.pos[3*i+k]
			s.pos[3*i+k] += s.vel[3*i+k] * dt
		}
		if s.pos[3*i+1] < 0 {
			copy(s.pos[3*i:3*i+3], s.prevPos[3*i:3*i+3])
			s.pos[3*i+1] = 0
		}
	}
}

func (s *Simulation) solve(dt float32) {
	s.solveEdges(float32(s.edgeCompliance), dt)
	s.solveVolumes(float32(s.volumeCompliance), dt)
}

func (s *Simulation) postSolve(dt float32) {
	for i := 0; i < s.numParticles; i++ {
		if s.invMass[i] == 0 {
			continue
		}
		// constraints may push particles through the ground
		if s.pos[3*i+1] < 0 {
			s.pos[3*i+1] = 0
		}
		for k := 0; k < 3; k++ {
			s.vel[3*i+k] = (s.pos[3*i+k] - s.prevPos[3*i+k]) / dt
		}
	}
}

func (s *Simulation) solveEdges(compliance, dt float32) {
	alpha := compliance / dt / dt
	for i := range s.edgeLengths {
		id0, id1 := s.edgeIds[2*i], s.edgeIds[2*i+1]
		w0, w1 := s.invMass[id0], s.invMass[id1]
		w := w0 + w1
		if w == 0 {
			continue
		}
		var grad [3]float32
		for k := 0; k < 3; k++ {
			grad[k] = s.pos[3*id0+int32(k)] - s.pos[3*id1+int32(k)]
		}
		l := sqrt(dot(grad, grad))
		if l == 0 {
			continue
		}
		c := l - s.edgeLengths[i]
		scale := -c / (w + alpha) / l
		for k := 0; k < 3; k++ {
			s.pos[3*id0+int32(k)] += grad[k] * scale * w0
			s.pos[3*id1+int32(k)] -= grad[k] * scale * w1
		}
	}
}

func (s *Simulation) solveVolumes(compliance, dt float32) {
	alpha := compliance / dt / dt
	var grads [4][3]float32
	for i := 0; i < s.numTets; i++ {
		ids := s.tet(i)
		var w float32
		for j := 0; j < 4; j++ {
			o := volIdOrder[j]
			id0, id1, id2 := ids[o[0]], ids[o[1]], ids[o[2]]
			var a, b [3]float32
			for k := 0; k < 3; k++ {
				a[k] = s.pos[3*id1+int32(k)] - s.pos[3*id0+int32(k)]
				b[k] = s.pos[3*id2+int32(k)] - s.pos[3*id0+int32(k)]
			}
			g := cross(a, b)
			for k := range g {
				g[k] /= 6
			}
			grads[j] = g
			w += s.invMass[ids[j]] * dot(g, g)
		}
		if w == 0 {
			continue
		}
		c := tetVolume(s.pos, ids) - s.restVol[i]
		scale := -c / (w + alpha)
		for j := 0; j < 4; j++ {
			id := ids[j]
			for k := 0; k < 3; k++ {
				s.pos[3*id+int32(k)] += grads[j][k] * scale * s.invMass[id]
			}
		}
	}
}
