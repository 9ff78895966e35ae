package softbody

import "math"

type grabKind int

const (
	grabStart grabKind = iota
	grabMove
	grabEnd
)

type grabCmd struct {
	kind     grabKind
	pos, vel [3]float32
}

// StartGrab pins the particle closest to pos at the next Step.
func (s *Simulation) StartGrab(pos [3]float32) {
	s.pending = append(s.pending, grabCmd{kind: grabStart, pos: pos})
}

// MoveGrabbed moves the pinned particle at the next Step. Consecutive moves
// collapse into the latest one.
func (s *Simulation) MoveGrabbed(pos [3]float32) {
	if n := len(s.pending); n > 0 && s.pending[n-1].kind == grabMove {
		s.pending[n-1].pos = pos
		return
	}
	s.pending = append(s.pending, grabCmd{kind: grabMove, pos: pos})
}

// EndGrab releases the pinned particle with the given velocity at the next Step.
func (s *Simulation) EndGrab(pos, vel [3]float32) {
	s.pending = append(s.pending, grabCmd{kind: grabEnd, pos: pos, vel: vel})
}

// Grabbed reports the pinned particle, or -1.
func (s *Simulation) Grabbed() int { return s.grabID }

func (s *Simulation) applyGrabs() {
	for _, cmd := range s.pending {
		switch cmd.kind {
		case grabStart:
			s.releaseGrab()
			s.grabID = s.closest(cmd.pos)
			if s.grabID < 0 {
				continue
			}
			s.grabInvMass = s.invMass[s.grabID]
			s.invMass[s.grabID] = 0
			s.place(s.grabID, cmd.pos)
		case grabMove:
			if s.grabID >= 0 {
				s.place(s.grabID, cmd.pos)
			}
		case grabEnd:
			if s.grabID < 0 {
				continue
			}
			id := s.grabID
			s.place(id, cmd.pos)
			s.invMass[id] = s.grabInvMass
			copy(s.vel[3*id:3*id+3], cmd.vel[:])
			s.grabID = -1
		}
	}
	s.pending = s.pending[:0]
}

// releaseGrab drops any staged commands and unpins without a throw.
func (s *Simulation) releaseGrab() {
	s.pending = s.pending[:0]
	if s.grabID >= 0 {
		s.invMass[s.grabID] = s.grabInvMass
		s.grabID = -1
	}
}

func (s *Simulation) place(id int, pos [3]float32) {
	copy(s.pos[3*id:3*id+3], pos[:])
	copy(s.prevPos[3*id:3*id+3], pos[:])
}

func (s *Simulation) closest(pos [3]float32) int {
	best, bestDist := -1, float32(math.MaxFloat32)
	for i := 0; i < s.numParticles; i++ {
		var d [3]float32
		for k := 0; k < 3; k++ {
			d[k] = s.pos[3*i+k] - pos[k]
		}
		if dd := dot(d, d); dd < bestDist {
			best, bestDist = i, dd
		}
	}
	return best
}

func sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
