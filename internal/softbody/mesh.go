package softbody

import "math"

// BoxSpec describes the procedural body.
type BoxSpec struct {
	Cells  [3]int     `yaml:"cells"`
	Size   [3]float32 `yaml:"size"`
	Origin [3]float32 `yaml:"origin"` // minimum corner
}

// DefaultBox is a 0.6 unit cube of 4x4x4 cells floating above the ground.
func DefaultBox() BoxSpec {
	return BoxSpec{
		Cells:  [3]int{4, 4, 4},
		Size:   [3]float32{0.6, 0.6, 0.6},
		Origin: [3]float32{-0.3, 0.4, -0.3},
	}
}

// NumParticles reports the particle count the box produces.
func (b BoxSpec) NumParticles() int {
	return (b.Cells[0] + 1) * (b.Cells[1] + 1) * (b.Cells[2] + 1)
}

// NumTets reports the tetrahedron count the box produces.
func (b BoxSpec) NumTets() int {
	return 6 * b.Cells[0] * b.Cells[1] * b.Cells[2]
}

// Each cube is split along its main diagonal, one tetrahedron per axis
// ordering. Neighboring cubes share the same face diagonals, so the result
// is conforming.
var axisOrders = [6][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

// Outward faces of a positively oriented tetrahedron.
var tetFaces = [4][3]int{
	{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3},
}

type tetMesh struct {
	verts   []float32
	tetIds  []int32
	edgeIds []int32
}

func buildBox(spec BoxSpec) tetMesh {
	nx, ny, nz := spec.Cells[0], spec.Cells[1], spec.Cells[2]
	index := func(i, j, k int) int32 {
		return int32((i*(ny+1)+j)*(nz+1) + k)
	}

	m := tetMesh{
		verts:  make([]float32, 0, 3*spec.NumParticles()),
		tetIds: make([]int32, 0, 4*spec.NumTets()),
	}

	for i := 0; i <= nx; i++ {
		for j := 0; j <= ny; j++ {
			for k := 0; k <= nz; k++ {
				m.verts = append(m.verts,
					spec.Origin[0]+spec.Size[0]*float32(i)/float32(nx),
					spec.Origin[1]+spec.Size[1]*float32(j)/float32(ny),
					spec.Origin[2]+spec.Size[2]*float32(k)/float32(nz),
				)
			}
		}
	}

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				for _, order := range axisOrders {
					corner := [3]int{i, j, k}
					var ids [4]int32
					ids[0] = index(corner[0], corner[1], corner[2])
					for n, axis := range order {
						corner[axis]++
						ids[n+1] = index(corner[0], corner[1], corner[2])
					}
					if tetVolume(m.verts, ids) < 0 {
						ids[2], ids[3] = ids[3], ids[2]
					}
					m.tetIds = append(m.tetIds, ids[:]...)
				}
			}
		}
	}

	m.edgeIds = collectEdges(m.tetIds)
	return m
}

func collectEdges(tetIds []int32) []int32 {
	seen := make(map[[2]int32]struct{})
	edges := make([]int32, 0)
	for t := 0; t < len(tetIds)/4; t++ {
		for a := 0; a < 4; a++ {
			for b := a + 1; b < 4; b++ {
				id0, id1 := tetIds[4*t+a], tetIds[4*t+b]
				if id0 > id1 {
					id0, id1 = id1, id0
				}
				key := [2]int32{id0, id1}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				edges = append(edges, id0, id1)
			}
		}
	}
	return edges
}

// surfaceTriangles returns the tetrahedron faces not shared with another
// tetrahedron, oriented outward.
func surfaceTriangles(tetIds []int32) []int {
	type face struct {
		ids   [3]int
		count int
	}
	faces := make([]face, 0, len(tetIds))
	lookup := make(map[[3]int]int)

	for t := 0; t < len(tetIds)/4; t++ {
		for _, f := range tetFaces {
			ids := [3]int{int(tetIds[4*t+f[0]]), int(tetIds[4*t+f[1]]), int(tetIds[4*t+f[2]])}
			key := sortedTriple(ids)
			if at, ok := lookup[key]; ok {
				faces[at].count++
				continue
			}
			lookup[key] = len(faces)
			faces = append(faces, face{ids: ids, count: 1})
		}
	}

	tris := make([]int, 0)
	for _, f := range faces {
		if f.count == 1 {
			tris = append(tris, f.ids[0], f.ids[1], f.ids[2])
		}
	}
	return tris
}

func sortedTriple(v [3]int) [3]int {
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
	if v[1] > v[2] {
		v[1], v[2] = v[2], v[1]
	}
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
	return v
}

func tetVolume(pos []float32, ids [4]int32) float32 {
	var a, b, c [3]float32
	for k := 0; k < 3; k++ {
		a[k] = pos[3*ids[1]+int32(k)] - pos[3*ids[0]+int32(k)]
		b[k] = pos[3*ids[2]+int32(k)] - pos[3*ids[0]+int32(k)]
		c[k] = pos[3*ids[3]+int32(k)] - pos[3*ids[0]+int32(k)]
	}
	return dot(cross(a, b), c) / 6
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func dist(pos []float32, i, j int32) float32 {
	dx := pos[3*i] - pos[3*j]
	dy := pos[3*i+1] - pos[3*j+1]
	dz := pos[3*i+2] - pos[3*j+2]
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}
