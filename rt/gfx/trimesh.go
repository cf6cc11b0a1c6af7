package gfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
	UV     mgl32.Vec2
}

// TriMesh is indexed triangle geometry kept on the CPU for picking and
// uploaded by devices for drawing.
type TriMesh struct {
	Vertices []Vertex
	Indices  []uint32
	Diffuse  mgl32.Vec4
}

func (m *TriMesh) Triangles() int { return len(m.Indices) / 3 }

func (m *TriMesh) Material() mgl32.Vec4 { return m.Diffuse }

// Intersect returns the nearest front or back facing hit along the ray
// (Moller-Trumbore).
func (m *TriMesh) Intersect(origin, dir mgl32.Vec3) Hit {
	const eps = 1e-7
	best := Hit{Dist: float32(math.Inf(1))}

	for f := 0; f < m.Triangles(); f++ {
		v0 := m.Vertices[m.Indices[f*3+0]].Pos
		v1 := m.Vertices[m.Indices[f*3+1]].Pos
		v2 := m.Vertices[m.Indices[f*3+2]].Pos

		e1 := v1.Sub(v0)
		e2 := v2.Sub(v0)
		p := dir.Cross(e2)
		det := e1.Dot(p)
		if det > -eps && det < eps {
			continue
		}
		inv := 1 / det

		s := origin.Sub(v0)
		u := s.Dot(p) * inv
		if u < 0 || u > 1 {
			continue
		}
		q := s.Cross(e1)
		v := dir.Dot(q) * inv
		if v < 0 || u+v > 1 {
			continue
		}
		t := e2.Dot(q) * inv
		if t < 0 || t >= best.Dist {
			continue
		}
		best = Hit{Hit: true, Face: f, U: u, V: v, Dist: t}
	}
	if !best.Hit {
		return Hit{}
	}
	return best
}

// Append merges other into m, offset by translation.
func (m *TriMesh) Append(other *TriMesh, offset mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	for _, v := range other.Vertices {
		v.Pos = v.Pos.Add(offset)
		m.Vertices = append(m.Vertices, v)
	}
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}
