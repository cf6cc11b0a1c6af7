package gfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Built-in mesh names understood by every device.
const (
	MeshBox      = "box"
	MeshStage    = "stage"
	MeshLightCan = "lightcan"
)

// BuiltinMesh returns fresh geometry for a built-in mesh name.
func BuiltinMesh(name string) (*TriMesh, bool) {
	switch name {
	case MeshBox:
		m := NewBox(mgl32.Vec3{0.5, 0.5, 0.5})
		m.Diffuse = mgl32.Vec4{0.8, 0.8, 0.8, 1}
		return m, true
	case MeshStage:
		return NewStage(), true
	case MeshLightCan:
		return NewLightCan(0.15, 0.4, 12), true
	}
	return nil, false
}

// NewBox builds an axis-aligned box centred on the origin.
func NewBox(half mgl32.Vec3) *TriMesh {
	m := &TriMesh{Diffuse: mgl32.Vec4{1, 1, 1, 1}}
	faces := []struct {
		n, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.n.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			p = mgl32.Vec3{p.X() * half.X(), p.Y() * half.Y(), p.Z() * half.Z()}
			m.Vertices = append(m.Vertices, Vertex{
				Pos:    p,
				Normal: f.n,
				UV:     mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// NewStage is a floor with a back wall. The floor top sits at height zero.
func NewStage() *TriMesh {
	m := &TriMesh{Diffuse: mgl32.Vec4{0.6, 0.6, 0.6, 1}}
	m.Append(NewBox(mgl32.Vec3{10, 0.05, 10}), mgl32.Vec3{0, -0.05, 0})
	m.Append(NewBox(mgl32.Vec3{10, 4, 0.05}), mgl32.Vec3{0, 4, 10})
	return m
}

// NewLightCan is a capped cylinder pointing down +Z, the light's forward.
func NewLightCan(radius, length float32, segments int) *TriMesh {
	m := &TriMesh{Diffuse: mgl32.Vec4{1, 1, 1, 1}}
	back := -length / 2
	front := length / 2

	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x := float32(math.Cos(a))
		y := float32(math.Sin(a))
		n := mgl32.Vec3{x, y, 0}
		u := float32(i) / float32(segments)
		m.Vertices = append(m.Vertices,
			Vertex{Pos: mgl32.Vec3{x * radius, y * radius, back}, Normal: n, UV: mgl32.Vec2{u, 0}},
			Vertex{Pos: mgl32.Vec3{x * radius, y * radius, front}, Normal: n, UV: mgl32.Vec2{u, 1}},
		)
	}
	for i := 0; i < segments; i++ {
		b := uint32(i * 2)
		m.Indices = append(m.Indices, b, b+1, b+3, b, b+3, b+2)
	}

	for _, z := range []float32{back, front} {
		n := mgl32.Vec3{0, 0, 1}
		if z < 0 {
			n = mgl32.Vec3{0, 0, -1}
		}
		center := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, Vertex{Pos: mgl32.Vec3{0, 0, z}, Normal: n, UV: mgl32.Vec2{0.5, 0.5}})
		for i := 0; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			x := float32(math.Cos(a))
			y := float32(math.Sin(a))
			m.Vertices = append(m.Vertices, Vertex{
				Pos:    mgl32.Vec3{x * radius, y * radius, z},
				Normal: n,
				UV:     mgl32.Vec2{(x + 1) / 2, (y + 1) / 2},
			})
		}
		for i := uint32(0); i < uint32(segments); i++ {
			m.Indices = append(m.Indices, center, center+1+i, center+2+i)
		}
	}
	return m
}
