package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
)

const (
	BeamSlices   = 14 // horizontal plus vertical
	BeamDistance = 10.0
	beamApexA    = 0x20
)

// BeamGeometry builds the light-space triangle fan approximating the
// visible cone: seven horizontal and seven vertical slices from the apex
// out to BeamDistance, fading to transparent at the rim.
func BeamGeometry(desc *LightDesc) []gfx.BeamVertex {
	r := float32(BeamDistance * math.Sin(float64(rad(desc.ConeAngle()))*0.5))
	c := desc.Color
	apex := gfx.BeamVertex{
		Color: [4]uint8{uint8(c.R), uint8(c.G), uint8(c.B), beamApexA},
		UV:    mgl32.Vec2{0.5, 0},
	}
	rim := func(x, y, u float32) gfx.BeamVertex {
		return gfx.BeamVertex{
			Pos:   mgl32.Vec3{x, y, BeamDistance},
			Color: [4]uint8{uint8(c.R), uint8(c.G), uint8(c.B), 0},
			UV:    mgl32.Vec2{u, 1},
		}
	}

	verts := make([]gfx.BeamVertex, 0, BeamSlices*3)
	half := BeamSlices / 2
	for k := 0; k < half; k++ {
		t := 1.8 * float32(k-BeamSlices/4) / float32(half-1)

		y := t * r
		x := sqrt32(r*r - y*y)
		verts = append(verts, apex, rim(x, y, 0), rim(-x, y, 1))

		x = t * r
		y = sqrt32(r*r - x*x)
		verts = append(verts, apex, rim(x, y, 0), rim(x, -y, 1))
	}
	return verts
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
