package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer axes: Y up, Z forward, left-handed. Logical positions are
// swapped into this frame by Position.Render.
var (
	Up      = mgl32.Vec3{0, 1, 0}
	Forward = mgl32.Vec3{0, 0, 1}
)

const (
	LightNear = 0.01
	LightFar  = 100.0

	CameraNear = 0.1
	CameraFar  = 100.0
)

func rad(deg float32) float32 { return mgl32.DegToRad(deg) }

// HeadingPitch rotates by pitch about X, then heading about Y. Positive
// pitch looks up.
func HeadingPitch(o Orientation) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(rad(o.H)).Mul4(mgl32.HomogRotate3DX(-rad(o.P)))
}

// Direction is the forward axis rotated by heading and pitch.
func Direction(o Orientation) mgl32.Vec3 {
	return HeadingPitch(o).Mul4x1(Forward.Vec4(0)).Vec3()
}

// ObjectWorld rotates in place (roll, then pitch, then heading) and then
// translates to the render-space position.
func ObjectWorld(p Position, o Orientation) mgl32.Mat4 {
	pos := p.Render()
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(HeadingPitch(o)).
		Mul4(mgl32.HomogRotate3DZ(rad(o.R)))
}

// LookAtLH builds a left-handed view matrix.
func LookAtLH(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	z := center.Sub(eye).Normalize()
	x := up.Cross(z)
	if x.Len() < 1e-6 {
		// looking straight along up
		x = mgl32.Vec3{0, 0, 1}.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl32.Mat4FromRows(
		x.Vec4(-x.Dot(eye)),
		y.Vec4(-y.Dot(eye)),
		z.Vec4(-z.Dot(eye)),
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// PerspectiveLH builds a left-handed projection mapping depth to [0,1].
func PerspectiveLH(fovy, aspect, near, far float32) mgl32.Mat4 {
	yScale := float32(1 / math.Tan(float64(fovy)/2))
	xScale := yScale / aspect
	q := far / (far - near)
	return mgl32.Mat4FromRows(
		mgl32.Vec4{xScale, 0, 0, 0},
		mgl32.Vec4{0, yScale, 0, 0},
		mgl32.Vec4{0, 0, q, -near * q},
		mgl32.Vec4{0, 0, 1, 0},
	)
}
