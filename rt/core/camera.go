package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds the per-frame view state derived from a CameraDesc.
type Camera struct {
	Eye    mgl32.Vec3
	Dir    mgl32.Vec3
	View   mgl32.Mat4
	Proj   mgl32.Mat4
	Aspect float32
}

// Update recomputes view and projection. It runs every tick, the camera
// is not fingerprinted.
func (c *Camera) Update(desc CameraDesc, aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.Aspect = aspect
	c.Eye = desc.Position.Render()
	c.Dir = Direction(desc.Orientation)
	c.View = LookAtLH(c.Eye, c.Eye.Add(c.Dir), Up)
	c.Proj = PerspectiveLH(rad(desc.FOV), aspect, CameraNear, CameraFar)
}

// EyeDirView is the eye direction in view space.
func (c *Camera) EyeDirView() mgl32.Vec4 {
	return c.View.Mul4x1(c.Dir.Vec4(0))
}

// EyePosView is the eye position in view space.
func (c *Camera) EyePosView() mgl32.Vec4 {
	return c.View.Mul4x1(c.Eye.Vec4(1))
}

// WorldView maps object space to view space.
func (c *Camera) WorldView(world mgl32.Mat4) mgl32.Mat4 {
	return c.View.Mul4(world)
}

// ViewToLightProj maps view-space positions into the light's clip space.
func (c *Camera) ViewToLightProj(l *LightState) mgl32.Mat4 {
	return l.Proj.Mul4(l.View).Mul4(c.View.Inv())
}

// PickDir returns the view-space direction through pixel (x, y) of a
// width by height viewport.
func (c *Camera) PickDir(x, y float64, width, height int) mgl32.Vec3 {
	if width <= 0 || height <= 0 {
		return Forward
	}
	return mgl32.Vec3{
		(float32(2*x/float64(width)) - 1) / c.Proj.At(0, 0),
		-(float32(2*y/float64(height)) - 1) / c.Proj.At(1, 1),
		1,
	}
}
