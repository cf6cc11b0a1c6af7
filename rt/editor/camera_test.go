package editor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/lightrig/rt/core"
)

func cameraScene() *core.SceneDesc {
	desc := core.NewSceneDesc()
	desc.Cameras = []core.CameraDesc{core.DefaultCamera()}
	desc.Cameras[0].Position = core.Position{}
	desc.CurCamera = 0
	return desc
}

func TestCameraForwardFollowsHeading(t *testing.T) {
	desc := cameraScene()
	desc.Cameras[0].Orientation.H = 90
	c := NewCameraController()
	c.Move = mgl32.Vec3{0, 0, 1}

	assert.True(t, c.Update(desc, 0.5))
	pos := desc.Cameras[0].Position
	assert.InDelta(t, 2.5, pos.X, 1e-5)
	assert.InDelta(t, 0, pos.Y, 1e-5)
	assert.InDelta(t, 0, pos.Z, 1e-5)

	// forward agrees with the renderer's view direction
	dir := core.Direction(desc.Cameras[0].Orientation)
	assert.InDelta(t, 1, dir.X(), 1e-5)
}

func TestCameraStrafeAndRise(t *testing.T) {
	desc := cameraScene()
	c := NewCameraController()
	c.Move = mgl32.Vec3{1, 0, 0}
	c.Update(desc, 1)
	assert.InDelta(t, 5, desc.Cameras[0].Position.X, 1e-5)

	c.Move = mgl32.Vec3{0, 1, 0}
	c.Update(desc, 1)
	assert.InDelta(t, 5, desc.Cameras[0].Position.Z, 1e-5)
}

func TestCameraLookClampsPitch(t *testing.T) {
	desc := cameraScene()
	c := NewCameraController()
	c.Look = mgl32.Vec2{10, -2000}

	assert.True(t, c.Update(desc, 0.016))
	o := desc.Cameras[0].Orientation
	assert.InDelta(t, 1, o.H, 1e-5)
	assert.InDelta(t, 89, o.P, 1e-5)
	assert.Equal(t, mgl32.Vec2{}, c.Look, "look delta is consumed")
	assert.False(t, c.Update(desc, 0.016))
}

func TestCameraPinsAndNoCamera(t *testing.T) {
	desc := cameraScene()
	desc.Cameras[0].PinMask = core.PinXYZ
	c := NewCameraController()
	c.Move = mgl32.Vec3{0, 0, 1}
	c.Update(desc, 1)
	assert.Equal(t, core.Position{}, desc.Cameras[0].Position)

	desc.CurCamera = -1
	c.Look = mgl32.Vec2{5, 5}
	assert.False(t, c.Update(desc, 1))
	assert.Equal(t, mgl32.Vec2{}, c.Look)
}
