package editor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
)

const (
	DefaultCameraSpeed       = 5.0
	DefaultCameraSensitivity = 0.1
	maxCameraPitch           = 89.0
)

// CameraController flies the active camera from keyboard and mouse input
// while the control is not manipulating the scene.
type CameraController struct {
	Speed       float32
	Sensitivity float32
	// Move is x right, y up, z forward, each in [-1, 1].
	Move mgl32.Vec3
	// Look is the mouse delta since the last update.
	Look mgl32.Vec2
}

func NewCameraController() *CameraController {
	return &CameraController{Speed: DefaultCameraSpeed, Sensitivity: DefaultCameraSensitivity}
}

// Update applies the accumulated input to the current camera and clears
// the look delta. Pinned axes are left alone. It reports whether anything
// was applied.
func (c *CameraController) Update(desc *core.SceneDesc, dt float32) bool {
	if dt <= 0 || desc.CurCamera < 0 || desc.CurCamera >= len(desc.Cameras) {
		c.Look = mgl32.Vec2{}
		return false
	}
	cam := desc.Cameras[desc.CurCamera]
	moved := false

	if c.Look != (mgl32.Vec2{}) {
		dh := c.Look[0] * c.Sensitivity
		pitch := mgl32.Clamp(cam.Orientation.P-c.Look[1]*c.Sensitivity, -maxCameraPitch, maxCameraPitch)
		desc.MoveCamera(nil, &core.Orientation{H: dh, P: pitch - cam.Orientation.P})
		c.Look = mgl32.Vec2{}
		cam = desc.Cameras[desc.CurCamera]
		moved = true
	}

	if c.Move.Len() > 0 {
		h := float64(mgl32.DegToRad(cam.Orientation.H))
		p := float64(mgl32.DegToRad(cam.Orientation.P))
		forward := mgl32.Vec3{
			float32(math.Sin(h) * math.Cos(p)),
			float32(math.Cos(h) * math.Cos(p)),
			float32(math.Sin(p)),
		}
		right := mgl32.Vec3{float32(math.Cos(h)), float32(-math.Sin(h)), 0}
		up := mgl32.Vec3{0, 0, 1}

		dir := right.Mul(c.Move[0]).Add(up.Mul(c.Move[1])).Add(forward.Mul(c.Move[2]))
		if dir.Len() > 0 {
			step := dir.Normalize().Mul(c.Speed * dt)
			desc.MoveCamera(&core.Position{X: step[0], Y: step[1], Z: step[2]}, nil)
			moved = true
		}
	}
	return moved
}
