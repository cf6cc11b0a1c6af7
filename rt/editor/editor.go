// Package editor picks lights and objects under the mouse and drags them
// around the scene.
package editor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

const (
	DefaultSensitivity       = 0.025
	DefaultRotateSensitivity = 1.0

	noHit = float32(9999999)
)

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Selection names the picked entity. At most one of Object and Light is
// non-negative.
type Selection struct {
	Object int
	Light  int
	Dist   float32
}

func (s Selection) Empty() bool { return s.Object < 0 && s.Light < 0 }

var none = Selection{Object: -1, Light: -1, Dist: noHit}

// Manipulator turns mouse input into picks and scene description edits.
type Manipulator struct {
	Sensitivity       float32
	RotateSensitivity float32

	// Redraw is called after every edit.
	Redraw func()

	desc     *core.SceneDesc
	scene    *core.Scene
	lightCan gfx.Mesh

	width, height int

	sel       Selection
	primary   bool
	secondary bool
	lastX     float64
	lastY     float64
}

func NewManipulator(desc *core.SceneDesc) *Manipulator {
	return &Manipulator{
		Sensitivity:       DefaultSensitivity,
		RotateSensitivity: DefaultRotateSensitivity,
		desc:              desc,
		sel:               none,
	}
}

// Attach binds the device-generation state used for picking. Passing a nil
// scene detaches.
func (m *Manipulator) Attach(scene *core.Scene, lightCan gfx.Mesh) {
	m.scene = scene
	m.lightCan = lightCan
	if scene == nil {
		m.sel = none
		m.primary, m.secondary = false, false
	}
}

func (m *Manipulator) SetViewport(width, height int) {
	m.width, m.height = width, height
}

func (m *Manipulator) Selection() Selection { return m.sel }

// PickRay returns the view-space ray through pixel (x, y).
func (m *Manipulator) PickRay(x, y float64) Ray {
	return Ray{Direction: m.scene.Camera.PickDir(x, y, m.width, m.height)}
}

// Intersect finds the closest object or light can under (x, y). Lights are
// tested after objects and only win when strictly closer.
func (m *Manipulator) Intersect(x, y float64) Selection {
	if m.scene == nil {
		return none
	}
	ray := m.PickRay(x, y)
	view := m.scene.Camera.View
	best := none

	for i, o := range m.scene.Objects {
		if o.Mesh == nil {
			continue
		}
		if hit := intersect(o.Mesh, view.Mul4(o.World), ray); hit.Hit && hit.Dist < best.Dist {
			best = Selection{Object: i, Light: -1, Dist: hit.Dist}
		}
	}
	if m.lightCan != nil {
		for i, l := range m.scene.Lights {
			if hit := intersect(m.lightCan, view.Mul4(l.World), ray); hit.Hit && hit.Dist < best.Dist {
				best = Selection{Object: -1, Light: i, Dist: hit.Dist}
			}
		}
	}
	return best
}

// intersect casts a view-space ray against a mesh placed by worldView.
func intersect(mesh gfx.Mesh, worldView mgl32.Mat4, ray Ray) gfx.Hit {
	inv := worldView.Inv()
	origin := inv.Mul4x1(ray.Origin.Vec4(1)).Vec3()
	dir := inv.Mul4x1(ray.Direction.Vec4(0)).Vec3()
	return mesh.Intersect(origin, dir)
}

// ButtonDown picks under the cursor and publishes the selected light.
func (m *Manipulator) ButtonDown(b Button, x, y float64) {
	switch b {
	case ButtonPrimary:
		m.primary = true
	case ButtonSecondary:
		m.secondary = true
	}
	m.lastX, m.lastY = x, y
	m.sel = m.Intersect(x, y)
	m.desc.CurLight = m.sel.Light
}

// ButtonUp ends any drag and clears the selection.
func (m *Manipulator) ButtonUp(b Button) {
	switch b {
	case ButtonPrimary:
		m.primary = false
	case ButtonSecondary:
		m.secondary = false
	}
	m.sel = none
	m.desc.CurLight = -1
}

// MouseMove drags the selection. The primary button moves it across the
// floor relative to the camera heading, or vertically with modifier held.
// The secondary button turns it. Returns false when nothing is selected.
func (m *Manipulator) MouseMove(x, y float64, modifier bool) bool {
	if m.sel.Empty() || m.scene == nil {
		return false
	}
	dx := float32(x - m.lastX)
	dy := float32(y - m.lastY)
	dz := float32(0)
	m.lastX, m.lastY = x, y
	if modifier {
		dz = dy
		dx, dy = 0, 0
	}

	var pos *core.Position
	var orient *core.Orientation
	if m.primary {
		h := float64(mgl32.DegToRad(m.desc.ActiveCamera().Orientation.H))
		sin, cos := float32(math.Sin(h)), float32(math.Cos(h))
		s := m.Sensitivity
		pos = &core.Position{
			X: (-sin*dy + cos*dx) * s,
			Y: (-cos*dy - sin*dx) * s,
			Z: -dz * s,
		}
	}
	if m.secondary {
		r := m.RotateSensitivity
		orient = &core.Orientation{H: dx * r, P: -dy * r}
	}

	switch {
	case m.sel.Light >= 0 && m.sel.Light < len(m.scene.Lights):
		m.desc.MoveLight(m.sel.Light, pos, orient)
		m.scene.Lights[m.sel.Light].MarkMoved()
	case m.sel.Object >= 0 && m.sel.Object < len(m.scene.Objects):
		m.desc.MoveObject(m.sel.Object, pos, orient)
		m.scene.Objects[m.sel.Object].MarkMoved()
		// every shadow map may now be stale
		m.scene.MarkAllLightsMoved()
	}

	if m.Redraw != nil {
		m.Redraw()
	}
	return true
}
