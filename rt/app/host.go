// Package app hosts the control in a GLFW window with a WebGPU device.
package app

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/lightrig"
	"github.com/gekko3d/lightrig/rt/editor"
	"github.com/gekko3d/lightrig/rt/gpu"
)

// Host owns the window and the device and feeds their events to the
// control. 'I' toggles manipulation mode; outside it the mouse and WASD
// fly the camera.
type Host struct {
	Window  *glfw.Window
	Device  *gpu.Device
	Control *lightrig.Control
	Camera  *editor.CameraController
	Log     lightrig.Logger

	lastTime       float64
	mouseX, mouseY float64
	looking        bool
}

func NewHost(window *glfw.Window, ctl *lightrig.Control, log lightrig.Logger) *Host {
	return &Host{
		Window:  window,
		Control: ctl,
		Camera:  editor.NewCameraController(),
		Log:     log,
	}
}

// Init creates the device, brings the control to the ready state and
// installs the window callbacks.
func (h *Host) Init() error {
	w, ht := h.Window.GetFramebufferSize()
	dev, err := gpu.New(wgpuglfw.GetSurfaceDescriptor(h.Window), w, ht)
	if err != nil {
		return err
	}
	h.Device = dev

	if err := h.Control.OnDeviceCreate(dev, dev.SurfaceDesc()); err != nil {
		dev.Release()
		return err
	}
	if err := h.Control.OnDeviceReset(dev, dev.SurfaceDesc()); err != nil {
		h.Control.OnDeviceDestroy()
		dev.Release()
		return err
	}

	h.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		h.Resize(width, height)
	})
	h.Window.SetKeyCallback(h.onKey)
	h.Window.SetMouseButtonCallback(h.onMouseButton)
	h.Window.SetCursorPosCallback(h.onCursorPos)

	h.lastTime = glfw.GetTime()
	return nil
}

// Resize loses and resets the device objects around the surface change.
func (h *Host) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	h.Control.OnDeviceLost()
	if err := h.Device.Resize(width, height); err != nil {
		h.Log.Errorf("resize: %v", err)
		return
	}
	if err := h.Control.OnDeviceReset(h.Device, h.Device.SurfaceDesc()); err != nil {
		h.Log.Errorf("reset after resize: %v", err)
	}
}

// Run draws frames until the window closes.
func (h *Host) Run() {
	for !h.Window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := float32(now - h.lastTime)
		h.lastTime = now

		h.pollMovement()
		h.Camera.Update(h.Control.Desc(), dt)

		if err := h.Control.Draw(); errors.Is(err, lightrig.ErrDeviceLost) {
			h.Log.Warnf("device lost, resetting")
			w, ht := h.Window.GetFramebufferSize()
			h.Resize(w, ht)
		}
	}
}

// Close releases the control's objects and then the device.
func (h *Host) Close() {
	h.Control.OnDeviceLost()
	h.Control.OnDeviceDestroy()
	if h.Device != nil {
		h.Device.Release()
		h.Device = nil
	}
}

func (h *Host) pollMovement() {
	axis := func(pos, neg glfw.Key) float32 {
		v := float32(0)
		if h.Window.GetKey(pos) == glfw.Press {
			v++
		}
		if h.Window.GetKey(neg) == glfw.Press {
			v--
		}
		return v
	}
	if h.Control.Manipulating() {
		h.Camera.Move[0], h.Camera.Move[1], h.Camera.Move[2] = 0, 0, 0
		return
	}
	h.Camera.Move[0] = axis(glfw.KeyD, glfw.KeyA)
	h.Camera.Move[1] = axis(glfw.KeySpace, glfw.KeyLeftControl)
	h.Camera.Move[2] = axis(glfw.KeyW, glfw.KeyS)
}

func (h *Host) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyI:
		h.Control.ToggleManipulate()
		h.looking = false
		h.Log.Debugf("manipulation mode: %v", h.Control.Manipulating())
	}
}

func (h *Host) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	x, y := w.GetCursorPos()
	switch {
	case button == glfw.MouseButtonLeft && action == glfw.Press:
		h.Control.PrimaryDown(x, y)
	case button == glfw.MouseButtonLeft && action == glfw.Release:
		h.Control.PrimaryUp()
	case button == glfw.MouseButtonRight && action == glfw.Press:
		if !h.Control.SecondaryDown(x, y) {
			h.looking = true
		}
	case button == glfw.MouseButtonRight && action == glfw.Release:
		h.Control.SecondaryUp()
		h.looking = false
	}
	h.mouseX, h.mouseY = x, y
}

func (h *Host) onCursorPos(w *glfw.Window, x, y float64) {
	dx, dy := x-h.mouseX, y-h.mouseY
	h.mouseX, h.mouseY = x, y

	shift := w.GetKey(glfw.KeyLeftShift) == glfw.Press || w.GetKey(glfw.KeyRightShift) == glfw.Press
	if h.Control.MouseMove(x, y, shift) {
		return
	}
	if h.looking {
		h.Camera.Look[0] += float32(dx)
		h.Camera.Look[1] += float32(dy)
	}
}
