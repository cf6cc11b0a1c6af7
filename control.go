package lightrig

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/editor"
	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/render"
)

type DeviceState int

const (
	// StateUninitialized has no device objects.
	StateUninitialized DeviceState = iota
	// StateLost has device objects but no shadow resources; it waits for a
	// reset. A freshly created device starts here.
	StateLost
	// StateReady renders frames.
	StateReady
)

func (s DeviceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLost:
		return "lost"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Control previews spotlights and shadows over a scene description owned
// by the host. It is driven by device lifecycle callbacks, frame hooks and
// mouse input, all from one goroutine.
type Control struct {
	cfg    Config
	log    Logger
	desc   *core.SceneDesc
	assets fs.FS

	ctx      *render.Context
	seq      *render.Sequencer
	editor   *editor.Manipulator
	profiler *render.Profiler

	state          DeviceState
	bb             gfx.SurfaceDesc
	manipulate     bool
	warnedNotReady bool
	elapsed        float64
}

func (c *Control) State() DeviceState { return c.state }

func (c *Control) Desc() *core.SceneDesc { return c.desc }

// Scene is the derived state of the current device generation, nil while
// uninitialized.
func (c *Control) Scene() *core.Scene { return c.ctx.Scene }

func (c *Control) Stats() render.FrameStats { return c.ctx.Stats }

func (c *Control) Profiler() *render.Profiler { return c.profiler }

func (c *Control) Manipulating() bool { return c.manipulate }

// SetManipulate switches between object/light manipulation and handing
// mouse input back to the host.
func (c *Control) SetManipulate(on bool) {
	c.manipulate = on
	if !on {
		c.editor.ButtonUp(editor.ButtonPrimary)
		c.editor.ButtonUp(editor.ButtonSecondary)
	}
}

func (c *Control) ToggleManipulate() { c.SetManipulate(!c.manipulate) }

// OnDeviceCreate builds the scene state and the device objects that
// survive a device loss. The control then waits for OnDeviceReset.
func (c *Control) OnDeviceCreate(dev gfx.Device, bb gfx.SurfaceDesc) error {
	if c.state != StateUninitialized {
		return fmt.Errorf("%w: create while %s", ErrBadState, c.state)
	}
	if err := render.CreateDeviceObjects(c.ctx, dev, c.assets); err != nil {
		return fmt.Errorf("create device objects: %w", err)
	}
	c.bb = bb
	c.state = StateLost
	c.editor.Attach(c.ctx.Scene, c.ctx.LightCan)
	c.editor.SetViewport(bb.Width, bb.Height)
	c.log.Infof("device created: %d objects, %d lights", len(c.ctx.Scene.Objects), len(c.ctx.Scene.Lights))
	return nil
}

// OnDeviceReset recreates shadow maps and the shared depth surface for a
// back buffer of the given size.
func (c *Control) OnDeviceReset(dev gfx.Device, bb gfx.SurfaceDesc) error {
	switch c.state {
	case StateUninitialized:
		return fmt.Errorf("%w: reset before create", ErrNotReady)
	case StateReady:
		c.OnDeviceLost()
	}
	if dev != c.ctx.Device {
		return fmt.Errorf("%w: reset with a different device", ErrBadState)
	}
	c.bb = bb
	c.editor.SetViewport(bb.Width, bb.Height)
	if err := render.ResetDeviceObjects(c.ctx); err != nil {
		return fmt.Errorf("reset device objects: %w", err)
	}
	c.state = StateReady
	c.warnedNotReady = false
	c.log.Debugf("device reset: %dx%d, shadow maps %d", bb.Width, bb.Height, c.ctx.ShadowMapSize)
	return nil
}

// OnDeviceLost releases device-dependent resources. It is a no-op unless
// the control is ready.
func (c *Control) OnDeviceLost() {
	if c.state != StateReady {
		return
	}
	render.LoseDeviceObjects(c.ctx)
	c.state = StateLost
	c.log.Debugf("device lost")
}

// OnDeviceDestroy releases everything the control created.
func (c *Control) OnDeviceDestroy() {
	if c.state == StateUninitialized {
		return
	}
	c.OnDeviceLost()
	c.editor.Attach(nil, nil)
	render.DestroyDeviceObjects(c.ctx)
	c.state = StateUninitialized
	c.log.Debugf("device destroyed")
}

// SetShadowMapSize changes the shadow map resolution. Shadow resources are
// rebuilt immediately when the device is ready.
func (c *Control) SetShadowMapSize(size int) error {
	cfg := c.cfg
	cfg.ShadowMapSize = size
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg.ShadowMapSize = size
	c.ctx.ShadowMapSize = size
	if c.state == StateReady {
		return c.OnDeviceReset(c.ctx.Device, c.bb)
	}
	return nil
}

// OnFrameUpdate detects moved lights and objects and solves transforms.
func (c *Control) OnFrameUpdate(dev gfx.Device, elapsed float64) {
	if c.state != StateReady {
		return
	}
	c.elapsed = elapsed
	c.profiler.BeginScope("update")
	scene := c.ctx.Scene
	scene.DetectChanges(c.desc)
	scene.BeginFrame()
	scene.Solve(c.desc, c.bb.Aspect())
	c.profiler.EndScope("update")
}

// OnFrameRender draws one frame. Before the first reset, frames are
// skipped with a single warning.
func (c *Control) OnFrameRender(dev gfx.Device, elapsed float64) error {
	if c.state != StateReady {
		if !c.warnedNotReady {
			c.log.Warnf("frame skipped: device %s", c.state)
			c.warnedNotReady = true
		}
		return ErrNotReady
	}
	if dev != c.ctx.Device {
		return fmt.Errorf("%w: render with a different device", ErrBadState)
	}
	c.profiler.SetCount("recomputes", c.ctx.Scene.Recomputes)
	if err := c.seq.Render(c.ctx); err != nil {
		if errors.Is(err, gfx.ErrDeviceLost) {
			return fmt.Errorf("%w: %v", ErrDeviceLost, err)
		}
		return err
	}
	return nil
}

// Draw runs a full update and render and settles the moved flags. Marks
// made while the frame was in flight carry over to the next one.
func (c *Control) Draw() error {
	if c.state != StateReady {
		return c.OnFrameRender(c.ctx.Device, c.elapsed)
	}
	c.OnFrameUpdate(c.ctx.Device, c.elapsed)
	if err := c.OnFrameRender(c.ctx.Device, c.elapsed); err != nil {
		c.log.Errorf("render: %v", err)
		return err
	}
	c.ctx.Scene.EndFrame()
	return nil
}

func (c *Control) redraw() {
	// errors are already logged by Draw
	_ = c.Draw()
}

func (c *Control) overlayLines() []string {
	mode := "Manipulation Mode: Camera"
	if c.manipulate {
		mode = "Manipulation Mode: Object/light"
	}
	lines := []string{mode}
	if c.cfg.Debug {
		lines = append(lines, c.profiler.Lines()...)
	}
	return lines
}

// PrimaryDown, PrimaryUp, SecondaryDown, SecondaryUp and MouseMove report
// whether the event was consumed. Outside manipulation mode nothing is.

func (c *Control) PrimaryDown(x, y float64) bool {
	return c.buttonDown(editor.ButtonPrimary, x, y)
}

func (c *Control) SecondaryDown(x, y float64) bool {
	return c.buttonDown(editor.ButtonSecondary, x, y)
}

func (c *Control) PrimaryUp() bool { return c.buttonUp(editor.ButtonPrimary) }

func (c *Control) SecondaryUp() bool { return c.buttonUp(editor.ButtonSecondary) }

func (c *Control) buttonDown(b editor.Button, x, y float64) bool {
	if !c.manipulate || c.state != StateReady {
		return false
	}
	c.editor.ButtonDown(b, x, y)
	if sel := c.editor.Selection(); !sel.Empty() {
		c.log.Debugf("picked object %d light %d at %.2f", sel.Object, sel.Light, sel.Dist)
	}
	return true
}

func (c *Control) buttonUp(b editor.Button) bool {
	if !c.manipulate {
		return false
	}
	c.editor.ButtonUp(b)
	return true
}

// MouseMove drags the current selection; modifier switches the primary
// drag to vertical movement.
func (c *Control) MouseMove(x, y float64, modifier bool) bool {
	if !c.manipulate || c.state != StateReady {
		return false
	}
	return c.editor.MouseMove(x, y, modifier)
}
