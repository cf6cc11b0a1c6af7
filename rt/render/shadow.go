package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

var errNoShadowDepth = errors.New("render: shadow depth surface unavailable")

// shadowClear is the farthest depth, stored in every channel.
var shadowClear = mgl32.Vec4{1, 1, 1, 1}

// RenderShadowMaps refreshes the shadow map of every enabled light that
// moved and owns one. A light whose update fails is skipped and flagged so
// it stays moved for the next frame. Maps that go unrendered while shadows
// or the light are off are marked stale and redrawn once they are used
// again.
func RenderShadowMaps(c *Context) {
	for i := 0; i < c.lights(); i++ {
		l := c.Scene.Lights[i]
		if l.ShadowMap == nil || (!l.Moved() && !l.ShadowStale) {
			continue
		}
		if !c.Desc.WantShadows || !c.Desc.Lights[i].Enabled {
			l.ShadowStale = true
			continue
		}
		if err := renderShadowMap(c, l); err != nil {
			l.ShadowFailed = true
			c.Stats.ShadowFailures++
			c.Log.Debugf("shadow map for light %d skipped: %v", i, err)
			continue
		}
		l.ShadowStale = false
		c.Stats.ShadowPasses++
	}
}

func renderShadowMap(c *Context, l *core.LightState) (err error) {
	if c.ShadowDepth == nil {
		return errNoShadowDepth
	}
	dev := c.Device
	saved := dev.Targets()
	if err := dev.SetTargets(gfx.Targets{Color: l.ShadowMap, Depth: c.ShadowDepth}); err != nil {
		return fmt.Errorf("bind shadow target: %w", err)
	}
	defer func() {
		if rerr := dev.SetTargets(saved); rerr != nil && err == nil {
			err = fmt.Errorf("restore targets: %w", rerr)
		}
	}()

	dev.Clear(shadowClear, 1)

	e := c.Core
	if err := e.SetTechnique(gfx.TechShadowMapGen); err != nil {
		return err
	}
	e.SetMatrix(ParamProj, l.Proj)

	// object 0 is the stage and never casts
	for _, o := range c.Scene.Objects[min(1, len(c.Scene.Objects)):] {
		e.SetMatrix(ParamWorldView, l.View.Mul4(o.World))
		if err := c.drawObject(e, o.Mesh); err != nil {
			return err
		}
	}
	return nil
}
