package render

import (
	"fmt"
	"io/fs"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

// CreateDeviceObjects builds the scene state and every resource that
// survives device loss: textures, meshes, effects, gobos and beams. On
// failure everything created so far is released.
func CreateDeviceObjects(c *Context, dev gfx.Device, assets fs.FS) (err error) {
	c.Device = dev
	c.Scene = core.NewScene(c.Desc)
	defer func() {
		if err != nil {
			DestroyDeviceObjects(c)
		}
	}()

	if c.White, err = dev.CreateTexture(core.WhiteImage()); err != nil {
		return fmt.Errorf("white texture: %w", err)
	}
	if c.BeamTex, err = dev.CreateTexture(core.BeamImage()); err != nil {
		return fmt.Errorf("beam texture: %w", err)
	}
	if c.NormalMap, err = dev.CreateTexture(core.FlatNormalImage()); err != nil {
		return fmt.Errorf("normal map: %w", err)
	}
	if c.LightCan, err = dev.LoadMesh(gfx.MeshLightCan); err != nil {
		return fmt.Errorf("light can: %w", err)
	}
	if c.Core, err = dev.LoadEffect(gfx.EffectCore); err != nil {
		return fmt.Errorf("effect %s: %w", gfx.EffectCore, err)
	}
	if c.VertLight, err = dev.LoadEffect(gfx.EffectVertLight); err != nil {
		return fmt.Errorf("effect %s: %w", gfx.EffectVertLight, err)
	}

	for i, o := range c.Scene.Objects {
		if o.Mesh, err = dev.LoadMesh(c.Desc.Objects[i].Mesh); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}

	for i, l := range c.Scene.Lights {
		desc := &c.Desc.Lights[i]
		if err = createGobo(dev, assets, desc, l); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
		if l.Beam, err = dev.CreateVertexBuffer(core.BeamGeometry(desc)); err != nil {
			return fmt.Errorf("light %d beam: %w", i, err)
		}
	}
	return nil
}

func createGobo(dev gfx.Device, assets fs.FS, desc *core.LightDesc, l *core.LightState) error {
	if !desc.HasGobo() {
		tex, err := dev.CreateTexture(core.ProceduralGobo(desc.Umbra, desc.Penumbra))
		if err != nil {
			return fmt.Errorf("procedural gobo: %w", err)
		}
		l.Gobo = gfx.Owned(tex)
		return nil
	}
	if assets == nil {
		return fmt.Errorf("gobo %q: no asset directory", desc.Gobo)
	}
	img, err := core.LoadGobo(assets, desc.Gobo)
	if err != nil {
		return err
	}
	tex, err := dev.CreateTexture(img)
	if err != nil {
		return fmt.Errorf("gobo %q: %w", desc.Gobo, err)
	}
	l.Gobo = gfx.Owned(tex)
	return nil
}

// ResetDeviceObjects recreates the resources lost with the device: the
// shadow maps and their shared depth surface. Every light is marked moved
// so its shadow map is redrawn.
func ResetDeviceObjects(c *Context) (err error) {
	defer func() {
		if err != nil {
			LoseDeviceObjects(c)
		}
	}()

	for _, e := range []gfx.Effect{c.Core, c.VertLight} {
		if e == nil {
			continue
		}
		if err = e.OnReset(); err != nil {
			return fmt.Errorf("reset effect %s: %w", e.Name(), err)
		}
	}

	size := c.ShadowMapSize
	if c.ShadowDepth, err = c.Device.CreateDepthSurface(size, size); err != nil {
		return fmt.Errorf("shadow depth surface: %w", err)
	}
	for i, l := range c.Scene.Lights {
		if !c.Desc.Lights[i].CastsShadows {
			continue
		}
		if l.ShadowMap, err = c.Device.CreateRenderTarget(size, size, gfx.FormatR32F); err != nil {
			return fmt.Errorf("light %d shadow map: %w", i, err)
		}
	}
	c.Scene.MarkAllLightsMoved()
	return nil
}

// LoseDeviceObjects releases what ResetDeviceObjects created.
func LoseDeviceObjects(c *Context) {
	for _, e := range []gfx.Effect{c.Core, c.VertLight} {
		if e != nil {
			e.OnLost()
		}
	}
	if c.Scene != nil {
		for _, l := range c.Scene.Lights {
			l.ReleaseShadowMap()
		}
	}
	if c.ShadowDepth != nil {
		c.ShadowDepth.Release()
		c.ShadowDepth = nil
	}
}

// DestroyDeviceObjects releases everything. It is safe on a partially
// created context.
func DestroyDeviceObjects(c *Context) {
	LoseDeviceObjects(c)
	if c.Scene != nil {
		c.Scene.Release()
	}
	for _, r := range []gfx.Resource{c.White, c.BeamTex, c.NormalMap, c.LightCan, c.Core, c.VertLight} {
		if r != nil {
			r.Release()
		}
	}
	c.White, c.BeamTex, c.NormalMap = nil, nil, nil
	c.LightCan = nil
	c.Core, c.VertLight = nil, nil
	c.Scene = nil
	c.Device = nil
}
