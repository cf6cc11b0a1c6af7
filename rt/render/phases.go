package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

// Phase is one step of a frame. Enabled may be nil for unconditional
// phases.
type Phase struct {
	Name    string
	Enabled func(c *Context) bool
	Run     func(c *Context) error
}

// Phases is the frame order. Each phase relies on the effect state left
// by the ones before it.
var Phases = []Phase{
	{Name: "shadows", Run: shadowPhase},
	{Name: "clear", Run: clearPhase},
	{Name: "constants", Run: constantsPhase},
	{Name: "batch", Run: batchPhase},
	{Name: "indicators", Run: indicatorPhase},
	{Name: "eye", Run: eyePhase},
	{Name: "spot-gobo", Run: spotPhase(core.LoopGobo)},
	{Name: "spot-shadow", Run: spotPhase(core.LoopGoboShadow)},
	{Name: "beams", Enabled: wantEffects, Run: beamPhase},
	{Name: "overlay", Run: overlayPhase},
}

func wantEffects(c *Context) bool { return c.Desc.WantEffects }

func shadowPhase(c *Context) error {
	RenderShadowMaps(c)
	return nil
}

func clearPhase(c *Context) error {
	c.Device.Clear(c.Desc.ClearColor.Vec4(), 1)
	return nil
}

func constantsPhase(c *Context) error {
	proj := c.Scene.Camera.Proj
	for _, e := range []gfx.Effect{c.Core, c.VertLight} {
		e.SetMatrix(ParamProj, proj)
		e.SetVector(ParamLightAmbient, c.ambient())
	}
	return nil
}

// indicatorPhase draws a light can at every light. The selected light is
// drawn brighter.
func indicatorPhase(c *Context) error {
	e := c.Core
	if err := e.SetTechnique(gfx.TechSceneAmbient); err != nil {
		return err
	}
	e.SetTexture(TexColorMap, c.White)
	e.SetVector(ParamMaterial, mgl32.Vec4{1, 1, 1, 1})

	if c.LightCan == nil {
		return nil
	}
	cam := &c.Scene.Camera
	for i, l := range c.Scene.Lights {
		e.SetMatrix(ParamWorldView, cam.WorldView(l.World))
		if i == c.Desc.CurLight {
			h := c.HighlightAmbient
			e.SetVector(ParamMaterial, mgl32.Vec4{1, 1, 1, 1})
			e.SetVector(ParamLightAmbient, mgl32.Vec4{h, h, h, 1})
			err := c.draw(e, c.LightCan)
			e.SetVector(ParamLightAmbient, c.ambient())
			if err != nil {
				return err
			}
			continue
		}
		if err := c.drawObject(e, c.LightCan); err != nil {
			return err
		}
	}
	return nil
}

func eyePhase(c *Context) error {
	cam := &c.Scene.Camera
	c.Core.SetVector(ParamEyeDir, cam.EyeDirView())
	c.Core.SetVector(ParamEyePos, cam.EyePosView())
	c.Core.SetTexture(TexNormalMap, c.NormalMap)
	return nil
}

// spotTechnique picks the additive technique for a light of the given
// class. Shadowed lights without a shadow map fall back to the unshadowed
// technique.
func spotTechnique(c *Context, loop core.LoopClass, l *core.LightState) string {
	if loop == core.LoopGoboShadow && c.Desc.WantShadows && l.ShadowMap != nil {
		return gfx.TechSpotLightAdd
	}
	return gfx.TechSpotLightAddNoShadow
}

func spotPhase(loop core.LoopClass) func(c *Context) error {
	return func(c *Context) error {
		e := c.Core
		cam := &c.Scene.Camera
		for i := 0; i < c.lights(); i++ {
			desc := &c.Desc.Lights[i]
			l := c.Scene.Lights[i]
			if !desc.Enabled || l.Loop != loop {
				continue
			}
			if tech := spotTechnique(c, loop, l); e.Technique() != tech {
				if err := e.SetTechnique(tech); err != nil {
					return err
				}
			}
			setLightParams(c, desc, l)
			if loop == core.LoopGoboShadow && c.Desc.WantShadows && l.ShadowMap != nil {
				e.SetTexture(TexShadowMap, l.ShadowMap)
			}

			for _, o := range c.Scene.Objects {
				e.SetMatrix(ParamWorldView, cam.WorldView(o.World))
				if err := c.drawObject(e, o.Mesh); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// setLightParams uploads the view-space description of one spotlight.
func setLightParams(c *Context, desc *core.LightDesc, l *core.LightState) {
	e := c.Core
	cam := &c.Scene.Camera
	e.SetMatrix(ParamViewToLightProj, cam.ViewToLightProj(l))
	e.SetVector(ParamLightPos, cam.View.Mul4x1(l.Pos.Vec4(1)))
	e.SetVector(ParamLightDir, cam.View.Mul4x1(l.Dir.Vec4(0)))
	e.SetFloat(ParamCosTheta, l.CosTheta)
	e.SetTexture(TexSpotMap, l.Gobo.Texture())
	e.SetFloat(ParamLinearAtten, desc.Att1)
	e.SetFloat(ParamQuadraticAtten, desc.Att2)
	e.SetVector(ParamLightColor, l.Color)
}

func beamPhase(c *Context) error {
	e := c.Core
	if err := e.SetTechnique(gfx.TechSpotLightBeam); err != nil {
		return err
	}
	cam := &c.Scene.Camera
	for i := 0; i < c.lights(); i++ {
		desc := &c.Desc.Lights[i]
		l := c.Scene.Lights[i]
		if !desc.Enabled || l.Beam == nil || l.Beam.Len() == 0 {
			continue
		}
		setLightParams(c, desc, l)
		// unshadowed beams must not see the previous light's map
		var shadow gfx.Texture
		if c.Desc.WantShadows && l.ShadowMap != nil {
			shadow = l.ShadowMap
		}
		e.SetTexture(TexShadowMap, shadow)
		e.SetTexture(TexColorMap, c.BeamTex)
		e.SetMatrix(ParamWorldView, cam.WorldView(l.World))
		e.SetMatrix(ParamWorld, l.World)
		if err := c.Device.DrawBeam(e, l.Beam); err != nil {
			return err
		}
		c.Stats.Draws++
	}
	return nil
}
