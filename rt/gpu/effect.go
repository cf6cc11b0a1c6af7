package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/render"
	"github.com/gekko3d/lightrig/rt/shaders"
)

var effectSources = map[string]string{
	gfx.EffectCore:      shaders.CoreWGSL,
	gfx.EffectVertLight: shaders.VertLightWGSL,
}

// effect holds parameter values set by the renderer until a draw packs
// them into a uniform block.
type effect struct {
	id        gfx.ResourceID
	name      string
	technique string
	params    map[string]any
	textures  map[string]gfx.Texture
	lost      bool
	layout    layout

	module         *wgpu.ShaderModule
	paramsLayout   *wgpu.BindGroupLayout
	texturesLayout *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	dev            *Device
}

func (d *Device) LoadEffect(name string) (gfx.Effect, error) {
	src, ok := effectSources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gfx.ErrEffectNotFound, name)
	}
	e := &effect{
		id:       gfx.NewResourceID(),
		name:     name,
		params:   make(map[string]any),
		textures: make(map[string]gfx.Texture),
		layout:   layouts[name],
		dev:      d,
	}

	var err error
	e.module, err = d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", name, err)
	}

	e.paramsLayout, err = d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: name + " params",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   uint64(e.layout.Size),
			},
		}},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("effect %s params layout: %w", name, err)
	}

	entries := []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageFragment,
		Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
	}}
	for i, tex := range textureBindings[name] {
		sample := wgpu.TextureSampleTypeFloat
		if tex == render.TexShadowMap {
			sample = wgpu.TextureSampleTypeUnfilterableFloat
		}
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i + 1),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    sample,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	e.texturesLayout, err = d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   name + " textures",
		Entries: entries,
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("effect %s texture layout: %w", name, err)
	}

	e.pipelineLayout, err = d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name,
		BindGroupLayouts: []*wgpu.BindGroupLayout{e.paramsLayout, e.texturesLayout},
	})
	if err != nil {
		e.Release()
		return nil, fmt.Errorf("effect %s pipeline layout: %w", name, err)
	}

	d.track(e.id, "effect "+name)
	return e, nil
}

func (e *effect) ID() gfx.ResourceID { return e.id }
func (e *effect) Name() string       { return e.name }
func (e *effect) Technique() string  { return e.technique }

func (e *effect) SetTechnique(name string) error {
	if !gfx.HasTechnique(e.name, name) {
		return fmt.Errorf("%w: %s/%s", gfx.ErrTechniqueNotFound, e.name, name)
	}
	e.technique = name
	return nil
}

func (e *effect) SetMatrix(name string, m mgl32.Mat4) { e.params[name] = m }
func (e *effect) SetVector(name string, v mgl32.Vec4) { e.params[name] = v }
func (e *effect) SetFloat(name string, f float32)     { e.params[name] = f }
func (e *effect) SetInt(name string, i int)           { e.params[name] = i }
func (e *effect) SetTexture(name string, t gfx.Texture) {
	e.textures[name] = t
}

func (e *effect) SetVectors(name string, v []mgl32.Vec3) {
	e.params[name] = append([]mgl32.Vec3(nil), v...)
}

func (e *effect) SetFloats(name string, f []float32) {
	e.params[name] = append([]float32(nil), f...)
}

// OnLost drops pipelines built for targets that die with the device.
func (e *effect) OnLost() {
	e.lost = true
	e.dev.releasePipelines(e.name)
}

func (e *effect) OnReset() error {
	e.lost = false
	return nil
}

func (e *effect) Release() {
	if e.dev == nil {
		return
	}
	e.dev.releasePipelines(e.name)
	if e.pipelineLayout != nil {
		e.pipelineLayout.Release()
	}
	if e.texturesLayout != nil {
		e.texturesLayout.Release()
	}
	if e.paramsLayout != nil {
		e.paramsLayout.Release()
	}
	if e.module != nil {
		e.module.Release()
	}
	e.dev.forget(e.id)
	e.dev = nil
}

// textureViews resolves the bound textures in binding order, substituting
// device defaults for unset slots.
func (e *effect) textureViews() []*wgpu.TextureView {
	names := textureBindings[e.name]
	views := make([]*wgpu.TextureView, len(names))
	for i, n := range names {
		if v, ok := e.textures[n].(viewer); ok && v.view() != nil {
			views[i] = v.view()
			continue
		}
		views[i] = e.dev.defaultView(n)
	}
	return views
}
