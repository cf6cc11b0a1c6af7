package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/lightrig/rt/gfx"
)

type blendMode int

const (
	blendOpaque blendMode = iota
	// blendAdd accumulates light: one, one.
	blendAdd
	// blendAddAlpha accumulates beams weighted by their alpha.
	blendAddAlpha
)

type vertexKind int

const (
	vertexMesh vertexKind = iota
	vertexBeam
)

// technique is the fixed-function state of one effect technique.
type technique struct {
	VS, FS     string
	Vertex     vertexKind
	Blend      blendMode
	DepthWrite bool
}

var techniques = map[string]map[string]technique{
	gfx.EffectCore: {
		gfx.TechShadowMapGen:         {VS: "vs_shadow", FS: "fs_shadow", DepthWrite: true},
		gfx.TechSceneAmbient:         {VS: "vs_scene", FS: "fs_ambient", DepthWrite: true},
		gfx.TechSpotLightAdd:         {VS: "vs_scene", FS: "fs_spot_shadow", Blend: blendAdd},
		gfx.TechSpotLightAddNoShadow: {VS: "vs_scene", FS: "fs_spot", Blend: blendAdd},
		gfx.TechSpotLightBeam:        {VS: "vs_beam", FS: "fs_beam", Vertex: vertexBeam, Blend: blendAddAlpha},
	},
	gfx.EffectVertLight: {
		gfx.TechMultiLight:      {VS: "vs_main", FS: "fs_main", DepthWrite: true},
		gfx.TechMultiLightBatch: {VS: "vs_main", FS: "fs_batch", Blend: blendAdd},
	},
}

func (b blendMode) state() *wgpu.BlendState {
	switch b {
	case blendAdd:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne},
			Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne},
		}
	case blendAddAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOne},
			Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOne},
		}
	}
	return nil
}

func (k vertexKind) layout() wgpu.VertexBufferLayout {
	if k == vertexBeam {
		return wgpu.VertexBufferLayout{
			ArrayStride: uint64(unsafe.Sizeof(gfx.BeamVertex{})),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatUnorm8x4, Offset: 12, ShaderLocation: 1},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2},
			},
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(gfx.Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

type pipelineKey struct {
	effect    string
	technique string
	format    wgpu.TextureFormat
}

// pipeline returns the render pipeline of a technique for the given color
// format, creating it on first use.
func (d *Device) pipeline(e *effect, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{e.name, e.technique, format}
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	t, ok := techniques[e.name][e.technique]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", gfx.ErrTechniqueNotFound, e.name, e.technique)
	}

	p, err := d.dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  e.name + "/" + e.technique,
		Layout: e.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     e.module,
			EntryPoint: t.VS,
			Buffers:    []wgpu.VertexBufferLayout{t.Vertex.layout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     e.module,
			EntryPoint: t.FS,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     t.Blend.state(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: t.DepthWrite,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s/%s: %w", e.name, e.technique, err)
	}
	d.pipelines[key] = p
	return p, nil
}

func (d *Device) releasePipelines(effect string) {
	for k, p := range d.pipelines {
		if k.effect == effect {
			p.Release()
			delete(d.pipelines, k)
		}
	}
}
