package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/shaders"
)

var overlayColor = [4]float32{1, 1, 0, 1}

// bind prepares the pipeline and both bind groups of an effect draw on the
// open pass.
func (d *Device) bind(e gfx.Effect) (*wgpu.RenderPassEncoder, error) {
	if !d.inScene {
		return nil, gfx.ErrNoScene
	}
	eff, ok := e.(*effect)
	if !ok {
		return nil, fmt.Errorf("gpu: foreign effect %T", e)
	}
	if eff.lost {
		return nil, gfx.ErrDeviceLost
	}

	colorView, format, _ := d.attachments()
	p, err := d.pipeline(eff, format)
	if err != nil {
		return nil, err
	}

	size := alignUp(eff.layout.Size, 16)
	offset, block, ok := d.ring.alloc(size)
	if !ok {
		if err := d.submit(); err != nil {
			return nil, err
		}
		if offset, block, ok = d.ring.alloc(size); !ok {
			return nil, fmt.Errorf("gpu: %s params exceed the uniform ring", eff.name)
		}
	}
	eff.layout.pack(block, eff.params)

	params, err := d.paramGroup(eff)
	if err != nil {
		return nil, err
	}

	entries := []wgpu.BindGroupEntry{{Binding: 0, Sampler: d.sampler}}
	for i, v := range eff.textureViews() {
		// a texture cannot be sampled while it is the attachment
		if v == colorView {
			v = d.defaultView(textureBindings[eff.name][i])
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i + 1), TextureView: v})
	}
	textures, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  eff.texturesLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%s textures: %w", eff.name, err)
	}
	d.frameGroups = append(d.frameGroups, textures)

	pass := d.beginPass()
	pass.SetPipeline(p)
	pass.SetBindGroup(0, params, []uint32{uint32(offset)})
	pass.SetBindGroup(1, textures, nil)
	return pass, nil
}

// paramGroup binds the uniform ring for an effect; draws select their block
// with a dynamic offset.
func (d *Device) paramGroup(e *effect) (*wgpu.BindGroup, error) {
	if g, ok := d.paramGroups[e.id]; ok {
		return g, nil
	}
	g, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: e.paramsLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  d.ring.buf,
			Size:    uint64(e.layout.Size),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s params: %w", e.name, err)
	}
	d.paramGroups[e.id] = g
	return g, nil
}

func (d *Device) DrawMesh(e gfx.Effect, m gfx.Mesh) error {
	gm, ok := m.(*mesh)
	if !ok || gm.vb == nil {
		return fmt.Errorf("gpu: unusable mesh %T", m)
	}
	pass, err := d.bind(e)
	if err != nil {
		return err
	}
	pass.SetVertexBuffer(0, gm.vb, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(gm.ib, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(gm.count, 1, 0, 0, 0)
	d.draws++
	return nil
}

func (d *Device) DrawBeam(e gfx.Effect, vb gfx.VertexBuffer) error {
	b, ok := vb.(*vertexBuffer)
	if !ok || b.buf == nil {
		return fmt.Errorf("gpu: unusable vertex buffer %T", vb)
	}
	if b.n == 0 {
		return nil
	}
	pass, err := d.bind(e)
	if err != nil {
		return err
	}
	pass.SetVertexBuffer(0, b.buf, 0, wgpu.WholeSize)
	pass.Draw(uint32(b.n), 1, 0, 0)
	d.draws++
	return nil
}

// DrawOverlay prints lines at the top left of the back buffer. It does
// nothing while another target is bound.
func (d *Device) DrawOverlay(lines []string) {
	if !d.inScene || d.atlas == nil || d.targets.Color != nil || len(lines) == 0 {
		return
	}
	verts := d.atlas.vertices(lines, 10, 10, overlayColor, int(d.config.Width), int(d.config.Height))
	if len(verts) == 0 {
		return
	}
	data := bytesOf(verts)
	if d.textVB == nil || d.textVB.GetSize() < uint64(len(data)) {
		if d.textVB != nil {
			d.textVB.Release()
		}
		var err error
		d.textVB, err = d.dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			d.textVB = nil
			return
		}
	}
	d.queue.WriteBuffer(d.textVB, 0, data)

	pass := d.beginPass()
	pass.SetPipeline(d.textPipeline)
	pass.SetBindGroup(0, d.textGroup, nil)
	pass.SetVertexBuffer(0, d.textVB, 0, uint64(len(data)))
	pass.Draw(uint32(len(verts)), 1, 0, 0)
}

func (d *Device) setupText() error {
	atlas, err := newFontAtlas(16)
	if err != nil {
		return err
	}
	w, h := atlas.Image.Rect.Dx(), atlas.Image.Rect.Dy()
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	d.queue.WriteTexture(tex.AsImageCopy(), atlas.Image.Pix, &wgpu.TextureDataLayout{
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	d.textTex = &texture{id: gfx.NewResourceID(), w: w, h: h, tex: tex, tv: view, dev: d}
	d.track(d.textTex.id, "text atlas")

	mod, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		d.releaseText()
		return err
	}
	defer mod.Release()

	d.textPipeline, err = d.dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(textVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: d.config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		d.releaseText()
		return err
	}

	d.textGroup, err = d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: d.textPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: d.textTex.tv},
			{Binding: 1, Sampler: d.sampler},
		},
	})
	if err != nil {
		d.releaseText()
		return err
	}
	d.atlas = atlas
	return nil
}

func (d *Device) releaseText() {
	if d.textGroup != nil {
		d.textGroup.Release()
		d.textGroup = nil
	}
	if d.textPipeline != nil {
		d.textPipeline.Release()
		d.textPipeline = nil
	}
	if d.textVB != nil {
		d.textVB.Release()
		d.textVB = nil
	}
	if d.textTex != nil {
		d.textTex.Release()
		d.textTex = nil
	}
	d.atlas = nil
}
