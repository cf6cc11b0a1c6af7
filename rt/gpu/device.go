// Package gpu implements the gfx device on WebGPU.
package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/render"
)

type clearValue struct {
	color mgl32.Vec4
	depth float32
}

// Device renders through a WebGPU surface. Passes are opened lazily and
// restarted whenever the targets change or a clear is requested; one
// command buffer is submitted per scene.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	dev      *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
	config   *wgpu.SurfaceConfiguration

	bbDepth  *texture
	sampler  *wgpu.Sampler
	defaults map[string]*texture

	pipelines   map[pipelineKey]*wgpu.RenderPipeline
	paramGroups map[gfx.ResourceID]*wgpu.BindGroup
	ring        *uniformRing

	frameTex    *wgpu.Texture
	frameView   *wgpu.TextureView
	encoder     *wgpu.CommandEncoder
	pass        *wgpu.RenderPassEncoder
	clear       *clearValue
	targets     gfx.Targets
	inScene     bool
	frameGroups []*wgpu.BindGroup

	atlas        *fontAtlas
	textTex      *texture
	textPipeline *wgpu.RenderPipeline
	textGroup    *wgpu.BindGroup
	textVB       *wgpu.Buffer

	live  map[gfx.ResourceID]string
	draws int
}

// New creates a device presenting to the given surface.
func New(surfaceDesc *wgpu.SurfaceDescriptor, width, height int) (*Device, error) {
	d := &Device{
		defaults:    make(map[string]*texture),
		pipelines:   make(map[pipelineKey]*wgpu.RenderPipeline),
		paramGroups: make(map[gfx.ResourceID]*wgpu.BindGroup),
		ring:        newUniformRing(uniformRingSize),
		live:        make(map[gfx.ResourceID]string),
	}
	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDesc)

	var err error
	d.adapter, err = d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.dev, err = d.adapter.RequestDevice(nil)
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.queue = d.dev.GetQueue()

	caps := d.surface.GetCapabilities(d.adapter)
	d.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}

	if err := d.init(width, height); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

func (d *Device) init(width, height int) error {
	if err := d.Resize(width, height); err != nil {
		return err
	}
	var err error
	d.sampler, err = d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}
	if err := d.ring.ensureBuffer(d.dev); err != nil {
		return fmt.Errorf("params ring: %w", err)
	}
	if err := d.createDefaults(); err != nil {
		return err
	}
	if err := d.setupText(); err != nil {
		// the overlay is optional
		d.atlas = nil
	}
	return nil
}

// createDefaults makes the 1x1 textures bound to unset slots: white for
// color and gobo maps, a flat normal and an always-lit shadow map.
func (d *Device) createDefaults() error {
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.White)
	normal := image.NewRGBA(image.Rect(0, 0, 1, 1))
	normal.Set(0, 0, color.RGBA{128, 128, 255, 255})

	for name, img := range map[string]*image.RGBA{
		render.TexColorMap:  white,
		render.TexSpotMap:   white,
		render.TexNormalMap: normal,
	} {
		t, err := d.CreateTexture(img)
		if err != nil {
			return fmt.Errorf("default %s: %w", name, err)
		}
		d.defaults[name] = t.(*texture)
	}

	shadow, err := d.newTexture("default shadow", 1, 1, gfx.FormatR32F,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	far := make([]byte, 4)
	binary.LittleEndian.PutUint32(far, math.Float32bits(1))
	d.queue.WriteTexture(shadow.tex.AsImageCopy(), far, &wgpu.TextureDataLayout{
		BytesPerRow:  4,
		RowsPerImage: 1,
	}, &wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1})
	d.defaults[render.TexShadowMap] = shadow
	return nil
}

func (d *Device) defaultView(name string) *wgpu.TextureView {
	if t, ok := d.defaults[name]; ok {
		return t.tv
	}
	return d.defaults[render.TexColorMap].tv
}

// Resize reconfigures the surface and recreates the back buffer depth.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	d.config.Width = uint32(width)
	d.config.Height = uint32(height)
	d.surface.Configure(d.adapter, d.dev, d.config)

	if d.bbDepth != nil {
		d.bbDepth.Release()
	}
	depth, err := d.newTexture("back buffer depth", width, height, gfx.FormatDepth, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	d.bbDepth = depth
	return nil
}

// SurfaceDesc describes the back buffer.
func (d *Device) SurfaceDesc() gfx.SurfaceDesc {
	return gfx.SurfaceDesc{Width: int(d.config.Width), Height: int(d.config.Height), Format: gfx.FormatRGBA8}
}

func (d *Device) track(id gfx.ResourceID, kind string) { d.live[id] = kind }

func (d *Device) forget(id gfx.ResourceID) {
	delete(d.live, id)
	if g, ok := d.paramGroups[id]; ok {
		g.Release()
		delete(d.paramGroups, id)
	}
}

// Live counts resources created through the device and not yet released,
// including the device's own defaults.
func (d *Device) Live() int { return len(d.live) }

func (d *Device) BeginScene() error {
	if d.inScene {
		return errors.New("gpu: scene already in progress")
	}
	tex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("%w: %v", gfx.ErrDeviceLost, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("back buffer view: %w", err)
	}
	encoder, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("command encoder: %w", err)
	}
	d.frameTex, d.frameView, d.encoder = tex, view, encoder
	d.targets = gfx.Targets{}
	d.inScene = true
	d.draws = 0
	return nil
}

func (d *Device) EndScene() error {
	if !d.inScene {
		return gfx.ErrNoScene
	}
	d.inScene = false
	err := d.submit()
	d.surface.Present()

	d.frameView.Release()
	d.frameTex.Release()
	d.frameView, d.frameTex = nil, nil
	return err
}

// submit closes the open pass, uploads staged parameters and submits the
// commands recorded so far. Recording continues on a fresh encoder.
func (d *Device) submit() error {
	passErr := d.endPass()
	d.ring.upload(d.queue)

	cmd, err := d.encoder.Finish(nil)
	d.encoder.Release()
	d.encoder = nil
	if err != nil {
		d.releaseFrameGroups()
		return fmt.Errorf("finish commands: %w", err)
	}
	d.queue.Submit(cmd)
	cmd.Release()
	d.releaseFrameGroups()

	if d.inScene {
		if d.encoder, err = d.dev.CreateCommandEncoder(nil); err != nil {
			return fmt.Errorf("command encoder: %w", err)
		}
	}
	return passErr
}

func (d *Device) releaseFrameGroups() {
	for _, g := range d.frameGroups {
		g.Release()
	}
	d.frameGroups = d.frameGroups[:0]
}

func (d *Device) Targets() gfx.Targets { return d.targets }

func (d *Device) SetTargets(t gfx.Targets) error {
	if !d.inScene {
		return gfx.ErrNoScene
	}
	if t.Color != nil {
		if _, ok := t.Color.(viewer); !ok {
			return fmt.Errorf("gpu: foreign render target %T", t.Color)
		}
	}
	if t.Depth != nil {
		if _, ok := t.Depth.(viewer); !ok {
			return fmt.Errorf("gpu: foreign depth surface %T", t.Depth)
		}
	}
	if err := d.endPass(); err != nil {
		return err
	}
	d.targets = t
	return nil
}

// Clear takes effect when the next pass opens.
func (d *Device) Clear(c mgl32.Vec4, depth float32) {
	if !d.inScene {
		return
	}
	_ = d.endPass()
	d.clear = &clearValue{color: c, depth: depth}
}

func (d *Device) attachments() (colorView *wgpu.TextureView, format wgpu.TextureFormat, depthView *wgpu.TextureView) {
	colorView, format = d.frameView, d.config.Format
	if d.targets.Color != nil {
		colorView = d.targets.Color.(viewer).view()
		format = wgpuFormat(d.targets.Color.Format())
	}
	depthView = d.bbDepth.tv
	if d.targets.Depth != nil {
		depthView = d.targets.Depth.(viewer).view()
	}
	return colorView, format, depthView
}

func (d *Device) beginPass() *wgpu.RenderPassEncoder {
	if d.pass != nil {
		return d.pass
	}
	colorView, _, depthView := d.attachments()
	ca := wgpu.RenderPassColorAttachment{View: colorView, LoadOp: wgpu.LoadOpLoad, StoreOp: wgpu.StoreOpStore}
	da := &wgpu.RenderPassDepthStencilAttachment{View: depthView, DepthLoadOp: wgpu.LoadOpLoad, DepthStoreOp: wgpu.StoreOpStore}
	if d.clear != nil {
		c := d.clear.color
		ca.LoadOp = wgpu.LoadOpClear
		ca.ClearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
		da.DepthLoadOp = wgpu.LoadOpClear
		da.DepthClearValue = d.clear.depth
		d.clear = nil
	}
	d.pass = d.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments:       []wgpu.RenderPassColorAttachment{ca},
		DepthStencilAttachment: da,
	})
	return d.pass
}

// endPass closes the open pass. A pending clear opens an empty pass so it
// is not lost.
func (d *Device) endPass() error {
	if d.pass == nil && d.clear == nil {
		return nil
	}
	pass := d.beginPass()
	d.pass = nil
	if err := pass.End(); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	return nil
}

func (d *Device) Stats() string {
	return fmt.Sprintf("webgpu %dx%d  draws %d  pipelines %d  resources %d",
		d.config.Width, d.config.Height, d.draws, len(d.pipelines), len(d.live))
}

// Release destroys everything the device owns. Resources handed out to
// callers must be released first.
func (d *Device) Release() {
	for k, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, k)
	}
	for k, g := range d.paramGroups {
		g.Release()
		delete(d.paramGroups, k)
	}
	d.releaseText()
	for name, t := range d.defaults {
		t.Release()
		delete(d.defaults, name)
	}
	if d.bbDepth != nil {
		d.bbDepth.Release()
		d.bbDepth = nil
	}
	d.ring.release()
	if d.sampler != nil {
		d.sampler.Release()
		d.sampler = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.dev != nil {
		d.dev.Release()
		d.dev = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
