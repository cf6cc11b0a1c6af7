package gpu

import (
	"fmt"
	"image"
	"image/draw"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
)

const depthFormat = wgpu.TextureFormatDepth32Float

var _ gfx.Device = (*Device)(nil)

// viewer is implemented by every texture this device creates.
type viewer interface {
	view() *wgpu.TextureView
}

type texture struct {
	id     gfx.ResourceID
	w, h   int
	format gfx.Format
	tex    *wgpu.Texture
	tv     *wgpu.TextureView
	dev    *Device
}

func (t *texture) ID() gfx.ResourceID      { return t.id }
func (t *texture) Size() (int, int)        { return t.w, t.h }
func (t *texture) Format() gfx.Format      { return t.format }
func (t *texture) view() *wgpu.TextureView { return t.tv }

func (t *texture) Release() {
	if t.tex == nil {
		return
	}
	t.dev.forget(t.id)
	t.tv.Release()
	t.tex.Release()
	t.tv, t.tex = nil, nil
}

func wgpuFormat(f gfx.Format) wgpu.TextureFormat {
	switch f {
	case gfx.FormatR32F:
		return wgpu.TextureFormatR32Float
	case gfx.FormatDepth:
		return depthFormat
	}
	return wgpu.TextureFormatRGBA8Unorm
}

func (d *Device) newTexture(label string, w, h int, f gfx.Format, usage wgpu.TextureUsage) (*texture, error) {
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuFormat(f),
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	tv, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	t := &texture{id: gfx.NewResourceID(), w: w, h: h, format: f, tex: tex, tv: tv, dev: d}
	d.track(t.id, label)
	return t, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func (d *Device) CreateTexture(img image.Image) (gfx.Texture, error) {
	rgba := toRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	t, err := d.newTexture("image", w, h, gfx.FormatRGBA8, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	d.queue.WriteTexture(t.tex.AsImageCopy(), rgba.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(4 * w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	return t, nil
}

func (d *Device) CreateRenderTarget(width, height int, format gfx.Format) (gfx.RenderTarget, error) {
	if format == gfx.FormatDepth {
		return nil, fmt.Errorf("render target format %s", format)
	}
	t, err := d.newTexture("target "+format.String(), width, height, format,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Device) CreateDepthSurface(width, height int) (gfx.DepthSurface, error) {
	t, err := d.newTexture("depth", width, height, gfx.FormatDepth, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return nil, err
	}
	return t, nil
}

type vertexBuffer struct {
	id  gfx.ResourceID
	n   int
	buf *wgpu.Buffer
	dev *Device
}

func (b *vertexBuffer) ID() gfx.ResourceID { return b.id }
func (b *vertexBuffer) Len() int           { return b.n }

func (b *vertexBuffer) Release() {
	if b.buf == nil {
		return
	}
	b.dev.forget(b.id)
	b.buf.Release()
	b.buf = nil
}

func (d *Device) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	size := uint64(alignUp(max(len(data), 4), 4))
	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	if len(data) > 0 {
		padded := data
		if len(data)%4 != 0 {
			padded = make([]byte, size)
			copy(padded, data)
		}
		d.queue.WriteBuffer(buf, 0, padded)
	}
	return buf, nil
}

func bytesOf[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

func (d *Device) CreateVertexBuffer(verts []gfx.BeamVertex) (gfx.VertexBuffer, error) {
	buf, err := d.createBuffer("beam", bytesOf(verts), wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	b := &vertexBuffer{id: gfx.NewResourceID(), n: len(verts), buf: buf, dev: d}
	d.track(b.id, "beam")
	return b, nil
}

// mesh keeps the CPU copy for picking next to the uploaded buffers.
type mesh struct {
	id    gfx.ResourceID
	cpu   *gfx.TriMesh
	vb    *wgpu.Buffer
	ib    *wgpu.Buffer
	count uint32
	dev   *Device
}

func (m *mesh) ID() gfx.ResourceID { return m.id }

func (m *mesh) Intersect(origin, dir mgl32.Vec3) gfx.Hit { return m.cpu.Intersect(origin, dir) }

func (m *mesh) Material() mgl32.Vec4 { return m.cpu.Material() }

func (m *mesh) Release() {
	if m.vb == nil {
		return
	}
	m.dev.forget(m.id)
	m.vb.Release()
	m.ib.Release()
	m.vb, m.ib = nil, nil
}

func (d *Device) LoadMesh(name string) (gfx.Mesh, error) {
	cpu, ok := gfx.BuiltinMesh(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gfx.ErrMeshNotFound, name)
	}
	vb, err := d.createBuffer(name, bytesOf(cpu.Vertices), wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	ib, err := d.createBuffer(name, bytesOf(cpu.Indices), wgpu.BufferUsageIndex)
	if err != nil {
		vb.Release()
		return nil, err
	}
	m := &mesh{id: gfx.NewResourceID(), cpu: cpu, vb: vb, ib: ib, count: uint32(len(cpu.Indices)), dev: d}
	d.track(m.id, "mesh "+name)
	return m, nil
}
