// Package gfx is the contract between the lighting control and a graphics
// device: resources, effects with named techniques and parameters, meshes
// with ray intersection, render-target swaps and draws.
package gfx

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ResourceID identifies a device resource for its whole life.
type ResourceID uuid.UUID

func NewResourceID() ResourceID { return ResourceID(uuid.New()) }

func (id ResourceID) String() string { return uuid.UUID(id).String() }

func (id ResourceID) IsZero() bool { return id == ResourceID(uuid.Nil) }

type Format int

const (
	FormatRGBA8 Format = iota
	FormatR32F
	FormatDepth
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatR32F:
		return "r32f"
	case FormatDepth:
		return "depth"
	}
	return "unknown"
}

// SurfaceDesc describes the back buffer.
type SurfaceDesc struct {
	Width  int
	Height int
	Format Format
}

func (s SurfaceDesc) Aspect() float32 {
	if s.Height <= 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

type Resource interface {
	ID() ResourceID
	Release()
}

type Texture interface {
	Resource
	Size() (int, int)
}

// RenderTarget is a texture that can also be rendered into.
type RenderTarget interface {
	Texture
	Format() Format
}

type DepthSurface interface {
	Resource
	Size() (int, int)
}

// BeamVertex is a light-space vertex of the volumetric beam geometry.
type BeamVertex struct {
	Pos   mgl32.Vec3
	Color [4]uint8 // r, g, b, a
	UV    mgl32.Vec2
}

type VertexBuffer interface {
	Resource
	Len() int
}

// Hit is the nearest intersection of a ray with a mesh. Dist is measured in
// multiples of the ray direction.
type Hit struct {
	Hit  bool
	Face int
	U, V float32
	Dist float32
}

type Mesh interface {
	Resource
	// Intersect casts an object-space ray.
	Intersect(origin, dir mgl32.Vec3) Hit
	// Material is the diffuse color applied when the mesh is drawn.
	Material() mgl32.Vec4
}

// Effect is a shader program with named techniques and parameters.
// Parameter setters never fail; unknown names are ignored by the device.
type Effect interface {
	Resource
	Name() string
	SetTechnique(name string) error
	Technique() string
	SetMatrix(name string, m mgl32.Mat4)
	SetVector(name string, v mgl32.Vec4)
	SetVectors(name string, v []mgl32.Vec3)
	SetFloat(name string, f float32)
	SetFloats(name string, f []float32)
	SetInt(name string, i int)
	SetTexture(name string, t Texture)
	OnLost()
	OnReset() error
}

// Targets selects the color and depth attachments. Nil fields mean the
// back buffer and its default depth surface.
type Targets struct {
	Color RenderTarget
	Depth DepthSurface
}

type Device interface {
	CreateTexture(img image.Image) (Texture, error)
	CreateRenderTarget(width, height int, format Format) (RenderTarget, error)
	CreateDepthSurface(width, height int) (DepthSurface, error)
	CreateVertexBuffer(verts []BeamVertex) (VertexBuffer, error)
	LoadEffect(name string) (Effect, error)
	LoadMesh(name string) (Mesh, error)

	BeginScene() error
	EndScene() error
	Targets() Targets
	SetTargets(t Targets) error
	Clear(color mgl32.Vec4, depth float32)
	DrawMesh(e Effect, m Mesh) error
	DrawBeam(e Effect, vb VertexBuffer) error
	DrawOverlay(lines []string)

	// Stats is a one-line description of the device for the overlay.
	Stats() string
}
