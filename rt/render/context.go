// Package render sequences a frame: shadow map generation, the batched
// vertex-lit pass, per-pixel spotlight passes, beams and the overlay.
package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

// Logger is the subset of the application logger used while rendering.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

const (
	// MaxBatchCapacity is the light array size of the vertex-lit program.
	MaxBatchCapacity        = 48
	DefaultBatchCapacity    = MaxBatchCapacity
	DefaultShadowMapSize    = 512
	DefaultHighlightAmbient = 0.66
)

// FrameStats counts the work done by the last frame.
type FrameStats struct {
	Draws          int
	Flushes        int
	ShadowPasses   int
	ShadowFailures int
}

// Context is the per-control render state. Device resources in it belong
// to the current device generation.
type Context struct {
	Device   gfx.Device
	Desc     *core.SceneDesc
	Scene    *core.Scene
	Log      Logger
	Profiler *Profiler

	Core      gfx.Effect
	VertLight gfx.Effect
	White     gfx.Texture
	BeamTex   gfx.Texture
	NormalMap gfx.Texture
	LightCan  gfx.Mesh

	ShadowDepth   gfx.DepthSurface
	ShadowMapSize int

	BatchCapacity    int
	HighlightAmbient float32

	// Overlay supplies extra overlay lines, e.g. the manipulation mode.
	Overlay func() []string

	Stats FrameStats
}

func NewContext(desc *core.SceneDesc, log Logger) *Context {
	if log == nil {
		log = nopLogger{}
	}
	return &Context{
		Desc:             desc,
		Log:              log,
		ShadowMapSize:    DefaultShadowMapSize,
		BatchCapacity:    DefaultBatchCapacity,
		HighlightAmbient: DefaultHighlightAmbient,
	}
}

func (c *Context) ambient() mgl32.Vec4 { return c.Desc.Ambient.Vec4() }

// drawObject applies the mesh material and draws it.
func (c *Context) drawObject(e gfx.Effect, m gfx.Mesh) error {
	if m == nil {
		return nil
	}
	e.SetTexture(TexColorMap, c.White)
	e.SetVector(ParamMaterial, m.Material())
	return c.draw(e, m)
}

func (c *Context) draw(e gfx.Effect, m gfx.Mesh) error {
	if err := c.Device.DrawMesh(e, m); err != nil {
		return err
	}
	c.Stats.Draws++
	return nil
}

func (c *Context) lights() int {
	return min(len(c.Scene.Lights), len(c.Desc.Lights))
}
