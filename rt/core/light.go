package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
)

// LoopClass selects which render pass lights a given light.
type LoopClass int

const (
	// LoopBasic lights are folded into the batched vertex-lit pass.
	LoopBasic LoopClass = iota
	// LoopGobo lights get a per-pixel additive pass with a projected mask.
	LoopGobo
	// LoopGoboShadow lights add a shadow map lookup to the gobo pass.
	LoopGoboShadow
)

func (c LoopClass) String() string {
	switch c {
	case LoopBasic:
		return "basic"
	case LoopGobo:
		return "gobo"
	case LoopGoboShadow:
		return "gobo+shadow"
	}
	return "unknown"
}

// Classify is total over its inputs. A shadow caster without a gobo still
// takes the shadowed pass and is masked by its procedural cone.
func Classify(hasGobo, castsShadow bool) LoopClass {
	switch {
	case castsShadow:
		return LoopGoboShadow
	case hasGobo:
		return LoopGobo
	default:
		return LoopBasic
	}
}

// LightState is the device-generation bound data derived from a LightDesc.
type LightState struct {
	Fingerprint

	World         mgl32.Mat4
	View          mgl32.Mat4
	Proj          mgl32.Mat4
	WorldViewProj mgl32.Mat4
	Dir           mgl32.Vec3
	Pos           mgl32.Vec3
	CosTheta      float32
	Color         mgl32.Vec4
	Loop          LoopClass

	ShadowMap gfx.RenderTarget
	Gobo      gfx.TextureSlot
	Beam      gfx.VertexBuffer

	// ShadowFailed keeps the light moved past EndFrame. ShadowStale marks
	// a settled light whose map was not redrawn for its current pose.
	ShadowFailed bool
	ShadowStale  bool
}

func NewLightState(desc *LightDesc) *LightState {
	return &LightState{
		Fingerprint: newFingerprint(LightFingerprint(desc)),
		Color:       desc.Color.Vec4(),
		Loop:        Classify(desc.HasGobo(), desc.CastsShadows),
	}
}

// Solve recomputes the light's matrices from its description.
func (l *LightState) Solve(desc *LightDesc) {
	orient := HeadingPitch(desc.Orientation)
	fov := rad(desc.ConeAngle())

	l.Dir = orient.Mul4x1(Forward.Vec4(0)).Vec3()
	l.Pos = desc.Position.Render()
	l.View = LookAtLH(l.Pos, l.Pos.Add(l.Dir), Up)
	l.Proj = PerspectiveLH(fov, 1, LightNear, LightFar)
	l.World = mgl32.Translate3D(l.Pos.X(), l.Pos.Y(), l.Pos.Z()).Mul4(orient)
	l.WorldViewProj = l.Proj.Mul4(l.View)
	l.CosTheta = float32(math.Cos(float64(fov)))
	l.Color = desc.Color.Vec4()
}

// ReleaseShadowMap drops the shadow target; it is recreated on reset.
func (l *LightState) ReleaseShadowMap() {
	if l.ShadowMap != nil {
		l.ShadowMap.Release()
		l.ShadowMap = nil
	}
}

// Release frees every resource the light owns. A borrowed gobo is left
// alone.
func (l *LightState) Release() {
	l.ReleaseShadowMap()
	l.Gobo.Release()
	if l.Beam != nil {
		l.Beam.Release()
		l.Beam = nil
	}
}
