package core

import "github.com/go-gl/mathgl/mgl32"

// PinMask locks individual position/orientation axes of a light or camera
// against manipulation.
type PinMask uint32

const (
	PinX PinMask = 1 << iota
	PinY
	PinZ
	PinH
	PinP
	PinR

	PinXYZ = PinX | PinY | PinZ
	PinHPR = PinH | PinP | PinR
)

func (m PinMask) Has(p PinMask) bool { return m&p != 0 }

// Position is a logical position in meters with Z pointing up.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Render returns the position in renderer axis order; logical Z feeds
// the renderer's Y (up) axis.
func (p Position) Render() mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Z, p.Y}
}

// Orientation is heading, pitch and roll in degrees.
type Orientation struct {
	H float32 `json:"h"`
	P float32 `json:"p"`
	R float32 `json:"r"`
}

// Color is an 8-bit-per-channel RGB color stored as ints in 0..255.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
}

type ObjectDesc struct {
	Mesh        string      `json:"mesh"`
	Position    Position    `json:"position"`
	Orientation Orientation `json:"orientation"`
}

type LightDesc struct {
	Name         string      `json:"name,omitempty"`
	Position     Position    `json:"position"`
	Orientation  Orientation `json:"orientation"`
	Color        Color       `json:"color"`
	Umbra        float32     `json:"umbra"`
	Penumbra     float32     `json:"penumbra"`
	Att1         float32     `json:"att1"`
	Att2         float32     `json:"att2"`
	Enabled      bool        `json:"enabled"`
	CastsShadows bool        `json:"casts_shadows"`
	Gobo         string      `json:"gobo,omitempty"`
	PinMask      PinMask     `json:"pin_mask,omitempty"`
}

func (l *LightDesc) HasGobo() bool { return l.Gobo != "" }

// Cone angles are kept inside (0,180) so the light projection stays finite.
const (
	MinConeAngle = 1
	MaxConeAngle = 179
)

// ConeAngle is the full cone angle (umbra plus penumbra) in degrees,
// clamped to [MinConeAngle, MaxConeAngle].
func (l *LightDesc) ConeAngle() float32 {
	return mgl32.Clamp(l.Umbra+l.Penumbra, MinConeAngle, MaxConeAngle)
}

type CameraDesc struct {
	Name        string      `json:"name"`
	Position    Position    `json:"position"`
	Orientation Orientation `json:"orientation"`
	FOV         float32     `json:"fov"`
	PinMask     PinMask     `json:"pin_mask,omitempty"`
}

// DefaultCamera is used while the description has no valid current camera.
func DefaultCamera() CameraDesc {
	return CameraDesc{
		Name:     "default",
		Position: Position{X: 0, Y: -10, Z: 2},
		FOV:      45,
	}
}

// SceneDesc is the logical scene owned by the host. The control reads it
// every frame and writes back only the current light selection and the
// positions and orientations of manipulated entities.
type SceneDesc struct {
	Objects     []ObjectDesc `json:"objects"`
	Lights      []LightDesc  `json:"lights"`
	Cameras     []CameraDesc `json:"cameras"`
	Ambient     Color        `json:"ambient"`
	ClearColor  Color        `json:"clear_color"`
	CurLight    int          `json:"cur_light"`
	CurCamera   int          `json:"cur_camera"`
	WantShadows bool         `json:"want_shadows"`
	WantEffects bool         `json:"want_effects"`
}

func NewSceneDesc() *SceneDesc {
	return &SceneDesc{
		Ambient:     Color{24, 24, 24},
		CurLight:    -1,
		CurCamera:   -1,
		WantShadows: true,
	}
}

// ActiveCamera returns the current camera or DefaultCamera when none is
// selected.
func (d *SceneDesc) ActiveCamera() CameraDesc {
	if d.CurCamera >= 0 && d.CurCamera < len(d.Cameras) {
		return d.Cameras[d.CurCamera]
	}
	return DefaultCamera()
}

// MoveLight adds the given deltas to light i. Nil deltas are skipped and
// axes set in the light's pin mask stay untouched.
func (d *SceneDesc) MoveLight(i int, pos *Position, orient *Orientation) {
	if i < 0 || i >= len(d.Lights) {
		return
	}
	l := &d.Lights[i]
	movePinned(&l.Position, &l.Orientation, l.PinMask, pos, orient)
}

// MoveObject adds the given deltas to object i.
func (d *SceneDesc) MoveObject(i int, pos *Position, orient *Orientation) {
	if i < 0 || i >= len(d.Objects) {
		return
	}
	o := &d.Objects[i]
	movePinned(&o.Position, &o.Orientation, 0, pos, orient)
}

// MoveCamera adds the given deltas to the current camera, honouring its
// pin mask.
func (d *SceneDesc) MoveCamera(pos *Position, orient *Orientation) {
	if d.CurCamera < 0 || d.CurCamera >= len(d.Cameras) {
		return
	}
	c := &d.Cameras[d.CurCamera]
	movePinned(&c.Position, &c.Orientation, c.PinMask, pos, orient)
}

func movePinned(p *Position, o *Orientation, pin PinMask, dp *Position, do *Orientation) {
	if dp != nil {
		if !pin.Has(PinX) {
			p.X += dp.X
		}
		if !pin.Has(PinY) {
			p.Y += dp.Y
		}
		if !pin.Has(PinZ) {
			p.Z += dp.Z
		}
	}
	if do != nil {
		if !pin.Has(PinH) {
			o.H += do.H
		}
		if !pin.Has(PinP) {
			o.P += do.P
		}
		if !pin.Has(PinR) {
			o.R += do.R
		}
	}
}
