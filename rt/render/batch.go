package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

// LightBatch is a group of basic lights uploaded together. The arrays are
// always capacity long; entries past Count are zero.
type LightBatch struct {
	Dir      []mgl32.Vec3
	Pos      []mgl32.Vec3
	Diffuse  []mgl32.Vec3
	CosTheta []float32
	Count    int
	// First is set on the first flush of a frame, the only one that adds
	// ambient light.
	First bool
	// Lights holds the scene indices of the batched lights.
	Lights []int
}

func newLightBatch(capacity int) *LightBatch {
	return &LightBatch{
		Dir:      make([]mgl32.Vec3, capacity),
		Pos:      make([]mgl32.Vec3, capacity),
		Diffuse:  make([]mgl32.Vec3, capacity),
		CosTheta: make([]float32, capacity),
		Lights:   make([]int, 0, capacity),
	}
}

func (b *LightBatch) add(i int, l *core.LightState) {
	n := b.Count
	b.Dir[n] = l.Dir
	b.Pos[n] = l.Pos
	b.Diffuse[n] = l.Color.Vec3()
	b.CosTheta[n] = l.CosTheta
	b.Lights = append(b.Lights, i)
	b.Count++
}

func (b *LightBatch) reset() {
	clear(b.Dir)
	clear(b.Pos)
	clear(b.Diffuse)
	clear(b.CosTheta)
	b.Lights = b.Lights[:0]
	b.Count = 0
}

// Batch walks the lights in scene order and collects enabled basic lights.
// flush is called whenever capacity lights are collected and after the
// last light. A scene without lights still gets one empty flush so the
// ambient term is drawn.
func Batch(lights []*core.LightState, descs []core.LightDesc, capacity int, flush func(*LightBatch) error) error {
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	b := newLightBatch(capacity)
	n := min(len(lights), len(descs))
	first := true

	emit := func() error {
		b.First = first
		first = false
		err := flush(b)
		b.reset()
		return err
	}

	if n == 0 {
		return emit()
	}
	for i := 0; i < n; i++ {
		if descs[i].Enabled && lights[i].Loop == core.LoopBasic {
			b.add(i, lights[i])
		}
		if b.Count == capacity || i == n-1 {
			if err := emit(); err != nil {
				return err
			}
		}
	}
	return nil
}

// batchPhase draws every object once per flush with the vertex-lit
// program.
func batchPhase(c *Context) error {
	e := c.VertLight
	cam := &c.Scene.Camera

	return Batch(c.Scene.Lights, c.Desc.Lights, c.BatchCapacity, func(b *LightBatch) error {
		tech := gfx.TechMultiLightBatch
		if b.First {
			tech = gfx.TechMultiLight
		}
		if err := e.SetTechnique(tech); err != nil {
			return err
		}
		c.Stats.Flushes++

		e.SetVectors(ParamLightDirWorld, b.Dir)
		e.SetVectors(ParamLightPosWorld, b.Pos)
		e.SetVectors(ParamLightDiffuse, b.Diffuse)
		e.SetFloats(ParamCosThetaWorld, b.CosTheta)
		e.SetInt(ParamNumActiveLights, b.Count)

		for _, o := range c.Scene.Objects {
			e.SetMatrix(ParamWorldView, cam.WorldView(o.World))
			e.SetMatrix(ParamWorld, o.World)
			if err := c.drawObject(e, o.Mesh); err != nil {
				return err
			}
		}
		return nil
	})
}
