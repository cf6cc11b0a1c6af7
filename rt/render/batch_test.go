package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

func basicLights(n int) *core.SceneDesc {
	desc := twoObjectScene()
	desc.Lights = make([]core.LightDesc, n)
	for i := range desc.Lights {
		desc.Lights[i] = core.LightDesc{
			Position: core.Position{X: float32(i)},
			Color:    core.Color{R: i % 256},
			Umbra:    10,
			Penumbra: 5,
			Enabled:  true,
		}
	}
	return desc
}

func TestBatchSplitsAtCapacity(t *testing.T) {
	desc := basicLights(100)
	scene := core.NewScene(desc)
	scene.Solve(desc, 1)

	var counts []int
	var firsts []bool
	var order []int
	err := Batch(scene.Lights, desc.Lights, 48, func(b *LightBatch) error {
		counts = append(counts, b.Count)
		firsts = append(firsts, b.First)
		order = append(order, b.Lights...)
		for i := 0; i < b.Count; i++ {
			assert.Equal(t, scene.Lights[b.Lights[i]].Pos, b.Pos[i])
		}
		for i := b.Count; i < len(b.Pos); i++ {
			assert.Equal(t, mgl32.Vec3{}, b.Pos[i], "padding is zeroed")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{48, 48, 4}, counts)
	assert.Equal(t, []bool{true, false, false}, firsts)
	require.Len(t, order, 100)
	for i, idx := range order {
		assert.Equal(t, i, idx)
	}
}

func TestBatchExactMultiple(t *testing.T) {
	desc := basicLights(96)
	scene := core.NewScene(desc)

	var counts []int
	require.NoError(t, Batch(scene.Lights, desc.Lights, 48, func(b *LightBatch) error {
		counts = append(counts, b.Count)
		return nil
	}))
	assert.Equal(t, []int{48, 48}, counts)
}

func TestBatchSkipsNonBasicAndDisabled(t *testing.T) {
	desc := basicLights(5)
	desc.Lights[1].Enabled = false
	desc.Lights[3].CastsShadows = true
	desc.Lights[4].Gobo = "star.bmp"
	scene := core.NewScene(desc)

	var got []int
	var flushes int
	require.NoError(t, Batch(scene.Lights, desc.Lights, 48, func(b *LightBatch) error {
		flushes++
		got = append(got, b.Lights...)
		return nil
	}))
	assert.Equal(t, 1, flushes, "the last light flushes even when it is not batched")
	assert.Equal(t, []int{0, 2}, got)
}

func TestBatchWithoutLights(t *testing.T) {
	var flushes []LightBatch
	require.NoError(t, Batch(nil, nil, 48, func(b *LightBatch) error {
		flushes = append(flushes, *b)
		return nil
	}))
	require.Len(t, flushes, 1)
	assert.True(t, flushes[0].First)
	assert.Zero(t, flushes[0].Count)
}

func TestBatchPhaseAddsAmbientOnce(t *testing.T) {
	c, rec := newTestContext(t, basicLights(100))
	renderFrame(t, c, rec)

	assert.Equal(t, 1, countTechnique(rec, gfx.TechMultiLight))
	assert.Equal(t, 2, countTechnique(rec, gfx.TechMultiLightBatch))
	assert.Equal(t, 3, c.Stats.Flushes)

	batches := rec.Filter(gfx.OpDrawMesh, gfx.TechMultiLightBatch)
	require.Len(t, batches, 4, "two objects per flush")
	assert.Equal(t, 48, batches[0].Params[ParamNumActiveLights])
	assert.Equal(t, 4, batches[3].Params[ParamNumActiveLights])

	pos := batches[3].Params[ParamLightPosWorld].([]mgl32.Vec3)
	require.Len(t, pos, 48)
	assert.Equal(t, c.Scene.Lights[96].Pos, pos[0])
	assert.Equal(t, c.Scene.Lights[99].Pos, pos[3])
}
