package gfx

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderTracksResources(t *testing.T) {
	rec := NewRecorder()

	tex, err := rec.CreateTexture(nil2x2())
	require.NoError(t, err)
	rt, err := rec.CreateRenderTarget(512, 512, FormatR32F)
	require.NoError(t, err)
	mesh, err := rec.LoadMesh(MeshBox)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Live())
	assert.Equal(t, map[string]int{"texture": 1, "target": 1, "mesh": 1}, rec.LiveKinds())

	tex.Release()
	rt.Release()
	mesh.Release()
	assert.Equal(t, 0, rec.Live())

	mesh.Release()
	assert.Equal(t, 1, rec.DoubleReleases())
}

func TestTextureSlot(t *testing.T) {
	rec := NewRecorder()
	white, _ := rec.CreateTexture(nil2x2())
	gobo, _ := rec.CreateTexture(nil2x2())

	borrowed := BorrowedDefault(white)
	owned := Owned(gobo)
	assert.False(t, borrowed.IsOwned())
	assert.True(t, owned.IsOwned())

	borrowed.Release()
	owned.Release()
	assert.True(t, borrowed.Empty())
	assert.True(t, owned.Empty())
	assert.Equal(t, 1, rec.Live(), "only the owned texture is released")
	assert.Zero(t, rec.DoubleReleases())
}

func TestRecorderEffects(t *testing.T) {
	rec := NewRecorder()
	_, err := rec.LoadEffect("bogus")
	assert.ErrorIs(t, err, ErrEffectNotFound)

	e, err := rec.LoadEffect(EffectCore)
	require.NoError(t, err)
	assert.ErrorIs(t, e.SetTechnique(TechMultiLight), ErrTechniqueNotFound)
	require.NoError(t, e.SetTechnique(TechSceneAmbient))

	mesh, _ := rec.LoadMesh(MeshBox)
	assert.ErrorIs(t, rec.DrawMesh(e, mesh), ErrNoScene)

	require.NoError(t, rec.BeginScene())
	e.SetVector("g_vMaterial", mgl32.Vec4{1, 0, 0, 1})
	require.NoError(t, rec.DrawMesh(e, mesh))
	e.SetVector("g_vMaterial", mgl32.Vec4{0, 1, 0, 1})

	e.OnLost()
	assert.ErrorIs(t, rec.DrawMesh(e, mesh), ErrDeviceLost)
	require.NoError(t, e.OnReset())
	require.NoError(t, rec.EndScene())

	draws := rec.Filter(OpDrawMesh, TechSceneAmbient)
	require.Len(t, draws, 1)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, draws[0].Params["g_vMaterial"], "params are snapshotted")
	assert.Equal(t, mesh.ID(), draws[0].Mesh)
}

func TestRecorderTargets(t *testing.T) {
	rec := NewRecorder()
	rec.FailSetTargets = func(t Targets) error {
		if t.Color != nil {
			return errors.New("no")
		}
		return nil
	}
	rt, _ := rec.CreateRenderTarget(4, 4, FormatR32F)
	assert.Error(t, rec.SetTargets(Targets{Color: rt}))
	assert.NoError(t, rec.SetTargets(Targets{}))
	assert.Nil(t, rec.Targets().Color)
}

func nil2x2() image.Image { return image.NewRGBA(image.Rect(0, 0, 2, 2)) }
