package lightrig

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/gfx"
)

var backBuffer = gfx.SurfaceDesc{Width: 800, Height: 600}

func stageScene() *core.SceneDesc {
	desc := core.NewSceneDesc()
	desc.Objects = []core.ObjectDesc{
		{Mesh: gfx.MeshStage},
		{Mesh: gfx.MeshBox, Position: core.Position{Y: 3, Z: 0.5}},
	}
	desc.Lights = []core.LightDesc{
		{
			Position: core.Position{X: -3, Y: -3, Z: 4}, Orientation: core.Orientation{H: 45, P: -40},
			Color: core.Color{255, 255, 255}, Umbra: 20, Penumbra: 5, Enabled: true, CastsShadows: true,
		},
		{
			Position: core.Position{X: 3, Y: -3, Z: 4}, Orientation: core.Orientation{H: -45, P: -40},
			Color: core.Color{255, 0, 0}, Umbra: 20, Penumbra: 5, Enabled: true,
		},
	}
	desc.Cameras = []core.CameraDesc{{Name: "main", Position: core.Position{Y: -8, Z: 0.5}, FOV: 45}}
	desc.CurCamera = 0
	return desc
}

func newControl(t *testing.T, desc *core.SceneDesc, log Logger) (*Control, *gfx.Recorder) {
	t.Helper()
	c, err := NewControlBuilder(desc).UseAssets(nil).UseLogger(log).Build()
	require.NoError(t, err)
	return c, gfx.NewRecorder()
}

func readyControl(t *testing.T, desc *core.SceneDesc) (*Control, *gfx.Recorder) {
	t.Helper()
	c, rec := newControl(t, desc, nil)
	require.NoError(t, c.OnDeviceCreate(rec, backBuffer))
	require.NoError(t, c.OnDeviceReset(rec, backBuffer))
	return c, rec
}

func TestControlLifecycle(t *testing.T) {
	var logs bytes.Buffer
	c, rec := newControl(t, stageScene(), NewWriterLogger("test", false, &logs, &logs))
	assert.Equal(t, StateUninitialized, c.State())

	assert.ErrorIs(t, c.OnFrameRender(rec, 0), ErrNotReady)
	assert.ErrorIs(t, c.OnDeviceReset(rec, backBuffer), ErrNotReady)

	require.NoError(t, c.OnDeviceCreate(rec, backBuffer))
	assert.Equal(t, StateLost, c.State())
	assert.ErrorIs(t, c.OnDeviceCreate(rec, backBuffer), ErrBadState)
	assert.ErrorIs(t, c.Draw(), ErrNotReady)
	assert.Equal(t, 1, strings.Count(logs.String(), "WARN"), "skipped frames warn once")

	afterCreate := rec.Live()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.OnDeviceReset(rec, backBuffer))
		assert.Equal(t, StateReady, c.State())
		require.NoError(t, c.Draw())

		c.OnDeviceLost()
		assert.Equal(t, StateLost, c.State())
		assert.Equal(t, afterCreate, rec.Live(), "cycle %d leaked", i)
		c.OnDeviceLost()
	}

	require.NoError(t, c.OnDeviceReset(rec, backBuffer))
	c.OnDeviceDestroy()
	assert.Equal(t, StateUninitialized, c.State())
	assert.Zero(t, rec.Live(), "live resources: %v", rec.LiveKinds())
	assert.Zero(t, rec.DoubleReleases())

	c.OnDeviceDestroy()
	assert.Zero(t, rec.DoubleReleases())
}

func TestControlRecreateAfterDestroy(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	c.OnDeviceDestroy()

	require.NoError(t, c.OnDeviceCreate(rec, backBuffer))
	require.NoError(t, c.OnDeviceReset(rec, backBuffer))
	require.NoError(t, c.Draw())
	c.OnDeviceDestroy()
	assert.Zero(t, rec.Live())
}

func TestControlCreateFailureReleases(t *testing.T) {
	desc := stageScene()
	desc.Objects = append(desc.Objects, core.ObjectDesc{Mesh: "teapot.x"})
	c, rec := newControl(t, desc, nil)

	err := c.OnDeviceCreate(rec, backBuffer)
	assert.ErrorIs(t, err, gfx.ErrMeshNotFound)
	assert.Equal(t, StateUninitialized, c.State())
	assert.Zero(t, rec.Live())
}

func TestControlMissingGobo(t *testing.T) {
	desc := stageScene()
	desc.Lights[1].Gobo = "star.bmp"
	c, rec := newControl(t, desc, nil)

	assert.Error(t, c.OnDeviceCreate(rec, backBuffer))
	assert.Zero(t, rec.Live())
}

func TestControlResetFailure(t *testing.T) {
	c, rec := newControl(t, stageScene(), nil)
	require.NoError(t, c.OnDeviceCreate(rec, backBuffer))
	afterCreate := rec.Live()

	rec.FailRenderTarget = func(int, int) error { return errors.New("out of video memory") }
	assert.Error(t, c.OnDeviceReset(rec, backBuffer))
	assert.Equal(t, StateLost, c.State())
	assert.Equal(t, afterCreate, rec.Live())

	rec.FailRenderTarget = nil
	require.NoError(t, c.OnDeviceReset(rec, backBuffer))
	assert.Equal(t, StateReady, c.State())
}

func TestControlResetWhileReady(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	live := rec.Live()

	resized := gfx.SurfaceDesc{Width: 1024, Height: 512}
	require.NoError(t, c.OnDeviceReset(rec, resized))
	assert.Equal(t, live, rec.Live())

	require.NoError(t, c.Draw())
	assert.Equal(t, float32(2), c.Scene().Camera.Aspect)
}

func TestDrawSettlesMovedFlags(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	require.NoError(t, c.Draw())
	assert.Len(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen), 1, "one shadow caster, one occluder")

	for i, l := range c.Scene().Lights {
		assert.False(t, l.Moved(), "light %d", i)
	}
	for i, o := range c.Scene().Objects {
		assert.False(t, o.Moved(), "object %d", i)
	}

	rec.ResetCalls()
	require.NoError(t, c.Draw())
	assert.Empty(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen))
}

func TestHostEditsAreDetected(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	require.NoError(t, c.Draw())

	c.Desc().MoveLight(0, &core.Position{Z: 1}, nil)
	rec.ResetCalls()
	require.NoError(t, c.Draw())
	assert.Len(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen), 1)
}

func TestHostObjectEditRedrawsShadows(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	require.NoError(t, c.Draw())

	c.Desc().MoveObject(1, &core.Position{X: 2}, nil)
	rec.ResetCalls()
	require.NoError(t, c.Draw())
	assert.Len(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen), 1)

	rec.ResetCalls()
	require.NoError(t, c.Draw())
	assert.Empty(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen))
}

func TestManipulateObjectRedrawsShadows(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	require.NoError(t, c.Draw())

	assert.False(t, c.PrimaryDown(400, 300), "camera mode ignores the mouse")

	c.SetManipulate(true)
	require.True(t, c.PrimaryDown(400, 300))
	assert.Equal(t, -1, c.Desc().CurLight)

	rec.ResetCalls()
	require.True(t, c.MouseMove(410, 300, false))
	assert.InDelta(t, 0.25, c.Desc().Objects[1].Position.X, 1e-6)
	assert.Len(t, rec.Filter(gfx.OpDrawMesh, gfx.TechShadowMapGen), 1, "the move redraws immediately")

	for _, l := range c.Scene().Lights {
		assert.False(t, l.Moved())
	}

	require.True(t, c.PrimaryUp())
	assert.False(t, c.MouseMove(420, 300, false))
}

func TestOverlayShowsMode(t *testing.T) {
	c, rec := readyControl(t, stageScene())

	require.NoError(t, c.Draw())
	overlay := rec.Filter(gfx.OpOverlay, "")
	require.Len(t, overlay, 1)
	assert.Contains(t, overlay[0].Lines, "Manipulation Mode: Camera")

	c.ToggleManipulate()
	rec.ResetCalls()
	require.NoError(t, c.Draw())
	overlay = rec.Filter(gfx.OpOverlay, "")
	require.Len(t, overlay, 1)
	assert.Contains(t, overlay[0].Lines, "Manipulation Mode: Object/light")
}

func TestSetShadowMapSize(t *testing.T) {
	c, rec := readyControl(t, stageScene())
	live := rec.Live()

	assert.ErrorIs(t, c.SetShadowMapSize(100), ErrInvalidConfig)
	require.NoError(t, c.SetShadowMapSize(1024))

	w, h := c.Scene().Lights[0].ShadowMap.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)
	assert.Nil(t, c.Scene().Lights[1].ShadowMap)
	assert.Equal(t, live, rec.Live())
}

func TestEmptyScene(t *testing.T) {
	c, rec := readyControl(t, core.NewSceneDesc())
	require.NoError(t, c.Draw())
	assert.Equal(t, 1, c.Stats().Flushes)
	assert.Zero(t, c.Stats().Draws)
	assert.Len(t, rec.Filter(gfx.OpTechnique, gfx.TechMultiLight), 1)
}
