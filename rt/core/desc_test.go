package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveLightHonoursPinMask(t *testing.T) {
	desc := testDesc()
	desc.Lights[0].PinMask = PinXYZ
	before := desc.Lights[0]

	desc.MoveLight(0, &Position{X: 1, Y: 1, Z: 1}, &Orientation{H: 10, P: -5, R: 2})

	got := desc.Lights[0]
	assert.Equal(t, before.Position, got.Position)
	assert.Equal(t, before.Orientation.H+10, got.Orientation.H)
	assert.Equal(t, before.Orientation.P-5, got.Orientation.P)
	assert.Equal(t, before.Orientation.R+2, got.Orientation.R)
}

func TestMoveLightSingleAxisPins(t *testing.T) {
	desc := testDesc()
	desc.Lights[1].PinMask = PinZ | PinH
	before := desc.Lights[1]

	desc.MoveLight(1, &Position{X: 1, Y: 2, Z: 3}, &Orientation{H: 4, P: 5})

	got := desc.Lights[1]
	assert.Equal(t, before.Position.X+1, got.Position.X)
	assert.Equal(t, before.Position.Y+2, got.Position.Y)
	assert.Equal(t, before.Position.Z, got.Position.Z)
	assert.Equal(t, before.Orientation.H, got.Orientation.H)
	assert.Equal(t, before.Orientation.P+5, got.Orientation.P)
}

func TestMoveNilDeltasAndBadIndex(t *testing.T) {
	desc := testDesc()
	lights := append([]LightDesc(nil), desc.Lights...)
	objects := append([]ObjectDesc(nil), desc.Objects...)

	desc.MoveLight(0, nil, nil)
	desc.MoveLight(7, &Position{X: 1}, nil)
	desc.MoveObject(-1, &Position{X: 1}, nil)

	assert.Equal(t, lights, desc.Lights)
	assert.Equal(t, objects, desc.Objects)
}

func TestMoveObject(t *testing.T) {
	desc := testDesc()
	desc.MoveObject(1, &Position{Z: 1}, &Orientation{R: 15})
	assert.Equal(t, float32(1.5), desc.Objects[1].Position.Z)
	assert.Equal(t, float32(15), desc.Objects[1].Orientation.R)
}

func TestMoveCameraPinned(t *testing.T) {
	desc := testDesc()
	desc.Cameras = []CameraDesc{{Name: "a", PinMask: PinHPR}}
	desc.CurCamera = 0

	desc.MoveCamera(&Position{X: 2}, &Orientation{H: 30})
	assert.Equal(t, float32(2), desc.Cameras[0].Position.X)
	assert.Equal(t, float32(0), desc.Cameras[0].Orientation.H)
}

func TestActiveCameraFallsBack(t *testing.T) {
	desc := NewSceneDesc()
	assert.Equal(t, DefaultCamera(), desc.ActiveCamera())

	desc.Cameras = []CameraDesc{{Name: "top", FOV: 60}}
	desc.CurCamera = 0
	assert.Equal(t, "top", desc.ActiveCamera().Name)
}

func TestLoadSceneDesc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	data := `{
		"objects": [{"mesh": "stage"}],
		"lights": [{"position": {"x": 1, "y": 2, "z": 3}, "umbra": 20, "penumbra": 5, "enabled": true, "pin_mask": 7}],
		"cameras": [{"name": "main", "fov": 50}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	desc, err := LoadSceneDesc(path)
	require.NoError(t, err)

	assert.Equal(t, Color{24, 24, 24}, desc.Ambient)
	assert.True(t, desc.WantShadows)
	assert.Equal(t, -1, desc.CurLight)
	assert.Equal(t, 0, desc.CurCamera)
	assert.Equal(t, PinXYZ, desc.Lights[0].PinMask)
	assert.Equal(t, float32(3), desc.Lights[0].Position.Z)
}

func TestSaveAndLoadSceneDesc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	demo := DemoScene()
	require.NoError(t, SaveSceneDesc(demo, path))

	loaded, err := LoadSceneDesc(path)
	require.NoError(t, err)
	assert.Equal(t, demo, loaded)
}

func TestLoadSceneDescErrors(t *testing.T) {
	_, err := LoadSceneDesc(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadSceneDesc(path)
	assert.Error(t, err)
}
