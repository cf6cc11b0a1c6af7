package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSceneDesc reads a JSON scene description. Fields missing from the
// file keep the NewSceneDesc defaults.
func LoadSceneDesc(filename string) (*SceneDesc, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	desc := NewSceneDesc()
	if err := json.Unmarshal(bytes, desc); err != nil {
		return nil, fmt.Errorf("scene %s: %w", filename, err)
	}
	if desc.CurCamera < 0 && len(desc.Cameras) > 0 {
		desc.CurCamera = 0
	}
	if desc.CurLight >= len(desc.Lights) {
		desc.CurLight = -1
	}
	return desc, nil
}

func SaveSceneDesc(desc *SceneDesc, filename string) error {
	bytes, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

// DemoScene is a small stage with two boxes and three spotlights, used
// when no scene file is given.
func DemoScene() *SceneDesc {
	desc := NewSceneDesc()
	desc.ClearColor = Color{16, 16, 32}
	desc.Objects = []ObjectDesc{
		{Mesh: "stage"},
		{Mesh: "box", Position: Position{X: -1.5, Y: 2, Z: 0.5}},
		{Mesh: "box", Position: Position{X: 1.5, Y: 3, Z: 0.5}, Orientation: Orientation{H: 30}},
	}
	desc.Lights = []LightDesc{
		{
			Name:     "key",
			Position: Position{X: -4, Y: -2, Z: 5}, Orientation: Orientation{H: 45, P: -40},
			Color: Color{255, 230, 200}, Umbra: 20, Penumbra: 8, Att1: 0.05, Att2: 0.01,
			Enabled: true, CastsShadows: true,
		},
		{
			Name:     "fill",
			Position: Position{X: 4, Y: -2, Z: 4}, Orientation: Orientation{H: -45, P: -35},
			Color: Color{120, 140, 255}, Umbra: 25, Penumbra: 10, Att1: 0.05, Att2: 0.01,
			Enabled: true,
		},
		{
			Name:     "back",
			Position: Position{X: 0, Y: 8, Z: 4}, Orientation: Orientation{H: 180, P: -30},
			Color: Color{255, 255, 255}, Umbra: 15, Penumbra: 5, Att1: 0.05, Att2: 0.01,
			Enabled: true, PinMask: PinZ,
		},
	}
	desc.Cameras = []CameraDesc{
		{Name: "front", Position: Position{X: 0, Y: -8, Z: 3}, Orientation: Orientation{P: -15}, FOV: 45},
	}
	desc.CurCamera = 0
	return desc
}
