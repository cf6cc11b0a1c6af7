package lightrig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/lightrig/rt/editor"
	"github.com/gekko3d/lightrig/rt/render"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Config holds the tunables of the control and its host.
type Config struct {
	ShadowMapSize     int          `yaml:"shadow_map_size"`
	BatchCapacity     int          `yaml:"batch_capacity"`
	DragSensitivity   float32      `yaml:"drag_sensitivity"`
	RotateSensitivity float32      `yaml:"rotate_sensitivity"`
	HighlightAmbient  float32      `yaml:"highlight_ambient"`
	ManipulateOnStart bool         `yaml:"manipulate_on_start"`
	AssetDir          string       `yaml:"asset_dir"`
	Scene             string       `yaml:"scene"`
	Window            WindowConfig `yaml:"window"`
	Debug             bool         `yaml:"debug"`
	Headless          bool         `yaml:"headless"`
	Frames            int          `yaml:"frames"`
}

func DefaultConfig() Config {
	return Config{
		ShadowMapSize:     render.DefaultShadowMapSize,
		BatchCapacity:     render.DefaultBatchCapacity,
		DragSensitivity:   editor.DefaultSensitivity,
		RotateSensitivity: editor.DefaultRotateSensitivity,
		HighlightAmbient:  render.DefaultHighlightAmbient,
		AssetDir:          ".",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "lightrig",
		},
		Frames: 1,
	}
}

// LoadConfig reads a YAML config. A missing file yields the defaults;
// keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.ShadowMapSize < 16 || c.ShadowMapSize&(c.ShadowMapSize-1) != 0:
		return fmt.Errorf("%w: shadow_map_size %d is not a power of two >= 16", ErrInvalidConfig, c.ShadowMapSize)
	case c.BatchCapacity < 1 || c.BatchCapacity > render.MaxBatchCapacity:
		return fmt.Errorf("%w: batch_capacity must be in [1,%d]", ErrInvalidConfig, render.MaxBatchCapacity)
	case c.DragSensitivity <= 0 || c.RotateSensitivity <= 0:
		return fmt.Errorf("%w: sensitivities must be positive", ErrInvalidConfig)
	case c.HighlightAmbient < 0 || c.HighlightAmbient > 1:
		return fmt.Errorf("%w: highlight_ambient must be in [0,1]", ErrInvalidConfig)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	return nil
}

// Assets is the file system gobo images are loaded from.
func (c Config) Assets() fs.FS {
	if c.AssetDir == "" {
		return nil
	}
	return os.DirFS(c.AssetDir)
}
