package lightrig

import (
	"io/fs"

	"github.com/gekko3d/lightrig/rt/core"
	"github.com/gekko3d/lightrig/rt/editor"
	"github.com/gekko3d/lightrig/rt/render"
)

type ControlBuilder struct {
	desc     *core.SceneDesc
	cfg      Config
	log      Logger
	assets   fs.FS
	phases   []render.Phase
	noAssets bool
}

func NewControlBuilder(desc *core.SceneDesc) *ControlBuilder {
	return &ControlBuilder{desc: desc, cfg: DefaultConfig()}
}

func (b *ControlBuilder) UseConfig(cfg Config) *ControlBuilder {
	b.cfg = cfg
	return b
}

func (b *ControlBuilder) UseLogger(log Logger) *ControlBuilder {
	b.log = log
	return b
}

// UseAssets overrides the asset directory from the config.
func (b *ControlBuilder) UseAssets(fsys fs.FS) *ControlBuilder {
	b.assets = fsys
	b.noAssets = fsys == nil
	return b
}

// UsePhases replaces the frame phase list.
func (b *ControlBuilder) UsePhases(phases ...render.Phase) *ControlBuilder {
	b.phases = phases
	return b
}

func (b *ControlBuilder) Build() (*Control, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	desc := b.desc
	if desc == nil {
		desc = core.NewSceneDesc()
	}
	log := b.log
	if log == nil {
		log = NewNopLogger()
	}
	assets := b.assets
	if assets == nil && !b.noAssets {
		assets = b.cfg.Assets()
	}

	c := &Control{
		cfg:        b.cfg,
		log:        log,
		desc:       desc,
		assets:     assets,
		seq:        render.NewSequencer(),
		editor:     editor.NewManipulator(desc),
		profiler:   render.NewProfiler(),
		manipulate: b.cfg.ManipulateOnStart,
	}
	if b.phases != nil {
		c.seq.Phases = b.phases
	}

	c.ctx = render.NewContext(desc, log)
	c.ctx.Profiler = c.profiler
	c.ctx.ShadowMapSize = b.cfg.ShadowMapSize
	c.ctx.BatchCapacity = b.cfg.BatchCapacity
	c.ctx.HighlightAmbient = b.cfg.HighlightAmbient
	c.ctx.Overlay = c.overlayLines

	c.editor.Sensitivity = b.cfg.DragSensitivity
	c.editor.RotateSensitivity = b.cfg.RotateSensitivity
	c.editor.Redraw = c.redraw
	return c, nil
}
