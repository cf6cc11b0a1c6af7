package gfx

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type Op int

const (
	OpTechnique Op = iota
	OpSetTargets
	OpClear
	OpDrawMesh
	OpDrawBeam
	OpOverlay
)

func (o Op) String() string {
	return [...]string{"technique", "targets", "clear", "mesh", "beam", "overlay"}[o]
}

// Call is one recorded device command. Params is a snapshot of the
// effect's parameters at the time of the call.
type Call struct {
	Op        Op
	Effect    string
	Technique string
	Mesh      ResourceID
	Target    ResourceID
	Depth     ResourceID
	Params    map[string]any
	Lines     []string
}

// Recorder is a headless Device that records every command and tracks the
// live resource set. Failure hooks let callers exercise error paths.
type Recorder struct {
	Calls []Call

	// Meshes overrides or extends the built-in mesh library.
	Meshes map[string]*TriMesh

	FailRenderTarget func(width, height int) error
	FailDepthSurface func(width, height int) error
	FailSetTargets   func(t Targets) error
	FailEffect       func(name string) error

	generation    uuid.UUID
	live          map[ResourceID]string
	doubleRelease int
	inScene       bool
	targets       Targets
}

func NewRecorder() *Recorder {
	return &Recorder{
		Meshes:     map[string]*TriMesh{},
		generation: uuid.New(),
		live:       map[ResourceID]string{},
	}
}

// Live is the number of resources created and not yet released.
func (r *Recorder) Live() int { return len(r.live) }

// LiveKinds counts live resources by kind.
func (r *Recorder) LiveKinds() map[string]int {
	out := map[string]int{}
	for _, k := range r.live {
		out[k]++
	}
	return out
}

func (r *Recorder) DoubleReleases() int { return r.doubleRelease }

func (r *Recorder) Generation() uuid.UUID { return r.generation }

func (r *Recorder) ResetCalls() { r.Calls = r.Calls[:0] }

// Filter returns calls of op, optionally restricted to a technique.
func (r *Recorder) Filter(op Op, technique string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op && (technique == "" || c.Technique == technique) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) track(kind string) ResourceID {
	id := NewResourceID()
	r.live[id] = kind
	return id
}

func (r *Recorder) release(id ResourceID) {
	if _, ok := r.live[id]; !ok {
		r.doubleRelease++
		return
	}
	delete(r.live, id)
}

type recResource struct {
	id   ResourceID
	rec  *Recorder
	w, h int
	fmt  Format
}

func (t *recResource) ID() ResourceID   { return t.id }
func (t *recResource) Release()         { t.rec.release(t.id) }
func (t *recResource) Size() (int, int) { return t.w, t.h }
func (t *recResource) Format() Format   { return t.fmt }

type recBuffer struct {
	recResource
	n int
}

func (b *recBuffer) Len() int { return b.n }

type recMesh struct {
	*TriMesh
	id  ResourceID
	rec *Recorder
}

func (m *recMesh) ID() ResourceID { return m.id }
func (m *recMesh) Release()       { m.rec.release(m.id) }

func (r *Recorder) CreateTexture(img image.Image) (Texture, error) {
	b := img.Bounds()
	return &recResource{id: r.track("texture"), rec: r, w: b.Dx(), h: b.Dy(), fmt: FormatRGBA8}, nil
}

func (r *Recorder) CreateRenderTarget(width, height int, format Format) (RenderTarget, error) {
	if r.FailRenderTarget != nil {
		if err := r.FailRenderTarget(width, height); err != nil {
			return nil, err
		}
	}
	return &recResource{id: r.track("target"), rec: r, w: width, h: height, fmt: format}, nil
}

func (r *Recorder) CreateDepthSurface(width, height int) (DepthSurface, error) {
	if r.FailDepthSurface != nil {
		if err := r.FailDepthSurface(width, height); err != nil {
			return nil, err
		}
	}
	return &recResource{id: r.track("depth"), rec: r, w: width, h: height, fmt: FormatDepth}, nil
}

func (r *Recorder) CreateVertexBuffer(verts []BeamVertex) (VertexBuffer, error) {
	return &recBuffer{recResource: recResource{id: r.track("vertexbuffer"), rec: r}, n: len(verts)}, nil
}

func (r *Recorder) LoadEffect(name string) (Effect, error) {
	if _, ok := Techniques[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrEffectNotFound, name)
	}
	if r.FailEffect != nil {
		if err := r.FailEffect(name); err != nil {
			return nil, err
		}
	}
	return &recEffect{
		id:     r.track("effect"),
		rec:    r,
		name:   name,
		params: map[string]any{},
	}, nil
}

func (r *Recorder) LoadMesh(name string) (Mesh, error) {
	m, ok := r.Meshes[name]
	if !ok {
		if m, ok = BuiltinMesh(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, name)
		}
	}
	return &recMesh{TriMesh: m, id: r.track("mesh"), rec: r}, nil
}

func (r *Recorder) BeginScene() error {
	if r.inScene {
		return errors.New("gfx: scene already in progress")
	}
	r.inScene = true
	return nil
}

func (r *Recorder) EndScene() error {
	if !r.inScene {
		return ErrNoScene
	}
	r.inScene = false
	return nil
}

func (r *Recorder) Targets() Targets { return r.targets }

func (r *Recorder) SetTargets(t Targets) error {
	if r.FailSetTargets != nil {
		if err := r.FailSetTargets(t); err != nil {
			return err
		}
	}
	r.targets = t
	r.Calls = append(r.Calls, Call{Op: OpSetTargets, Target: targetID(t), Depth: depthID(t)})
	return nil
}

func (r *Recorder) Clear(color mgl32.Vec4, depth float32) {
	r.Calls = append(r.Calls, Call{
		Op:     OpClear,
		Target: targetID(r.targets),
		Params: map[string]any{"color": color, "depth": depth},
	})
}

func (r *Recorder) DrawMesh(e Effect, m Mesh) error {
	if !r.inScene {
		return ErrNoScene
	}
	eff, ok := e.(*recEffect)
	if !ok {
		return fmt.Errorf("gfx: foreign effect %T", e)
	}
	if eff.lost {
		return ErrDeviceLost
	}
	r.Calls = append(r.Calls, eff.call(OpDrawMesh, m.ID(), r.targets))
	return nil
}

func (r *Recorder) DrawBeam(e Effect, vb VertexBuffer) error {
	if !r.inScene {
		return ErrNoScene
	}
	eff, ok := e.(*recEffect)
	if !ok {
		return fmt.Errorf("gfx: foreign effect %T", e)
	}
	r.Calls = append(r.Calls, eff.call(OpDrawBeam, vb.ID(), r.targets))
	return nil
}

func (r *Recorder) DrawOverlay(lines []string) {
	r.Calls = append(r.Calls, Call{Op: OpOverlay, Lines: append([]string(nil), lines...)})
}

func (r *Recorder) Stats() string {
	return fmt.Sprintf("recorder %s, %d live resources", r.generation.String()[:8], len(r.live))
}

func targetID(t Targets) ResourceID {
	if t.Color == nil {
		return ResourceID{}
	}
	return t.Color.ID()
}

func depthID(t Targets) ResourceID {
	if t.Depth == nil {
		return ResourceID{}
	}
	return t.Depth.ID()
}

type recEffect struct {
	id        ResourceID
	rec       *Recorder
	name      string
	technique string
	params    map[string]any
	lost      bool
}

func (e *recEffect) ID() ResourceID    { return e.id }
func (e *recEffect) Release()          { e.rec.release(e.id) }
func (e *recEffect) Name() string      { return e.name }
func (e *recEffect) Technique() string { return e.technique }

func (e *recEffect) SetTechnique(name string) error {
	if !HasTechnique(e.name, name) {
		return fmt.Errorf("%w: %s.%s", ErrTechniqueNotFound, e.name, name)
	}
	e.technique = name
	e.rec.Calls = append(e.rec.Calls, e.call(OpTechnique, ResourceID{}, e.rec.targets))
	return nil
}

func (e *recEffect) SetMatrix(name string, m mgl32.Mat4) { e.params[name] = m }
func (e *recEffect) SetVector(name string, v mgl32.Vec4) { e.params[name] = v }
func (e *recEffect) SetFloat(name string, f float32)     { e.params[name] = f }
func (e *recEffect) SetInt(name string, i int)           { e.params[name] = i }
func (e *recEffect) SetTexture(name string, t Texture)   { e.params[name] = t }

func (e *recEffect) SetVectors(name string, v []mgl32.Vec3) {
	e.params[name] = append([]mgl32.Vec3(nil), v...)
}

func (e *recEffect) SetFloats(name string, f []float32) {
	e.params[name] = append([]float32(nil), f...)
}

func (e *recEffect) OnLost() { e.lost = true }

func (e *recEffect) OnReset() error {
	e.lost = false
	return nil
}

func (e *recEffect) call(op Op, mesh ResourceID, t Targets) Call {
	params := make(map[string]any, len(e.params))
	for k, v := range e.params {
		params[k] = v
	}
	return Call{
		Op:        op,
		Effect:    e.name,
		Technique: e.technique,
		Mesh:      mesh,
		Target:    targetID(t),
		Depth:     depthID(t),
		Params:    params,
	}
}
