package core

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
)

type ObjectState struct {
	Fingerprint

	Mesh          gfx.Mesh
	World         mgl32.Mat4
	WorldViewProj mgl32.Mat4
}

func NewObjectState(desc *ObjectDesc) *ObjectState {
	return &ObjectState{
		Fingerprint: newFingerprint(ObjectFingerprint(desc)),
		World:       mgl32.Ident4(),
	}
}

// Update recomputes the world matrix if the object moved. The
// world-view-projection is always refreshed since the camera may have
// changed.
func (o *ObjectState) Update(desc *ObjectDesc, cam *Camera) bool {
	recomputed := false
	if o.Moved() {
		o.World = ObjectWorld(desc.Position, desc.Orientation)
		recomputed = true
	}
	o.WorldViewProj = cam.Proj.Mul4(cam.View).Mul4(o.World)
	return recomputed
}

// Scene is the derived state for one device generation. Its slices are
// sized from the description when the device is created and are indexed
// in parallel with SceneDesc.Objects and SceneDesc.Lights.
type Scene struct {
	Objects []*ObjectState
	Lights  []*LightState
	Camera  Camera

	// Recomputes counts light and object matrix rebuilds.
	Recomputes int
}

func NewScene(desc *SceneDesc) *Scene {
	s := &Scene{
		Objects: make([]*ObjectState, len(desc.Objects)),
		Lights:  make([]*LightState, len(desc.Lights)),
	}
	for i := range desc.Objects {
		s.Objects[i] = NewObjectState(&desc.Objects[i])
	}
	for i := range desc.Lights {
		s.Lights[i] = NewLightState(&desc.Lights[i])
	}
	return s
}

// DetectChanges compares fingerprints against the description and raises
// moved flags. A moved object invalidates every light's shadow map.
func (s *Scene) DetectChanges(desc *SceneDesc) {
	objectMoved := false
	for i, l := range s.Lights {
		if i >= len(desc.Lights) {
			break
		}
		l.Observe(LightFingerprint(&desc.Lights[i]))
	}
	for i, o := range s.Objects {
		if i >= len(desc.Objects) {
			break
		}
		if o.Observe(ObjectFingerprint(&desc.Objects[i])) {
			objectMoved = true
		}
	}
	if objectMoved {
		s.MarkAllLightsMoved()
	}
}

// Solve updates the camera and recomputes matrices of moved entities.
func (s *Scene) Solve(desc *SceneDesc, aspect float32) {
	s.Camera.Update(desc.ActiveCamera(), aspect)

	for i, l := range s.Lights {
		if i >= len(desc.Lights) {
			break
		}
		if l.Moved() {
			l.Solve(&desc.Lights[i])
			s.Recomputes++
		}
	}
	for i, o := range s.Objects {
		if i >= len(desc.Objects) {
			break
		}
		if o.Update(&desc.Objects[i], &s.Camera) {
			s.Recomputes++
		}
	}
}

// MarkAllLightsMoved invalidates every light, e.g. after an object moved
// and shadow maps went stale.
func (s *Scene) MarkAllLightsMoved() {
	for _, l := range s.Lights {
		l.MarkMoved()
	}
}

// BeginFrame snapshots moved flags. Marks raised after this call are kept
// by EndFrame.
func (s *Scene) BeginFrame() {
	for _, l := range s.Lights {
		l.ShadowFailed = false
		l.snapshot()
	}
	for _, o := range s.Objects {
		o.snapshot()
	}
}

// EndFrame clears the moved flags observed by BeginFrame. Lights whose
// shadow map could not be rendered stay moved and are retried next frame.
func (s *Scene) EndFrame() {
	for _, l := range s.Lights {
		if !l.ShadowFailed {
			l.settle()
		}
	}
	for _, o := range s.Objects {
		o.settle()
	}
}

// Release frees every device resource held by the scene.
func (s *Scene) Release() {
	for _, l := range s.Lights {
		l.Release()
	}
	for _, o := range s.Objects {
		if o.Mesh != nil {
			o.Mesh.Release()
			o.Mesh = nil
		}
	}
}
