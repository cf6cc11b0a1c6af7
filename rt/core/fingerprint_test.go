package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDesc() *SceneDesc {
	desc := NewSceneDesc()
	desc.Objects = []ObjectDesc{{Mesh: "stage"}, {Mesh: "box", Position: Position{X: 1, Y: 2, Z: 0.5}}}
	desc.Lights = []LightDesc{
		{Position: Position{X: 0, Y: -3, Z: 4}, Orientation: Orientation{P: -30}, Umbra: 20, Penumbra: 5, Enabled: true},
		{Position: Position{X: 2, Y: -3, Z: 4}, Orientation: Orientation{H: -20, P: -30}, Umbra: 15, Penumbra: 5, Enabled: true},
	}
	return desc
}

// frame runs one move/settle cycle without rendering.
func frame(s *Scene, desc *SceneDesc) {
	s.DetectChanges(desc)
	s.BeginFrame()
	s.Solve(desc, 1)
	s.EndFrame()
}

func TestNewSceneStartsMoved(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)
	for i, l := range s.Lights {
		assert.True(t, l.Moved(), "light %d", i)
	}
	for i, o := range s.Objects {
		assert.True(t, o.Moved(), "object %d", i)
	}
}

func TestFingerprintStableWithoutChanges(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)
	frame(s, desc)

	before := s.Recomputes
	frame(s, desc)
	frame(s, desc)

	assert.Equal(t, before, s.Recomputes)
	for i, l := range s.Lights {
		assert.False(t, l.Moved(), "light %d", i)
	}
}

func TestFingerprintDetectsMove(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)
	frame(s, desc)

	desc.Lights[1].Position.X += 0.5
	s.DetectChanges(desc)

	assert.False(t, s.Lights[0].Moved())
	assert.True(t, s.Lights[1].Moved())

	s.BeginFrame()
	before := s.Recomputes
	s.Solve(desc, 1)
	assert.Equal(t, before+1, s.Recomputes)
	s.EndFrame()
	assert.False(t, s.Lights[1].Moved())
}

func TestFingerprintIncludesCone(t *testing.T) {
	l := LightDesc{Umbra: 20, Penumbra: 5}
	h := LightFingerprint(&l)
	l.Penumbra = 6
	assert.NotEqual(t, h, LightFingerprint(&l))
}

func TestMarkDuringFrameSurvivesSettle(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)
	frame(s, desc)

	s.DetectChanges(desc)
	s.BeginFrame()
	s.Solve(desc, 1)
	s.Lights[0].MarkMoved()
	s.EndFrame()

	assert.True(t, s.Lights[0].Moved(), "a mark after the snapshot belongs to the next frame")
	frame(s, desc)
	assert.False(t, s.Lights[0].Moved())
}

func TestShadowFailureKeepsLightMoved(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)

	s.DetectChanges(desc)
	s.BeginFrame()
	s.Solve(desc, 1)
	s.Lights[0].ShadowFailed = true
	s.EndFrame()

	assert.True(t, s.Lights[0].Moved())
	assert.False(t, s.Lights[1].Moved())
}

func TestObjectMoveFlagsEveryLight(t *testing.T) {
	desc := testDesc()
	s := NewScene(desc)
	frame(s, desc)

	desc.Objects[1].Orientation.H += 10
	s.DetectChanges(desc)
	require.True(t, s.Objects[1].Moved())
	assert.False(t, s.Objects[0].Moved())
	for i, l := range s.Lights {
		assert.True(t, l.Moved(), "light %d", i)
	}

	frame(s, desc)
	for i, l := range s.Lights {
		assert.False(t, l.Moved(), "light %d", i)
	}
}
