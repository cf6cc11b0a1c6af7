package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		gobo, shadow bool
		want         LoopClass
	}{
		{false, false, LoopBasic},
		{true, false, LoopGobo},
		{false, true, LoopGoboShadow},
		{true, true, LoopGoboShadow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.gobo, c.shadow), "gobo=%v shadow=%v", c.gobo, c.shadow)
	}
}

func TestNewLightStateClass(t *testing.T) {
	l := NewLightState(&LightDesc{Gobo: "spot.bmp"})
	assert.Equal(t, LoopGobo, l.Loop)
	assert.Equal(t, "gobo", l.Loop.String())

	l = NewLightState(&LightDesc{CastsShadows: true})
	assert.Equal(t, LoopGoboShadow, l.Loop)
}

func TestDegenerateConeStaysFinite(t *testing.T) {
	for _, desc := range []LightDesc{
		{},
		{Umbra: -10},
		{Umbra: 170, Penumbra: 30},
	} {
		l := NewLightState(&desc)
		l.Solve(&desc)
		for i, v := range l.Proj {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "umbra %v entry %d", desc.Umbra, i)
		}
		assert.Greater(t, l.CosTheta, float32(-1))
		assert.Less(t, l.CosTheta, float32(1))
		assert.Greater(t, BeamGeometry(&desc)[1].Pos.Vec2().Len(), float32(0))
	}

	assert.Equal(t, float32(MinConeAngle), (&LightDesc{}).ConeAngle())
	assert.Equal(t, float32(MaxConeAngle), (&LightDesc{Umbra: 170, Penumbra: 30}).ConeAngle())
	assert.Equal(t, float32(45), (&LightDesc{Umbra: 40, Penumbra: 5}).ConeAngle())
}
