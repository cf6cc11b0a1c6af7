package gpu

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/render"
)

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestPackCoreParams(t *testing.T) {
	l := layouts[gfx.EffectCore]
	buf := make([]byte, l.Size)
	for i := range buf {
		buf[i] = 0xff
	}
	proj := mgl32.Translate3D(1, 2, 3)
	l.pack(buf, map[string]any{
		render.ParamProj:           proj,
		render.ParamLightColor:     mgl32.Vec4{0.5, 0.25, 1, 1},
		render.ParamQuadraticAtten: float32(0.125),
		"g_unknown":                float32(9),
	})

	assert.Equal(t, float32(1), floatAt(buf, 0))
	assert.Equal(t, float32(1), floatAt(buf, 48), "translation x in column 3")
	assert.Equal(t, float32(3), floatAt(buf, 56))
	assert.Equal(t, float32(0.25), floatAt(buf, 356))
	assert.Equal(t, float32(0.125), floatAt(buf, 376))
	assert.Zero(t, floatAt(buf, 64), "unset parameters are cleared")
	assert.Zero(t, floatAt(buf, 380))
}

func TestPackVertLightArrays(t *testing.T) {
	l := layouts[gfx.EffectVertLight]
	buf := make([]byte, l.Size)

	pos := make([]mgl32.Vec3, maxLights+2)
	cos := make([]float32, maxLights+2)
	for i := range pos {
		pos[i] = mgl32.Vec3{float32(i), 1, 2}
		cos[i] = float32(i) / 100
	}
	l.pack(buf, map[string]any{
		render.ParamLightPosWorld:   pos,
		render.ParamCosThetaWorld:   cos,
		render.ParamNumActiveLights: 500,
	})

	posBase := 240 + maxLights*16
	assert.Equal(t, float32(3), floatAt(buf, posBase+3*16))
	assert.Equal(t, float32(2), floatAt(buf, posBase+3*16+8))
	assert.Zero(t, floatAt(buf, posBase+3*16+12), "vec3 arrays use a vec4 stride")
	assert.Equal(t, float32(maxLights-1), floatAt(buf, posBase+(maxLights-1)*16))

	cosBase := 240 + 3*maxLights*16
	assert.Equal(t, float32(0.05), floatAt(buf, cosBase+5*4))
	assert.Equal(t, l.Size, cosBase+maxLights*4, "arrays stop at the end of the block")

	assert.Equal(t, uint32(maxLights), binary.LittleEndian.Uint32(buf[224:]))
}

func TestLayoutsDoNotOverlap(t *testing.T) {
	for name, l := range layouts {
		end := 0
		for _, f := range l.Fields {
			assert.GreaterOrEqual(t, f.Offset, end, "%s %s", name, f.Name)
			end = f.Offset + f.Size
		}
		assert.LessOrEqual(t, end, l.Size, name)
		assert.Zero(t, l.Size%16, name)
	}
}

func TestTechniquesHaveShaderEntryPoints(t *testing.T) {
	for effectName, names := range gfx.Techniques {
		src, ok := effectSources[effectName]
		require.True(t, ok, effectName)
		for _, name := range names {
			tech, ok := techniques[effectName][name]
			require.True(t, ok, "%s/%s", effectName, name)
			assert.Contains(t, src, "fn "+tech.VS+"(", "%s/%s", effectName, name)
			assert.Contains(t, src, "fn "+tech.FS+"(", "%s/%s", effectName, name)
		}
	}
}

func TestShaderParamStructsMatchLayouts(t *testing.T) {
	assert.True(t, strings.Contains(effectSources[gfx.EffectVertLight], "array<vec4<f32>, 48>"))
	assert.Equal(t, 48, maxLights)
	for effectName, bindings := range textureBindings {
		assert.Equal(t, len(bindings)+1, strings.Count(effectSources[effectName], "@group(1)"), effectName)
	}
}

func TestUniformRing(t *testing.T) {
	r := newUniformRing(1024)

	off, block, ok := r.alloc(100)
	require.True(t, ok)
	assert.Zero(t, off)
	assert.Len(t, block, 100)

	off, _, ok = r.alloc(100)
	require.True(t, ok)
	assert.Equal(t, 256, off)

	off, _, ok = r.alloc(512)
	require.True(t, ok)
	assert.Equal(t, 512, off)

	_, _, ok = r.alloc(1)
	assert.False(t, ok, "full")
	assert.Len(t, r.pending(), 1024)

	r.reset()
	off, _, ok = r.alloc(1)
	assert.True(t, ok)
	assert.Zero(t, off)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, alignUp(0, 256))
	assert.Equal(t, 256, alignUp(1, 256))
	assert.Equal(t, 256, alignUp(256, 256))
	assert.Equal(t, 8, alignUp(5, 4))
}

func TestFontAtlas(t *testing.T) {
	a, err := newFontAtlas(16)
	require.NoError(t, err)
	require.Contains(t, a.Glyphs, 'M')
	assert.Greater(t, a.lineHeight(), float32(10))

	g := a.Glyphs['M']
	assert.Less(t, g.UVMin[0], g.UVMax[0])
	assert.Greater(t, g.Adv, float32(0))

	verts := a.vertices([]string{"Hi", "x☃"}, 10, 10, overlayColor, 800, 600)
	assert.Len(t, verts, 3*6, "unknown runes are skipped")
	for _, v := range verts {
		assert.GreaterOrEqual(t, v.Pos[0], float32(-1))
		assert.LessOrEqual(t, v.Pos[1], float32(1))
		assert.Equal(t, overlayColor, v.Color)
	}
	assert.Greater(t, verts[0].Pos[1], verts[12].Pos[1], "second line is lower")
}
