package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/lightrig/rt/gfx"
	"github.com/gekko3d/lightrig/rt/render"
)

// field places one effect parameter in the uniform block. Size bounds the
// bytes written for array parameters.
type field struct {
	Name   string
	Offset int
	Size   int
}

// layout mirrors a WGSL Params struct.
type layout struct {
	Size   int
	Fields []field
}

// Texture bindings in group 1, after the sampler at binding 0.
var textureBindings = map[string][]string{
	gfx.EffectCore:      {render.TexColorMap, render.TexSpotMap, render.TexShadowMap, render.TexNormalMap},
	gfx.EffectVertLight: {render.TexColorMap},
}

const maxLights = render.MaxBatchCapacity

var layouts = map[string]layout{
	gfx.EffectCore: {
		Size: 384,
		Fields: []field{
			{render.ParamProj, 0, 64},
			{render.ParamWorldView, 64, 64},
			{render.ParamWorld, 128, 64},
			{render.ParamViewToLightProj, 192, 64},
			{render.ParamLightAmbient, 256, 16},
			{render.ParamMaterial, 272, 16},
			{render.ParamEyeDir, 288, 16},
			{render.ParamEyePos, 304, 16},
			{render.ParamLightPos, 320, 16},
			{render.ParamLightDir, 336, 16},
			{render.ParamLightColor, 352, 16},
			{render.ParamCosTheta, 368, 4},
			{render.ParamLinearAtten, 372, 4},
			{render.ParamQuadraticAtten, 376, 4},
		},
	},
	gfx.EffectVertLight: {
		Size: 2736,
		Fields: []field{
			{render.ParamProj, 0, 64},
			{render.ParamWorldView, 64, 64},
			{render.ParamWorld, 128, 64},
			{render.ParamLightAmbient, 192, 16},
			{render.ParamMaterial, 208, 16},
			{render.ParamNumActiveLights, 224, 4},
			{render.ParamLightDirWorld, 240, maxLights * 16},
			{render.ParamLightPosWorld, 240 + maxLights*16, maxLights * 16},
			{render.ParamLightDiffuse, 240 + 2*maxLights*16, maxLights * 16},
			{render.ParamCosThetaWorld, 240 + 3*maxLights*16, maxLights * 4},
		},
	},
}

func putFloat(buf []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
}

// pack writes the parameters of an effect into buf following its layout.
// Unknown parameters and values of unexpected types are skipped; arrays
// are truncated to the field size. Vec3 arrays use a 16 byte stride and
// float arrays are packed tightly.
func (l layout) pack(buf []byte, params map[string]any) {
	clear(buf[:l.Size])
	for _, f := range l.Fields {
		v, ok := params[f.Name]
		if !ok {
			continue
		}
		dst := buf[f.Offset : f.Offset+f.Size]
		switch v := v.(type) {
		case mgl32.Mat4:
			for i, x := range v {
				if i*4 >= len(dst) {
					break
				}
				putFloat(dst, i*4, x)
			}
		case mgl32.Vec4:
			for i := 0; i < 4 && i*4 < len(dst); i++ {
				putFloat(dst, i*4, v[i])
			}
		case float32:
			putFloat(dst, 0, v)
		case int:
			n := v
			if f.Name == render.ParamNumActiveLights {
				n = min(max(n, 0), maxLights)
			}
			binary.LittleEndian.PutUint32(dst, uint32(int32(n)))
		case []mgl32.Vec3:
			for i, x := range v {
				if (i+1)*16 > len(dst) {
					break
				}
				putFloat(dst, i*16, x[0])
				putFloat(dst, i*16+4, x[1])
				putFloat(dst, i*16+8, x[2])
			}
		case []float32:
			for i, x := range v {
				if (i+1)*4 > len(dst) {
					break
				}
				putFloat(dst, i*4, x)
			}
		}
	}
}
