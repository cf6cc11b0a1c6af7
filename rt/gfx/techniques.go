package gfx

// Effect programs and their techniques.
const (
	EffectCore      = "core"
	EffectVertLight = "vertlight"

	TechShadowMapGen         = "ShadowMapGen"
	TechSceneAmbient         = "RenderSceneAmb"
	TechSpotLightAdd         = "SpotLightAdd"
	TechSpotLightAddNoShadow = "SpotLightAddNoShadow"
	TechSpotLightBeam        = "SpotLightBeam"

	TechMultiLight      = "RenderSceneMultiLight"
	TechMultiLightBatch = "RenderSceneMultiLightBatch"
)

// Techniques lists the techniques each effect program provides.
var Techniques = map[string][]string{
	EffectCore: {
		TechShadowMapGen,
		TechSceneAmbient,
		TechSpotLightAdd,
		TechSpotLightAddNoShadow,
		TechSpotLightBeam,
	},
	EffectVertLight: {
		TechMultiLight,
		TechMultiLightBatch,
	},
}

func HasTechnique(effect, technique string) bool {
	for _, t := range Techniques[effect] {
		if t == technique {
			return true
		}
	}
	return false
}
