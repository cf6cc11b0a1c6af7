package render

// Effect parameter names shared with the shader programs.
const (
	ParamProj            = "g_mProj"
	ParamWorldView       = "g_mWorldView"
	ParamWorld           = "g_mWorld"
	ParamViewToLightProj = "g_mViewToLightProj"
	ParamLightAmbient    = "g_vLightAmbient"
	ParamMaterial        = "g_vMaterial"
	ParamEyeDir          = "g_vEyeDir"
	ParamEyePos          = "g_vEyePos"
	ParamLightPos        = "g_vLightPos"
	ParamLightDir        = "g_vLightDir"
	ParamLightColor      = "g_vLightColor"
	ParamCosTheta        = "g_fCosTheta"
	ParamLinearAtten     = "g_fLinearAttenuation"
	ParamQuadraticAtten  = "g_fQuadraticAttenuation"
	ParamLightDirWorld   = "g_LightDirWorld"
	ParamLightPosWorld   = "g_LightPosWorld"
	ParamLightDiffuse    = "g_LightDiffuse"
	ParamCosThetaWorld   = "g_fCosThetaWorld"
	ParamNumActiveLights = "g_nNumActiveLights"

	TexColorMap  = "tColorMap"
	TexSpotMap   = "tSpotMap"
	TexShadowMap = "tShadowMap"
	TexNormalMap = "tNormalMap"
)
