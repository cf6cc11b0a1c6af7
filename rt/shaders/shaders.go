package shaders

import (
	_ "embed"
)

//go:embed core.wgsl
var CoreWGSL string

//go:embed vertlight.wgsl
var VertLightWGSL string

//go:embed text.wgsl
var TextWGSL string
