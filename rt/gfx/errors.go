package gfx

import "errors"

var (
	ErrTechniqueNotFound = errors.New("gfx: technique not found")
	ErrEffectNotFound    = errors.New("gfx: effect not found")
	ErrMeshNotFound      = errors.New("gfx: mesh not found")
	ErrDeviceLost        = errors.New("gfx: device lost")
	ErrNoScene           = errors.New("gfx: no scene in progress")
	ErrReleased          = errors.New("gfx: resource released")
)
