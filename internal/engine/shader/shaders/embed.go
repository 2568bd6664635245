// Package shaders provides embedded GLSL shader sources.
package shaders

import "embed"

// FS holds every stage source, addressed by file name.
//
//go:embed *.vert *.frag
var FS embed.FS

// Stage file names shared by the scene and the shader cache.
const (
	ObjectVertex  = "object.vert"
	LitFragment   = "lit.frag"
	LightVertex   = "light.vert"
	LightFragment = "light.frag"
)
