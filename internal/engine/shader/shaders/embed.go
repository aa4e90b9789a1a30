// Package shaders provides the embedded GLSL sources of the render passes.
package shaders

import "embed"

// FS holds every stage file, addressed by base name (e.g. "pbr.frag").
//
//go:embed *.vert *.frag
var FS embed.FS
