package shaders

import (
	_ "embed"
)

// GeodesicEntryPoint is the compute entry point of GeodesicWGSL.
const GeodesicEntryPoint = "main"

//go:embed geodesic.wgsl
var GeodesicWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed grid.wgsl
var GridWGSL string

//go:embed geodesic.comp
var GeodesicGLSL string

//go:embed quad.vert
var QuadVertexGLSL string

//go:embed quad.frag
var QuadFragmentGLSL string

//go:embed grid.vert
var GridVertexGLSL string

//go:embed grid.frag
var GridFragmentGLSL string

// Geodesic returns the built-in compute source for a backend by name.
func Geodesic(backend string) string {
	if backend == "OpenGL" {
		return GeodesicGLSL
	}
	return GeodesicWGSL
}
