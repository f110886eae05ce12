package shaders

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/stretchr/testify/assert"
)

func TestComputeSourcesMatchLayoutVersion(t *testing.T) {
	marker := fmt.Sprintf("Uniform layout version %d.", gpu.UniformLayoutVersion)
	for name, src := range map[string]string{"wgsl": GeodesicWGSL, "glsl": GeodesicGLSL} {
		assert.Contains(t, src, marker, name)
	}
}

func TestComputeSourcesDeclareBindings(t *testing.T) {
	for b := gpu.BindingOutputImage; b <= gpu.BindingSimulation; b++ {
		assert.Contains(t, GeodesicWGSL, fmt.Sprintf("@binding(%d)", b))
		assert.Contains(t, GeodesicGLSL, fmt.Sprintf("binding = %d", b))
	}
	assert.Contains(t, GeodesicWGSL, "@workgroup_size(16, 16, 1)")
	assert.Contains(t, GeodesicGLSL, "local_size_x = 16, local_size_y = 16")
	assert.Contains(t, GeodesicWGSL, "array<vec4<f32>, 16>")
}

func TestGeodesicByBackend(t *testing.T) {
	assert.True(t, strings.HasPrefix(Geodesic("OpenGL"), "#version 430"))
	assert.Equal(t, GeodesicWGSL, Geodesic("WebGPU"))
	assert.NotEmpty(t, FullscreenWGSL)
	assert.NotEmpty(t, QuadVertexGLSL)
	assert.NotEmpty(t, QuadFragmentGLSL)
}

func TestFullscreenQuadIsTwoTriangles(t *testing.T) {
	assert.Contains(t, FullscreenWGSL, "array<vec2<f32>, 6>")
	assert.Equal(t, 6, strings.Count(FullscreenWGSL, "vec2<f32>(-1.0")+strings.Count(FullscreenWGSL, "vec2<f32>(1.0"))
	assert.Contains(t, FullscreenWGSL, "0.5 - 0.5 * p.y", "row 0 of the image is the top of the screen")
}

func TestGridShaders(t *testing.T) {
	assert.Contains(t, GridWGSL, "@location(0) pos: vec3<f32>")
	assert.Contains(t, GridWGSL, "0.5 * (clip.z + clip.w)", "depth is remapped to 0..1")
	assert.Contains(t, GridVertexGLSL, "uniform mat4 viewProj;")
	assert.Contains(t, GridFragmentGLSL, "uniform vec4 lineColor;")
}
