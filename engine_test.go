package lensing

import (
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_InitBuildsProgram(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.True(t, e.Renderer.DispatchEnabled())
	assert.Equal(t, 420, e.Renderer.ComputeHeight())
	assert.InDelta(t, 800.0/600.0, e.Camera.Aspect(), 1e-12)
	assert.Equal(t, 2, e.Objects.Len())
}

func TestEngine_FrameAndAdvance(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Advance(1.5)
	e.Advance(-3)

	f := e.Frame()
	assert.Equal(t, 1.5, f.Elapsed)
	assert.Same(t, e.Camera, f.Camera)
	assert.Same(t, e.Hole, f.Hole)
	assert.Same(t, e.Settings.Simulation, f.Settings)
	assert.Len(t, f.Objects, 2)
}

func TestEngine_ReloadShader(t *testing.T) {
	e, rec, log := newTestEngine(t)

	rec.CompileErr = gputest.ErrInjected
	assert.Error(t, e.ReloadShader("edited.wgsl", "broken"))
	assert.False(t, e.Renderer.DispatchEnabled())
	require.NoError(t, e.Render())
	assert.Zero(t, rec.Count("Dispatch"))
	assert.Len(t, log.errors, 1)

	rec.CompileErr = nil
	require.NoError(t, e.ReloadShader("edited.wgsl", "fixed"))
	assert.True(t, e.Renderer.DispatchEnabled())
}

func TestEngine_ResizeIgnoresSameSize(t *testing.T) {
	e, rec, _ := newTestEngine(t)
	e.Resize(800, 600)
	assert.Zero(t, rec.Count("ResizeSurface"))
	e.Resize(1600, 600)
	assert.Equal(t, 1, rec.Count("ResizeSurface"))
	assert.InDelta(t, 1600.0/600.0, e.Camera.Aspect(), 1e-12)
}
