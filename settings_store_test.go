package lensing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config", "settings.toml")

	s := LoadSettings(path, NewNopLogger())
	assert.Equal(t, core.DefaultComputeHeight, s.Simulation.ComputeHeight())
	assert.Equal(t, RenderAPIWebGPU, s.Graphics.RenderAPI)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[simulation]")
	assert.Contains(t, string(data), "[graphics]")
	assert.Contains(t, string(data), "compute_height = 512")
}

func TestLoadSettings_ClampsAndKeepsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	doc := `
[simulation]
target_fps = 500
compute_height = 10
early_exit_distance = 1e20
gravity_enabled = false

[graphics]
render_api = "Vulkan"
show_fps = false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := LoadSettings(path, NewNopLogger())
	assert.Equal(t, core.MaxTargetFPS, s.Simulation.TargetFPS())
	assert.Equal(t, core.MinComputeHeight, s.Simulation.ComputeHeight())
	assert.Equal(t, core.MaxEarlyExitDistance, s.Simulation.EarlyExitDistance())
	assert.False(t, s.Simulation.GravityEnabled())
	assert.Equal(t, core.DefaultMaxStepsStatic, s.Simulation.MaxStepsStatic())
	assert.Equal(t, core.DefaultDiskDensity, s.Simulation.DiskDensity())

	assert.Equal(t, RenderAPIWebGPU, s.Graphics.RenderAPI, "unknown API falls back")
	assert.False(t, s.Graphics.ShowFPS)
	assert.True(t, s.Graphics.VSyncEnabled)
	assert.True(t, s.Graphics.ShowGrid, "the grid defaults on")
}

func TestSettings_ShowGridRoundTrip(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Decode([]byte("[graphics]\nshow_grid = false\n")))
	assert.False(t, s.Graphics.ShowGrid)

	data, err := s.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "show_grid = false")
}

func TestLoadSettings_MalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[simulation\ncompute_height = "), 0o644))

	log := &recordingLogger{}
	s := LoadSettings(path, log)
	assert.Equal(t, core.DefaultComputeHeight, s.Simulation.ComputeHeight())
	assert.Len(t, log.errors, 1)
}

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	s := DefaultSettings()
	s.Simulation.SetComputeHeight(720)
	s.Simulation.SetRotationSpeed(2.5)
	s.Graphics.RenderAPI = RenderAPIOpenGL
	require.NoError(t, s.Save(path))

	got := LoadSettings(path, NewNopLogger())
	assert.Equal(t, 720, got.Simulation.ComputeHeight())
	assert.Equal(t, 2.5, got.Simulation.RotationSpeed())
	assert.Equal(t, RenderAPIOpenGL, got.Graphics.RenderAPI)
}

func TestGraphicsSettings_SetRenderAPI(t *testing.T) {
	g := DefaultGraphicsSettings()
	g.SetRenderAPI(RenderAPIOpenGL)
	assert.Equal(t, RenderAPIOpenGL, g.RenderAPI)
	g.SetRenderAPI("Vulkan")
	assert.Equal(t, RenderAPIWebGPU, g.RenderAPI)
}
