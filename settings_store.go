package lensing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gekko3d/lensing/lensrt/rt/core"

	"github.com/pelletier/go-toml/v2"
)

const DefaultSettingsPath = "Config/settings.toml"

const (
	RenderAPIWebGPU = "WebGPU"
	RenderAPIOpenGL = "OpenGL"
)

type GraphicsSettings struct {
	RenderAPI              string `toml:"render_api"`
	VSyncEnabled           bool   `toml:"vsync_enabled"`
	ShowFPS                bool   `toml:"show_fps"`
	ShowPerformanceMetrics bool   `toml:"show_performance_metrics"`
	ShowDebugInfo          bool   `toml:"show_debug_info"`
	ShowGrid               bool   `toml:"show_grid"`
}

func DefaultGraphicsSettings() GraphicsSettings {
	return GraphicsSettings{
		RenderAPI:              RenderAPIWebGPU,
		VSyncEnabled:           true,
		ShowFPS:                true,
		ShowPerformanceMetrics: true,
		ShowGrid:               true,
	}
}

// normalize replaces an unknown render API with the default one.
func (g *GraphicsSettings) normalize() {
	if g.RenderAPI != RenderAPIWebGPU && g.RenderAPI != RenderAPIOpenGL {
		g.RenderAPI = RenderAPIWebGPU
	}
}

// SetRenderAPI selects a backend by name. Unknown names select WebGPU.
func (g *GraphicsSettings) SetRenderAPI(api string) {
	g.RenderAPI = api
	g.normalize()
}

type Settings struct {
	Simulation *core.SimulationSettings
	Graphics   GraphicsSettings
}

func DefaultSettings() *Settings {
	return &Settings{
		Simulation: core.NewSimulationSettings(),
		Graphics:   DefaultGraphicsSettings(),
	}
}

// simulationFile is the on-disk shape of [simulation].
type simulationFile struct {
	TargetFPS         int     `toml:"target_fps"`
	ComputeHeight     int     `toml:"compute_height"`
	MaxStepsMoving    int     `toml:"max_steps_moving"`
	MaxStepsStatic    int     `toml:"max_steps_static"`
	EarlyExitDistance float64 `toml:"early_exit_distance"`
	GravityEnabled    bool    `toml:"gravity_enabled"`
	DiskThickness     float64 `toml:"disk_thickness"`
	DiskDensity       float64 `toml:"disk_density"`
	RotationSpeed     float64 `toml:"rotation_speed"`
	GlowIntensity     float64 `toml:"glow_intensity"`
}

type settingsFile struct {
	Simulation simulationFile   `toml:"simulation"`
	Graphics   GraphicsSettings `toml:"graphics"`
}

func (s *Settings) toFile() settingsFile {
	sim := s.Simulation
	return settingsFile{
		Simulation: simulationFile{
			TargetFPS:         sim.TargetFPS(),
			ComputeHeight:     sim.ComputeHeight(),
			MaxStepsMoving:    sim.MaxStepsMoving(),
			MaxStepsStatic:    sim.MaxStepsStatic(),
			EarlyExitDistance: sim.EarlyExitDistance(),
			GravityEnabled:    sim.GravityEnabled(),
			DiskThickness:     sim.DiskThickness(),
			DiskDensity:       sim.DiskDensity(),
			RotationSpeed:     sim.RotationSpeed(),
			GlowIntensity:     sim.GlowIntensity(),
		},
		Graphics: s.Graphics,
	}
}

// apply routes every value through the clamping setters.
func (s *Settings) apply(f settingsFile) {
	sim := s.Simulation
	sim.SetTargetFPS(f.Simulation.TargetFPS)
	sim.SetComputeHeight(f.Simulation.ComputeHeight)
	sim.SetMaxStepsMoving(f.Simulation.MaxStepsMoving)
	sim.SetMaxStepsStatic(f.Simulation.MaxStepsStatic)
	sim.SetEarlyExitDistance(f.Simulation.EarlyExitDistance)
	sim.SetGravityEnabled(f.Simulation.GravityEnabled)
	sim.SetDiskThickness(f.Simulation.DiskThickness)
	sim.SetDiskDensity(f.Simulation.DiskDensity)
	sim.SetRotationSpeed(f.Simulation.RotationSpeed)
	sim.SetGlowIntensity(f.Simulation.GlowIntensity)
	s.Graphics = f.Graphics
	s.Graphics.normalize()
}

// Decode parses TOML on top of the current values. Keys absent from data keep
// their current value.
func (s *Settings) Decode(data []byte) error {
	f := s.toFile()
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	s.apply(f)
	return nil
}

func (s *Settings) Encode() ([]byte, error) {
	return toml.Marshal(s.toFile())
}

// LoadSettings reads the settings file at path. A missing file is created
// with defaults. A malformed file is reported and the defaults are used.
func LoadSettings(path string, log Logger) *Settings {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.Save(path); err != nil {
			log.Errorf("Failed to create default settings: %v", err)
		} else {
			log.Infof("No settings file found, created defaults at %s", path)
		}
		return s
	}
	if err != nil {
		log.Errorf("Failed to load settings: %v", err)
		return s
	}
	if err := s.Decode(data); err != nil {
		log.Errorf("Failed to load settings from %s: %v", path, err)
		return DefaultSettings()
	}
	log.Infof("Settings loaded from %s", path)
	return s
}

func (s *Settings) Save(path string) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
