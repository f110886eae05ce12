package core

import "math"

// Ranges accepted by the SimulationSettings setters.
const (
	MinTargetFPS = 30
	MaxTargetFPS = 120

	MinComputeHeight = 64
	MaxComputeHeight = 2048

	MinStepsMoving = 1000
	MaxStepsMoving = 30000
	MinStepsStatic = 1000
	MaxStepsStatic = 60000

	MinEarlyExitDistance = 1e11
	MaxEarlyExitDistance = 1e13

	MinDiskThickness = 0.01
	MaxDiskThickness = 1.0
	MinDiskDensity   = 0.0
	MaxDiskDensity   = 5.0
	MinRotationSpeed = 0.0
	MaxRotationSpeed = 10.0
	MinGlowIntensity = 0.0
	MaxGlowIntensity = 5.0
)

const (
	DefaultTargetFPS         = 60
	DefaultComputeHeight     = 512
	DefaultMaxStepsMoving    = 15000
	DefaultMaxStepsStatic    = 30000
	DefaultEarlyExitDistance = 5e12
	DefaultDiskThickness     = 0.1
	DefaultDiskDensity       = 0.1
	DefaultRotationSpeed     = 1.0
	DefaultGlowIntensity     = 0.1
)

// SimulationSettings holds the tunables of the ray marcher. Every setter
// clamps its own field and never touches another one.
type SimulationSettings struct {
	targetFPS         int
	computeHeight     int
	maxStepsMoving    int
	maxStepsStatic    int
	earlyExitDistance float64
	gravityEnabled    bool
	diskThickness     float64
	diskDensity       float64
	rotationSpeed     float64
	glowIntensity     float64
}

func NewSimulationSettings() *SimulationSettings {
	return &SimulationSettings{
		targetFPS:         DefaultTargetFPS,
		computeHeight:     DefaultComputeHeight,
		maxStepsMoving:    DefaultMaxStepsMoving,
		maxStepsStatic:    DefaultMaxStepsStatic,
		earlyExitDistance: DefaultEarlyExitDistance,
		gravityEnabled:    true,
		diskThickness:     DefaultDiskThickness,
		diskDensity:       DefaultDiskDensity,
		rotationSpeed:     DefaultRotationSpeed,
		glowIntensity:     DefaultGlowIntensity,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat clamps v to [lo, hi]; NaN yields def.
func clampFloat(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

func (s *SimulationSettings) TargetFPS() int { return s.targetFPS }
func (s *SimulationSettings) SetTargetFPS(fps int) {
	s.targetFPS = clampInt(fps, MinTargetFPS, MaxTargetFPS)
}

func (s *SimulationSettings) ComputeHeight() int { return s.computeHeight }
func (s *SimulationSettings) SetComputeHeight(h int) {
	s.computeHeight = clampInt(h, MinComputeHeight, MaxComputeHeight)
}

func (s *SimulationSettings) MaxStepsMoving() int { return s.maxStepsMoving }
func (s *SimulationSettings) SetMaxStepsMoving(n int) {
	s.maxStepsMoving = clampInt(n, MinStepsMoving, MaxStepsMoving)
}

func (s *SimulationSettings) MaxStepsStatic() int { return s.maxStepsStatic }
func (s *SimulationSettings) SetMaxStepsStatic(n int) {
	s.maxStepsStatic = clampInt(n, MinStepsStatic, MaxStepsStatic)
}

func (s *SimulationSettings) EarlyExitDistance() float64 { return s.earlyExitDistance }
func (s *SimulationSettings) SetEarlyExitDistance(d float64) {
	s.earlyExitDistance = clampFloat(d, MinEarlyExitDistance, MaxEarlyExitDistance, DefaultEarlyExitDistance)
}

func (s *SimulationSettings) GravityEnabled() bool      { return s.gravityEnabled }
func (s *SimulationSettings) SetGravityEnabled(on bool) { s.gravityEnabled = on }

func (s *SimulationSettings) DiskThickness() float64 { return s.diskThickness }
func (s *SimulationSettings) SetDiskThickness(m float64) {
	s.diskThickness = clampFloat(m, MinDiskThickness, MaxDiskThickness, DefaultDiskThickness)
}

func (s *SimulationSettings) DiskDensity() float64 { return s.diskDensity }
func (s *SimulationSettings) SetDiskDensity(m float64) {
	s.diskDensity = clampFloat(m, MinDiskDensity, MaxDiskDensity, DefaultDiskDensity)
}

func (s *SimulationSettings) RotationSpeed() float64 { return s.rotationSpeed }
func (s *SimulationSettings) SetRotationSpeed(m float64) {
	s.rotationSpeed = clampFloat(m, MinRotationSpeed, MaxRotationSpeed, DefaultRotationSpeed)
}

func (s *SimulationSettings) GlowIntensity() float64 { return s.glowIntensity }
func (s *SimulationSettings) SetGlowIntensity(m float64) {
	s.glowIntensity = clampFloat(m, MinGlowIntensity, MaxGlowIntensity, DefaultGlowIntensity)
}

// ComputeWidth derives the compute image width from the window aspect ratio.
// It is never stored. A degenerate window yields 0.
func ComputeWidth(width, height, computeHeight int) int {
	if width <= 0 || height <= 0 || computeHeight <= 0 {
		return 0
	}
	return int(math.Round(float64(width) * float64(computeHeight) / float64(height)))
}
