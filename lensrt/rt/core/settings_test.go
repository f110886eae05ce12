package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsDefaults(t *testing.T) {
	s := NewSimulationSettings()
	assert.Equal(t, DefaultTargetFPS, s.TargetFPS())
	assert.Equal(t, DefaultComputeHeight, s.ComputeHeight())
	assert.Greater(t, s.MaxStepsStatic(), s.MaxStepsMoving(), "a still camera gets the larger budget")
	assert.True(t, s.GravityEnabled())
}

func TestSettingsClamp(t *testing.T) {
	s := NewSimulationSettings()

	tests := []struct {
		name string
		set  func()
		get  func() float64
		want float64
	}{
		{"fps low", func() { s.SetTargetFPS(1) }, func() float64 { return float64(s.TargetFPS()) }, MinTargetFPS},
		{"fps high", func() { s.SetTargetFPS(1000) }, func() float64 { return float64(s.TargetFPS()) }, MaxTargetFPS},
		{"height low", func() { s.SetComputeHeight(0) }, func() float64 { return float64(s.ComputeHeight()) }, MinComputeHeight},
		{"height high", func() { s.SetComputeHeight(9000) }, func() float64 { return float64(s.ComputeHeight()) }, MaxComputeHeight},
		{"steps moving", func() { s.SetMaxStepsMoving(-3) }, func() float64 { return float64(s.MaxStepsMoving()) }, MinStepsMoving},
		{"steps static", func() { s.SetMaxStepsStatic(1e9) }, func() float64 { return float64(s.MaxStepsStatic()) }, MaxStepsStatic},
		{"early exit", func() { s.SetEarlyExitDistance(1) }, func() float64 { return s.EarlyExitDistance() }, MinEarlyExitDistance},
		{"early exit nan", func() { s.SetEarlyExitDistance(math.NaN()) }, func() float64 { return s.EarlyExitDistance() }, DefaultEarlyExitDistance},
		{"thickness", func() { s.SetDiskThickness(7) }, func() float64 { return s.DiskThickness() }, MaxDiskThickness},
		{"density", func() { s.SetDiskDensity(-1) }, func() float64 { return s.DiskDensity() }, MinDiskDensity},
		{"rotation inf", func() { s.SetRotationSpeed(math.Inf(1)) }, func() float64 { return s.RotationSpeed() }, MaxRotationSpeed},
		{"glow nan", func() { s.SetGlowIntensity(math.NaN()) }, func() float64 { return s.GlowIntensity() }, DefaultGlowIntensity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			assert.Equal(t, tt.want, tt.get())
		})
	}
}

func TestSettingsSettersAreIndependent(t *testing.T) {
	s := NewSimulationSettings()
	s.SetComputeHeight(256)
	s.SetMaxStepsMoving(2000)
	s.SetDiskDensity(3)

	assert.Equal(t, 256, s.ComputeHeight())
	assert.Equal(t, 2000, s.MaxStepsMoving())
	assert.Equal(t, DefaultMaxStepsStatic, s.MaxStepsStatic())
	assert.Equal(t, DefaultTargetFPS, s.TargetFPS())
	assert.Equal(t, 3.0, s.DiskDensity())
	assert.Equal(t, DefaultDiskThickness, s.DiskThickness())
}

func TestComputeWidth(t *testing.T) {
	tests := []struct {
		w, h, ch int
		want     int
	}{
		{1920, 1080, 512, 910},
		{800, 600, 420, 560},
		{1000, 1000, 64, 64},
		{1, 3, 64, 21},
		{0, 600, 420, 0},
		{800, 0, 420, 0},
	}
	for _, tt := range tests {
		got := ComputeWidth(tt.w, tt.h, tt.ch)
		assert.Equal(t, tt.want, got, "%dx%d @ %d", tt.w, tt.h, tt.ch)
		assert.Equal(t, got, ComputeWidth(tt.w, tt.h, tt.ch), "must be deterministic")
	}
}
