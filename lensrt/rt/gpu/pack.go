package gpu

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/go-gl/mathgl/mgl64"
)

// f32 narrows a float64 for upload. Values that are not finite in float32,
// including overflow, become 0 so NaN never reaches a block.
func f32(v float64) float32 {
	x := float32(v)
	if math32.IsNaN(x) || math32.IsInf(x, 0) {
		return 0
	}
	return x
}

func vec3(v mgl64.Vec3) [3]float32 {
	return [3]float32{f32(v[0]), f32(v[1]), f32(v[2])}
}

func vec4(v [4]float32) [4]float32 {
	for i, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			v[i] = 0
		}
	}
	return v
}

// PackCamera fills the camera block. aspect is computeWidth/computeHeight.
func PackCamera(cam *core.OrbitalCamera, aspect float64) CameraBlock {
	right, up, forward := cam.Basis()
	b := CameraBlock{
		Position:   vec3(cam.Position()),
		Right:      vec3(right),
		Up:         vec3(up),
		Forward:    vec3(forward),
		TanHalfFov: f32(cam.TanHalfFov()),
		Aspect:     f32(aspect),
	}
	if cam.Moving() {
		b.Moving = 1
	}
	return b
}

func PackDisk(disk core.AccretionDisk, rs float64) DiskBlock {
	return DiskBlock{
		InnerRadius:         f32(disk.InnerRadius),
		OuterRadius:         f32(disk.OuterRadius),
		BandCount:           float32(disk.BandCount),
		Thickness:           f32(disk.Thickness),
		Density:             f32(disk.Density),
		SchwarzschildRadius: f32(rs),
		Glow:                f32(disk.Glow),
	}
}

// PackObjects copies at most MaxObjectSlots objects; the rest are dropped.
func PackObjects(objects []core.CelestialObject) ObjectsBlock {
	var b ObjectsBlock
	n := min(len(objects), MaxObjectSlots)
	b.Count = int32(n)
	for i := 0; i < n; i++ {
		b.PosRadius[i] = vec4(objects[i].PosRadius)
		b.Color[i] = vec4(objects[i].Color)
		m := objects[i].Mass
		if math32.IsNaN(m) || math32.IsInf(m, 0) {
			m = 0
		}
		b.SetMass(i, m)
	}
	return b
}

// PackSimulation fills the simulation block. elapsed is in seconds and is
// scaled by the rotation speed so the disk spins at the configured rate.
func PackSimulation(s *core.SimulationSettings, elapsed float64) SimulationBlock {
	return SimulationBlock{
		MaxStepsMoving:    int32(s.MaxStepsMoving()),
		MaxStepsStatic:    int32(s.MaxStepsStatic()),
		EarlyExitDistance: f32(s.EarlyExitDistance()),
		Time:              f32(elapsed * s.RotationSpeed()),
	}
}

// Frame gathers the simulation state the four blocks are derived from.
type Frame struct {
	Camera   *core.OrbitalCamera
	Hole     *core.BlackHole
	Objects  []core.CelestialObject
	Settings *core.SimulationSettings
	Elapsed  float64
}

// PackFrame derives all four blocks for one dispatch at the given compute size.
func PackFrame(f Frame, computeWidth, computeHeight int) Blocks {
	aspect := 1.0
	if computeHeight > 0 {
		aspect = float64(computeWidth) / float64(computeHeight)
	}
	return Blocks{
		Camera:     PackCamera(f.Camera, aspect),
		Disk:       PackDisk(core.NewAccretionDisk(f.Hole, f.Settings), f.Hole.SchwarzschildRadius()),
		Objects:    PackObjects(f.Objects),
		Simulation: PackSimulation(f.Settings, f.Elapsed),
	}
}
