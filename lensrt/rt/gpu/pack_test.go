package gpu

import (
	"math"
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraBlockRoundTrip(t *testing.T) {
	cam := core.NewOrbitalCamera()
	cam.SetTarget(mgl64.Vec3{1e9, -2e9, 3e9})
	cam.SetAzimuth(0.8)
	cam.SetElevation(1.1)
	cam.ProcessButton(core.MouseButtonLeft, true)

	in := PackCamera(cam, 910.0/512.0)
	data, err := in.MarshalBinary()
	require.NoError(t, err)

	var out CameraBlock
	require.NoError(t, out.UnmarshalBinary(data))

	assert.InDelta(t, math.Tan(math.Pi/6), float64(out.TanHalfFov), 1e-6)
	assert.InDelta(t, 910.0/512.0, float64(out.Aspect), 1e-6)
	assert.Equal(t, uint32(1), out.Moving)

	r, u, f := mgl32.Vec3(out.Right), mgl32.Vec3(out.Up), mgl32.Vec3(out.Forward)
	for _, v := range []mgl32.Vec3{r, u, f} {
		assert.InDelta(t, 1, float64(v.Len()), 1e-5)
	}
	assert.InDelta(t, 0, float64(r.Dot(u)), 1e-5)
	assert.InDelta(t, 0, float64(r.Dot(f)), 1e-5)
	assert.InDelta(t, 0, float64(u.Dot(f)), 1e-5)

	pos := cam.Position()
	assert.InEpsilon(t, pos.X(), float64(out.Position[0]), 1e-6)
	assert.InEpsilon(t, pos.Z(), float64(out.Position[2]), 1e-6)
}

func TestPackDiskExampleScenario(t *testing.T) {
	bh := core.NewDefaultBlackHole()
	settings := core.NewSimulationSettings()
	b := PackDisk(core.NewAccretionDisk(bh, settings), bh.SchwarzschildRadius())

	assert.InEpsilon(t, 2.79e10, float64(b.InnerRadius), 2e-3)
	assert.InEpsilon(t, 6.59e10, float64(b.OuterRadius), 2e-3)
	assert.Equal(t, float32(2), b.BandCount)
	assert.InEpsilon(t, 1.267e10, float64(b.SchwarzschildRadius), 2e-3)
	assert.InEpsilon(t, float64(b.SchwarzschildRadius)*core.DefaultDiskThickness, float64(b.Thickness), 1e-6)
}

func TestPackObjects(t *testing.T) {
	objs := core.DefaultObjects().Objects()
	b := PackObjects(objs)
	assert.Equal(t, int32(2), b.Count)
	assert.Equal(t, [4]float32{4e11, 0, 0, 4e10}, b.PosRadius[0])
	assert.Equal(t, [4]float32{1, 0, 0, 1}, b.Color[1])
	assert.Equal(t, float32(1.98892e30), b.MassAt(1))

	many := make([]core.CelestialObject, 20)
	assert.Equal(t, int32(MaxObjectSlots), PackObjects(many).Count)
}

func TestPackNeverEmitsNaN(t *testing.T) {
	objs := []core.CelestialObject{{
		PosRadius: mgl32.Vec4{float32(math.NaN()), 1, 2, 3},
		Color:     mgl32.Vec4{float32(math.Inf(1)), 0, 0, 1},
		Mass:      float32(math.NaN()),
	}}
	b := PackObjects(objs)
	assert.Equal(t, [4]float32{0, 1, 2, 3}, b.PosRadius[0])
	assert.Equal(t, [4]float32{0, 0, 0, 1}, b.Color[0])
	assert.Zero(t, b.MassAt(0))

	assert.Zero(t, f32(math.NaN()))
	assert.Zero(t, f32(1e300), "float32 overflow")
	assert.Equal(t, float32(1.5), f32(1.5))
}

func TestPackSimulation(t *testing.T) {
	s := core.NewSimulationSettings()
	s.SetRotationSpeed(2)
	b := PackSimulation(s, 3)
	assert.Equal(t, int32(core.DefaultMaxStepsMoving), b.MaxStepsMoving)
	assert.Equal(t, int32(core.DefaultMaxStepsStatic), b.MaxStepsStatic)
	assert.Equal(t, float32(core.DefaultEarlyExitDistance), b.EarlyExitDistance)
	assert.Equal(t, float32(6), b.Time)
}

func TestPackFrameAspect(t *testing.T) {
	f := Frame{
		Camera:   core.NewOrbitalCamera(),
		Hole:     core.NewDefaultBlackHole(),
		Objects:  core.DefaultObjects().Objects(),
		Settings: core.NewSimulationSettings(),
	}
	blocks := PackFrame(f, 800, 400)
	assert.Equal(t, float32(2), blocks.Camera.Aspect)
	assert.Equal(t, int32(2), blocks.Objects.Count)
}
