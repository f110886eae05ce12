package lensing

import (
	"os"
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(k Key) KeyChanged { return KeyChanged{Key: k, Pressed: true} }

func TestConfigState_Keys(t *testing.T) {
	e, _, log := newTestEngine(t)
	s := &ConfigState{}
	s.OnEnter(e)

	s.OnEvent(e, press(KeyUp))
	assert.Equal(t, 484, e.Settings.Simulation.ComputeHeight())
	assert.Equal(t, 484, e.Renderer.ComputeHeight())

	s.OnEvent(e, KeyChanged{Key: KeyDown, Pressed: true, Repeat: true})
	s.OnEvent(e, press(KeyDown))
	assert.Equal(t, 356, e.Renderer.ComputeHeight())

	for i := 0; i < 10; i++ {
		s.OnEvent(e, press(KeyDown))
	}
	assert.Equal(t, core.MinComputeHeight, e.Renderer.ComputeHeight())

	s.OnEvent(e, press(KeyG))
	assert.False(t, e.Settings.Simulation.GravityEnabled())

	require.True(t, e.Renderer.GridEnabled())
	s.OnEvent(e, press(KeyT))
	assert.False(t, e.Settings.Graphics.ShowGrid)
	assert.False(t, e.Renderer.GridEnabled())

	s.OnEvent(e, press(KeyF1))
	assert.True(t, log.DebugEnabled())
	assert.True(t, e.Settings.Graphics.ShowDebugInfo)

	s.OnEvent(e, press(KeyEnter))
	id, ok := e.takeRequest()
	assert.True(t, ok)
	assert.Equal(t, StateSimulation, id)

	s.OnEvent(e, press(KeyW))
	id, _ = e.takeRequest()
	assert.Equal(t, StateWorldBuilder, id)
}

func TestSimulationState_UpdateIntegratesGravity(t *testing.T) {
	e, rec, _ := newTestEngine(t)
	s := &SimulationState{}
	s.OnEnter(e)
	assert.Equal(t, mgl32.Vec3{}, e.Objects.Objects()[0].Velocity)

	s.OnUpdate(e, 0.5)
	assert.InDelta(t, 0.5, e.Elapsed(), 1e-12)
	assert.NotEqual(t, mgl32.Vec3{}, e.Objects.Objects()[0].Velocity)

	require.NoError(t, s.OnRender(e))
	assert.Equal(t, 1, rec.Count("Dispatch"))

	s.OnEvent(e, press(KeyG))
	v := e.Objects.Objects()[0].Velocity
	s.OnUpdate(e, 0.5)
	assert.Equal(t, v, e.Objects.Objects()[0].Velocity, "gravity off leaves velocities alone")
}

func TestSimulationState_CameraAndKeys(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s := &SimulationState{}

	s.OnEvent(e, CursorMoved{X: 100, Y: 100})
	s.OnEvent(e, MouseButtonChanged{Button: core.MouseButtonLeft, Pressed: true})
	s.OnEvent(e, CursorMoved{X: 150, Y: 100})
	assert.InDelta(t, 50*core.DefaultOrbitSpeed, e.Camera.Azimuth(), 1e-12)
	assert.True(t, e.Camera.Moving())

	s.OnExit(e)
	assert.False(t, e.Camera.Dragging())

	r := e.Camera.Radius()
	s.OnEvent(e, Scrolled{DY: 1})
	assert.Less(t, e.Camera.Radius(), r)

	s.OnEvent(e, press(KeyEscape))
	id, ok := e.takeRequest()
	assert.True(t, ok)
	assert.Equal(t, StateConfig, id)
}

func TestSimulationState_PauseFreezesTime(t *testing.T) {
	e, rec, _ := newTestEngine(t)
	s := &SimulationState{}
	s.OnEnter(e)

	s.OnEvent(e, press(KeyP))
	require.True(t, s.Paused())
	s.OnUpdate(e, 0.5)
	assert.Zero(t, e.Elapsed())
	assert.Equal(t, mgl32.Vec3{}, e.Objects.Objects()[0].Velocity)
	require.NoError(t, s.OnRender(e))
	assert.Equal(t, 1, rec.Count("Composite"), "a paused view still renders")

	s.OnEvent(e, press(KeyP))
	s.OnUpdate(e, 0.5)
	assert.InDelta(t, 0.5, e.Elapsed(), 1e-12)
}

func TestSimulationState_KeyboardCamera(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s := &SimulationState{}

	s.OnEvent(e, press(KeyRight))
	s.OnEvent(e, KeyChanged{Key: KeyRight, Pressed: true, Repeat: true})
	assert.InDelta(t, 2*KeyOrbitStep, e.Camera.Azimuth(), 1e-12)
	s.OnEvent(e, press(KeyLeft))
	assert.InDelta(t, KeyOrbitStep, e.Camera.Azimuth(), 1e-12)

	e.Camera.SetRadius(3e11)
	aspect := e.Camera.Aspect()
	s.OnEvent(e, press(KeyR))
	assert.Zero(t, e.Camera.Azimuth())
	assert.Equal(t, core.DefaultOrbitRadius, e.Camera.Radius())
	assert.Equal(t, aspect, e.Camera.Aspect())
}

func TestSimulationState_GridToggle(t *testing.T) {
	e, rec, _ := newTestEngine(t)
	s := &SimulationState{}

	require.NoError(t, s.OnRender(e))
	assert.Equal(t, 1, rec.Count("DrawLines"))

	s.OnEvent(e, press(KeyT))
	require.NoError(t, s.OnRender(e))
	assert.Equal(t, 1, rec.Count("DrawLines"))
}

func TestSimulationState_Export(t *testing.T) {
	e, rec, log := newTestEngine(t)
	s := &SimulationState{}

	s.OnEvent(e, press(KeyF12))
	require.Empty(t, log.errors)
	entries, err := os.ReadDir(e.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".png")

	c, ok := rec.Last("CreateTarget")
	require.True(t, ok)
	assert.Equal(t, []any{1600, 1200}, c.Args)
	assert.Equal(t, 800, e.Renderer.Width(), "window size restored")
}

func TestWorldBuilderState_AddRemoveClear(t *testing.T) {
	e, _, log := newTestEngine(t)
	s := &WorldBuilderState{}
	s.OnEnter(e)

	s.OnEvent(e, press(KeyN))
	require.Equal(t, 3, e.Objects.Len())
	id := s.Selected()
	require.NotEqual(t, uuid.Nil, id)
	obj := e.Objects.Find(id)
	require.NotNil(t, obj)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, obj.Color)

	r0 := obj.Radius()
	s.OnEvent(e, press(KeyEqual))
	assert.InEpsilon(t, r0*1.1, e.Objects.Find(id).Radius(), 1e-5)

	s.OnEvent(e, press(KeyDelete))
	assert.Equal(t, 2, e.Objects.Len())
	assert.Nil(t, e.Objects.Find(id))
	assert.Equal(t, uuid.Nil, s.Selected())
	assert.False(t, s.RemoveSelected(e))

	s.OnEvent(e, press(KeyC))
	assert.Equal(t, 0, e.Objects.Len())

	for i := 0; i < core.MaxObjects; i++ {
		_, err := s.AddObject(e)
		require.NoError(t, err)
	}
	_, err := s.AddObject(e)
	assert.ErrorIs(t, err, core.ErrObjectLimit)
	assert.NotEmpty(t, log.warns)
}

func TestWorldBuilderState_RefusesInsideHorizon(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s := &WorldBuilderState{}
	s.OnEnter(e)
	e.Camera.SetRadius(core.DefaultMinOrbitRadius)

	_, err := s.AddObject(e)
	assert.ErrorIs(t, err, ErrNoRoom)
	assert.Equal(t, 2, e.Objects.Len())
}

func TestWorldBuilderState_AddObjectClearsHorizonAndEye(t *testing.T) {
	e, _, _ := newTestEngine(t)
	s := &WorldBuilderState{}
	s.OnEnter(e)
	require.Equal(t, core.DefaultOrbitRadius, e.Camera.Radius())
	eye := e.Camera.Position()
	rs := e.Hole.SchwarzschildRadius()

	id, err := s.AddObject(e)
	require.NoError(t, err)
	obj := e.Objects.Find(id)
	require.NotNil(t, obj)

	c := obj.Center()
	center := mgl64.Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
	r := float64(obj.Radius())
	assert.Less(t, r, float64(DefaultNewObjectRadius))
	assert.Greater(t, r, 0.0)
	assert.GreaterOrEqual(t, center.Sub(e.Hole.Position).Len()*(1+1e-6), r+rs, "body swallows the horizon")
	assert.GreaterOrEqual(t, center.Sub(eye).Len()*(1+1e-6), r, "body swallows the eye")

	origin, dir := e.Camera.Ray(0.95, 0.95)
	idx, _ := core.Pick(origin, dir, e.Objects.Objects(), e.Hole)
	assert.NotEqual(t, len(e.Objects.Objects())-1, idx, "the new body fills the whole view")
}

func TestWorldBuilderState_Pick(t *testing.T) {
	e, _, log := newTestEngine(t)
	s := &WorldBuilderState{}
	s.OnEnter(e)
	center := CursorMoved{X: 400, Y: 300}

	s.OnEvent(e, center)
	s.OnEvent(e, MouseButtonChanged{Button: core.MouseButtonLeft, Pressed: true})
	assert.Equal(t, uuid.Nil, s.Selected())
	assert.Contains(t, log.infos[len(log.infos)-1], "Black hole")
	assert.False(t, e.Camera.Dragging(), "a hit never starts a drag")

	e.Objects.Clear()
	id, err := e.Objects.Add(core.CelestialObject{PosRadius: mgl32.Vec4{3e10, 0, 0, 5e9}, Mass: 1})
	require.NoError(t, err)
	s.OnEvent(e, MouseButtonChanged{Button: core.MouseButtonLeft, Pressed: true})
	assert.Equal(t, id, s.Selected())

	s.OnEvent(e, CursorMoved{X: 0, Y: 0})
	s.OnEvent(e, MouseButtonChanged{Button: core.MouseButtonLeft, Pressed: true})
	assert.Equal(t, uuid.Nil, s.Selected())
	assert.True(t, e.Camera.Dragging(), "a miss starts a camera drag")

	s.OnEvent(e, press(KeyEscape))
	id2, ok := e.takeRequest()
	assert.True(t, ok)
	assert.Equal(t, StateConfig, id2)
}
