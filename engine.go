package lensing

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gekko3d/lensing/lensrt/rt/app"
	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/gekko3d/lensing/lensrt/rt/shaders"
)

// Engine owns the simulation and the renderer. States receive it explicitly.
type Engine struct {
	Hole     *core.BlackHole
	Objects  *core.ObjectSet
	Camera   *core.OrbitalCamera
	Settings *Settings
	Renderer *app.Renderer
	Log      Logger

	// ExportDir receives screenshots taken from the Simulation state.
	ExportDir string

	elapsed float64
	now     func() time.Time

	requested  StateID
	hasRequest bool
}

func NewEngine(renderer *app.Renderer, settings *Settings, log Logger) *Engine {
	if settings == nil {
		settings = DefaultSettings()
	}
	if log == nil {
		log = NewNopLogger()
	}
	e := &Engine{
		Hole:      core.NewDefaultBlackHole(),
		Objects:   core.DefaultObjects(),
		Camera:    core.NewOrbitalCamera(),
		Settings:  settings,
		Renderer:  renderer,
		Log:       log,
		ExportDir: ".",
		now:       time.Now,
	}
	if w, h := renderer.Width(), renderer.Height(); w > 0 && h > 0 {
		e.Camera.SetAspect(float64(w) / float64(h))
	}
	return e
}

// Init creates the GPU resources and builds the geodesic program for the
// renderer's backend. A program failure is not fatal: the renderer keeps
// compositing and the error is returned for the caller to log.
func (e *Engine) Init() error {
	if err := e.Renderer.Init(); err != nil {
		return err
	}
	e.Renderer.SetComputeHeight(e.Settings.Simulation.ComputeHeight())
	e.Renderer.SetGrid(e.Settings.Graphics.ShowGrid)
	name := e.Renderer.Backend().Name()
	return e.Renderer.BuildProgram("geodesic", shaders.Geodesic(name))
}

func (e *Engine) Elapsed() float64 { return e.elapsed }

// Advance moves simulation time forward by dt seconds.
func (e *Engine) Advance(dt float64) {
	if dt > 0 {
		e.elapsed += dt
	}
}

// RequestState asks the App to switch state once the current frame is done.
func (e *Engine) RequestState(id StateID) {
	e.requested = id
	e.hasRequest = true
}

func (e *Engine) takeRequest() (StateID, bool) {
	if !e.hasRequest {
		return "", false
	}
	e.hasRequest = false
	return e.requested, true
}

func (e *Engine) Frame() gpu.Frame {
	return gpu.Frame{
		Camera:   e.Camera,
		Hole:     e.Hole,
		Objects:  e.Objects.Objects(),
		Settings: e.Settings.Simulation,
		Elapsed:  e.elapsed,
	}
}

// Resize forwards a framebuffer size to the renderer and the camera.
func (e *Engine) Resize(width, height int) {
	if !e.Renderer.Resize(width, height) {
		return
	}
	e.Camera.SetAspect(float64(width) / float64(height))
	e.Log.Debugf("resized to %dx%d, compute %dx%d", width, height, e.Renderer.ComputeWidth(), e.Renderer.ComputeHeight())
}

// ApplyComputeHeight pushes the configured compute height to the renderer.
func (e *Engine) ApplyComputeHeight() {
	if e.Renderer.SetComputeHeight(e.Settings.Simulation.ComputeHeight()) {
		e.Log.Infof("compute resolution %dx%d", e.Renderer.ComputeWidth(), e.Renderer.ComputeHeight())
	}
}

// ToggleGrid flips the spacetime grid overlay and the setting that persists it.
func (e *Engine) ToggleGrid() {
	g := &e.Settings.Graphics
	g.ShowGrid = !g.ShowGrid
	e.Renderer.SetGrid(g.ShowGrid)
	e.Log.Infof("Grid %s", onOff(g.ShowGrid))
}

// ResetCamera puts the camera back at its default orbit, keeping the aspect.
func (e *Engine) ResetCamera() {
	aspect := e.Camera.Aspect()
	e.Camera = core.NewOrbitalCamera()
	e.Camera.SetAspect(aspect)
}

func (e *Engine) StepPhysics() {
	core.StepGravity(e.Objects.Objects(), e.Hole, e.Settings.Simulation.GravityEnabled())
}

func (e *Engine) Render() error {
	return e.Renderer.RenderFrame(e.Frame())
}

// ReloadShader rebuilds the geodesic program from new source.
func (e *Engine) ReloadShader(label, source string) error {
	return e.Renderer.BuildProgram(label, source)
}

// Screenshot exports a frame at twice the window size into ExportDir and
// returns the file path.
func (e *Engine) Screenshot() (string, error) {
	w, h := e.Renderer.Width()*2, e.Renderer.Height()*2
	name := fmt.Sprintf("blackhole_%s.png", e.now().Format("20060102_150405"))
	path := filepath.Join(e.ExportDir, name)
	if err := e.Renderer.ExportHighRes(w, h, path, e.Frame()); err != nil {
		return "", err
	}
	return path, nil
}
