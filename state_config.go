package lensing

import "github.com/gekko3d/lensing/lensrt/rt/core"

// ComputeHeightStep is the change applied by one Up or Down key press.
const ComputeHeightStep = 64

// ConfigState edits the simulation settings from the keyboard and keeps the
// last frame on screen while doing so.
type ConfigState struct{}

func (s *ConfigState) OnEnter(e *Engine) {
	e.Log.Infof("Config: Up/Down compute height, G gravity, T grid, F1 debug log, Enter simulate, W world builder")
	logSettings(e)
}

func (s *ConfigState) OnExit(e *Engine) {
	e.ApplyComputeHeight()
}

func (s *ConfigState) OnEvent(e *Engine, ev Event) {
	sim := e.Settings.Simulation
	switch {
	case KeyHeld(ev, KeyUp):
		sim.SetComputeHeight(sim.ComputeHeight() + ComputeHeightStep)
		e.ApplyComputeHeight()
	case KeyHeld(ev, KeyDown):
		sim.SetComputeHeight(sim.ComputeHeight() - ComputeHeightStep)
		e.ApplyComputeHeight()
	case KeyDown(ev, KeyG):
		toggleGravity(e)
	case KeyDown(ev, KeyT):
		e.ToggleGrid()
	case KeyDown(ev, KeyF1):
		g := &e.Settings.Graphics
		g.ShowDebugInfo = !g.ShowDebugInfo
		e.Log.SetDebug(g.ShowDebugInfo)
	case KeyDown(ev, KeyEnter):
		e.RequestState(StateSimulation)
	case KeyDown(ev, KeyW):
		e.RequestState(StateWorldBuilder)
	}
}

func (s *ConfigState) OnUpdate(e *Engine, dt float64) {}

func (s *ConfigState) OnRender(e *Engine) error { return e.Render() }

func toggleGravity(e *Engine) {
	sim := e.Settings.Simulation
	sim.SetGravityEnabled(!sim.GravityEnabled())
	e.Log.Infof("Gravity %s", onOff(sim.GravityEnabled()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func logSettings(e *Engine) {
	sim := e.Settings.Simulation
	e.Log.Infof("compute %dx%d, steps %d/%d, early exit %.3g, gravity %s, api %s",
		core.ComputeWidth(e.Renderer.Width(), e.Renderer.Height(), sim.ComputeHeight()), sim.ComputeHeight(),
		sim.MaxStepsMoving(), sim.MaxStepsStatic(), sim.EarlyExitDistance(),
		onOff(sim.GravityEnabled()), e.Settings.Graphics.RenderAPI)
}
