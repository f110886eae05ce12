package lensing

// KeyOrbitStep is the azimuth change in radians for one Left or Right key
// event.
const KeyOrbitStep = 0.05

// SimulationState runs the live simulation: orbit camera on the mouse,
// Newtonian objects, one geodesic frame per tick.
type SimulationState struct {
	paused bool
}

func (s *SimulationState) Paused() bool { return s.paused }

func (s *SimulationState) OnEnter(e *Engine) {
	e.ApplyComputeHeight()
	e.Log.Infof("Simulation: drag or Left/Right to orbit, scroll to zoom, R reset view, P pause, G gravity, T grid, F12 export, Esc config")
}

func (s *SimulationState) OnExit(e *Engine) {
	e.Camera.ProcessButton(cameraButton, false)
}

func (s *SimulationState) OnEvent(e *Engine, ev Event) {
	if cameraInput(e, ev) {
		return
	}
	switch {
	case KeyHeld(ev, KeyLeft):
		e.Camera.SetAzimuth(e.Camera.Azimuth() - KeyOrbitStep)
	case KeyHeld(ev, KeyRight):
		e.Camera.SetAzimuth(e.Camera.Azimuth() + KeyOrbitStep)
	case KeyDown(ev, KeyR):
		e.ResetCamera()
		e.Log.Infof("View reset")
	case KeyDown(ev, KeyP):
		s.paused = !s.paused
		if s.paused {
			e.Log.Infof("Simulation paused")
		} else {
			e.Log.Infof("Simulation resumed")
		}
	case KeyDown(ev, KeyG):
		toggleGravity(e)
	case KeyDown(ev, KeyT):
		e.ToggleGrid()
	case KeyDown(ev, KeyF12):
		path, err := e.Screenshot()
		if err != nil {
			e.Log.Errorf("Export failed: %v", err)
			return
		}
		e.Log.Infof("Exported %s", path)
	case KeyDown(ev, KeyEscape):
		e.RequestState(StateConfig)
	}
}

// OnUpdate advances time and gravity unless paused. The view keeps rendering
// while paused so the camera can still move.
func (s *SimulationState) OnUpdate(e *Engine, dt float64) {
	if s.paused {
		return
	}
	e.Advance(dt)
	e.StepPhysics()
}

func (s *SimulationState) OnRender(e *Engine) error { return e.Render() }
