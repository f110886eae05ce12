package lensing

import (
	"time"
)

type StateID string

const (
	StateConfig       StateID = "Config"
	StateSimulation   StateID = "Simulation"
	StateWorldBuilder StateID = "WorldBuilder"
)

// State is one screen of the application. Exactly one state is active.
type State interface {
	OnEnter(e *Engine)
	OnExit(e *Engine)
	OnEvent(e *Engine, ev Event)
	OnUpdate(e *Engine, dt float64)
	OnRender(e *Engine) error
}

type App struct {
	log      Logger
	engine   *Engine
	platform Platform
	watcher  *ShaderWatcher

	states       map[StateID]State
	initialState StateID
	state        StateID
	entered      bool
	running      bool

	clock   *Time
	now     func() time.Time
	sleep   func(time.Duration)
	lastErr string
}

func (app *App) Engine() *Engine { return app.engine }

func (app *App) State() StateID { return app.state }

func (app *App) Running() bool { return app.running }

func (app *App) Stop() { app.running = false }

func (app *App) current() State {
	if !app.entered {
		return nil
	}
	return app.states[app.state]
}

// Start enters the initial state. Run calls it; tests drive Frame directly.
func (app *App) Start() {
	if app.entered {
		return
	}
	app.state = app.initialState
	app.entered = true
	app.running = true
	app.clock = NewTime(app.now())
	app.engine.Renderer.Profiler.Reset()
	if s := app.states[app.state]; s != nil {
		s.OnEnter(app.engine)
	}
	app.log.Infof("Entered %s state", app.state)
}

// ChangeState runs the exit phase of the current state and the enter phase
// of id. Unknown states are logged and ignored; the current state is a no-op.
func (app *App) ChangeState(id StateID) {
	next, ok := app.states[id]
	if !ok {
		app.log.Warnf("Unknown state %q, staying in %s", id, app.state)
		return
	}
	if id == app.state {
		return
	}
	if cur := app.current(); cur != nil {
		cur.OnExit(app.engine)
	}
	app.state = id
	app.engine.Renderer.Profiler.Reset()
	next.OnEnter(app.engine)
	app.log.Infof("Entered %s state", id)
}

func (app *App) Run() {
	app.Start()
	for app.running && !app.platform.ShouldClose() {
		if err := app.Frame(); err != nil {
			app.reportFrameError(err)
		}
	}
	if cur := app.current(); cur != nil {
		cur.OnExit(app.engine)
	}
	if app.watcher != nil {
		app.watcher.Close()
	}
}

// Frame runs one iteration: events, shader reloads, update, render,
// present, pending state change and pacing.
func (app *App) Frame() error {
	start := app.now()
	e := app.engine

	for _, ev := range app.platform.PollEvents() {
		app.handleEvent(ev)
	}
	app.pollShader()

	dt := app.clock.Tick(start)
	var err error
	if cur := app.current(); cur != nil {
		cur.OnUpdate(e, dt)
		err = cur.OnRender(e)
	}
	app.platform.Present()

	if id, ok := e.takeRequest(); ok {
		app.ChangeState(id)
	}

	if p := e.Renderer.Profiler; p.Tick() {
		g := e.Settings.Graphics
		if g.ShowFPS {
			app.log.Infof("%s", p.Summary())
		}
		if g.ShowPerformanceMetrics {
			app.log.Debugf("%s", p.GetStatsString())
		}
	}

	if app.running && !e.Settings.Graphics.VSyncEnabled {
		if d := PaceDelay(start, app.now(), e.Settings.Simulation.TargetFPS()); d > 0 {
			app.sleep(d)
		}
	}
	return err
}

func (app *App) handleEvent(ev Event) {
	switch ev := ev.(type) {
	case WindowResized:
		app.engine.Resize(ev.Width, ev.Height)
	case CloseRequested:
		app.Stop()
	case KeyChanged:
		if KeyDown(ev, KeyF11) {
			app.log.Infof("Fullscreen %s", onOff(app.platform.ToggleFullscreen()))
		}
	}
	if cur := app.current(); cur != nil {
		cur.OnEvent(app.engine, ev)
	}
}

func (app *App) pollShader() {
	if app.watcher == nil {
		return
	}
	r, ok := app.watcher.Poll()
	if !ok {
		return
	}
	if r.Err != nil {
		app.log.Warnf("Shader reload: %v", r.Err)
		return
	}
	if err := app.engine.ReloadShader(r.Path, r.Source); err == nil {
		app.log.Infof("Shader reloaded from %s", r.Path)
	}
}

// reportFrameError logs a render error once until a different one occurs.
func (app *App) reportFrameError(err error) {
	msg := err.Error()
	if msg == app.lastErr {
		app.log.Debugf("frame: %s", msg)
		return
	}
	app.lastErr = msg
	app.log.Errorf("frame: %s", msg)
}
