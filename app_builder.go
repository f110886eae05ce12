package lensing

import (
	"errors"
	"fmt"
	"time"
)

type AppBuilder struct {
	app    *App
	states []namedState
}

type namedState struct {
	id    StateID
	state State
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		states:       make(map[StateID]State),
		initialState: StateConfig,
		now:          time.Now,
		sleep:        time.Sleep,
	}}
}

func (b *AppBuilder) UseLogger(log Logger) *AppBuilder {
	b.app.log = log
	return b
}

func (b *AppBuilder) UseEngine(e *Engine) *AppBuilder {
	b.app.engine = e
	return b
}

func (b *AppBuilder) UsePlatform(p Platform) *AppBuilder {
	b.app.platform = p
	return b
}

func (b *AppBuilder) UseShaderWatcher(w *ShaderWatcher) *AppBuilder {
	b.app.watcher = w
	return b
}

func (b *AppBuilder) UseState(id StateID, s State) *AppBuilder {
	b.states = append(b.states, namedState{id, s})
	return b
}

// UseDefaultStates registers the Config, Simulation and WorldBuilder states.
func (b *AppBuilder) UseDefaultStates() *AppBuilder {
	return b.
		UseState(StateConfig, &ConfigState{}).
		UseState(StateSimulation, &SimulationState{}).
		UseState(StateWorldBuilder, &WorldBuilderState{})
}

func (b *AppBuilder) InitialState(id StateID) *AppBuilder {
	b.app.initialState = id
	return b
}

// UseClock replaces the wall clock and sleep used for pacing.
func (b *AppBuilder) UseClock(now func() time.Time, sleep func(time.Duration)) *AppBuilder {
	b.app.now = now
	b.app.sleep = sleep
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	app := b.app
	if app.engine == nil {
		return nil, errors.New("app: engine is required")
	}
	if app.platform == nil {
		return nil, errors.New("app: platform is required")
	}
	if app.log == nil {
		app.log = app.engine.Log
	}
	for _, ns := range b.states {
		if _, dup := app.states[ns.id]; dup {
			return nil, fmt.Errorf("app: state %s registered twice", ns.id)
		}
		app.states[ns.id] = ns.state
	}
	if _, ok := app.states[app.initialState]; !ok {
		return nil, fmt.Errorf("app: initial state %s is not registered", app.initialState)
	}
	app.engine.Renderer.Profiler.SetClock(app.now)
	return app, nil
}
