package lensing

import (
	"errors"

	"github.com/gekko3d/lensing/lensrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	cameraButton = core.MouseButtonLeft

	DefaultNewObjectRadius = 4e10
	DefaultNewObjectMass   = 1.98892e30
	radiusScaleStep        = 1.1
)

// ErrNoRoom is returned by AddObject when the placement point leaves no room
// for a body outside the event horizon and in front of the camera.
var ErrNoRoom = errors.New("no room to place an object")

// cameraInput feeds mouse events to the orbital camera and reports whether
// the event was consumed.
func cameraInput(e *Engine, ev Event) bool {
	switch ev := ev.(type) {
	case CursorMoved:
		e.Camera.ProcessCursor(ev.X, ev.Y)
		return true
	case MouseButtonChanged:
		e.Camera.ProcessButton(ev.Button, ev.Pressed)
		return true
	case Scrolled:
		e.Camera.ProcessScroll(ev.DY)
		return true
	}
	return false
}

// WorldBuilderState edits the object set while time is paused.
type WorldBuilderState struct {
	selected       uuid.UUID
	cursorX        float64
	cursorY        float64
	newObjectColor mgl32.Vec4
}

func (s *WorldBuilderState) Selected() uuid.UUID { return s.selected }

func (s *WorldBuilderState) OnEnter(e *Engine) {
	s.selected = uuid.Nil
	if s.newObjectColor == (mgl32.Vec4{}) {
		s.newObjectColor = mgl32.Vec4{1, 1, 1, 1}
	}
	e.Log.Infof("World builder: click to select, N add, Del remove, +/- resize, C clear, Esc config (%d/%d objects)",
		e.Objects.Len(), core.MaxObjects)
}

func (s *WorldBuilderState) OnExit(e *Engine) {
	e.Camera.ProcessButton(cameraButton, false)
}

func (s *WorldBuilderState) OnEvent(e *Engine, ev Event) {
	switch ev := ev.(type) {
	case CursorMoved:
		s.cursorX, s.cursorY = ev.X, ev.Y
		e.Camera.ProcessCursor(ev.X, ev.Y)
		return
	case MouseButtonChanged:
		if ev.Button == cameraButton && ev.Pressed && s.pick(e) {
			return
		}
		e.Camera.ProcessButton(ev.Button, ev.Pressed)
		return
	case Scrolled:
		e.Camera.ProcessScroll(ev.DY)
		return
	}

	switch {
	case KeyDown(ev, KeyN):
		s.AddObject(e)
	case KeyDown(ev, KeyDelete), KeyDown(ev, KeyBackspace):
		s.RemoveSelected(e)
	case KeyDown(ev, KeyC):
		e.Objects.Clear()
		s.selected = uuid.Nil
		e.Log.Infof("Scene cleared")
	case KeyHeld(ev, KeyEqual), KeyHeld(ev, KeyKPPlus):
		s.scaleSelected(e, radiusScaleStep)
	case KeyHeld(ev, KeyMinus), KeyHeld(ev, KeyKPMinus):
		s.scaleSelected(e, 1/radiusScaleStep)
	case KeyDown(ev, KeyEscape):
		e.RequestState(StateConfig)
	}
}

func (s *WorldBuilderState) OnUpdate(e *Engine, dt float64) {}

func (s *WorldBuilderState) OnRender(e *Engine) error { return e.Render() }

// pick selects the object under the cursor. It reports false when the click
// hit nothing, so the caller can start a camera drag instead.
func (s *WorldBuilderState) pick(e *Engine) bool {
	w, h := e.Renderer.Width(), e.Renderer.Height()
	if w <= 0 || h <= 0 {
		return false
	}
	ndcX := 2*s.cursorX/float64(w) - 1
	ndcY := 1 - 2*s.cursorY/float64(h)
	origin, dir := e.Camera.Ray(ndcX, ndcY)

	objects := e.Objects.Objects()
	idx, hole := core.Pick(origin, dir, objects, e.Hole)
	switch {
	case idx != core.PickNone:
		s.selected = objects[idx].ID
		e.Log.Infof("Selected object %d", idx)
		return true
	case hole:
		s.selected = uuid.Nil
		e.Log.Infof("Black hole clicked (not selectable)")
		return true
	}
	s.selected = uuid.Nil
	return false
}

// AddObject places a new body halfway between the camera and its target and
// selects it. The radius shrinks so the body clears both the event horizon
// and the eye; placements with no room left are refused.
func (s *WorldBuilderState) AddObject(e *Engine) (uuid.UUID, error) {
	eye := e.Camera.Position()
	pos := eye.Add(e.Camera.Target()).Mul(0.5)
	if e.Hole.Intercept(pos) {
		e.Log.Warnf("Cannot place an object inside the event horizon")
		return uuid.Nil, ErrNoRoom
	}
	radius, ok := core.PlacementRadius(pos, eye, e.Hole, DefaultNewObjectRadius)
	if !ok {
		e.Log.Warnf("No room for a new object between the camera and the black hole")
		return uuid.Nil, ErrNoRoom
	}
	id, err := e.Objects.Add(core.CelestialObject{
		PosRadius: mgl32.Vec4{float32(pos[0]), float32(pos[1]), float32(pos[2]), float32(radius)},
		Color:     s.newObjectColor,
		Mass:      DefaultNewObjectMass,
	})
	if err != nil {
		e.Log.Warnf("Add object: %v", err)
		return uuid.Nil, err
	}
	s.selected = id
	if radius < DefaultNewObjectRadius {
		e.Log.Debugf("New object radius shrunk to %.3g m", radius)
	}
	e.Log.Infof("Added object (%d/%d)", e.Objects.Len(), core.MaxObjects)
	return id, nil
}

func (s *WorldBuilderState) RemoveSelected(e *Engine) bool {
	if s.selected == uuid.Nil || !e.Objects.Remove(s.selected) {
		return false
	}
	s.selected = uuid.Nil
	e.Log.Infof("Removed object")
	return true
}

func (s *WorldBuilderState) scaleSelected(e *Engine, factor float32) {
	obj := e.Objects.Find(s.selected)
	if obj == nil {
		return
	}
	obj.PosRadius[3] *= factor
}
