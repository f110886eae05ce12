package lensing

import "github.com/gekko3d/lensing/lensrt/rt/core"

// Event is one input or window notification. The set of event types is
// closed; handlers switch on the concrete type.
type Event interface {
	isEvent()
}

type CursorMoved struct {
	X, Y float64
}

type MouseButtonChanged struct {
	Button  core.MouseButton
	Pressed bool
}

type Scrolled struct {
	DX, DY float64
}

type KeyChanged struct {
	Key     Key
	Pressed bool
	Repeat  bool
}

type WindowResized struct {
	Width, Height int
}

type CloseRequested struct{}

func (CursorMoved) isEvent()        {}
func (MouseButtonChanged) isEvent() {}
func (Scrolled) isEvent()           {}
func (KeyChanged) isEvent()         {}
func (WindowResized) isEvent()      {}
func (CloseRequested) isEvent()     {}

// KeyDown reports whether ev is a press (not a repeat or release) of key.
func KeyDown(ev Event, key Key) bool {
	k, ok := ev.(KeyChanged)
	return ok && k.Key == key && k.Pressed && !k.Repeat
}

// KeyHeld reports whether ev is a press or auto-repeat of key.
func KeyHeld(ev Event, key Key) bool {
	k, ok := ev.(KeyChanged)
	return ok && k.Key == key && k.Pressed
}

// EventQueue buffers events between polls. Callbacks run on the main thread
// during glfw.PollEvents, so no locking is needed.
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Push(ev Event) { q.events = append(q.events, ev) }

func (q *EventQueue) Len() int { return len(q.events) }

// Drain returns the buffered events in arrival order and empties the queue.
func (q *EventQueue) Drain() []Event {
	out := q.events
	q.events = nil
	return out
}
