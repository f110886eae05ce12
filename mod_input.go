package lensing

import (
	"github.com/gekko3d/lensing/lensrt/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyUnknown Key = iota
	KeyC
	KeyG
	KeyN
	KeyP
	KeyR
	KeyT
	KeyW
	KeyEnter
	KeyEscape
	KeyDelete
	KeyBackspace
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF11
	KeyF12
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
)

var keyToGlfw = map[Key]glfw.Key{
	KeyC:         glfw.KeyC,
	KeyG:         glfw.KeyG,
	KeyN:         glfw.KeyN,
	KeyP:         glfw.KeyP,
	KeyR:         glfw.KeyR,
	KeyT:         glfw.KeyT,
	KeyW:         glfw.KeyW,
	KeyEnter:     glfw.KeyEnter,
	KeyEscape:    glfw.KeyEscape,
	KeyDelete:    glfw.KeyDelete,
	KeyBackspace: glfw.KeyBackspace,
	KeyRight:     glfw.KeyRight,
	KeyLeft:      glfw.KeyLeft,
	KeyDown:      glfw.KeyDown,
	KeyUp:        glfw.KeyUp,
	KeyF1:        glfw.KeyF1,
	KeyF11:       glfw.KeyF11,
	KeyF12:       glfw.KeyF12,
	KeyMinus:     glfw.KeyMinus,
	KeyEqual:     glfw.KeyEqual,
	KeyKPPlus:    glfw.KeyKPAdd,
	KeyKPMinus:   glfw.KeyKPSubtract,
}

var glfwToKey = func() map[glfw.Key]Key {
	m := make(map[glfw.Key]Key, len(keyToGlfw))
	for k, g := range keyToGlfw {
		m[g] = k
	}
	return m
}()

func translateKey(k glfw.Key) Key {
	if key, ok := glfwToKey[k]; ok {
		return key
	}
	return KeyUnknown
}

func translateButton(b glfw.MouseButton) (core.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return core.MouseButtonLeft, true
	case glfw.MouseButtonRight:
		return core.MouseButtonRight, true
	case glfw.MouseButtonMiddle:
		return core.MouseButtonMiddle, true
	}
	return 0, false
}

// translateKeyAction maps a glfw key callback to an event. Unmapped keys are
// dropped.
func translateKeyAction(k glfw.Key, action glfw.Action) (KeyChanged, bool) {
	key := translateKey(k)
	if key == KeyUnknown {
		return KeyChanged{}, false
	}
	return KeyChanged{
		Key:     key,
		Pressed: action != glfw.Release,
		Repeat:  action == glfw.Repeat,
	}, true
}

// installInputCallbacks routes every glfw input and window callback of w into q.
func installInputCallbacks(w *glfw.Window, q *EventQueue) {
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		q.Push(CursorMoved{X: x, Y: y})
	})
	w.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if btn, ok := translateButton(b); ok {
			q.Push(MouseButtonChanged{Button: btn, Pressed: action == glfw.Press})
		}
	})
	w.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		q.Push(Scrolled{DX: dx, DY: dy})
	})
	w.SetKeyCallback(func(_ *glfw.Window, k glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := translateKeyAction(k, action); ok {
			q.Push(ev)
		}
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		q.Push(WindowResized{Width: width, Height: height})
	})
	w.SetCloseCallback(func(_ *glfw.Window) {
		q.Push(CloseRequested{})
	})
}
