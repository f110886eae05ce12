package lensing

import (
	"testing"

	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestEventQueue_DrainOrder(t *testing.T) {
	var q EventQueue
	q.Push(CursorMoved{X: 1, Y: 2})
	q.Push(Scrolled{DY: -1})
	q.Push(CloseRequested{})
	assert.Equal(t, 3, q.Len())

	evs := q.Drain()
	assert.Equal(t, []Event{CursorMoved{X: 1, Y: 2}, Scrolled{DY: -1}, CloseRequested{}}, evs)
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.Drain())
}

func TestKeyHelpers(t *testing.T) {
	press := KeyChanged{Key: KeyG, Pressed: true}
	repeat := KeyChanged{Key: KeyUp, Pressed: true, Repeat: true}
	release := KeyChanged{Key: KeyG}

	assert.True(t, KeyDown(press, KeyG))
	assert.False(t, KeyDown(press, KeyN))
	assert.False(t, KeyDown(release, KeyG))
	assert.False(t, KeyDown(repeat, KeyUp))
	assert.True(t, KeyHeld(repeat, KeyUp))
	assert.False(t, KeyDown(Scrolled{}, KeyG))
}

func TestTranslateKeyAction(t *testing.T) {
	tests := []struct {
		key    glfw.Key
		action glfw.Action
		want   KeyChanged
		ok     bool
	}{
		{glfw.KeyG, glfw.Press, KeyChanged{Key: KeyG, Pressed: true}, true},
		{glfw.KeyUp, glfw.Repeat, KeyChanged{Key: KeyUp, Pressed: true, Repeat: true}, true},
		{glfw.KeyEscape, glfw.Release, KeyChanged{Key: KeyEscape}, true},
		{glfw.KeyKPAdd, glfw.Press, KeyChanged{Key: KeyKPPlus, Pressed: true}, true},
		{glfw.KeyZ, glfw.Press, KeyChanged{}, false},
	}
	for _, tt := range tests {
		got, ok := translateKeyAction(tt.key, tt.action)
		assert.Equal(t, tt.ok, ok, "key %v", tt.key)
		assert.Equal(t, tt.want, got, "key %v", tt.key)
	}
}

func TestTranslateButton(t *testing.T) {
	b, ok := translateButton(glfw.MouseButtonLeft)
	assert.True(t, ok)
	assert.Equal(t, core.MouseButtonLeft, b)
	_, ok = translateButton(glfw.MouseButton4)
	assert.False(t, ok)
}

func TestKeyTableIsBijective(t *testing.T) {
	assert.Len(t, glfwToKey, len(keyToGlfw))
	for k, g := range keyToGlfw {
		assert.Equal(t, k, translateKey(g))
	}
}
