package lensing

import (
	"fmt"

	"github.com/gekko3d/lensing/lensrt/rt/gpu/glbackend"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Platform is what the App needs from the host window.
type Platform interface {
	PollEvents() []Event
	FramebufferSize() (int, int)
	Present()
	ShouldClose() bool
	// ToggleFullscreen switches between windowed and fullscreen and reports
	// whether the window is now fullscreen.
	ToggleFullscreen() bool
}

// Window is a GLFW window that turns callbacks into Events. It must be used
// from the main, locked OS thread.
type Window struct {
	Glfw   *glfw.Window
	API    string
	Width  int
	Height int
	Title  string
	queue  EventQueue

	windowedX, windowedY int
	windowedW, windowedH int
}

// CreateWindow initialises GLFW and opens a window set up for the given
// render API. Zero sizes fall back to 1280x720.
func CreateWindow(api string, width, height int, title string) (*Window, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Lensing"
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	if api == RenderAPIOpenGL {
		glbackend.Hints()
	} else {
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	w := &Window{Glfw: win, API: api, Width: width, Height: height, Title: title}
	installInputCallbacks(win, &w.queue)
	return w, nil
}

func (w *Window) PollEvents() []Event {
	glfw.PollEvents()
	return w.queue.Drain()
}

func (w *Window) FramebufferSize() (int, int) { return w.Glfw.GetFramebufferSize() }

// Present swaps buffers for OpenGL. WebGPU presents from the backend.
func (w *Window) Present() {
	if w.API == RenderAPIOpenGL {
		w.Glfw.SwapBuffers()
	}
}

func (w *Window) ShouldClose() bool { return w.Glfw.ShouldClose() }

// ToggleFullscreen moves the window to the primary monitor at its current
// video mode, or back to the windowed position and size it left.
func (w *Window) ToggleFullscreen() bool {
	if w.Glfw.GetMonitor() != nil {
		w.Glfw.SetMonitor(nil, w.windowedX, w.windowedY, w.windowedW, w.windowedH, 0)
		return false
	}
	mon := glfw.GetPrimaryMonitor()
	if mon == nil {
		return false
	}
	mode := mon.GetVideoMode()
	w.windowedX, w.windowedY = w.Glfw.GetPos()
	w.windowedW, w.windowedH = w.Glfw.GetSize()
	w.Glfw.SetMonitor(mon, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	return true
}

func (w *Window) Close() {
	w.Glfw.Destroy()
	glfw.Terminate()
}
