package app

import (
	"errors"
	"fmt"

	"github.com/gekko3d/lensing/lensrt/rt/core"
	"github.com/gekko3d/lensing/lensrt/rt/gpu"
)

// WorkgroupSize is the local size the geodesic shader is compiled with in
// both dimensions.
const WorkgroupSize = 16

var ErrDispatchDisabled = errors.New("compute dispatch disabled")

// GridColor is the blend colour of the spacetime grid overlay.
var GridColor = [4]float32{0.6, 0.6, 0.8, 0.35}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type PipelineState int

const (
	StateIdle PipelineState = iota
	StateResizing
	StateUploading
	StateDispatching
	StateBarrier
	StateCompositing
)

func (s PipelineState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResizing:
		return "Resizing"
	case StateUploading:
		return "Uploading"
	case StateDispatching:
		return "Dispatching"
	case StateBarrier:
		return "Barrier"
	case StateCompositing:
		return "Compositing"
	}
	return fmt.Sprintf("PipelineState(%d)", int(s))
}

// DispatchGroups returns the workgroup grid covering a w×h image.
func DispatchGroups(w, h int) (uint32, uint32) {
	return uint32((w + WorkgroupSize - 1) / WorkgroupSize), uint32((h + WorkgroupSize - 1) / WorkgroupSize)
}

// Renderer drives one compute dispatch and one composite per frame.
type Renderer struct {
	backend  gpu.Backend
	log      Logger
	Uniforms *gpu.UniformManager
	Profiler *Profiler

	program      gpu.Program
	programLabel string
	dispatchOn   bool
	failed       bool
	grid         bool

	image          gpu.Image
	imageW, imageH int

	width, height int
	computeHeight int

	state PipelineState
	trace []PipelineState
}

func NewRenderer(backend gpu.Backend, log Logger, width, height, computeHeight int) *Renderer {
	return &Renderer{
		backend:       backend,
		log:           log,
		Uniforms:      gpu.NewUniformManager(backend),
		Profiler:      NewProfiler(),
		width:         width,
		height:        height,
		computeHeight: clampComputeHeight(computeHeight),
		trace:         make([]PipelineState, 0, 8),
	}
}

func clampComputeHeight(h int) int {
	return max(core.MinComputeHeight, min(core.MaxComputeHeight, h))
}

// Init creates the uniform buffers and sizes the surface.
func (r *Renderer) Init() error {
	if err := r.Uniforms.Init(); err != nil {
		return fmt.Errorf("renderer init: %w", err)
	}
	if r.width > 0 && r.height > 0 {
		r.backend.ResizeSurface(r.width, r.height)
	}
	return nil
}

func (r *Renderer) Backend() gpu.Backend { return r.backend }

func (r *Renderer) Width() int         { return r.width }
func (r *Renderer) Height() int        { return r.height }
func (r *Renderer) ComputeHeight() int { return r.computeHeight }
func (r *Renderer) ComputeWidth() int {
	return core.ComputeWidth(r.width, r.height, r.computeHeight)
}

func (r *Renderer) State() PipelineState { return r.state }

// LastFrameStates lists the states visited by the most recent frame.
func (r *Renderer) LastFrameStates() []PipelineState {
	return append([]PipelineState(nil), r.trace...)
}

func (r *Renderer) DispatchEnabled() bool { return r.dispatchOn }

// SetGrid turns the spacetime grid overlay on or off.
func (r *Renderer) SetGrid(on bool)   { r.grid = on }
func (r *Renderer) GridEnabled() bool { return r.grid }

func (r *Renderer) enter(s PipelineState) {
	r.state = s
	r.trace = append(r.trace, s)
}

// BuildProgram compiles the geodesic program. On failure dispatch stays off
// until a later call succeeds; the first failure of a streak is logged as an
// error, repeats only at debug level.
func (r *Renderer) BuildProgram(label, source string) error {
	p, err := r.backend.CompileCompute(label, source)
	if err != nil {
		r.dispatchOn = false
		if !r.failed {
			r.log.Errorf("compute program %q failed, dispatch disabled: %v", label, err)
		} else {
			r.log.Debugf("compute program %q still failing: %v", label, err)
		}
		r.failed = true
		return fmt.Errorf("build %s: %w", label, err)
	}
	if r.program != 0 {
		r.backend.ReleaseProgram(r.program)
	}
	if r.failed {
		r.log.Infof("compute program %q rebuilt, dispatch enabled", label)
	}
	r.program = p
	r.programLabel = label
	r.dispatchOn = true
	r.failed = false
	return nil
}

// Resize records new window dimensions. It reports false when nothing
// changed or the size is degenerate.
func (r *Renderer) Resize(width, height int) bool {
	if width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return false
	}
	r.width, r.height = width, height
	r.backend.ResizeSurface(width, height)
	return true
}

// SetComputeHeight clamps h and reports whether the value changed.
func (r *Renderer) SetComputeHeight(h int) bool {
	h = clampComputeHeight(h)
	if h == r.computeHeight {
		return false
	}
	r.computeHeight = h
	return true
}

// ensureImage recreates the output image when its size differs from the
// current compute size. The old image is released before the new one exists.
func (r *Renderer) ensureImage(cw, ch int) error {
	if r.image != 0 && r.imageW == cw && r.imageH == ch {
		return nil
	}
	r.enter(StateResizing)
	if r.image != 0 {
		r.backend.ReleaseImage(r.image)
		r.image = 0
	}
	img, err := r.backend.CreateImage(cw, ch)
	if err != nil {
		r.imageW, r.imageH = 0, 0
		return fmt.Errorf("create %dx%d output image: %w", cw, ch, err)
	}
	r.image, r.imageW, r.imageH = img, cw, ch
	r.log.Debugf("output image %dx%d", cw, ch)
	return nil
}

// RenderFrame runs upload, dispatch, barrier and composite to the window.
func (r *Renderer) RenderFrame(frame gpu.Frame) error {
	return r.renderTo(frame, gpu.ScreenTarget)
}

func (r *Renderer) renderTo(frame gpu.Frame, target gpu.Target) error {
	r.trace = r.trace[:0]
	defer r.enter(StateIdle)

	cw, ch := r.ComputeWidth(), r.computeHeight
	if cw <= 0 || ch <= 0 {
		return nil
	}

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	if err := r.ensureImage(cw, ch); err != nil {
		return errors.Join(err, r.backend.EndFrame())
	}

	r.enter(StateUploading)
	r.Profiler.BeginScope("Upload")
	blocks := gpu.PackFrame(frame, cw, ch)
	err := r.Uniforms.Upload(&blocks)
	r.Profiler.EndScope("Upload")
	if err != nil {
		return errors.Join(err, r.backend.EndFrame())
	}

	if r.dispatchOn {
		r.enter(StateDispatching)
		r.Profiler.BeginScope("Dispatch")
		gx, gy := DispatchGroups(cw, ch)
		r.backend.BindProgram(r.program)
		r.backend.BindStorageImage(r.image, gpu.BindingOutputImage)
		r.backend.Dispatch(gx, gy, 1)
		r.Profiler.EndScope("Dispatch")

		r.enter(StateBarrier)
		r.backend.MemoryBarrier(gpu.BarrierImageAccess)
	}

	r.enter(StateCompositing)
	r.Profiler.BeginScope("Composite")
	err = r.backend.Composite(r.image, target)
	r.Profiler.EndScope("Composite")
	if err != nil {
		return errors.Join(err, r.backend.EndFrame())
	}

	if r.grid && frame.Camera != nil {
		r.Profiler.BeginScope("Grid")
		err = r.drawGrid(frame, target)
		r.Profiler.EndScope("Grid")
		if err != nil {
			return errors.Join(err, r.backend.EndFrame())
		}
	}
	r.Profiler.SetCount("Objects", int(blocks.Objects.Count))
	return r.backend.EndFrame()
}

// drawGrid overlays the embedding grid of the current masses, projected by
// the camera.
func (r *Renderer) drawGrid(frame gpu.Frame, target gpu.Target) error {
	lines := core.GridLines(core.GridVertices(frame.Objects, frame.Hole))
	vp := frame.Camera.ProjectionMatrix().Mul4(frame.Camera.ViewMatrix())
	var m [16]float32
	for i, v := range vp {
		m[i] = float32(v)
	}
	return r.backend.DrawLines(target, lines, m, GridColor)
}

// Release frees every resource the renderer created, then the backend.
func (r *Renderer) Release() {
	if r.image != 0 {
		r.backend.ReleaseImage(r.image)
		r.image = 0
	}
	if r.program != 0 {
		r.backend.ReleaseProgram(r.program)
		r.program = 0
	}
	r.dispatchOn = false
	r.backend.Release()
}
