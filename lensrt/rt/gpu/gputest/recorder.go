// Package gputest provides a recording gpu.Backend for tests that run
// without a graphics device.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gekko3d/lensing/lensrt/rt/gpu"
)

var ErrInjected = errors.New("injected failure")

type Call struct {
	Op   string
	Args []any
}

type size struct{ w, h int }

// Recorder logs every verb it receives. Failures can be injected per verb.
type Recorder struct {
	Calls []Call

	// Fail maps a verb name to the error it should return.
	Fail map[string]error
	// CompileErr is returned by CompileCompute when non-nil.
	CompileErr error
	Origin     gpu.Origin

	Uploads map[gpu.Buffer][]byte

	next     uint32
	programs map[gpu.Program]string
	images   map[gpu.Image]size
	targets  map[gpu.Target]size
	buffers  map[gpu.Buffer]int
	surface  size

	lastComposite gpu.Image
	frameErr      error
	released      bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		Fail:     make(map[string]error),
		Uploads:  make(map[gpu.Buffer][]byte),
		programs: make(map[gpu.Program]string),
		images:   make(map[gpu.Image]size),
		targets:  make(map[gpu.Target]size),
		buffers:  make(map[gpu.Buffer]int),
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

// Ops returns the verb names in call order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent call to op.
func (r *Recorder) Last(op string) (Call, bool) {
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if r.Calls[i].Op == op {
			return r.Calls[i], true
		}
	}
	return Call{}, false
}

func (r *Recorder) Reset() { r.Calls = nil }

func (r *Recorder) LiveImages() int  { return len(r.images) }
func (r *Recorder) LiveTargets() int { return len(r.targets) }

func (r *Recorder) ImageSize(img gpu.Image) (int, int) {
	s := r.images[img]
	return s.w, s.h
}

func (r *Recorder) Released() bool { return r.released }

// LastComposite is the image drawn by the most recent successful Composite.
func (r *Recorder) LastComposite() gpu.Image { return r.lastComposite }

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) CompileCompute(label, source string) (gpu.Program, error) {
	r.record("CompileCompute", label)
	if r.CompileErr != nil {
		return 0, r.CompileErr
	}
	p := gpu.Program(r.handle())
	r.programs[p] = source
	return p, nil
}

func (r *Recorder) ReleaseProgram(p gpu.Program) {
	r.record("ReleaseProgram", p)
	delete(r.programs, p)
}

func (r *Recorder) CreateImage(width, height int) (gpu.Image, error) {
	r.record("CreateImage", width, height)
	if err := r.Fail["CreateImage"]; err != nil {
		return 0, err
	}
	img := gpu.Image(r.handle())
	r.images[img] = size{width, height}
	return img, nil
}

func (r *Recorder) ReleaseImage(img gpu.Image) {
	r.record("ReleaseImage", img)
	delete(r.images, img)
}

func (r *Recorder) CreateUniformBuffer(label string, sz, binding int) (gpu.Buffer, error) {
	r.record("CreateUniformBuffer", label, sz, binding)
	if err := r.Fail["CreateUniformBuffer"]; err != nil {
		return 0, err
	}
	b := gpu.Buffer(r.handle())
	r.buffers[b] = binding
	return b, nil
}

// BindingOf returns the binding index a buffer was created at.
func (r *Recorder) BindingOf(b gpu.Buffer) int { return r.buffers[b] }

func (r *Recorder) UploadUniform(buf gpu.Buffer, offset int, data []byte) {
	r.record("UploadUniform", buf, offset, len(data))
	r.Uploads[buf] = append([]byte(nil), data...)
}

func (r *Recorder) CreateTarget(width, height int) (gpu.Target, error) {
	r.record("CreateTarget", width, height)
	if err := r.Fail["CreateTarget"]; err != nil {
		return 0, err
	}
	t := gpu.Target(r.handle())
	r.targets[t] = size{width, height}
	return t, nil
}

func (r *Recorder) ReleaseTarget(t gpu.Target) {
	r.record("ReleaseTarget", t)
	delete(r.targets, t)
}

func (r *Recorder) ResizeSurface(width, height int) {
	r.record("ResizeSurface", width, height)
	r.surface = size{width, height}
}

func (r *Recorder) BeginFrame() error {
	r.record("BeginFrame")
	return r.Fail["BeginFrame"]
}

func (r *Recorder) BindProgram(p gpu.Program) { r.record("BindProgram", p) }

func (r *Recorder) BindStorageImage(img gpu.Image, unit int) {
	r.record("BindStorageImage", img, unit)
}

// Dispatch keeps an injected failure for the next EndFrame.
func (r *Recorder) Dispatch(x, y, z uint32) {
	r.record("Dispatch", x, y, z)
	if err := r.Fail["Dispatch"]; err != nil {
		r.frameErr = err
	}
}

func (r *Recorder) MemoryBarrier(kind gpu.BarrierKind) { r.record("MemoryBarrier", kind) }

func (r *Recorder) Composite(img gpu.Image, t gpu.Target) error {
	r.record("Composite", img, t)
	if err := r.Fail["Composite"]; err != nil {
		return err
	}
	r.lastComposite = img
	return nil
}

// DrawLines records the endpoint count and the matrix it was given.
func (r *Recorder) DrawLines(t gpu.Target, vertices []float32, viewProj [16]float32, color [4]float32) error {
	r.record("DrawLines", t, len(vertices)/3, viewProj, color)
	return r.Fail["DrawLines"]
}

func (r *Recorder) EndFrame() error {
	r.record("EndFrame")
	err := errors.Join(r.frameErr, r.Fail["EndFrame"])
	r.frameErr = nil
	return err
}

// ReadPixels returns an image the size of t whose top row is red and whose
// bottom row is blue, in the configured origin order.
func (r *Recorder) ReadPixels(t gpu.Target) (*image.RGBA, gpu.Origin, error) {
	r.record("ReadPixels", t)
	if err := r.Fail["ReadPixels"]; err != nil {
		return nil, r.Origin, err
	}
	s, ok := r.targets[t]
	if t == gpu.ScreenTarget {
		s, ok = r.surface, true
	}
	if !ok {
		return nil, r.Origin, fmt.Errorf("unknown target %d", t)
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 255}), image.Point{}, draw.Src)
	top, bottom := color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}
	if r.Origin == gpu.OriginBottomLeft {
		top, bottom = bottom, top
	}
	for x := 0; x < s.w; x++ {
		img.SetRGBA(x, 0, top)
		img.SetRGBA(x, s.h-1, bottom)
	}
	return img, r.Origin, nil
}

func (r *Recorder) Release() {
	r.record("Release")
	r.released = true
}

var _ gpu.Backend = (*Recorder)(nil)
