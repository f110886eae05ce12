// Package glbackend implements gpu.Backend on OpenGL 4.3 compute shaders.
package glbackend

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/gekko3d/lensing/lensrt/rt/shaders"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type texture struct {
	handle uint32
	fbo    uint32
	width  int
	height int
}

// Backend requires the window's context to be current on the calling thread.
type Backend struct {
	window *glfw.Window

	quadProgram uint32
	quadVAO     uint32
	quadVBO     uint32

	lineProgram  uint32
	lineVAO      uint32
	lineVBO      uint32
	lineViewProj int32
	lineColor    int32

	next     uint32
	programs map[gpu.Program]uint32
	images   map[gpu.Image]*texture
	targets  map[gpu.Target]*texture
	buffers  map[gpu.Buffer]uint32

	surfaceW, surfaceH int
}

// Hints sets the window hints for a 4.3 core context. Call before creating
// the window.
func Hints() {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
}

func New(window *glfw.Window, vsync bool) (*Backend, error) {
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	b := &Backend{
		window:   window,
		programs: make(map[gpu.Program]uint32),
		images:   make(map[gpu.Image]*texture),
		targets:  make(map[gpu.Target]*texture),
		buffers:  make(map[gpu.Buffer]uint32),
	}
	b.surfaceW, b.surfaceH = window.GetFramebufferSize()

	var err error
	b.quadProgram, err = linkProgram("quad",
		shaderSource{gl.VERTEX_SHADER, shaders.QuadVertexGLSL},
		shaderSource{gl.FRAGMENT_SHADER, shaders.QuadFragmentGLSL})
	if err != nil {
		return nil, err
	}
	b.setupQuad()

	b.lineProgram, err = linkProgram("grid",
		shaderSource{gl.VERTEX_SHADER, shaders.GridVertexGLSL},
		shaderSource{gl.FRAGMENT_SHADER, shaders.GridFragmentGLSL})
	if err != nil {
		return nil, err
	}
	b.setupLines()
	return b, nil
}

func (b *Backend) Name() string { return "OpenGL" }

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

type shaderSource struct {
	kind uint32
	src  string
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func linkProgram(label string, sources ...shaderSource) (uint32, error) {
	program := gl.CreateProgram()
	var attached []uint32
	defer func() {
		for _, s := range attached {
			gl.DeleteShader(s)
		}
	}()
	for _, s := range sources {
		sh, err := compileShader(s.kind, s.src)
		if err != nil {
			gl.DeleteProgram(program)
			return 0, fmt.Errorf("%s: %w", label, err)
		}
		gl.AttachShader(program, sh)
		attached = append(attached, sh)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%s: link: %s", label, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

// quadVertices are two triangles over NDC, interleaved position and uv.
func quadVertices() []float32 {
	return []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, -1, 0, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}
}

func (b *Backend) setupQuad() {
	verts := quadVertices()
	gl.GenVertexArrays(1, &b.quadVAO)
	gl.BindVertexArray(b.quadVAO)
	gl.GenBuffers(1, &b.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.BindVertexArray(0)
}

func (b *Backend) setupLines() {
	b.lineViewProj = gl.GetUniformLocation(b.lineProgram, gl.Str("viewProj\x00"))
	b.lineColor = gl.GetUniformLocation(b.lineProgram, gl.Str("lineColor\x00"))
	gl.GenVertexArrays(1, &b.lineVAO)
	gl.BindVertexArray(b.lineVAO)
	gl.GenBuffers(1, &b.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.lineVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (b *Backend) CompileCompute(label, source string) (gpu.Program, error) {
	prog, err := linkProgram(label, shaderSource{gl.COMPUTE_SHADER, source})
	if err != nil {
		return 0, err
	}
	p := gpu.Program(b.handle())
	b.programs[p] = prog
	return p, nil
}

func (b *Backend) ReleaseProgram(p gpu.Program) {
	if prog, ok := b.programs[p]; ok {
		gl.DeleteProgram(prog)
		delete(b.programs, p)
	}
}

// newTexture allocates an RGBA8 texture with its own framebuffer and clears
// it to opaque black.
func newTexture(w, h int) (*texture, error) {
	t := &texture{width: w, height: h}
	gl.GenTextures(1, &t.handle)
	gl.BindTexture(gl.TEXTURE_2D, t.handle)
	gl.TexStorage2D(gl.TEXTURE_2D, 1, gl.RGBA8, int32(w), int32(h))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.handle, 0)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		t.release()
		return nil, fmt.Errorf("framebuffer %dx%d incomplete", w, h)
	}
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t, nil
}

func (t *texture) release() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
	if t.handle != 0 {
		gl.DeleteTextures(1, &t.handle)
	}
}

func (b *Backend) CreateImage(width, height int) (gpu.Image, error) {
	t, err := newTexture(width, height)
	if err != nil {
		return 0, err
	}
	img := gpu.Image(b.handle())
	b.images[img] = t
	return img, nil
}

func (b *Backend) ReleaseImage(img gpu.Image) {
	if t, ok := b.images[img]; ok {
		t.release()
		delete(b.images, img)
	}
}

func (b *Backend) CreateUniformBuffer(label string, size, binding int) (gpu.Buffer, error) {
	var ubo uint32
	gl.GenBuffers(1, &ubo)
	if ubo == 0 {
		return 0, fmt.Errorf("%s: glGenBuffers failed", label)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(binding), ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	h := gpu.Buffer(b.handle())
	b.buffers[h] = ubo
	return h, nil
}

func (b *Backend) UploadUniform(buf gpu.Buffer, offset int, data []byte) {
	ubo, ok := b.buffers[buf]
	if !ok || len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (b *Backend) CreateTarget(width, height int) (gpu.Target, error) {
	t, err := newTexture(width, height)
	if err != nil {
		return 0, err
	}
	h := gpu.Target(b.handle())
	b.targets[h] = t
	return h, nil
}

func (b *Backend) ReleaseTarget(t gpu.Target) {
	if tex, ok := b.targets[t]; ok {
		tex.release()
		delete(b.targets, t)
	}
}

func (b *Backend) ResizeSurface(width, height int) {
	b.surfaceW, b.surfaceH = width, height
}

func (b *Backend) BeginFrame() error { return nil }

func (b *Backend) BindProgram(p gpu.Program) {
	if prog, ok := b.programs[p]; ok {
		gl.UseProgram(prog)
	}
}

func (b *Backend) BindStorageImage(img gpu.Image, unit int) {
	if t, ok := b.images[img]; ok {
		gl.BindImageTexture(uint32(unit), t.handle, 0, false, 0, gl.WRITE_ONLY, gl.RGBA8)
	}
}

func (b *Backend) Dispatch(x, y, z uint32) {
	gl.DispatchCompute(x, y, z)
}

func barrierBits(kind gpu.BarrierKind) uint32 {
	switch kind {
	case gpu.BarrierImageAccess:
		return gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT
	case gpu.BarrierUniform:
		return gl.UNIFORM_BARRIER_BIT
	}
	return gl.ALL_BARRIER_BITS
}

func (b *Backend) MemoryBarrier(kind gpu.BarrierKind) {
	gl.MemoryBarrier(barrierBits(kind))
}

// framebuffer resolves t to a framebuffer object and its size. The screen is
// framebuffer 0.
func (b *Backend) framebuffer(t gpu.Target) (fbo uint32, w, h int, err error) {
	if t == gpu.ScreenTarget {
		return 0, b.surfaceW, b.surfaceH, nil
	}
	dst, ok := b.targets[t]
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown target %d", t)
	}
	return dst.fbo, dst.width, dst.height, nil
}

func (b *Backend) Composite(img gpu.Image, t gpu.Target) error {
	src, ok := b.images[img]
	if !ok {
		return fmt.Errorf("unknown image %d", img)
	}
	fbo, w, h, err := b.framebuffer(t)
	if err != nil {
		return err
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(b.quadProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src.handle)
	gl.BindVertexArray(b.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("composite: gl error 0x%x", code)
	}
	return nil
}

// DrawLines blends a world-space line list over whatever t already holds.
func (b *Backend) DrawLines(t gpu.Target, vertices []float32, viewProj [16]float32, color [4]float32) error {
	if len(vertices) < 6 {
		return nil
	}
	fbo, w, h, err := b.framebuffer(t)
	if err != nil {
		return err
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(b.lineProgram)
	gl.UniformMatrix4fv(b.lineViewProj, 1, false, &viewProj[0])
	gl.Uniform4fv(b.lineColor, 1, &color[0])
	gl.BindVertexArray(b.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("draw lines: gl error 0x%x", code)
	}
	return nil
}

// EndFrame does nothing; the window swaps buffers.
func (b *Backend) EndFrame() error { return nil }

func (b *Backend) ReadPixels(t gpu.Target) (*image.RGBA, gpu.Origin, error) {
	src, ok := b.targets[t]
	if !ok {
		return nil, gpu.OriginBottomLeft, errors.New("readback from the default framebuffer is not supported")
	}
	img := image.NewRGBA(image.Rect(0, 0, src.width, src.height))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(src.width), int32(src.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, gpu.OriginBottomLeft, fmt.Errorf("read pixels: gl error 0x%x", code)
	}
	return img, gpu.OriginBottomLeft, nil
}

func (b *Backend) Release() {
	for h, p := range b.programs {
		gl.DeleteProgram(p)
		delete(b.programs, h)
	}
	for h, t := range b.images {
		t.release()
		delete(b.images, h)
	}
	for h, t := range b.targets {
		t.release()
		delete(b.targets, h)
	}
	for h, ubo := range b.buffers {
		gl.DeleteBuffers(1, &ubo)
		delete(b.buffers, h)
	}
	if b.quadVBO != 0 {
		gl.DeleteBuffers(1, &b.quadVBO)
	}
	if b.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &b.quadVAO)
	}
	if b.quadProgram != 0 {
		gl.DeleteProgram(b.quadProgram)
	}
	if b.lineVBO != 0 {
		gl.DeleteBuffers(1, &b.lineVBO)
	}
	if b.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &b.lineVAO)
	}
	if b.lineProgram != 0 {
		gl.DeleteProgram(b.lineProgram)
	}
}

var _ gpu.Backend = (*Backend)(nil)
