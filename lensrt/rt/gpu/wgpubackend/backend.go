// Package wgpubackend implements gpu.Backend on WebGPU.
package wgpubackend

import (
	"errors"
	"fmt"
	"image"

	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/gekko3d/lensing/lensrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// TargetFormat is the pixel format of offscreen targets and readbacks.
const TargetFormat = wgpu.TextureFormatRGBA8Unorm

const fullscreenVertices = 6

type texture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	width  int
	height int
}

func (t *texture) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.tex != nil {
		t.tex.Release()
	}
}

type uniformBuffer struct {
	buf     *wgpu.Buffer
	binding int
}

type blitKey struct {
	img    gpu.Image
	format wgpu.TextureFormat
}

type Backend struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	sampler       *wgpu.Sampler
	blitModule    *wgpu.ShaderModule
	blitPipelines map[wgpu.TextureFormat]*wgpu.RenderPipeline
	blitGroups    map[blitKey]*wgpu.BindGroup

	next     uint32
	programs map[gpu.Program]*wgpu.ComputePipeline
	images   map[gpu.Image]*texture
	targets  map[gpu.Target]*texture
	buffers  map[gpu.Buffer]*uniformBuffer

	computeGroup      *wgpu.BindGroup
	computeGroupProg  gpu.Program
	computeGroupImage gpu.Image

	lines *lineDraw

	encoder     *wgpu.CommandEncoder
	frameErr    error
	bound       gpu.Program
	storage     gpu.Image
	surfaceTex  *wgpu.Texture
	surfaceView *wgpu.TextureView
}

// New creates a device presenting to window.
func New(window *glfw.Window, vsync bool) (*Backend, error) {
	b := &Backend{
		blitPipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline),
		blitGroups:    make(map[blitKey]*wgpu.BindGroup),
		programs:      make(map[gpu.Program]*wgpu.ComputePipeline),
		images:        make(map[gpu.Image]*texture),
		targets:       make(map[gpu.Target]*texture),
		buffers:       make(map[gpu.Buffer]*uniformBuffer),
	}

	b.Instance = wgpu.CreateInstance(nil)
	b.Surface = b.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := b.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.Adapter = adapter

	b.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.Queue = b.Device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := b.Surface.GetCapabilities(adapter)
	presentMode := wgpu.PresentModeFifo
	if !vsync {
		presentMode = wgpu.PresentModeImmediate
	}
	b.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	b.Surface.Configure(adapter, b.Device, b.Config)

	b.blitModule, err = b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("blit shader: %w", err)
	}

	b.sampler, err = b.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	return b, nil
}

func (b *Backend) Name() string { return "WebGPU" }

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

func (b *Backend) CompileCompute(label, source string) (gpu.Program, error) {
	module, err := b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
	})
	if err != nil {
		return 0, err
	}
	defer module.Release()

	pipeline, err := b.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: shaders.GeodesicEntryPoint,
		},
	})
	if err != nil {
		return 0, err
	}
	p := gpu.Program(b.handle())
	b.programs[p] = pipeline
	return p, nil
}

func (b *Backend) ReleaseProgram(p gpu.Program) {
	if pl, ok := b.programs[p]; ok {
		pl.Release()
		delete(b.programs, p)
	}
	if b.computeGroupProg == p {
		b.dropComputeGroup()
	}
}

func (b *Backend) newTexture(label string, w, h int, usage wgpu.TextureUsage) (*texture, error) {
	tex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         usage,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &texture{tex: tex, view: view, width: w, height: h}, nil
}

// CreateImage allocates a storage texture. WebGPU zero-initialises it, so an
// image that was never dispatched into composites as black.
func (b *Backend) CreateImage(width, height int) (gpu.Image, error) {
	t, err := b.newTexture("Geodesic Output", width, height,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return 0, err
	}
	img := gpu.Image(b.handle())
	b.images[img] = t
	return img, nil
}

func (b *Backend) ReleaseImage(img gpu.Image) {
	t, ok := b.images[img]
	if !ok {
		return
	}
	for k, bg := range b.blitGroups {
		if k.img == img {
			bg.Release()
			delete(b.blitGroups, k)
		}
	}
	if b.computeGroupImage == img {
		b.dropComputeGroup()
	}
	t.release()
	delete(b.images, img)
}

func (b *Backend) CreateUniformBuffer(label string, size, binding int) (gpu.Buffer, error) {
	buf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	h := gpu.Buffer(b.handle())
	b.buffers[h] = &uniformBuffer{buf: buf, binding: binding}
	return h, nil
}

func (b *Backend) UploadUniform(buf gpu.Buffer, offset int, data []byte) {
	if ub, ok := b.buffers[buf]; ok {
		b.Queue.WriteBuffer(ub.buf, uint64(offset), data)
	}
}

func (b *Backend) CreateTarget(width, height int) (gpu.Target, error) {
	t, err := b.newTexture("Export Target", width, height,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc)
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
	if width <= 0 || height <= 0 {
		return
	}
	b.Config.Width = uint32(width)
	b.Config.Height = uint32(height)
	b.Surface.Configure(b.Adapter, b.Device, b.Config)
}

func (b *Backend) BeginFrame() error {
	enc, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	b.encoder = enc
	return nil
}

func (b *Backend) BindProgram(p gpu.Program) { b.bound = p }

func (b *Backend) BindStorageImage(img gpu.Image, unit int) { b.storage = img }

func (b *Backend) dropComputeGroup() {
	if b.computeGroup != nil {
		b.computeGroup.Release()
		b.computeGroup = nil
	}
	b.computeGroupProg, b.computeGroupImage = 0, 0
}

// computeBindGroup returns the group 0 bind group for the bound program and
// image. Uniform buffers are fixed, so only those two invalidate it.
func (b *Backend) computeBindGroup(pipeline *wgpu.ComputePipeline) (*wgpu.BindGroup, error) {
	if b.computeGroup != nil && b.computeGroupProg == b.bound && b.computeGroupImage == b.storage {
		return b.computeGroup, nil
	}
	b.dropComputeGroup()

	img, ok := b.images[b.storage]
	if !ok {
		return nil, errors.New("no storage image bound")
	}
	entries := []wgpu.BindGroupEntry{{Binding: gpu.BindingOutputImage, TextureView: img.view}}
	for _, ub := range b.buffers {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(ub.binding), Buffer: ub.buf, Size: wgpu.WholeSize})
	}
	bg, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  pipeline.GetBindGroupLayout(0),
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	b.computeGroup, b.computeGroupProg, b.computeGroupImage = bg, b.bound, b.storage
	return bg, nil
}

// Dispatch records a compute pass. Failures are kept until EndFrame, which
// returns them.
func (b *Backend) Dispatch(x, y, z uint32) {
	pipeline, ok := b.programs[b.bound]
	if !ok || b.encoder == nil {
		return
	}
	bg, err := b.computeBindGroup(pipeline)
	if err != nil {
		b.frameErr = errors.Join(b.frameErr, fmt.Errorf("compute bind group: %w", err))
		return
	}
	pass := b.encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(x, y, z)
	if err := pass.End(); err != nil {
		b.frameErr = errors.Join(b.frameErr, fmt.Errorf("compute pass: %w", err))
	}
}

// MemoryBarrier is implicit in WebGPU: storage writes in a compute pass are
// visible to every later pass in the same submission.
func (b *Backend) MemoryBarrier(kind gpu.BarrierKind) {}

func (b *Backend) blitPipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := b.blitPipelines[format]; ok {
		return p, nil
	}
	p, err := b.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     b.blitModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.blitModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	b.blitPipelines[format] = p
	return p, nil
}

func (b *Backend) blitGroup(img gpu.Image, format wgpu.TextureFormat, pipeline *wgpu.RenderPipeline) (*wgpu.BindGroup, error) {
	key := blitKey{img, format}
	if bg, ok := b.blitGroups[key]; ok {
		return bg, nil
	}
	src, ok := b.images[img]
	if !ok {
		return nil, fmt.Errorf("unknown image %d", img)
	}
	bg, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: src.view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	b.blitGroups[key] = bg
	return bg, nil
}

// targetView resolves t to a render attachment. The screen texture is
// acquired on first use in a frame and presented by EndFrame.
func (b *Backend) targetView(t gpu.Target) (*wgpu.TextureView, wgpu.TextureFormat, error) {
	if t != gpu.ScreenTarget {
		dst, ok := b.targets[t]
		if !ok {
			return nil, 0, fmt.Errorf("unknown target %d", t)
		}
		return dst.view, TargetFormat, nil
	}
	if b.surfaceView == nil {
		tex, err := b.Surface.GetCurrentTexture()
		if err != nil {
			return nil, 0, fmt.Errorf("surface texture: %w", err)
		}
		v, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return nil, 0, fmt.Errorf("surface view: %w", err)
		}
		b.surfaceTex, b.surfaceView = tex, v
	}
	return b.surfaceView, b.Config.Format, nil
}

// Composite draws img into t with the two-triangle quad of fullscreen.wgsl.
func (b *Backend) Composite(img gpu.Image, t gpu.Target) error {
	if b.encoder == nil {
		return errors.New("composite outside a frame")
	}
	view, format, err := b.targetView(t)
	if err != nil {
		return err
	}

	pipeline, err := b.blitPipeline(format)
	if err != nil {
		return err
	}
	bg, err := b.blitGroup(img, format, pipeline)
	if err != nil {
		return err
	}

	pass := b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(fullscreenVertices, 1, 0, 0)
	return pass.End()
}

// EndFrame submits the frame and returns any error recorded by Dispatch.
func (b *Backend) EndFrame() error {
	if b.encoder == nil {
		return nil
	}
	recorded := b.frameErr
	b.frameErr = nil
	defer func() {
		b.encoder.Release()
		b.encoder = nil
		if b.surfaceView != nil {
			b.surfaceView.Release()
			b.surfaceTex.Release()
			b.surfaceView, b.surfaceTex = nil, nil
		}
	}()

	cmd, err := b.encoder.Finish(nil)
	if err != nil {
		return errors.Join(recorded, fmt.Errorf("encoder finish: %w", err))
	}
	defer cmd.Release()
	b.Queue.Submit(cmd)
	if b.surfaceView != nil {
		b.Surface.Present()
	}
	return recorded
}

// ReadPixels copies t into a mappable buffer and waits for the device. Rows
// are padded to 256 bytes on the GPU side.
func (b *Backend) ReadPixels(t gpu.Target) (*image.RGBA, gpu.Origin, error) {
	src, ok := b.targets[t]
	if !ok {
		return nil, gpu.OriginTopLeft, fmt.Errorf("unknown target %d", t)
	}
	w, h := uint32(src.width), uint32(src.height)
	bytesPerRow := (w*4 + 255) & ^uint32(255)
	size := uint64(bytesPerRow) * uint64(h)

	readback, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Export Readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, gpu.OriginTopLeft, err
	}
	defer readback.Release()

	enc, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, gpu.OriginTopLeft, err
	}
	enc.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  src.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: h,
			},
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	cmd, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return nil, gpu.OriginTopLeft, err
	}
	b.Queue.Submit(cmd)
	cmd.Release()

	var status wgpu.BufferMapAsyncStatus
	if err := readback.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	}); err != nil {
		return nil, gpu.OriginTopLeft, err
	}
	b.Device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, gpu.OriginTopLeft, fmt.Errorf("map readback buffer: status %d", status)
	}
	defer readback.Unmap()

	data := readback.GetMappedRange(0, uint(size))
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := uint32(0); y < h; y++ {
		row := data[y*bytesPerRow : y*bytesPerRow+w*4]
		copy(img.Pix[int(y)*img.Stride:], row)
	}
	return img, gpu.OriginTopLeft, nil
}

func (b *Backend) Release() {
	b.dropComputeGroup()
	if b.lines != nil {
		b.lines.release()
		b.lines = nil
	}
	for k, bg := range b.blitGroups {
		bg.Release()
		delete(b.blitGroups, k)
	}
	for f, p := range b.blitPipelines {
		p.Release()
		delete(b.blitPipelines, f)
	}
	for h, p := range b.programs {
		p.Release()
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
	for h, ub := range b.buffers {
		ub.buf.Release()
		delete(b.buffers, h)
	}
	if b.sampler != nil {
		b.sampler.Release()
	}
	if b.blitModule != nil {
		b.blitModule.Release()
	}
	if b.Device != nil {
		b.Device.Release()
	}
	if b.Adapter != nil {
		b.Adapter.Release()
	}
	if b.Surface != nil {
		b.Surface.Release()
	}
	if b.Instance != nil {
		b.Instance.Release()
	}
}

var _ gpu.Backend = (*Backend)(nil)
