package wgpubackend

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gekko3d/lensing/lensrt/rt/gpu"
	"github.com/gekko3d/lensing/lensrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

// lineUniforms matches GridUniforms in grid.wgsl.
type lineUniforms struct {
	ViewProj [16]float32
	Color    [4]float32
}

// lineDraw holds the alpha-blended line list pipeline used for overlays.
// Pipelines are kept per attachment format; the vertex buffer only grows.
type lineDraw struct {
	device      *wgpu.Device
	module      *wgpu.ShaderModule
	groupLayout *wgpu.BindGroupLayout
	layout      *wgpu.PipelineLayout
	pipelines   map[wgpu.TextureFormat]*wgpu.RenderPipeline
	uniform     *wgpu.Buffer
	group       *wgpu.BindGroup
	vertices    *wgpu.Buffer
	capacity    uint64
}

func newLineDraw(device *wgpu.Device) (*lineDraw, error) {
	l := &lineDraw{device: device, pipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline)}
	var err error
	l.module, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Grid VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.GridWGSL},
	})
	if err != nil {
		return nil, err
	}
	l.groupLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Grid BGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(unsafe.Sizeof(lineUniforms{})),
			},
		}},
	})
	if err != nil {
		l.release()
		return nil, err
	}
	l.layout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{l.groupLayout},
	})
	if err != nil {
		l.release()
		return nil, err
	}
	l.uniform, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Grid Uniforms",
		Size:  uint64(unsafe.Sizeof(lineUniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		l.release()
		return nil, err
	}
	l.group, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  l.groupLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: l.uniform, Size: wgpu.WholeSize}},
	})
	if err != nil {
		l.release()
		return nil, err
	}
	return l, nil
}

func (l *lineDraw) pipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := l.pipelines[format]; ok {
		return p, nil
	}
	p, err := l.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Grid Pipeline",
		Layout: l.layout,
		Vertex: wgpu.VertexState{
			Module:     l.module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 3 * 4,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{{
					Format:         wgpu.VertexFormatFloat32x3,
					Offset:         0,
					ShaderLocation: 0,
				}},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     l.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
					Alpha: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
				},
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyLineList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	l.pipelines[format] = p
	return p, nil
}

func (l *lineDraw) upload(queue *wgpu.Queue, vertices []float32, u lineUniforms) error {
	size := uint64(len(vertices) * 4)
	if l.vertices == nil || l.capacity < size {
		if l.vertices != nil {
			l.vertices.Release()
			l.vertices = nil
		}
		buf, err := l.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Grid Vertices",
			Size:  size,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		l.vertices, l.capacity = buf, size
	}
	queue.WriteBuffer(l.vertices, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), size))
	queue.WriteBuffer(l.uniform, 0, unsafe.Slice((*byte)(unsafe.Pointer(&u)), unsafe.Sizeof(u)))
	return nil
}

func (l *lineDraw) release() {
	for f, p := range l.pipelines {
		p.Release()
		delete(l.pipelines, f)
	}
	if l.vertices != nil {
		l.vertices.Release()
	}
	if l.group != nil {
		l.group.Release()
	}
	if l.uniform != nil {
		l.uniform.Release()
	}
	if l.layout != nil {
		l.layout.Release()
	}
	if l.groupLayout != nil {
		l.groupLayout.Release()
	}
	if l.module != nil {
		l.module.Release()
	}
}

// DrawLines blends a world-space line list over whatever t already holds.
func (b *Backend) DrawLines(t gpu.Target, vertices []float32, viewProj [16]float32, color [4]float32) error {
	if b.encoder == nil {
		return errors.New("draw lines outside a frame")
	}
	if len(vertices) < 6 {
		return nil
	}
	if b.lines == nil {
		l, err := newLineDraw(b.Device)
		if err != nil {
			return fmt.Errorf("line pipeline: %w", err)
		}
		b.lines = l
	}
	view, format, err := b.targetView(t)
	if err != nil {
		return err
	}
	pipeline, err := b.lines.pipeline(format)
	if err != nil {
		return err
	}
	if err := b.lines.upload(b.Queue, vertices, lineUniforms{ViewProj: viewProj, Color: color}); err != nil {
		return fmt.Errorf("line vertices: %w", err)
	}

	pass := b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, b.lines.group, nil)
	pass.SetVertexBuffer(0, b.lines.vertices, 0, uint64(len(vertices)*4))
	pass.Draw(uint32(len(vertices)/3), 1, 0, 0)
	return pass.End()
}
