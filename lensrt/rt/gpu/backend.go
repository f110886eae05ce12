package gpu

import "image"

// Handles index resources owned by a Backend. Zero is never a valid handle
// except ScreenTarget.
type (
	Program uint32
	Image   uint32
	Buffer  uint32
	Target  uint32
)

// ScreenTarget is the window's own framebuffer.
const ScreenTarget Target = 0

type BarrierKind int

const (
	// BarrierImageAccess orders storage image writes before later sampling.
	BarrierImageAccess BarrierKind = iota + 1
	BarrierUniform
)

// Origin describes the row order of pixels returned by ReadPixels.
type Origin int

const (
	OriginTopLeft Origin = iota
	OriginBottomLeft
)

// Backend is the small set of graphics verbs the renderer needs. All calls
// happen on the thread that owns the graphics context.
type Backend interface {
	Name() string

	CompileCompute(label, source string) (Program, error)
	ReleaseProgram(p Program)

	CreateImage(width, height int) (Image, error)
	ReleaseImage(img Image)

	CreateUniformBuffer(label string, size, binding int) (Buffer, error)
	UploadUniform(buf Buffer, offset int, data []byte)

	CreateTarget(width, height int) (Target, error)
	ReleaseTarget(t Target)
	ResizeSurface(width, height int)

	BeginFrame() error
	BindProgram(p Program)
	BindStorageImage(img Image, unit int)
	// Dispatch failures are returned by the next EndFrame.
	Dispatch(x, y, z uint32)
	MemoryBarrier(kind BarrierKind)
	// Composite draws img over the whole target with a full-screen quad.
	Composite(img Image, t Target) error
	// DrawLines blends an xyz line list over t. viewProj is column-major
	// with a -1..1 depth range.
	DrawLines(t Target, vertices []float32, viewProj [16]float32, color [4]float32) error
	EndFrame() error

	ReadPixels(t Target) (*image.RGBA, Origin, error)

	Release()
}
