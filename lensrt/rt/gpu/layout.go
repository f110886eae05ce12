package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// UniformLayoutVersion changes whenever a block below changes shape. The
// shaders declare the same number in a comment next to their block structs.
const UniformLayoutVersion = 1

// Fixed binding indices shared by every compute program.
const (
	BindingOutputImage = 0
	BindingCamera      = 1
	BindingDisk        = 2
	BindingObjects     = 3
	BindingSimulation  = 4
)

const (
	CameraBlockSize     = 80
	DiskBlockSize       = 32
	ObjectsBlockSize    = 592
	SimulationBlockSize = 16
)

// MaxObjectSlots mirrors the array length declared in the shaders.
const MaxObjectSlots = 16

var ErrLayoutMismatch = errors.New("uniform block layout mismatch")

// Every block is a flat record of 4-byte scalars. Blank fields are the
// explicit std140 padding and are written as zero.

type CameraBlock struct {
	Position   [3]float32
	_          float32
	Right      [3]float32
	_          float32
	Up         [3]float32
	_          float32
	Forward    [3]float32
	_          float32
	TanHalfFov float32
	Aspect     float32
	Moving     uint32
	_          uint32
}

type DiskBlock struct {
	InnerRadius         float32
	OuterRadius         float32
	BandCount           float32
	Thickness           float32
	Density             float32
	SchwarzschildRadius float32
	Glow                float32
	_                   float32
}

// ObjectsBlock stores mass four to a vec4 so the array stride is 16 in both
// WGSL and GLSL. Slots at or past Count are never read by the shader.
type ObjectsBlock struct {
	Count     int32
	_         [3]int32
	PosRadius [MaxObjectSlots][4]float32
	Color     [MaxObjectSlots][4]float32
	Mass      [MaxObjectSlots / 4][4]float32
}

func (b *ObjectsBlock) MassAt(i int) float32 { return b.Mass[i/4][i%4] }

func (b *ObjectsBlock) SetMass(i int, m float32) { b.Mass[i/4][i%4] = m }

type SimulationBlock struct {
	MaxStepsMoving    int32
	MaxStepsStatic    int32
	EarlyExitDistance float32
	Time              float32
}

// Blocks is one frame worth of uniform data.
type Blocks struct {
	Camera     CameraBlock
	Disk       DiskBlock
	Objects    ObjectsBlock
	Simulation SimulationBlock
}

type blockLayout struct {
	name    string
	binding int
	size    int
	value   any
}

func layouts() []blockLayout {
	return []blockLayout{
		{"camera", BindingCamera, CameraBlockSize, &CameraBlock{}},
		{"disk", BindingDisk, DiskBlockSize, &DiskBlock{}},
		{"objects", BindingObjects, ObjectsBlockSize, &ObjectsBlock{}},
		{"simulation", BindingSimulation, SimulationBlockSize, &SimulationBlock{}},
	}
}

// ValidateLayouts checks every record against its declared size. It is run
// once at startup before any buffer is created.
func ValidateLayouts() error {
	var errs []error
	for _, l := range layouts() {
		got := binary.Size(l.value)
		if got != l.size || got%16 != 0 {
			errs = append(errs, fmt.Errorf("%s block (binding %d): %d bytes, want %d: %w",
				l.name, l.binding, got, l.size, ErrLayoutMismatch))
		}
	}
	return errors.Join(errs...)
}

func marshal(v any, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := binary.Encode(buf, binary.LittleEndian, v)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("encoded %d bytes, want %d: %w", n, size, ErrLayoutMismatch)
	}
	return buf, nil
}

func unmarshal(data []byte, v any, size int) error {
	if len(data) != size {
		return fmt.Errorf("got %d bytes, want %d: %w", len(data), size, ErrLayoutMismatch)
	}
	_, err := binary.Decode(data, binary.LittleEndian, v)
	return err
}

func (b *CameraBlock) MarshalBinary() ([]byte, error) { return marshal(b, CameraBlockSize) }
func (b *CameraBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, CameraBlockSize)
}

func (b *DiskBlock) MarshalBinary() ([]byte, error) { return marshal(b, DiskBlockSize) }
func (b *DiskBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, DiskBlockSize)
}

func (b *ObjectsBlock) MarshalBinary() ([]byte, error) { return marshal(b, ObjectsBlockSize) }
func (b *ObjectsBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, ObjectsBlockSize)
}

func (b *SimulationBlock) MarshalBinary() ([]byte, error) { return marshal(b, SimulationBlockSize) }
func (b *SimulationBlock) UnmarshalBinary(data []byte) error {
	return unmarshal(data, b, SimulationBlockSize)
}
