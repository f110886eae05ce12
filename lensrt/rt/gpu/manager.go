package gpu

import (
	"encoding"
	"fmt"
)

// UniformManager owns the four uniform buffers. They are created once at
// their fixed bindings and rewritten in place every frame.
type UniformManager struct {
	backend Backend

	CameraBuf     Buffer
	DiskBuf       Buffer
	ObjectsBuf    Buffer
	SimulationBuf Buffer

	// BytesUploaded counts bytes written by the last Upload.
	BytesUploaded int
}

func NewUniformManager(backend Backend) *UniformManager {
	return &UniformManager{backend: backend}
}

func (m *UniformManager) Ready() bool { return m.CameraBuf != 0 }

// Init validates the block layouts and creates the buffers. Calling it again
// after success does nothing.
func (m *UniformManager) Init() error {
	if m.Ready() {
		return nil
	}
	if err := ValidateLayouts(); err != nil {
		return err
	}

	bufs := []struct {
		label   string
		size    int
		binding int
		dst     *Buffer
	}{
		{"Camera UBO", CameraBlockSize, BindingCamera, &m.CameraBuf},
		{"Disk UBO", DiskBlockSize, BindingDisk, &m.DiskBuf},
		{"Objects UBO", ObjectsBlockSize, BindingObjects, &m.ObjectsBuf},
		{"Simulation UBO", SimulationBlockSize, BindingSimulation, &m.SimulationBuf},
	}
	for _, b := range bufs {
		h, err := m.backend.CreateUniformBuffer(b.label, b.size, b.binding)
		if err != nil {
			return fmt.Errorf("create %s: %w", b.label, err)
		}
		*b.dst = h
	}
	return nil
}

// Upload writes all four blocks, camera first.
func (m *UniformManager) Upload(blocks *Blocks) error {
	if !m.Ready() {
		return fmt.Errorf("uniform buffers not created")
	}
	m.BytesUploaded = 0
	uploads := []struct {
		buf Buffer
		rec encoding.BinaryMarshaler
	}{
		{m.CameraBuf, &blocks.Camera},
		{m.DiskBuf, &blocks.Disk},
		{m.ObjectsBuf, &blocks.Objects},
		{m.SimulationBuf, &blocks.Simulation},
	}
	for _, u := range uploads {
		data, err := u.rec.MarshalBinary()
		if err != nil {
			return err
		}
		m.backend.UploadUniform(u.buf, 0, data)
		m.BytesUploaded += len(data)
	}
	return nil
}
