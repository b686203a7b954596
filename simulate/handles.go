package simulate

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Requirements are the memory requirements a Device reports for a Buffer or Image
type Requirements struct {
	Name              string
	Size              int
	Alignment         int
	MemoryTypeBits    uint32
	RequiresDedicated bool
	PrefersDedicated  bool
}

type binding struct {
	memory *Memory
	offset int
}

// Buffer is a buffer handle issued by a Device. Only the methods defined here may be called;
// the embedded core1_0.Buffer is always nil.
type Buffer struct {
	core1_0.Buffer

	requirements Requirements
	binding      *binding
}

func (b *Buffer) Requirements() Requirements {
	return b.requirements
}

// BoundMemory returns the Memory the buffer is bound to, or nil if it has not been bound
func (b *Buffer) BoundMemory() *Memory {
	if b.binding == nil {
		return nil
	}
	return b.binding.memory
}

// BoundOffset returns the offset the buffer was bound at
func (b *Buffer) BoundOffset() int {
	if b.binding == nil {
		return 0
	}
	return b.binding.offset
}

// Image is an image handle issued by a Device. Only the methods defined here may be called;
// the embedded core1_0.Image is always nil.
type Image struct {
	core1_0.Image

	requirements Requirements
	binding      *binding
}

func (i *Image) Requirements() Requirements {
	return i.requirements
}

func (i *Image) BoundMemory() *Memory {
	if i.binding == nil {
		return nil
	}
	return i.binding.memory
}

func (i *Image) BoundOffset() int {
	if i.binding == nil {
		return 0
	}
	return i.binding.offset
}

// Memory is a device memory handle issued by a Device
type Memory struct {
	core1_0.DeviceMemory

	id              int
	memoryTypeIndex int
	size            int
	deviceAddress   bool
	dedicatedBuffer *Buffer
	dedicatedImage  *Image
}

func (m *Memory) ID() int { return m.id }
func (m *Memory) MemoryTypeIndex() int { return m.memoryTypeIndex }
func (m *Memory) Size() int { return m.size }
func (m *Memory) DeviceAddress() bool { return m.deviceAddress }
func (m *Memory) DedicatedBuffer() *Buffer { return m.dedicatedBuffer }
func (m *Memory) DedicatedImage() *Image { return m.dedicatedImage }
