package simulate

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/batchalloc/batch"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
)

// Device is an in-process batch.Driver. It reports the requirements its Buffers and Images were
// created with, tracks heap usage against per-heap limits, and checks every bind the way the
// validation layers would.
type Device struct {
	lock sync.Mutex

	memoryTypes []core1_0.MemoryType
	heapSizes   []int
	heapUsage   []int

	allocations     []*Memory
	bufferBindCalls int
	imageBindCalls  int
}

var _ batch.Driver = &Device{}

// NewDevice creates a Device with the provided memory types. heapSizes[i] is the number of bytes
// that may be allocated from heap i; heaps without a positive entry are unlimited.
func NewDevice(memoryTypes []core1_0.MemoryType, heapSizes []int) *Device {
	heapCount := len(heapSizes)
	for _, memoryType := range memoryTypes {
		if memoryType.HeapIndex >= heapCount {
			heapCount = memoryType.HeapIndex + 1
		}
	}

	return &Device{
		memoryTypes: append([]core1_0.MemoryType(nil), memoryTypes...),
		heapSizes:   append([]int(nil), heapSizes...),
		heapUsage:   make([]int, heapCount),
	}
}

func (d *Device) MemoryTypes() []core1_0.MemoryType {
	return d.memoryTypes
}

// CreateBuffer issues an unbound Buffer that reports reqs as its memory requirements
func (d *Device) CreateBuffer(reqs Requirements) *Buffer {
	return &Buffer{requirements: reqs}
}

// CreateImage issues an unbound Image that reports reqs as its memory requirements
func (d *Device) CreateImage(reqs Requirements) *Image {
	return &Image{requirements: reqs}
}

// Allocations returns every Memory allocated from this device, in allocation order
func (d *Device) Allocations() []*Memory {
	d.lock.Lock()
	defer d.lock.Unlock()

	return append([]*Memory(nil), d.allocations...)
}

// HeapUsage returns the number of bytes allocated from the heap at heapIndex
func (d *Device) HeapUsage(heapIndex int) int {
	d.lock.Lock()
	defer d.lock.Unlock()

	if heapIndex < 0 || heapIndex >= len(d.heapUsage) {
		return 0
	}
	return d.heapUsage[heapIndex]
}

// BindCalls returns the number of BindBufferMemory2 and BindImageMemory2 calls made so far
func (d *Device) BindCalls() (bufferCalls, imageCalls int) {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.bufferBindCalls, d.imageBindCalls
}

func writeRequirements(reqs Requirements, out *core1_1.MemoryRequirements2) {
	out.MemoryRequirements = core1_0.MemoryRequirements{
		Size:           reqs.Size,
		Alignment:      reqs.Alignment,
		MemoryTypeBits: reqs.MemoryTypeBits,
	}

	dedicated, ok := out.Next.(*khr_dedicated_allocation.MemoryDedicatedRequirements)
	if ok {
		dedicated.RequiresDedicatedAllocation = reqs.RequiresDedicated
		dedicated.PrefersDedicatedAllocation = reqs.PrefersDedicated || reqs.RequiresDedicated
	}
}

func (d *Device) BufferMemoryRequirements2(o core1_1.BufferMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
	buffer, ok := o.Buffer.(*Buffer)
	if !ok || buffer == nil {
		return errors.Newf("buffer %v was not created by this device", o.Buffer)
	}

	writeRequirements(buffer.requirements, out)
	return nil
}

func (d *Device) ImageMemoryRequirements2(o core1_1.ImageMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
	image, ok := o.Image.(*Image)
	if !ok || image == nil {
		return errors.Newf("image %v was not created by this device", o.Image)
	}

	writeRequirements(image.requirements, out)
	return nil
}

func (d *Device) AllocateMemory(allocationCallbacks *driver.AllocationCallbacks, o core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
	if o.MemoryTypeIndex < 0 || o.MemoryTypeIndex >= len(d.memoryTypes) {
		return nil, core1_0.VKErrorUnknown, errors.Newf("memory type %d does not exist", o.MemoryTypeIndex)
	}
	if o.AllocationSize < 1 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate %d bytes", o.AllocationSize)
	}

	memory := &Memory{
		memoryTypeIndex: o.MemoryTypeIndex,
		size:            o.AllocationSize,
	}

	next := o.Next
	for next != nil {
		switch info := next.(type) {
		case core1_1.MemoryAllocateFlagsInfo:
			memory.deviceAddress = info.Flags&khr_buffer_device_address.MemoryAllocateDeviceAddress != 0
			next = info.Next
		case khr_dedicated_allocation.MemoryDedicatedAllocateInfo:
			res, err := d.resolveDedicatedInfo(memory, info)
			if err != nil {
				return nil, res, err
			}
			next = info.Next
		default:
			return nil, core1_0.VKErrorUnknown, errors.Newf("unsupported allocate info in chain: %T", next)
		}
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	heapIndex := d.memoryTypes[o.MemoryTypeIndex].HeapIndex
	if heapIndex < len(d.heapSizes) && d.heapSizes[heapIndex] > 0 &&
		d.heapUsage[heapIndex]+o.AllocationSize > d.heapSizes[heapIndex] {
		return nil, core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()
	}

	d.heapUsage[heapIndex] += o.AllocationSize
	memory.id = len(d.allocations)
	d.allocations = append(d.allocations, memory)

	return memory, core1_0.VKSuccess, nil
}

func (d *Device) resolveDedicatedInfo(memory *Memory, info khr_dedicated_allocation.MemoryDedicatedAllocateInfo) (common.VkResult, error) {
	if info.Buffer != nil && info.Image != nil {
		return core1_0.VKErrorUnknown, errors.New("dedicated allocation names both a buffer and an image")
	}

	var reqs Requirements
	if info.Buffer != nil {
		buffer, ok := info.Buffer.(*Buffer)
		if !ok {
			return core1_0.VKErrorUnknown, errors.Newf("buffer %v was not created by this device", info.Buffer)
		}
		memory.dedicatedBuffer = buffer
		reqs = buffer.requirements
	} else if info.Image != nil {
		image, ok := info.Image.(*Image)
		if !ok {
			return core1_0.VKErrorUnknown, errors.Newf("image %v was not created by this device", info.Image)
		}
		memory.dedicatedImage = image
		reqs = image.requirements
	} else {
		return core1_0.VKSuccess, nil
	}

	if memory.size != reqs.Size {
		return core1_0.VKErrorUnknown, errors.Newf("dedicated allocation for %s is %d bytes, but the resource requires %d", reqs.Name, memory.size, reqs.Size)
	}

	return core1_0.VKSuccess, nil
}

func checkPlacement(memory *Memory, reqs Requirements, offset int, dedicatedTo bool) error {
	if memory.memoryTypeIndex >= common.MaxMemoryTypes || reqs.MemoryTypeBits&(1<<memory.memoryTypeIndex) == 0 {
		return errors.Newf("%s cannot be bound to memory type %d", reqs.Name, memory.memoryTypeIndex)
	}

	if reqs.Alignment < 1 {
		return errors.Wrapf(memutils.PowerOfTwoError, "%s has alignment %d", reqs.Name, reqs.Alignment)
	}
	err := memutils.CheckPow2(reqs.Alignment, reqs.Name+" alignment")
	if err != nil {
		return err
	}

	if offset%reqs.Alignment != 0 {
		return errors.Newf("%s bound at offset %d, which does not satisfy alignment %d", reqs.Name, offset, reqs.Alignment)
	}
	if offset < 0 || offset+reqs.Size > memory.size {
		return errors.Newf("%s bound at offset %d runs past the end of memory %d, which is size %d", reqs.Name, offset, memory.id, memory.size)
	}

	isDedicated := memory.dedicatedBuffer != nil || memory.dedicatedImage != nil
	if isDedicated && !dedicatedTo {
		return errors.Newf("%s bound to memory %d, which is dedicated to another resource", reqs.Name, memory.id)
	}
	if dedicatedTo && offset != 0 {
		return errors.Newf("%s bound to its dedicated memory at offset %d", reqs.Name, offset)
	}
	if reqs.RequiresDedicated && !dedicatedTo {
		return errors.Newf("%s requires a dedicated allocation", reqs.Name)
	}

	return nil
}

func (d *Device) BindBufferMemory2(o []core1_1.BindBufferMemoryInfo) (common.VkResult, error) {
	if len(o) == 0 {
		return core1_0.VKErrorUnknown, errors.New("BindBufferMemory2 requires at least one bind")
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	buffers := make([]*Buffer, len(o))
	memories := make([]*Memory, len(o))
	for i, info := range o {
		buffer, ok := info.Buffer.(*Buffer)
		if !ok || buffer == nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: buffer %v was not created by this device", i, info.Buffer)
		}
		memory, ok := info.Memory.(*Memory)
		if !ok || memory == nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: memory %v was not allocated by this device", i, info.Memory)
		}
		if buffer.binding != nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: %s is already bound", i, buffer.requirements.Name)
		}

		err := checkPlacement(memory, buffer.requirements, info.MemoryOffset, memory.dedicatedBuffer == buffer)
		if err != nil {
			return core1_0.VKErrorUnknown, errors.Wrapf(err, "bind %d", i)
		}

		buffers[i] = buffer
		memories[i] = memory
	}

	for i, info := range o {
		buffers[i].binding = &binding{memory: memories[i], offset: info.MemoryOffset}
	}
	d.bufferBindCalls++

	return core1_0.VKSuccess, nil
}

func (d *Device) BindImageMemory2(o []core1_1.BindImageMemoryInfo) (common.VkResult, error) {
	if len(o) == 0 {
		return core1_0.VKErrorUnknown, errors.New("BindImageMemory2 requires at least one bind")
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	images := make([]*Image, len(o))
	memories := make([]*Memory, len(o))
	for i, info := range o {
		image, ok := info.Image.(*Image)
		if !ok || image == nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: image %v was not created by this device", i, info.Image)
		}
		memory, ok := info.Memory.(*Memory)
		if !ok || memory == nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: memory %v was not allocated by this device", i, info.Memory)
		}
		if image.binding != nil {
			return core1_0.VKErrorUnknown, errors.Newf("bind %d: %s is already bound", i, image.requirements.Name)
		}

		err := checkPlacement(memory, image.requirements, int(info.MemoryOffset), memory.dedicatedImage == image)
		if err != nil {
			return core1_0.VKErrorUnknown, errors.Wrapf(err, "bind %d", i)
		}

		images[i] = image
		memories[i] = memory
	}

	for i, info := range o {
		images[i].binding = &binding{memory: memories[i], offset: int(info.MemoryOffset)}
	}
	d.imageBindCalls++

	return core1_0.VKSuccess, nil
}
