package batch

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/batchalloc/batch/internal/utils"
	"github.com/vkngwrapper/arsenal/batchalloc/batch/internal/vulkan"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

// Allocator places batches of unbound buffers and images into device memory. Each call to
// AllocateBatch is independent: memory is never reused between batches and never freed by the
// Allocator. Every block listed in the returned Plan belongs to the caller.
type Allocator struct {
	logger              *slog.Logger
	driver              Driver
	allocationCallbacks *driver.AllocationCallbacks
	memoryCallbacks     MemoryCallbacks

	createFlags CreateFlags
	memoryTypes []core1_0.MemoryType

	batchMutex utils.OptionalMutex
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// VulkanCallbacks is an optional set of host allocation callbacks passed to every
	// AllocateMemory call made by this allocator
	VulkanCallbacks *driver.AllocationCallbacks

	// MemoryCallbacks is optionally notified of every block of device memory this allocator
	// creates
	MemoryCallbacks MemoryCallbacks
}

// New creates a new Allocator
//
// deviceDriver - The device commands used to query requirements, allocate and bind
//
// memoryTypes - The memory types of the PhysicalDevice that owns the device. The slice is copied,
// so later changes to it have no effect on the Allocator.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, deviceDriver Driver, memoryTypes []core1_0.MemoryType, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("attempted to create an allocator with a nil logger")
	}
	if deviceDriver == nil {
		return nil, errors.New("attempted to create an allocator with a nil driver")
	}
	if len(memoryTypes) > common.MaxMemoryTypes {
		return nil, errors.Newf("device reported %d memory types, but at most %d are supported", len(memoryTypes), common.MaxMemoryTypes)
	}

	allocator := &Allocator{
		logger:              logger,
		driver:              deviceDriver,
		allocationCallbacks: options.VulkanCallbacks,
		memoryCallbacks:     options.MemoryCallbacks,
		createFlags:         options.Flags,
		memoryTypes:         append([]core1_0.MemoryType(nil), memoryTypes...),
		batchMutex: utils.OptionalMutex{
			UseMutex: options.Flags&CreateExternallySynchronized == 0,
		},
	}

	logger.Debug("Allocator::New", slog.Int("MemoryTypeCount", len(memoryTypes)), slog.String("Flags", options.Flags.String()))

	return allocator, nil
}

// NewFromDevice creates a new Allocator that allocates from device. The device must have core 1.1
// active, or the khr_get_memory_requirements2, khr_dedicated_allocation and khr_bind_memory2
// extensions active.
//
// physicalDevice - The PhysicalDevice that owns the provided Device
//
// device - The Device that memory will be allocated into
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewFromDevice(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, options CreateOptions) (*Allocator, error) {
	deviceDriver, err := vulkan.NewDriver(device, options.Flags&CreateBufferDeviceAddress != 0)
	if err != nil {
		return nil, err
	}

	memoryProperties := physicalDevice.MemoryProperties()
	return New(logger, deviceDriver, memoryProperties.MemoryTypes, options)
}

// MemoryTypes returns the memory type table this allocator selects from
func (a *Allocator) MemoryTypes() []core1_0.MemoryType {
	return a.memoryTypes
}

// FindMemoryTypeIndex selects a memory type from this allocator's memory type table in the same
// way AllocateBatch does for each resource.
func (a *Allocator) FindMemoryTypeIndex(memoryTypeBits uint32, include, exclude MemoryPropertyConstraint) (int, common.VkResult, error) {
	a.logger.Debug("Allocator::FindMemoryTypeIndex")

	memTypeIndex, err := SelectMemoryType(a.memoryTypes, memoryTypeBits, include, exclude)
	if err != nil {
		return -1, core1_0.VKErrorFeatureNotPresent, err
	}

	return memTypeIndex, core1_0.VKSuccess, nil
}

// AllocateBatch allocates device memory for every buffer and image in the batch and binds each
// resource to it. Results are written into the AllocationResult of each request.
//
// Resources the device requires or prefers to have a dedicated allocation receive their own block
// at offset 0. All other resources are packed, in order, into one block per memory type: buffers
// first, then images, each at the next offset that satisfies its alignment. All buffers are then
// bound with a single BindBufferMemory2 call and all images with a single BindImageMemory2 call.
//
// Any failure fails the whole batch and no request is written. Memory allocated before the failure
// is not freed.
func (a *Allocator) AllocateBatch(buffers []BufferAllocationRequest, images []ImageAllocationRequest) (*Plan, common.VkResult, error) {
	a.logger.Debug("Allocator::AllocateBatch", slog.Int("BufferCount", len(buffers)), slog.Int("ImageCount", len(images)))

	a.batchMutex.Lock()
	defer a.batchMutex.Unlock()

	plan := &Plan{}
	if len(buffers) == 0 && len(images) == 0 {
		return plan, core1_0.VKSuccess, nil
	}

	bufferResources, res, err := a.resolveBufferRequirements(buffers)
	if err != nil {
		return nil, res, err
	}

	imageResources, res, err := a.resolveImageRequirements(images)
	if err != nil {
		return nil, res, err
	}

	dedicatedBuffers, pooledBuffers := partitionDedicated(bufferResources)
	dedicatedImages, pooledImages := partitionDedicated(imageResources)

	var binds bindOps
	res, err = a.allocateDedicated(dedicatedBuffers, &binds, plan)
	if err != nil {
		return nil, res, err
	}

	res, err = a.allocateDedicated(dedicatedImages, &binds, plan)
	if err != nil {
		return nil, res, err
	}

	res, err = a.packSuballocations(pooledBuffers, pooledImages, &binds, plan)
	if err != nil {
		return nil, res, err
	}

	res, err = a.submitBinds(&binds)
	if err != nil {
		return nil, res, err
	}
	plan.BufferBindCount = len(binds.buffers)
	plan.ImageBindCount = len(binds.images)

	for i := range bufferResources {
		buffers[i].AllocationResult = bufferResources[i].result
	}
	for i := range imageResources {
		images[i].AllocationResult = imageResources[i].result
	}

	memutils.DebugValidate(plan)

	a.logger.Debug("    Allocated Batch", slog.Int("BlockCount", len(plan.Blocks)))
	return plan, core1_0.VKSuccess, nil
}

// allocateDeviceMemory allocates one block of memory and reports it to the memory callbacks
func (a *Allocator) allocateDeviceMemory(memoryTypeIndex, size int, next common.Options, dedicated bool) (core1_0.DeviceMemory, common.VkResult, error) {
	allocInfo := core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
		NextOptions:     common.NextOptions{Next: next},
	}

	memory, res, err := a.driver.AllocateMemory(a.allocationCallbacks, allocInfo)
	if err != nil {
		a.logger.Debug("    Allocator::allocateDeviceMemory FAILED", slog.Int("MemoryTypeIndex", memoryTypeIndex), slog.Int("Size", size))
		return nil, res, errors.Mark(
			errors.Wrapf(err, "allocating %d bytes from memory type %d", size, memoryTypeIndex),
			ErrAllocationFailed,
		)
	}

	if a.memoryCallbacks != nil {
		a.memoryCallbacks.Allocate(memoryTypeIndex, memory, size, dedicated)
	}

	return memory, res, nil
}
