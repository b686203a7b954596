package batch

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
)

//go:generate mockgen -source driver.go -destination ./mocks/driver.go -package mock_batch

// Driver is the set of device commands an Allocator issues. A core1_1.Device satisfies it directly;
// NewFromDevice assembles one from khr_get_memory_requirements2 and khr_bind_memory2 when core 1.1
// is not active.
//
// Calls are not synchronized by the Driver: the device must not be used for allocation or binding
// from other goroutines while AllocateBatch is running.
type Driver interface {
	BufferMemoryRequirements2(o core1_1.BufferMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error
	ImageMemoryRequirements2(o core1_1.ImageMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error

	AllocateMemory(allocationCallbacks *driver.AllocationCallbacks, o core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error)

	BindBufferMemory2(o []core1_1.BindBufferMemoryInfo) (common.VkResult, error)
	BindImageMemory2(o []core1_1.BindImageMemoryInfo) (common.VkResult, error)
}

// MemoryCallbacks receives a notification for every block of device memory an Allocator creates.
// It is informative only and cannot fail the batch.
type MemoryCallbacks interface {
	Allocate(memoryType int, memory core1_0.DeviceMemory, size int, dedicated bool)
}
