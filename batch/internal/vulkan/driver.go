package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_bind_memory2"
	khr_bind_memory2_shim "github.com/vkngwrapper/extensions/v2/khr_bind_memory2/shim"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2"
	khr_get_memory_requirements2_shim "github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2/shim"
)

// ExtensionData records which paths are available on a device for the commands the batch
// allocator needs
type ExtensionData struct {
	DedicatedAllocations  bool
	BufferDeviceAddress   bool
	GetMemoryRequirements khr_get_memory_requirements2_shim.Shim
	BindMemory2           khr_bind_memory2_shim.Shim
}

func NewExtensionData(device core1_0.Device) *ExtensionData {
	data := &ExtensionData{}

	// Apply device capabilities- add core or extension capabilities to the allocator
	device11 := core1_1.PromoteDevice(device)
	if device11 != nil {
		// Core 1.1 active - that means we can use khr_get_memory_requirements2, khr_bind_memory2,
		// and khr_dedicated_allocation
		data.DedicatedAllocations = true
		data.BindMemory2 = device11
		data.GetMemoryRequirements = device11
	}

	device12 := core1_2.PromoteDevice(device)
	if device12 != nil {
		// Core 1.2 active - that means we can use khr_buffer_device_address
		data.BufferDeviceAddress = true
	}

	// khr_bind_memory2 if core 1.1 is not active
	if data.BindMemory2 == nil && device.IsDeviceExtensionActive(khr_bind_memory2.ExtensionName) {
		extension := khr_bind_memory2.CreateExtensionFromDevice(device)
		data.BindMemory2 = khr_bind_memory2_shim.NewShim(device, extension)
	}

	// khr_get_memory_requirements2 if core 1.1 is not active
	if data.GetMemoryRequirements == nil && device.IsDeviceExtensionActive(khr_get_memory_requirements2.ExtensionName) {
		extension := khr_get_memory_requirements2.CreateExtensionFromDevice(device)
		data.GetMemoryRequirements = khr_get_memory_requirements2_shim.NewShim(extension, device)
	}

	// khr_dedicated_allocation if khr_get_memory_requirements is active but core 1.1 is not
	if data.GetMemoryRequirements != nil && !data.DedicatedAllocations &&
		device.IsDeviceExtensionActive(khr_dedicated_allocation.ExtensionName) {
		data.DedicatedAllocations = true
	}

	// khr_buffer_device_address if core 1.2 is not active
	if !data.BufferDeviceAddress && device.IsDeviceExtensionActive(khr_buffer_device_address.ExtensionName) {
		data.BufferDeviceAddress = true
	}

	return data
}

// Driver issues the batch allocator's commands against a vkngwrapper device, through core 1.1
// where it is active and through extensions where it is not
type Driver struct {
	device        core1_0.Device
	extensionData *ExtensionData
}

// NewDriver verifies that device can serve the batch allocator and wraps it. Requirement queries
// need core 1.1 or khr_get_memory_requirements2 with khr_dedicated_allocation, and bulk binding
// needs core 1.1 or khr_bind_memory2.
func NewDriver(device core1_0.Device, bufferDeviceAddress bool) (*Driver, error) {
	if device == nil {
		return nil, errors.New("attempted to create a driver for a nil device")
	}

	extensionData := NewExtensionData(device)

	if extensionData.GetMemoryRequirements == nil || !extensionData.DedicatedAllocations {
		return nil, errors.Newf("device requires core 1.1, or %s and %s, to query dedicated memory requirements",
			khr_get_memory_requirements2.ExtensionName, khr_dedicated_allocation.ExtensionName)
	}

	if extensionData.BindMemory2 == nil {
		return nil, errors.Newf("device requires core 1.1 or %s to bind memory in bulk", khr_bind_memory2.ExtensionName)
	}

	if bufferDeviceAddress && !extensionData.BufferDeviceAddress {
		return nil, errors.Newf("buffer device addresses were requested, but neither core 1.2 nor %s is active",
			khr_buffer_device_address.ExtensionName)
	}

	return &Driver{
		device:        device,
		extensionData: extensionData,
	}, nil
}

func (d *Driver) BufferMemoryRequirements2(o core1_1.BufferMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
	return d.extensionData.GetMemoryRequirements.BufferMemoryRequirements2(o, out)
}

func (d *Driver) ImageMemoryRequirements2(o core1_1.ImageMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
	return d.extensionData.GetMemoryRequirements.ImageMemoryRequirements2(o, out)
}

func (d *Driver) AllocateMemory(allocationCallbacks *driver.AllocationCallbacks, o core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
	return d.device.AllocateMemory(allocationCallbacks, o)
}

func (d *Driver) BindBufferMemory2(o []core1_1.BindBufferMemoryInfo) (common.VkResult, error) {
	return d.extensionData.BindMemory2.BindBufferMemory2(o)
}

func (d *Driver) BindImageMemory2(o []core1_1.BindImageMemoryInfo) (common.VkResult, error) {
	return d.extensionData.BindMemory2.BindImageMemory2(o)
}
