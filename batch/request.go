package batch

import "github.com/vkngwrapper/core/v2/core1_0"

// MemoryPropertyConstraint is a pair of memory property masks. Used as an include constraint, a
// memory type must carry every Required property and should carry every Preferred property. Used
// as an exclude constraint, a memory type must carry none of the Required properties and should
// carry none of the Preferred properties.
type MemoryPropertyConstraint struct {
	Required  core1_0.MemoryPropertyFlags
	Preferred core1_0.MemoryPropertyFlags
}

// AllocationResult holds the outputs of AllocateBatch for a single resource. Its contents are
// undefined until AllocateBatch returns successfully.
type AllocationResult struct {
	// Size is the number of bytes the device requires for the resource
	Size int
	// Alignment is the alignment the device requires for the resource's offset
	Alignment uint
	// MemoryTypeIndex is the memory type the resource was placed in
	MemoryTypeIndex int
	// Dedicated indicates that Memory was allocated for this resource alone
	Dedicated bool
	// Memory is the device memory block the resource is bound to
	Memory core1_0.DeviceMemory
	// Offset is the resource's byte offset within Memory
	Offset int
}

// BufferAllocationRequest asks AllocateBatch to back Buffer with device memory. Buffer must have
// been created and must not be bound to memory yet.
type BufferAllocationRequest struct {
	Buffer  core1_0.Buffer
	Include MemoryPropertyConstraint
	Exclude MemoryPropertyConstraint

	AllocationResult
}

// ImageAllocationRequest asks AllocateBatch to back Image with device memory. Image must have
// been created and must not be bound to memory yet.
type ImageAllocationRequest struct {
	Image   core1_0.Image
	Include MemoryPropertyConstraint
	Exclude MemoryPropertyConstraint

	AllocationResult
}
