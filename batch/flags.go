package batch

import "github.com/vkngwrapper/core/v2/common"

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized indicates that the consumer guarantees AllocateBatch is never
	// called from more than one goroutine at a time against the same device. Without it, calls to
	// AllocateBatch on one Allocator are serialized with a mutex.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateBufferDeviceAddress marks every memory block that holds a buffer with
	// MemoryAllocateDeviceAddress, so that buffers created with BufferUsageShaderDeviceAddress
	// can be bound into it. Requires core 1.2 or khr_buffer_device_address.
	CreateBufferDeviceAddress
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateBufferDeviceAddress.Register("CreateBufferDeviceAddress")
}
