package batch

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"golang.org/x/exp/slog"
)

// partitionDedicated splits resources into those the device requires or prefers to have their own
// memory block and those that will be packed. Both partitions keep the order of resources.
func partitionDedicated(resources []pendingResource) (dedicated, pooled []*pendingResource) {
	for i := range resources {
		if resources[i].wantsDedicated() {
			dedicated = append(dedicated, &resources[i])
		} else {
			pooled = append(pooled, &resources[i])
		}
	}

	return dedicated, pooled
}

// allocateDedicated gives each resource a block of exactly its size, tagged with the resource it
// backs, and records a bind at offset 0
func (a *Allocator) allocateDedicated(resources []*pendingResource, binds *bindOps, plan *Plan) (common.VkResult, error) {
	for _, resource := range resources {
		resource.result.Dedicated = true
		resource.result.Offset = 0

		var next common.Options = khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
			Buffer: resource.buffer,
			Image:  resource.image,
		}

		if resource.buffer != nil && a.createFlags&CreateBufferDeviceAddress != 0 {
			next = core1_1.MemoryAllocateFlagsInfo{
				Flags:       khr_buffer_device_address.MemoryAllocateDeviceAddress,
				NextOptions: common.NextOptions{Next: next},
			}
		}

		memory, res, err := a.allocateDeviceMemory(resource.result.MemoryTypeIndex, resource.result.Size, next, true)
		if err != nil {
			return res, err
		}

		resource.result.Memory = memory
		binds.add(resource)

		plan.Blocks = append(plan.Blocks, MemoryBlock{
			Memory:          memory,
			MemoryTypeIndex: resource.result.MemoryTypeIndex,
			Size:            resource.result.Size,
			Dedicated:       true,
			Placements:      []Placement{resource.placement()},
		})

		a.logger.Debug("    Allocated DedicatedMemory",
			slog.String("Resource", resource.name),
			slog.Int("MemoryTypeIndex", resource.result.MemoryTypeIndex),
			slog.Int("Size", resource.result.Size),
		)
	}

	return core1_0.VKSuccess, nil
}
