package batch

import (
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"golang.org/x/exp/slog"
)

type memoryTypeGroup struct {
	buffers []*pendingResource
	images  []*pendingResource
}

// packSuballocations places pooled resources into one block per memory type. Memory types are
// visited in ascending order; within a memory type buffers are placed before images, each in the
// order they were requested, at the first offset past the previous resource that satisfies its
// alignment. Memory types with no pooled resources get no block.
func (a *Allocator) packSuballocations(buffers, images []*pendingResource, binds *bindOps, plan *Plan) (common.VkResult, error) {
	groups := swiss.NewMap[int, *memoryTypeGroup](uint32(len(a.memoryTypes)))
	groupFor := func(memTypeIndex int) *memoryTypeGroup {
		group, ok := groups.Get(memTypeIndex)
		if !ok {
			group = &memoryTypeGroup{}
			groups.Put(memTypeIndex, group)
		}
		return group
	}

	for _, buffer := range buffers {
		group := groupFor(buffer.result.MemoryTypeIndex)
		group.buffers = append(group.buffers, buffer)
	}
	for _, image := range images {
		group := groupFor(image.result.MemoryTypeIndex)
		group.images = append(group.images, image)
	}

	for memTypeIndex := 0; memTypeIndex < len(a.memoryTypes); memTypeIndex++ {
		group, ok := groups.Get(memTypeIndex)
		if !ok {
			continue
		}

		res, err := a.allocateMemoryTypeBlock(memTypeIndex, group, binds, plan)
		if err != nil {
			return res, err
		}
	}

	return core1_0.VKSuccess, nil
}

func (a *Allocator) allocateMemoryTypeBlock(memTypeIndex int, group *memoryTypeGroup, binds *bindOps, plan *Plan) (common.VkResult, error) {
	packed := make([]*pendingResource, 0, len(group.buffers)+len(group.images))
	packed = append(packed, group.buffers...)
	packed = append(packed, group.images...)

	cursor := 0
	for _, resource := range packed {
		var err error
		cursor, err = memutils.AlignForward(cursor, resource.result.Alignment)
		if err != nil {
			return core1_0.VKErrorUnknown, err
		}

		resource.result.Offset = cursor
		cursor += resource.result.Size
	}

	var next common.Options
	if len(group.buffers) > 0 && a.createFlags&CreateBufferDeviceAddress != 0 {
		next = core1_1.MemoryAllocateFlagsInfo{
			Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
		}
	}

	memory, res, err := a.allocateDeviceMemory(memTypeIndex, cursor, next, false)
	if err != nil {
		return res, err
	}

	block := MemoryBlock{
		Memory:          memory,
		MemoryTypeIndex: memTypeIndex,
		Size:            cursor,
		Placements:      make([]Placement, 0, len(packed)),
	}

	for _, resource := range packed {
		resource.result.Memory = memory
		binds.add(resource)
		block.Placements = append(block.Placements, resource.placement())
	}
	plan.Blocks = append(plan.Blocks, block)

	a.logger.Debug("    Allocated Block",
		slog.Int("MemoryTypeIndex", memTypeIndex),
		slog.Int("Size", cursor),
		slog.Int("ResourceCount", len(packed)),
	)

	return core1_0.VKSuccess, nil
}
