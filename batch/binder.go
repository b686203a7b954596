package batch

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
)

// bindOps collects the binds for a batch so they can be submitted as one call per resource kind
type bindOps struct {
	buffers []core1_1.BindBufferMemoryInfo
	images  []core1_1.BindImageMemoryInfo
}

func (b *bindOps) add(resource *pendingResource) {
	if resource.buffer != nil {
		b.buffers = append(b.buffers, core1_1.BindBufferMemoryInfo{
			Buffer:       resource.buffer,
			Memory:       resource.result.Memory,
			MemoryOffset: resource.result.Offset,
		})
		return
	}

	b.images = append(b.images, core1_1.BindImageMemoryInfo{
		Image:        resource.image,
		Memory:       resource.result.Memory,
		MemoryOffset: uint64(resource.result.Offset),
	})
}

// submitBinds binds every buffer with one BindBufferMemory2 call, then every image with one
// BindImageMemory2 call. A kind with nothing to bind is skipped, since the command does not
// accept an empty list.
func (a *Allocator) submitBinds(binds *bindOps) (common.VkResult, error) {
	if len(binds.buffers) > 0 {
		res, err := a.driver.BindBufferMemory2(binds.buffers)
		if err != nil {
			a.logger.Debug("    Allocator::submitBinds FAILED")
			return res, errors.Mark(errors.Wrapf(err, "binding %d buffers", len(binds.buffers)), ErrBindFailed)
		}
	}

	if len(binds.images) > 0 {
		res, err := a.driver.BindImageMemory2(binds.images)
		if err != nil {
			a.logger.Debug("    Allocator::submitBinds FAILED")
			return res, errors.Mark(errors.Wrapf(err, "binding %d images", len(binds.images)), ErrBindFailed)
		}
	}

	return core1_0.VKSuccess, nil
}
