package batch

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"golang.org/x/exp/slog"
)

// pendingResource is a buffer or image whose requirements have been resolved but whose result
// has not yet been written back to its request
type pendingResource struct {
	name   string
	buffer core1_0.Buffer
	image  core1_0.Image

	requiresDedicated bool
	prefersDedicated  bool

	result AllocationResult
}

func (r *pendingResource) wantsDedicated() bool {
	return r.requiresDedicated || r.prefersDedicated
}

func (r *pendingResource) placement() Placement {
	return Placement{
		Name:      r.name,
		Buffer:    r.buffer,
		Image:     r.image,
		Offset:    r.result.Offset,
		Size:      r.result.Size,
		Alignment: r.result.Alignment,
	}
}

func (a *Allocator) resolveBufferRequirements(requests []BufferAllocationRequest) ([]pendingResource, common.VkResult, error) {
	resources := make([]pendingResource, len(requests))

	for i := range requests {
		request := &requests[i]
		resource := &resources[i]
		resource.name = fmt.Sprintf("buffer %d", i)
		resource.buffer = request.Buffer

		if request.Buffer == nil {
			return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate for a nil buffer in %s", resource.name)
		}

		dedicatedReqs := khr_dedicated_allocation.MemoryDedicatedRequirements{}
		memReqs := core1_1.MemoryRequirements2{
			NextOutData: common.NextOutData{
				Next: &dedicatedReqs,
			},
		}

		err := a.driver.BufferMemoryRequirements2(
			core1_1.BufferMemoryRequirementsInfo2{
				Buffer: request.Buffer,
			},
			&memReqs)
		if err != nil {
			return nil, core1_0.VKErrorUnknown, errors.Wrapf(err, "querying memory requirements for %s", resource.name)
		}

		resource.requiresDedicated = dedicatedReqs.RequiresDedicatedAllocation
		resource.prefersDedicated = dedicatedReqs.PrefersDedicatedAllocation

		res, err := a.resolveResource(resource, memReqs.MemoryRequirements, request.Include, request.Exclude)
		if err != nil {
			return nil, res, err
		}
	}

	return resources, core1_0.VKSuccess, nil
}

func (a *Allocator) resolveImageRequirements(requests []ImageAllocationRequest) ([]pendingResource, common.VkResult, error) {
	resources := make([]pendingResource, len(requests))

	for i := range requests {
		request := &requests[i]
		resource := &resources[i]
		resource.name = fmt.Sprintf("image %d", i)
		resource.image = request.Image

		if request.Image == nil {
			return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate for a nil image in %s", resource.name)
		}

		dedicatedReqs := khr_dedicated_allocation.MemoryDedicatedRequirements{}
		memReqs := core1_1.MemoryRequirements2{
			NextOutData: common.NextOutData{
				Next: &dedicatedReqs,
			},
		}

		err := a.driver.ImageMemoryRequirements2(
			core1_1.ImageMemoryRequirementsInfo2{
				Image: request.Image,
			},
			&memReqs)
		if err != nil {
			return nil, core1_0.VKErrorUnknown, errors.Wrapf(err, "querying memory requirements for %s", resource.name)
		}

		resource.requiresDedicated = dedicatedReqs.RequiresDedicatedAllocation
		resource.prefersDedicated = dedicatedReqs.PrefersDedicatedAllocation

		res, err := a.resolveResource(resource, memReqs.MemoryRequirements, request.Include, request.Exclude)
		if err != nil {
			return nil, res, err
		}
	}

	return resources, core1_0.VKSuccess, nil
}

// resolveResource validates the reported requirements and selects a memory type. This happens for
// every resource before dedicated and pooled resources are separated.
func (a *Allocator) resolveResource(
	resource *pendingResource,
	memReqs core1_0.MemoryRequirements,
	include, exclude MemoryPropertyConstraint,
) (common.VkResult, error) {
	if memReqs.Size < 1 {
		return core1_0.VKErrorUnknown, errors.Wrapf(ErrInvalidRequirements, "%s reported a size of %d", resource.name, memReqs.Size)
	}

	if memReqs.Alignment < 1 {
		return core1_0.VKErrorUnknown, errors.Wrapf(ErrInvalidAlignment, "%s reported an alignment of %d", resource.name, memReqs.Alignment)
	}

	err := memutils.CheckPow2(memReqs.Alignment, resource.name+" alignment")
	if err != nil {
		return core1_0.VKErrorUnknown, err
	}

	memTypeIndex, err := SelectMemoryType(a.memoryTypes, memReqs.MemoryTypeBits, include, exclude)
	if err != nil {
		return core1_0.VKErrorFeatureNotPresent, errors.Wrapf(err, "selecting memory type for %s", resource.name)
	}

	resource.result = AllocationResult{
		Size:            memReqs.Size,
		Alignment:       uint(memReqs.Alignment),
		MemoryTypeIndex: memTypeIndex,
	}

	a.logger.Debug("    Resolved Requirements",
		slog.String("Resource", resource.name),
		slog.Int("Size", memReqs.Size),
		slog.Int("Alignment", memReqs.Alignment),
		slog.Int("MemoryTypeIndex", memTypeIndex),
		slog.Bool("RequiresDedicated", resource.requiresDedicated),
		slog.Bool("PrefersDedicated", resource.prefersDedicated),
	)

	return core1_0.VKSuccess, nil
}
