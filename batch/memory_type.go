package batch

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// SelectMemoryType picks the memory type for a resource. typeBits is the resource's
// MemoryRequirements.MemoryTypeBits: memory type i is only considered if bit i is set.
//
// The lowest index that satisfies both the Required and Preferred halves of include and exclude
// is returned. If there is none, the lowest index that satisfies the Required halves is returned.
// If there is still none, the error wraps ErrMemoryTypeUnavailable.
func SelectMemoryType(
	memoryTypes []core1_0.MemoryType,
	typeBits uint32,
	include, exclude MemoryPropertyConstraint,
) (int, error) {
	memoryTypeCount := len(memoryTypes)
	if memoryTypeCount > common.MaxMemoryTypes {
		memoryTypeCount = common.MaxMemoryTypes
	}

	for memTypeIndex := 0; memTypeIndex < memoryTypeCount; memTypeIndex++ {
		flags := memoryTypes[memTypeIndex].PropertyFlags
		if !memoryTypeAllowed(memTypeIndex, flags, typeBits, include, exclude) {
			continue
		}

		if include.Preferred&flags != include.Preferred || exclude.Preferred&flags != 0 {
			continue
		}

		return memTypeIndex, nil
	}

	for memTypeIndex := 0; memTypeIndex < memoryTypeCount; memTypeIndex++ {
		if memoryTypeAllowed(memTypeIndex, memoryTypes[memTypeIndex].PropertyFlags, typeBits, include, exclude) {
			return memTypeIndex, nil
		}
	}

	return -1, errors.Wrapf(ErrMemoryTypeUnavailable,
		"memory type bits %#x, required properties %s, excluded properties %s",
		typeBits, include.Required, exclude.Required)
}

func memoryTypeAllowed(
	memTypeIndex int,
	flags core1_0.MemoryPropertyFlags,
	typeBits uint32,
	include, exclude MemoryPropertyConstraint,
) bool {
	if typeBits&(1<<memTypeIndex) == 0 {
		// This memory type is banned by the bitmask
		return false
	}

	return include.Required&flags == include.Required && exclude.Required&flags == 0
}
