package batch

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	mock_batch "github.com/vkngwrapper/arsenal/batchalloc/batch/mocks"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"
)

// The allocator only passes handles through to the driver, so test handles carry an id and
// nothing else
type fakeBuffer struct {
	core1_0.Buffer
	id int
}

type fakeImage struct {
	core1_0.Image
	id int
}

type fakeMemory struct {
	core1_0.DeviceMemory
	id int
}

type resourceRequirements struct {
	Size              int
	Alignment         int
	MemoryTypeBits    uint32
	RequiresDedicated bool
	PrefersDedicated  bool
}

func readyAllocator(t *testing.T, ctrl *gomock.Controller, memoryTypes []core1_0.MemoryType, options CreateOptions) (*mock_batch.MockDriver, *Allocator) {
	driver := mock_batch.NewMockDriver(ctrl)

	logger := slog.New(slog.NewJSONHandler(io.Discard))
	allocator, err := New(logger, driver, memoryTypes, options)
	require.NoError(t, err)

	return driver, allocator
}

func writeRequirements(out *core1_1.MemoryRequirements2, reqs resourceRequirements) {
	out.MemoryRequirements = core1_0.MemoryRequirements{
		Size:           reqs.Size,
		Alignment:      reqs.Alignment,
		MemoryTypeBits: reqs.MemoryTypeBits,
	}

	dedicated, ok := out.Next.(*khr_dedicated_allocation.MemoryDedicatedRequirements)
	if ok {
		dedicated.RequiresDedicatedAllocation = reqs.RequiresDedicated
		dedicated.PrefersDedicatedAllocation = reqs.PrefersDedicated
	}
}

func expectBufferRequirements(driver *mock_batch.MockDriver, buffer core1_0.Buffer, reqs resourceRequirements) *gomock.Call {
	return driver.EXPECT().BufferMemoryRequirements2(core1_1.BufferMemoryRequirementsInfo2{
		Buffer: buffer,
	}, gomock.Any()).DoAndReturn(func(o core1_1.BufferMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
		writeRequirements(out, reqs)
		return nil
	})
}

func expectImageRequirements(driver *mock_batch.MockDriver, image core1_0.Image, reqs resourceRequirements) *gomock.Call {
	return driver.EXPECT().ImageMemoryRequirements2(core1_1.ImageMemoryRequirementsInfo2{
		Image: image,
	}, gomock.Any()).DoAndReturn(func(o core1_1.ImageMemoryRequirementsInfo2, out *core1_1.MemoryRequirements2) error {
		writeRequirements(out, reqs)
		return nil
	})
}

func expectAllocation(driver *mock_batch.MockDriver, memoryTypeIndex, size int, next common.Options, memory core1_0.DeviceMemory) *gomock.Call {
	return driver.EXPECT().AllocateMemory(gomock.Nil(), core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
		NextOptions:     common.NextOptions{Next: next},
	}).Return(memory, core1_0.VKSuccess, nil)
}

var hostAndDeviceMemoryTypes = []core1_0.MemoryType{
	{
		PropertyFlags: core1_0.MemoryPropertyHostVisible,
		HeapIndex:     1,
	},
	{
		PropertyFlags: core1_0.MemoryPropertyDeviceLocal,
		HeapIndex:     0,
	},
}

func TestAllocateBatchPreferredFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	buffer := &fakeBuffer{id: 1}
	image := &fakeImage{id: 2}
	memory := &fakeMemory{id: 3}

	expectBufferRequirements(driver, buffer, resourceRequirements{
		Size:           1000,
		Alignment:      256,
		MemoryTypeBits: 0b11,
	})
	expectImageRequirements(driver, image, resourceRequirements{
		Size:           4096,
		Alignment:      1024,
		MemoryTypeBits: 0b11,
	})

	// The buffer ends at 1000 and the image is pushed to 1024 for alignment
	allocate := expectAllocation(driver, 1, 5120, nil, memory)
	bindBuffers := driver.EXPECT().BindBufferMemory2([]core1_1.BindBufferMemoryInfo{
		{Buffer: buffer, Memory: memory, MemoryOffset: 0},
	}).Return(core1_0.VKSuccess, nil).After(allocate)
	driver.EXPECT().BindImageMemory2([]core1_1.BindImageMemoryInfo{
		{Image: image, Memory: memory, MemoryOffset: 1024},
	}).Return(core1_0.VKSuccess, nil).After(bindBuffers)

	buffers := []BufferAllocationRequest{
		{
			Buffer:  buffer,
			Include: MemoryPropertyConstraint{Required: core1_0.MemoryPropertyDeviceLocal},
		},
	}
	images := []ImageAllocationRequest{
		{
			Image: image,
			Include: MemoryPropertyConstraint{
				Required:  core1_0.MemoryPropertyDeviceLocal,
				Preferred: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible,
			},
		},
	}

	plan, res, err := allocator.AllocateBatch(buffers, images)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	require.Equal(t, AllocationResult{
		Size:            1000,
		Alignment:       256,
		MemoryTypeIndex: 1,
		Memory:          memory,
		Offset:          0,
	}, buffers[0].AllocationResult)
	require.Equal(t, AllocationResult{
		Size:            4096,
		Alignment:       1024,
		MemoryTypeIndex: 1,
		Memory:          memory,
		Offset:          1024,
	}, images[0].AllocationResult)

	require.Len(t, plan.Blocks, 1)
	require.Equal(t, 5120, plan.Blocks[0].Size)
	require.False(t, plan.Blocks[0].Dedicated)
	require.Equal(t, 1, plan.BufferBindCount)
	require.Equal(t, 1, plan.ImageBindCount)
	require.NoError(t, plan.Validate())
}

func TestAllocateBatchDedicated(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	sharedBuffer := &fakeBuffer{id: 1}
	dedicatedBuffer := &fakeBuffer{id: 2}
	preferredImage := &fakeImage{id: 3}
	sharedImage := &fakeImage{id: 4}

	dedicatedBufferMemory := &fakeMemory{id: 10}
	preferredImageMemory := &fakeMemory{id: 11}
	pooledMemory := &fakeMemory{id: 12}

	expectBufferRequirements(driver, sharedBuffer, resourceRequirements{
		Size:           512,
		Alignment:      16,
		MemoryTypeBits: 0b10,
	})
	expectBufferRequirements(driver, dedicatedBuffer, resourceRequirements{
		Size:              2000,
		Alignment:         64,
		MemoryTypeBits:    0b10,
		RequiresDedicated: true,
	})
	expectImageRequirements(driver, preferredImage, resourceRequirements{
		Size:             8192,
		Alignment:        4096,
		MemoryTypeBits:   0b10,
		PrefersDedicated: true,
	})
	expectImageRequirements(driver, sharedImage, resourceRequirements{
		Size:           256,
		Alignment:      256,
		MemoryTypeBits: 0b10,
	})

	first := expectAllocation(driver, 1, 2000, khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
		Buffer: dedicatedBuffer,
	}, dedicatedBufferMemory)
	second := expectAllocation(driver, 1, 8192, khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
		Image: preferredImage,
	}, preferredImageMemory).After(first)
	expectAllocation(driver, 1, 768, nil, pooledMemory).After(second)

	driver.EXPECT().BindBufferMemory2([]core1_1.BindBufferMemoryInfo{
		{Buffer: dedicatedBuffer, Memory: dedicatedBufferMemory, MemoryOffset: 0},
		{Buffer: sharedBuffer, Memory: pooledMemory, MemoryOffset: 0},
	}).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().BindImageMemory2([]core1_1.BindImageMemoryInfo{
		{Image: preferredImage, Memory: preferredImageMemory, MemoryOffset: 0},
		{Image: sharedImage, Memory: pooledMemory, MemoryOffset: 512},
	}).Return(core1_0.VKSuccess, nil)

	buffers := []BufferAllocationRequest{
		{Buffer: sharedBuffer},
		{Buffer: dedicatedBuffer},
	}
	images := []ImageAllocationRequest{
		{Image: preferredImage},
		{Image: sharedImage},
	}

	plan, _, err := allocator.AllocateBatch(buffers, images)
	require.NoError(t, err)

	require.True(t, buffers[1].Dedicated)
	require.Equal(t, 0, buffers[1].Offset)
	require.Equal(t, dedicatedBufferMemory, buffers[1].Memory)

	require.True(t, images[0].Dedicated)
	require.Equal(t, 0, images[0].Offset)
	require.Equal(t, preferredImageMemory, images[0].Memory)

	require.False(t, buffers[0].Dedicated)
	require.False(t, images[1].Dedicated)
	require.Equal(t, pooledMemory, buffers[0].Memory)
	require.Equal(t, pooledMemory, images[1].Memory)

	require.Len(t, plan.Blocks, 3)
	for _, block := range plan.Blocks {
		if block.Dedicated {
			require.Len(t, block.Placements, 1)
		}
	}
	require.NoError(t, plan.Validate())
}

func TestAllocateBatchEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	// No calls are expected on the driver
	plan, res, err := allocator.AllocateBatch(nil, nil)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.Empty(t, plan.Blocks)
	require.Zero(t, plan.BufferBindCount)
	require.Zero(t, plan.ImageBindCount)
}

func TestAllocateBatchNoLegalMemoryType(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	buffer := &fakeBuffer{id: 1}
	expectBufferRequirements(driver, buffer, resourceRequirements{
		Size:           128,
		Alignment:      4,
		MemoryTypeBits: 0b100,
	})

	buffers := []BufferAllocationRequest{{Buffer: buffer}}
	plan, res, err := allocator.AllocateBatch(buffers, nil)
	require.Error(t, err)
	require.Nil(t, plan)
	require.Equal(t, core1_0.VKErrorFeatureNotPresent, res)
	require.True(t, errors.Is(err, ErrMemoryTypeUnavailable))
	require.Equal(t, ErrorKindMemoryTypeUnavailable, KindOf(err))
	require.Nil(t, buffers[0].Memory)
}

func TestAllocateBatchPackingOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	memoryTypes := []core1_0.MemoryType{
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal, HeapIndex: 0},
		{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent, HeapIndex: 1},
		{PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible, HeapIndex: 0},
	}
	driver, allocator := readyAllocator(t, ctrl, memoryTypes, CreateOptions{})

	hostVisible := MemoryPropertyConstraint{Required: core1_0.MemoryPropertyHostVisible}
	deviceLocal := MemoryPropertyConstraint{Required: core1_0.MemoryPropertyDeviceLocal}

	buffers := []BufferAllocationRequest{
		{Buffer: &fakeBuffer{id: 0}, Include: hostVisible},
		{Buffer: &fakeBuffer{id: 1}, Include: deviceLocal},
		{Buffer: &fakeBuffer{id: 2}, Include: hostVisible},
	}
	images := []ImageAllocationRequest{
		{Image: &fakeImage{id: 3}, Include: deviceLocal},
		{Image: &fakeImage{id: 4}, Include: hostVisible},
	}

	expectBufferRequirements(driver, buffers[0].Buffer, resourceRequirements{Size: 100, Alignment: 4, MemoryTypeBits: 0b111})
	expectBufferRequirements(driver, buffers[1].Buffer, resourceRequirements{Size: 300, Alignment: 256, MemoryTypeBits: 0b111})
	expectBufferRequirements(driver, buffers[2].Buffer, resourceRequirements{Size: 50, Alignment: 64, MemoryTypeBits: 0b111})
	expectImageRequirements(driver, images[0].Image, resourceRequirements{Size: 1000, Alignment: 512, MemoryTypeBits: 0b111})
	expectImageRequirements(driver, images[1].Image, resourceRequirements{Size: 10, Alignment: 32, MemoryTypeBits: 0b111})

	deviceMemory := &fakeMemory{id: 100}
	hostMemory := &fakeMemory{id: 101}

	// Memory type 0: buffer 1 at 0, image 0 at 512. Memory type 1: buffer 0 at 0, buffer 2 at 128,
	// image 1 at 192
	deviceAllocation := expectAllocation(driver, 0, 1512, nil, deviceMemory)
	expectAllocation(driver, 1, 202, nil, hostMemory).After(deviceAllocation)

	driver.EXPECT().BindBufferMemory2([]core1_1.BindBufferMemoryInfo{
		{Buffer: buffers[1].Buffer, Memory: deviceMemory, MemoryOffset: 0},
		{Buffer: buffers[0].Buffer, Memory: hostMemory, MemoryOffset: 0},
		{Buffer: buffers[2].Buffer, Memory: hostMemory, MemoryOffset: 128},
	}).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().BindImageMemory2([]core1_1.BindImageMemoryInfo{
		{Image: images[0].Image, Memory: deviceMemory, MemoryOffset: 512},
		{Image: images[1].Image, Memory: hostMemory, MemoryOffset: 192},
	}).Return(core1_0.VKSuccess, nil)

	plan, _, err := allocator.AllocateBatch(buffers, images)
	require.NoError(t, err)

	require.Equal(t, []int{0, 1}, []int{plan.Blocks[0].MemoryTypeIndex, plan.Blocks[1].MemoryTypeIndex})
	require.Equal(t, 128, buffers[2].Offset)
	require.Equal(t, 192, images[1].Offset)
	require.Equal(t, 512, images[0].Offset)
	require.NoError(t, plan.Validate())

	stats := plan.Statistics()
	require.Equal(t, 2, stats.BlockCount)
	require.Equal(t, 1714, stats.BlockBytes)
	require.Equal(t, 5, stats.PlacementCount)
	require.Equal(t, 1460, stats.PlacedBytes)
	require.Equal(t, 254, stats.PaddingBytes)
}

func TestAllocateBatchOnlyImages(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	image := &fakeImage{id: 1}
	memory := &fakeMemory{id: 2}
	expectImageRequirements(driver, image, resourceRequirements{Size: 64, Alignment: 64, MemoryTypeBits: 0b01})
	expectAllocation(driver, 0, 64, nil, memory)

	// No BindBufferMemory2 call for an empty list of buffers
	driver.EXPECT().BindImageMemory2([]core1_1.BindImageMemoryInfo{
		{Image: image, Memory: memory, MemoryOffset: 0},
	}).Return(core1_0.VKSuccess, nil)

	images := []ImageAllocationRequest{{Image: image}}
	plan, _, err := allocator.AllocateBatch(nil, images)
	require.NoError(t, err)
	require.Equal(t, 0, plan.BufferBindCount)
	require.Equal(t, 1, plan.ImageBindCount)
}

var invalidRequirementsTestCases = map[string]struct {
	Requirements resourceRequirements

	Kind   ErrorKind
	Target error
}{
	"NotPowerOfTwo": {
		Requirements: resourceRequirements{Size: 100, Alignment: 48, MemoryTypeBits: 0b11},
		Kind:         ErrorKindInvalidAlignment,
		Target:       ErrInvalidAlignment,
	},
	"ZeroAlignment": {
		Requirements: resourceRequirements{Size: 100, Alignment: 0, MemoryTypeBits: 0b11},
		Kind:         ErrorKindInvalidAlignment,
		Target:       ErrInvalidAlignment,
	},
	"ZeroSize": {
		Requirements: resourceRequirements{Size: 0, Alignment: 4, MemoryTypeBits: 0b11},
		Kind:         ErrorKindInvalidRequirements,
		Target:       ErrInvalidRequirements,
	},
}

func TestAllocateBatchInvalidRequirements(t *testing.T) {
	for testName, testCase := range invalidRequirementsTestCases {
		t.Run(testName, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

			buffer := &fakeBuffer{id: 1}
			expectBufferRequirements(driver, buffer, testCase.Requirements)

			_, res, err := allocator.AllocateBatch([]BufferAllocationRequest{{Buffer: buffer}}, nil)
			require.Error(t, err)
			require.Equal(t, core1_0.VKErrorUnknown, res)
			require.True(t, errors.Is(err, testCase.Target))
			require.Equal(t, testCase.Kind, KindOf(err))
		})
	}
}

func TestAllocateBatchRequirementsQueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	image := &fakeImage{id: 1}
	queryErr := errors.New("device lost")
	driver.EXPECT().ImageMemoryRequirements2(core1_1.ImageMemoryRequirementsInfo2{Image: image}, gomock.Any()).Return(queryErr)

	_, _, err := allocator.AllocateBatch(nil, []ImageAllocationRequest{{Image: image}})
	require.Error(t, err)
	require.True(t, errors.Is(err, queryErr))
	require.Equal(t, ErrorKindUnknown, KindOf(err))
}

func TestAllocateBatchNilResource(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	_, res, err := allocator.AllocateBatch([]BufferAllocationRequest{{}}, nil)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorUnknown, res)
}

func TestAllocateBatchAllocationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	dedicatedBuffer := &fakeBuffer{id: 1}
	pooledBuffer := &fakeBuffer{id: 2}
	dedicatedMemory := &fakeMemory{id: 3}

	expectBufferRequirements(driver, dedicatedBuffer, resourceRequirements{
		Size: 4096, Alignment: 16, MemoryTypeBits: 0b10, RequiresDedicated: true,
	})
	expectBufferRequirements(driver, pooledBuffer, resourceRequirements{
		Size: 4096, Alignment: 16, MemoryTypeBits: 0b10,
	})

	first := expectAllocation(driver, 1, 4096, khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
		Buffer: dedicatedBuffer,
	}, dedicatedMemory)
	driver.EXPECT().AllocateMemory(gomock.Nil(), core1_0.MemoryAllocateInfo{
		AllocationSize:  4096,
		MemoryTypeIndex: 1,
	}).Return(nil, core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()).After(first)

	// The dedicated block stays allocated, nothing is bound and no request is written
	buffers := []BufferAllocationRequest{{Buffer: dedicatedBuffer}, {Buffer: pooledBuffer}}
	plan, res, err := allocator.AllocateBatch(buffers, nil)
	require.Error(t, err)
	require.Nil(t, plan)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.True(t, errors.Is(err, ErrAllocationFailed))
	require.Equal(t, ErrorKindAllocationFailed, KindOf(err))
	require.Nil(t, buffers[0].Memory)
	require.False(t, buffers[0].Dedicated)
}

func TestAllocateBatchBindFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	buffer := &fakeBuffer{id: 1}
	image := &fakeImage{id: 2}
	memory := &fakeMemory{id: 3}

	expectBufferRequirements(driver, buffer, resourceRequirements{Size: 64, Alignment: 64, MemoryTypeBits: 0b01})
	expectImageRequirements(driver, image, resourceRequirements{Size: 64, Alignment: 64, MemoryTypeBits: 0b01})
	expectAllocation(driver, 0, 128, nil, memory)

	driver.EXPECT().BindBufferMemory2(gomock.Any()).Return(core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError())

	buffers := []BufferAllocationRequest{{Buffer: buffer}}
	images := []ImageAllocationRequest{{Image: image}}
	_, res, err := allocator.AllocateBatch(buffers, images)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.True(t, errors.Is(err, ErrBindFailed))
	require.Equal(t, ErrorKindBindFailed, KindOf(err))
	require.Nil(t, images[0].Memory)
}

func TestAllocateBatchMemoryCallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	callbacks := mock_batch.NewMockMemoryCallbacks(ctrl)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{
		Flags:           CreateExternallySynchronized,
		MemoryCallbacks: callbacks,
	})

	dedicatedImage := &fakeImage{id: 1}
	pooledImage := &fakeImage{id: 2}
	dedicatedMemory := &fakeMemory{id: 3}
	pooledMemory := &fakeMemory{id: 4}

	expectImageRequirements(driver, dedicatedImage, resourceRequirements{
		Size: 1 << 20, Alignment: 1 << 16, MemoryTypeBits: 0b10, PrefersDedicated: true,
	})
	expectImageRequirements(driver, pooledImage, resourceRequirements{
		Size: 1 << 10, Alignment: 1 << 8, MemoryTypeBits: 0b10,
	})
	expectAllocation(driver, 1, 1<<20, khr_dedicated_allocation.MemoryDedicatedAllocateInfo{Image: dedicatedImage}, dedicatedMemory)
	expectAllocation(driver, 1, 1<<10, nil, pooledMemory)
	driver.EXPECT().BindImageMemory2(gomock.Len(2)).Return(core1_0.VKSuccess, nil)

	callbacks.EXPECT().Allocate(1, dedicatedMemory, 1<<20, true)
	callbacks.EXPECT().Allocate(1, pooledMemory, 1<<10, false)

	_, _, err := allocator.AllocateBatch(nil, []ImageAllocationRequest{{Image: dedicatedImage}, {Image: pooledImage}})
	require.NoError(t, err)
}

func TestAllocateBatchBufferDeviceAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{
		Flags: CreateBufferDeviceAddress,
	})

	dedicatedBuffer := &fakeBuffer{id: 1}
	pooledBuffer := &fakeBuffer{id: 2}
	image := &fakeImage{id: 3}
	dedicatedMemory := &fakeMemory{id: 4}
	bufferMemory := &fakeMemory{id: 5}
	imageMemory := &fakeMemory{id: 6}

	expectBufferRequirements(driver, dedicatedBuffer, resourceRequirements{
		Size: 256, Alignment: 256, MemoryTypeBits: 0b10, RequiresDedicated: true,
	})
	expectBufferRequirements(driver, pooledBuffer, resourceRequirements{
		Size: 256, Alignment: 256, MemoryTypeBits: 0b01,
	})
	expectImageRequirements(driver, image, resourceRequirements{
		Size: 256, Alignment: 256, MemoryTypeBits: 0b10,
	})

	expectAllocation(driver, 1, 256, core1_1.MemoryAllocateFlagsInfo{
		Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
		NextOptions: common.NextOptions{
			Next: khr_dedicated_allocation.MemoryDedicatedAllocateInfo{Buffer: dedicatedBuffer},
		},
	}, dedicatedMemory)
	expectAllocation(driver, 0, 256, core1_1.MemoryAllocateFlagsInfo{
		Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
	}, bufferMemory)
	// Blocks holding only images do not need device addresses
	expectAllocation(driver, 1, 256, nil, imageMemory)

	driver.EXPECT().BindBufferMemory2(gomock.Len(2)).Return(core1_0.VKSuccess, nil)
	driver.EXPECT().BindImageMemory2(gomock.Len(1)).Return(core1_0.VKSuccess, nil)

	buffers := []BufferAllocationRequest{{Buffer: dedicatedBuffer}, {Buffer: pooledBuffer}}
	images := []ImageAllocationRequest{{Image: image}}
	plan, _, err := allocator.AllocateBatch(buffers, images)
	require.NoError(t, err)
	require.Len(t, plan.Blocks, 3)
}

func TestFindMemoryTypeIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, allocator := readyAllocator(t, ctrl, hostAndDeviceMemoryTypes, CreateOptions{})

	index, res, err := allocator.FindMemoryTypeIndex(0b11, MemoryPropertyConstraint{
		Required: core1_0.MemoryPropertyHostVisible,
	}, MemoryPropertyConstraint{})
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.Equal(t, 0, index)

	_, res, err = allocator.FindMemoryTypeIndex(0b01, MemoryPropertyConstraint{
		Required: core1_0.MemoryPropertyDeviceLocal,
	}, MemoryPropertyConstraint{})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorFeatureNotPresent, res)
}

func TestNewValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mock_batch.NewMockDriver(ctrl)
	logger := slog.New(slog.NewJSONHandler(io.Discard))

	_, err := New(nil, driver, hostAndDeviceMemoryTypes, CreateOptions{})
	require.Error(t, err)

	_, err = New(logger, nil, hostAndDeviceMemoryTypes, CreateOptions{})
	require.Error(t, err)

	_, err = New(logger, driver, make([]core1_0.MemoryType, common.MaxMemoryTypes+1), CreateOptions{})
	require.Error(t, err)

	memoryTypes := append([]core1_0.MemoryType(nil), hostAndDeviceMemoryTypes...)
	allocator, err := New(logger, driver, memoryTypes, CreateOptions{})
	require.NoError(t, err)

	memoryTypes[0].PropertyFlags = core1_0.MemoryPropertyLazilyAllocated
	require.Equal(t, core1_0.MemoryPropertyHostVisible, allocator.MemoryTypes()[0].PropertyFlags)
}
