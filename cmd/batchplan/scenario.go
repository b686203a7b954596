package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/vkngwrapper/arsenal/batchalloc/batch"
	"github.com/vkngwrapper/arsenal/batchalloc/simulate"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
)

var memoryPropertyNames = map[string]core1_0.MemoryPropertyFlags{
	"device_local":     core1_0.MemoryPropertyDeviceLocal,
	"host_visible":     core1_0.MemoryPropertyHostVisible,
	"host_coherent":    core1_0.MemoryPropertyHostCoherent,
	"host_cached":      core1_0.MemoryPropertyHostCached,
	"lazily_allocated": core1_0.MemoryPropertyLazilyAllocated,
	"protected":        core1_1.MemoryPropertyProtected,
}

type heapConfig struct {
	Size int `mapstructure:"size"`
}

type memoryTypeConfig struct {
	Properties []string `mapstructure:"properties"`
	Heap       int      `mapstructure:"heap"`
}

type constraintConfig struct {
	Required  []string `mapstructure:"required"`
	Preferred []string `mapstructure:"preferred"`
}

type resourceConfig struct {
	Name              string           `mapstructure:"name"`
	Size              int              `mapstructure:"size"`
	Alignment         int              `mapstructure:"alignment"`
	MemoryTypes       []int            `mapstructure:"memory_types"`
	RequiresDedicated bool             `mapstructure:"requires_dedicated"`
	PrefersDedicated  bool             `mapstructure:"prefers_dedicated"`
	Include           constraintConfig `mapstructure:"include"`
	Exclude           constraintConfig `mapstructure:"exclude"`
}

// scenarioConfig describes a device's memory layout and a batch of resources to place into it
type scenarioConfig struct {
	BufferDeviceAddress bool               `mapstructure:"buffer_device_address"`
	Heaps               []heapConfig       `mapstructure:"heaps"`
	MemoryTypes         []memoryTypeConfig `mapstructure:"memory_types"`
	Buffers             []resourceConfig   `mapstructure:"buffers"`
	Images              []resourceConfig   `mapstructure:"images"`
}

func loadScenario(path string) (*scenarioConfig, error) {
	config := viper.New()
	config.SetConfigFile(path)

	err := config.ReadInConfig()
	if err != nil {
		return nil, errors.Wrapf(err, "reading scenario %s", path)
	}

	var scenario scenarioConfig
	err = config.Unmarshal(&scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding scenario %s", path)
	}

	if len(scenario.MemoryTypes) == 0 {
		return nil, errors.Newf("scenario %s has no memory types", path)
	}

	return &scenario, nil
}

func parseMemoryProperties(names []string) (core1_0.MemoryPropertyFlags, error) {
	var flags core1_0.MemoryPropertyFlags
	for _, name := range names {
		flag, ok := memoryPropertyNames[strings.ToLower(name)]
		if !ok {
			return 0, errors.Newf("unknown memory property %q", name)
		}
		flags |= flag
	}

	return flags, nil
}

func (c constraintConfig) constraint() (batch.MemoryPropertyConstraint, error) {
	required, err := parseMemoryProperties(c.Required)
	if err != nil {
		return batch.MemoryPropertyConstraint{}, err
	}

	preferred, err := parseMemoryProperties(c.Preferred)
	if err != nil {
		return batch.MemoryPropertyConstraint{}, err
	}

	return batch.MemoryPropertyConstraint{Required: required, Preferred: preferred}, nil
}

func (s *scenarioConfig) memoryTypes() ([]core1_0.MemoryType, error) {
	memoryTypes := make([]core1_0.MemoryType, 0, len(s.MemoryTypes))
	for index, memoryType := range s.MemoryTypes {
		flags, err := parseMemoryProperties(memoryType.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "memory type %d", index)
		}
		if memoryType.Heap < 0 || (len(s.Heaps) > 0 && memoryType.Heap >= len(s.Heaps)) {
			return nil, errors.Newf("memory type %d uses heap %d, which does not exist", index, memoryType.Heap)
		}

		memoryTypes = append(memoryTypes, core1_0.MemoryType{
			PropertyFlags: flags,
			HeapIndex:     memoryType.Heap,
		})
	}

	return memoryTypes, nil
}

func (s *scenarioConfig) heapSizes() []int {
	sizes := make([]int, len(s.Heaps))
	for index, heap := range s.Heaps {
		sizes[index] = heap.Size
	}
	return sizes
}

func (r resourceConfig) requirements(memoryTypeCount int) (simulate.Requirements, error) {
	var memoryTypeBits uint32
	if len(r.MemoryTypes) == 0 {
		memoryTypeBits = uint32(1)<<memoryTypeCount - 1
	}
	for _, index := range r.MemoryTypes {
		if index < 0 || index >= memoryTypeCount {
			return simulate.Requirements{}, errors.Newf("memory type %d does not exist", index)
		}
		memoryTypeBits |= 1 << index
	}

	return simulate.Requirements{
		Name:              r.Name,
		Size:              r.Size,
		Alignment:         r.Alignment,
		MemoryTypeBits:    memoryTypeBits,
		RequiresDedicated: r.RequiresDedicated,
		PrefersDedicated:  r.PrefersDedicated,
	}, nil
}

// simulatedBatch is a scenario turned into a simulated device and the requests to run against it
type simulatedBatch struct {
	device      *simulate.Device
	buffers     []batch.BufferAllocationRequest
	images      []batch.ImageAllocationRequest
	bufferNames []string
	imageNames  []string
}

func (s *scenarioConfig) build() (*simulatedBatch, error) {
	memoryTypes, err := s.memoryTypes()
	if err != nil {
		return nil, err
	}

	device := simulate.NewDevice(memoryTypes, s.heapSizes())
	built := &simulatedBatch{device: device}

	for index, resource := range s.Buffers {
		include, exclude, err := resource.constraints()
		if err != nil {
			return nil, errors.Wrapf(err, "buffer %d (%s)", index, resource.Name)
		}
		reqs, err := resource.requirements(len(memoryTypes))
		if err != nil {
			return nil, errors.Wrapf(err, "buffer %d (%s)", index, resource.Name)
		}

		built.buffers = append(built.buffers, batch.BufferAllocationRequest{
			Buffer:  device.CreateBuffer(reqs),
			Include: include,
			Exclude: exclude,
		})
		built.bufferNames = append(built.bufferNames, resource.Name)
	}

	for index, resource := range s.Images {
		include, exclude, err := resource.constraints()
		if err != nil {
			return nil, errors.Wrapf(err, "image %d (%s)", index, resource.Name)
		}
		reqs, err := resource.requirements(len(memoryTypes))
		if err != nil {
			return nil, errors.Wrapf(err, "image %d (%s)", index, resource.Name)
		}

		built.images = append(built.images, batch.ImageAllocationRequest{
			Image:   device.CreateImage(reqs),
			Include: include,
			Exclude: exclude,
		})
		built.imageNames = append(built.imageNames, resource.Name)
	}

	return built, nil
}

func (r resourceConfig) constraints() (include, exclude batch.MemoryPropertyConstraint, err error) {
	include, err = r.Include.constraint()
	if err != nil {
		return include, exclude, err
	}

	exclude, err = r.Exclude.constraint()
	return include, exclude, err
}
