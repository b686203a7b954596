package metrics

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vkngwrapper/arsenal/batchalloc/batch"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	KindDedicated = "dedicated"
	KindPooled    = "pooled"
)

// Collector counts the device memory blocks created by an allocator. Pass it as
// batch.CreateOptions.MemoryCallbacks.
type Collector struct {
	blocks *prometheus.CounterVec
	bytes  *prometheus.CounterVec
}

var _ batch.MemoryCallbacks = &Collector{}

// NewCollector creates a Collector and registers its counters with registerer
func NewCollector(registerer prometheus.Registerer) (*Collector, error) {
	collector := &Collector{
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchalloc_device_memory_blocks_total",
			Help: "Number of device memory blocks allocated",
		}, []string{"memory_type", "kind"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchalloc_device_memory_bytes_total",
			Help: "Number of bytes of device memory allocated",
		}, []string{"memory_type", "kind"}),
	}

	err := registerer.Register(collector.blocks)
	if err != nil {
		return nil, errors.Wrap(err, "registering block counter")
	}

	err = registerer.Register(collector.bytes)
	if err != nil {
		registerer.Unregister(collector.blocks)
		return nil, errors.Wrap(err, "registering byte counter")
	}

	return collector, nil
}

func (c *Collector) Allocate(memoryType int, memory core1_0.DeviceMemory, size int, dedicated bool) {
	kind := KindPooled
	if dedicated {
		kind = KindDedicated
	}

	memoryTypeLabel := strconv.Itoa(memoryType)
	c.blocks.WithLabelValues(memoryTypeLabel, kind).Inc()
	c.bytes.WithLabelValues(memoryTypeLabel, kind).Add(float64(size))
}
