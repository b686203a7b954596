package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/vkngwrapper/arsenal/batchalloc/batch"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func writeResourceTable(w io.Writer, built *simulatedBatch) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Resource", "Kind", "Memory Type", "Dedicated", "Offset", "Size", "Alignment"})

	appendRow := func(name, kind string, result batch.AllocationResult) {
		table.Append([]string{
			name,
			kind,
			strconv.Itoa(result.MemoryTypeIndex),
			strconv.FormatBool(result.Dedicated),
			strconv.Itoa(result.Offset),
			strconv.Itoa(result.Size),
			strconv.FormatUint(uint64(result.Alignment), 10),
		})
	}

	for i := range built.buffers {
		appendRow(built.bufferNames[i], "buffer", built.buffers[i].AllocationResult)
	}
	for i := range built.images {
		appendRow(built.imageNames[i], "image", built.images[i].AllocationResult)
	}

	table.SetAutoFormatHeaders(false)
	table.Render()
}

func writeBlockTable(w io.Writer, plan *batch.Plan, memoryTypes []core1_0.MemoryType) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Block", "Memory Type", "Heap", "Properties", "Dedicated", "Size", "Resources"})

	for blockIndex, block := range plan.Blocks {
		memoryType := memoryTypes[block.MemoryTypeIndex]
		table.Append([]string{
			strconv.Itoa(blockIndex),
			strconv.Itoa(block.MemoryTypeIndex),
			strconv.Itoa(memoryType.HeapIndex),
			memoryType.PropertyFlags.String(),
			strconv.FormatBool(block.Dedicated),
			strconv.Itoa(block.Size),
			strconv.Itoa(len(block.Placements)),
		})
	}

	stats := plan.Statistics()
	table.SetFooter([]string{
		"", "", "", "", "Total",
		strconv.Itoa(stats.BlockBytes),
		strconv.Itoa(stats.PlacementCount),
	})

	table.SetAutoFormatHeaders(false)
	table.Render()

	fmt.Fprintf(w, "%d buffer binds, %d image binds, %d bytes of alignment padding\n",
		plan.BufferBindCount, plan.ImageBindCount, stats.PaddingBytes)
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}

	return encodeMetricFamilies(w, families)
}

func encodeMetricFamilies(w io.Writer, families []*dto.MetricFamily) error {
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, family := range families {
		err := encoder.Encode(family)
		if err != nil {
			return err
		}
	}

	return nil
}
