package batch

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Placement is the location of one resource inside a MemoryBlock. Exactly one of Buffer and Image
// is set.
type Placement struct {
	Name      string
	Buffer    core1_0.Buffer
	Image     core1_0.Image
	Offset    int
	Size      int
	Alignment uint
}

// MemoryBlock is one block of device memory allocated by AllocateBatch
type MemoryBlock struct {
	Memory          core1_0.DeviceMemory
	MemoryTypeIndex int
	Size            int
	Dedicated       bool
	Placements      []Placement
}

// Plan lists the device memory committed by a successful AllocateBatch call. Dedicated blocks
// come first, buffers before images, followed by one pooled block per memory type in ascending
// memory type order.
type Plan struct {
	Blocks []MemoryBlock

	BufferBindCount int
	ImageBindCount  int
}

var _ memutils.Validatable = &Plan{}

// Validate verifies that every placement fits inside its block, that no two placements in a block
// overlap, that every placement honors its alignment, and that dedicated blocks hold exactly one
// resource at offset 0
func (p *Plan) Validate() error {
	for blockIndex := range p.Blocks {
		block := &p.Blocks[blockIndex]
		if block.Memory == nil {
			return errors.Newf("block %d has no device memory", blockIndex)
		}

		if block.Dedicated {
			if len(block.Placements) != 1 {
				return errors.Newf("dedicated block %d holds %d resources", blockIndex, len(block.Placements))
			}
			if block.Placements[0].Offset != 0 {
				return errors.Newf("dedicated block %d places its resource at offset %d", blockIndex, block.Placements[0].Offset)
			}
		}

		placements := append([]Placement(nil), block.Placements...)
		sort.Slice(placements, func(i, j int) bool {
			return placements[i].Offset < placements[j].Offset
		})

		end := 0
		for _, placement := range placements {
			if placement.Offset < end {
				return errors.Newf("%s at offset %d overlaps the previous resource in block %d, which ends at %d",
					placement.Name, placement.Offset, blockIndex, end)
			}
			if placement.Alignment > 0 && placement.Offset%int(placement.Alignment) != 0 {
				return errors.Newf("%s at offset %d does not satisfy alignment %d", placement.Name, placement.Offset, placement.Alignment)
			}

			end = placement.Offset + placement.Size
			if end > block.Size {
				return errors.Newf("%s ends at %d, past the end of block %d, which is size %d",
					placement.Name, end, blockIndex, block.Size)
			}
		}
	}

	return nil
}

// Statistics summarizes a single block. Any range of the block not covered by a placement,
// including the space after the last one, counts as padding.
func (b *MemoryBlock) Statistics() memutils.Statistics {
	var stats memutils.Statistics
	stats.AddBlock(b.Size)

	cursor := 0
	for _, placement := range b.Placements {
		stats.AddPadding(placement.Offset - cursor)
		stats.AddPlacement(placement.Size)
		cursor = placement.Offset + placement.Size
	}
	stats.AddPadding(b.Size - cursor)

	return stats
}

// Statistics sums the statistics of every block in the plan
func (p *Plan) Statistics() memutils.Statistics {
	var stats memutils.Statistics
	for blockIndex := range p.Blocks {
		stats.Add(p.Blocks[blockIndex].Statistics())
	}

	return stats
}

// BuildStatsString returns a JSON document describing the plan's totals and every block
func (p *Plan) BuildStatsString() string {
	writer := jwriter.NewWriter()
	p.buildStats(&writer)
	return string(writer.Bytes())
}

func (p *Plan) buildStats(writer *jwriter.Writer) {
	stats := p.Statistics()

	json := writer.Object()
	defer json.End()

	total := json.Name("Total").Object()
	total.Name("BlockCount").Int(stats.BlockCount)
	total.Name("BlockBytes").Int(stats.BlockBytes)
	total.Name("PlacementCount").Int(stats.PlacementCount)
	total.Name("PlacedBytes").Int(stats.PlacedBytes)
	total.Name("PaddingCount").Int(stats.PaddingCount)
	total.Name("PaddingBytes").Int(stats.PaddingBytes)
	total.Name("BufferBindCount").Int(p.BufferBindCount)
	total.Name("ImageBindCount").Int(p.ImageBindCount)
	total.End()

	blocks := json.Name("Blocks").Array()
	for blockIndex := range p.Blocks {
		block := &p.Blocks[blockIndex]

		blockJson := blocks.Object()
		blockJson.Name("MemoryTypeIndex").Int(block.MemoryTypeIndex)
		blockJson.Name("Size").Int(block.Size)
		blockJson.Name("Dedicated").Bool(block.Dedicated)

		placements := blockJson.Name("Placements").Array()
		for _, placement := range block.Placements {
			placementJson := placements.Object()
			placementJson.Name("Name").String(placement.Name)
			placementJson.Name("Offset").Int(placement.Offset)
			placementJson.Name("Size").Int(placement.Size)
			placementJson.Name("Alignment").Int(int(placement.Alignment))
			placementJson.End()
		}
		placements.End()

		blockJson.End()
	}
	blocks.End()
}
