package memutils

// Statistics summarizes device memory blocks, the resources placed into them, and the alignment
// padding left between placements. The zero value is empty and ready to use.
type Statistics struct {
	BlockCount int
	BlockBytes int

	PlacementCount   int
	PlacedBytes      int
	LargestPlacement int

	PaddingCount   int
	PaddingBytes   int
	LargestPadding int
}

func (s *Statistics) AddBlock(size int) {
	s.BlockCount++
	s.BlockBytes += size
}

func (s *Statistics) AddPlacement(size int) {
	s.PlacementCount++
	s.PlacedBytes += size

	if size > s.LargestPlacement {
		s.LargestPlacement = size
	}
}

// AddPadding records size bytes of a block that no placement covers. Empty ranges are ignored.
func (s *Statistics) AddPadding(size int) {
	if size <= 0 {
		return
	}

	s.PaddingCount++
	s.PaddingBytes += size

	if size > s.LargestPadding {
		s.LargestPadding = size
	}
}

// Add folds other into s
func (s *Statistics) Add(other Statistics) {
	s.BlockCount += other.BlockCount
	s.BlockBytes += other.BlockBytes
	s.PlacementCount += other.PlacementCount
	s.PlacedBytes += other.PlacedBytes
	s.PaddingCount += other.PaddingCount
	s.PaddingBytes += other.PaddingBytes

	if other.LargestPlacement > s.LargestPlacement {
		s.LargestPlacement = other.LargestPlacement
	}

	if other.LargestPadding > s.LargestPadding {
		s.LargestPadding = other.LargestPadding
	}
}
