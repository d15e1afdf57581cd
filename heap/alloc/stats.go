package alloc

import (
	"fmt"

	"github.com/tgrossb/mush/internal/format"
)

// walkBlocks visits every block between the prologue and the epilogue in
// physical order. The walk panics on a corrupt tiling (a size that is zero
// or escapes the heap), since no further progress is possible.
func (a *Allocator) walkBlocks(visit func(off int, h format.Header)) {
	if a.mem.Size() == 0 {
		return
	}
	end := a.epilogueOff()
	for off := firstBlockOff; off < end; {
		h := a.header(off)
		size := int(h.BlockSize)
		if size < format.MinBlockSize || off+size > end {
			panic(fmt.Sprintf("alloc: corrupt heap: block %d has size %d", off, size))
		}
		visit(off, h)
		off += size
	}
}

// updatePeakPayload walks the heap summing the payloads of allocated,
// non-quick-list blocks and raises the recorded peak if exceeded.
func (a *Allocator) updatePeakPayload() {
	var agg float64
	a.walkBlocks(func(_ int, h format.Header) {
		if h.Allocated && !h.QuickList {
			agg += float64(h.PayloadSize)
		}
	})
	if agg > a.peakAggPayload {
		a.peakAggPayload = agg
	}
}

// InternalFragmentation returns the ratio of payload bytes to block bytes
// across allocated, non-quick-list blocks, or 0 when there are none.
func (a *Allocator) InternalFragmentation() float64 {
	var payloadSum, blockSum float64
	a.walkBlocks(func(_ int, h format.Header) {
		if h.Allocated && !h.QuickList {
			payloadSum += float64(h.PayloadSize)
			blockSum += float64(h.BlockSize)
		}
	})
	if blockSum == 0 {
		return 0
	}
	return payloadSum / blockSum
}

// PeakUtilization returns the peak aggregate payload observed so far divided
// by the current heap size, or 0 for an empty heap.
func (a *Allocator) PeakUtilization() float64 {
	heapSize := a.mem.Size()
	if heapSize == 0 {
		return 0
	}
	a.updatePeakPayload()
	return a.peakAggPayload / float64(heapSize)
}

// HeapSize returns the current heap size in bytes.
func (a *Allocator) HeapSize() int { return a.mem.Size() }
