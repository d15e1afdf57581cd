package alloc

import (
	"fmt"

	"github.com/tgrossb/mush/internal/format"
)

// Check validates the structural invariants of the heap and reports the
// first violation found. It is a diagnostics surface: the allocator never
// calls it on its own hot paths.
//
// Checked invariants:
//   - blocks tile the heap exactly from prologue to epilogue
//   - a free block's footer mirrors its header into the successor's
//     prev_footer row
//   - every prev-allocated bit agrees with the physical predecessor
//   - no two adjacent free, non-quick-list blocks exist
//   - every free block is linked in exactly the free list of its size class,
//     and the circular lists are well formed
//   - every quick list holds only blocks of its exact size, flagged as
//     allocated and quarantined, within the depth bound
func (a *Allocator) Check() error {
	if a.mem.Size() == 0 {
		return nil
	}

	epi := a.epilogueOff()
	if h := a.header(prologueOff); !h.Allocated || h.BlockSize != format.MinBlockSize {
		return fmt.Errorf("alloc: prologue corrupt: %+v", h)
	}
	if h := a.header(epi); !h.Allocated || h.BlockSize != 0 {
		return fmt.Errorf("alloc: epilogue corrupt: %+v", h)
	}

	// Physical walk: tiling, footers, prev bits, adjacency.
	type blockInfo struct {
		off  int
		h    format.Header
	}
	var free []blockInfo
	quick := map[int]format.Header{}

	off := firstBlockOff
	prev := a.header(prologueOff)
	prevOff := prologueOff
	for off < epi {
		h := a.header(off)
		size := int(h.BlockSize)
		if size < format.MinBlockSize || size%format.BlockAlign != 0 || off+size > epi {
			return fmt.Errorf("alloc: block %d has bad size %d", off, size)
		}
		if h.PrevAlloc != prev.Allocated {
			return fmt.Errorf("alloc: block %d prev-alloc bit disagrees with block %d", off, prevOff)
		}
		if !prev.Allocated {
			if a.prevFooter(off).Pack() != prev.Pack() {
				return fmt.Errorf("alloc: block %d prev_footer does not mirror header of %d", off, prevOff)
			}
			if !h.Allocated {
				return fmt.Errorf("alloc: adjacent free blocks %d and %d", prevOff, off)
			}
		}
		switch {
		case h.QuickList:
			if !h.Allocated {
				return fmt.Errorf("alloc: quick-list block %d is not marked allocated", off)
			}
			quick[off] = h
		case !h.Allocated:
			free = append(free, blockInfo{off: off, h: h})
		}
		prev, prevOff = h, off
		off += size
	}
	if off != epi {
		return fmt.Errorf("alloc: block walk ends at %d, epilogue at %d", off, epi)
	}
	if eh := a.header(epi); eh.PrevAlloc != prev.Allocated {
		return fmt.Errorf("alloc: epilogue prev-alloc bit disagrees with block %d", prevOff)
	}

	// Free-list membership: each class circular and consistent, every
	// member free with the right size class, every free block seen once.
	linked := map[int]int{}
	for c := range a.heads {
		head := headRef(c)
		seen := 0
		for cur := a.linkNext(head); cur != head; cur = a.linkNext(cur) {
			if cur <= 0 {
				return fmt.Errorf("alloc: class %d list contains bad ref %d", c, cur)
			}
			if a.linkNext(a.linkPrev(cur)) != cur {
				return fmt.Errorf("alloc: class %d list broken around block %d", c, cur)
			}
			if prevClass, dup := linked[cur]; dup {
				return fmt.Errorf("alloc: block %d linked in classes %d and %d", cur, prevClass, c)
			}
			linked[cur] = c
			h := a.header(cur)
			if h.Allocated {
				return fmt.Errorf("alloc: allocated block %d is on free list %d", cur, c)
			}
			if want := sizeClass(int(h.BlockSize)); want != c {
				return fmt.Errorf("alloc: block %d of size %d filed in class %d, want %d",
					cur, h.BlockSize, c, want)
			}
			if seen++; seen > len(a.mem.Bytes())/format.MinBlockSize {
				return fmt.Errorf("alloc: class %d list does not terminate", c)
			}
		}
	}
	for _, b := range free {
		if _, ok := linked[b.off]; !ok {
			return fmt.Errorf("alloc: free block %d is in no free list", b.off)
		}
	}
	if len(linked) != len(free) {
		return fmt.Errorf("alloc: %d blocks linked but %d free blocks exist", len(linked), len(free))
	}

	// Quick lists: exact sizes, correct flags, bounded depth.
	for q := range a.quick {
		want := format.MinBlockSize + q*format.BlockAlign
		if a.quick[q].length > format.QuickListMax {
			return fmt.Errorf("alloc: quick list %d over depth bound: %d", q, a.quick[q].length)
		}
		cur := a.quick[q].first
		for i := 0; i < a.quick[q].length; i++ {
			h, ok := quick[cur]
			if !ok {
				return fmt.Errorf("alloc: quick list %d entry %d is not a quarantined block", q, cur)
			}
			if int(h.BlockSize) != want {
				return fmt.Errorf("alloc: quick list %d holds block of size %d, want %d",
					q, h.BlockSize, want)
			}
			delete(quick, cur)
			cur = a.linkNext(cur)
		}
	}
	if len(quick) != 0 {
		return fmt.Errorf("alloc: %d quarantined blocks are in no quick list", len(quick))
	}
	return nil
}

// QuickListDepth reports the number of blocks parked in quick list q, for
// instrumentation and tests.
func (a *Allocator) QuickListDepth(q int) int {
	if q < 0 || q >= format.NumQuickLists {
		return 0
	}
	return a.quick[q].length
}

// FreeListCount reports the number of blocks linked in size class c, for
// instrumentation and tests.
func (a *Allocator) FreeListCount(c int) int {
	if c < 0 || c >= format.NumFreeLists {
		return 0
	}
	head := headRef(c)
	n := 0
	for cur := a.linkNext(head); cur != head; cur = a.linkNext(cur) {
		n++
	}
	return n
}
