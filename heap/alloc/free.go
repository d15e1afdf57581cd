package alloc

import (
	"fmt"

	"github.com/tgrossb/mush/internal/format"
)

// Free releases a payload previously returned by Malloc or Realloc. Small
// blocks are parked in a quick list; everything else is coalesced into the
// free lists immediately.
//
// Passing a ref that does not name a live allocation is caller UB: Free
// panics on every detectable invalid-pointer condition.
func (a *Allocator) Free(ref Ref) {
	b := a.validate(ref)
	size := int(a.header(b).BlockSize)

	if q := quickIndex(size); q >= 0 {
		a.pushQuick(b, size, q)
		return
	}

	h := a.header(b)
	a.setHeader(b, format.Header{
		BlockSize: uint32(size),
		PrevAlloc: h.PrevAlloc,
	})
	a.setFooter(b)
	a.setLinks(b, 0, 0)
	a.setPrevAlloc(b+size, false)
	a.coalesce(b)
}

// validate checks every invalid-pointer condition of a free/realloc ref and
// returns the block offset. Any violation panics: these are caller bugs, the
// moral equivalent of heap corruption.
func (a *Allocator) validate(ref Ref) int {
	if ref == NilRef {
		panic("alloc: invalid free: nil ref")
	}
	if int(ref)%format.BlockAlign != 0 {
		panic(fmt.Sprintf("alloc: invalid free: misaligned ref %d", ref))
	}
	heapSize := a.mem.Size()
	if heapSize == 0 {
		panic("alloc: invalid free: heap is empty")
	}

	b := int(ref) - payloadOffset
	if b < firstBlockOff {
		panic(fmt.Sprintf("alloc: invalid free: ref %d before heap start", ref))
	}
	if b+format.MinBlockSize > heapSize-format.EpilogueSize {
		panic(fmt.Sprintf("alloc: invalid free: ref %d past heap end", ref))
	}

	h := a.header(b)
	size := int(h.BlockSize)
	if size < format.MinBlockSize {
		panic(fmt.Sprintf("alloc: invalid free: block size %d below minimum", size))
	}
	if size%format.BlockAlign != 0 {
		panic(fmt.Sprintf("alloc: invalid free: misaligned block size %d", size))
	}
	if b+size > heapSize-format.EpilogueSize {
		panic(fmt.Sprintf("alloc: invalid free: block [%d,%d) overruns heap", b, b+size))
	}
	if !h.Allocated {
		panic(fmt.Sprintf("alloc: invalid free: block %d is not allocated", b))
	}
	if h.QuickList {
		panic(fmt.Sprintf("alloc: invalid free: block %d is already in a quick list", b))
	}
	if !h.PrevAlloc {
		// The previous block claims to be free; its footer must agree.
		pf := a.prevFooter(b)
		psize := int(pf.BlockSize)
		if psize < format.MinBlockSize || psize%format.BlockAlign != 0 || b-psize < prologueOff {
			panic(fmt.Sprintf("alloc: invalid free: corrupt prev footer at block %d", b))
		}
		if a.header(b - psize).Allocated {
			panic(fmt.Sprintf("alloc: invalid free: prev-alloc bit of block %d disagrees with predecessor", b))
		}
	}
	return b
}
