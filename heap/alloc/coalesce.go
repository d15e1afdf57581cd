package alloc

import "github.com/tgrossb/mush/internal/format"

// coalesce merges the free, unlinked block at off with any free physical
// neighbors and inserts the survivor into its free list. Returns the
// survivor's offset.
//
// Immediate coalescing everywhere else guarantees at most one free neighbor
// on each side. Quick-list blocks keep their allocated bit, so they are
// never merged.
func (a *Allocator) coalesce(off int) int {
	h := a.header(off)
	size := int(h.BlockSize)

	next := off + size
	nh := a.header(next)

	prevFree := !h.PrevAlloc
	nextFree := !nh.Allocated

	switch {
	case !prevFree && !nextFree:
		a.insertFree(off)
		return off

	case !prevFree && nextFree:
		a.removeFree(next)
		a.setHeader(off, format.Header{
			BlockSize: uint32(size) + nh.BlockSize,
			PrevAlloc: h.PrevAlloc,
		})
		a.setFooter(off)
		a.insertFree(off)
		return off

	case prevFree && !nextFree:
		prev := off - int(a.prevFooter(off).BlockSize)
		ph := a.header(prev)
		a.removeFree(prev)
		a.setHeader(prev, format.Header{
			BlockSize: ph.BlockSize + uint32(size),
			PrevAlloc: ph.PrevAlloc,
		})
		a.setFooter(prev)
		a.insertFree(prev)
		return prev

	default:
		prev := off - int(a.prevFooter(off).BlockSize)
		ph := a.header(prev)
		a.removeFree(prev)
		a.removeFree(next)
		a.setHeader(prev, format.Header{
			BlockSize: ph.BlockSize + uint32(size) + nh.BlockSize,
			PrevAlloc: ph.PrevAlloc,
		})
		a.setFooter(prev)
		a.insertFree(prev)
		return prev
	}
}
