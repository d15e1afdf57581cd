package alloc

import "github.com/tgrossb/mush/internal/format"

// quickIndex returns the quick-list index holding blocks of exactly the
// given size, or -1 when the size is too large for any quick list.
func quickIndex(size int) int {
	q := (size - format.MinBlockSize) / format.BlockAlign
	if q >= format.NumQuickLists {
		return -1
	}
	return q
}

// popQuick removes and returns the head of the quick list holding blocks of
// exactly size eff, or 0 when no such block is cached.
func (a *Allocator) popQuick(eff int) int {
	q := quickIndex(eff)
	if q < 0 || a.quick[q].length == 0 {
		return 0
	}
	b := a.quick[q].first
	a.quick[q].first = a.linkNext(b)
	a.quick[q].length--
	a.setLinks(b, 0, 0)
	return b
}

// pushQuick parks the block at off (of the given exact size) in quick list
// q. A full list is flushed first: every resident block is genuinely freed
// and coalesced, and off becomes the sole entry.
func (a *Allocator) pushQuick(off, size, q int) {
	h := a.header(off)
	a.setHeader(off, format.Header{
		BlockSize: uint32(size),
		Allocated: true,
		PrevAlloc: h.PrevAlloc,
		QuickList: true,
	})
	a.setFooter(off)

	if a.quick[q].length < format.QuickListMax {
		first := 0
		if a.quick[q].length > 0 {
			first = a.quick[q].first
		}
		a.setLinks(off, first, 0)
		a.quick[q].first = off
		a.quick[q].length++
		return
	}

	a.flushQuick(q)
	a.setLinks(off, 0, 0)
	a.quick[q].first = off
	a.quick[q].length = 1
}

// flushQuick frees every block parked in quick list q, coalescing each into
// the free lists, and resets the list to empty.
func (a *Allocator) flushQuick(q int) {
	cur := a.quick[q].first
	for i := 0; i < a.quick[q].length; i++ {
		next := a.linkNext(cur)
		h := a.header(cur)
		a.setHeader(cur, format.Header{
			BlockSize: h.BlockSize,
			PrevAlloc: h.PrevAlloc,
		})
		a.setFooter(cur)
		a.setLinks(cur, 0, 0)
		a.setPrevAlloc(cur+int(h.BlockSize), false)
		a.coalesce(cur)
		cur = next
	}
	a.quick[q].first = 0
	a.quick[q].length = 0
}
