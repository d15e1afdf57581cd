package alloc

import "github.com/tgrossb/mush/internal/format"

// sizeClass returns the lowest free-list index that can hold a block of the
// given size. Classes are binned as M, (M, 2M], (2M, 4M], …, (nM, ∞) where M
// is the minimum block size.
func sizeClass(size int) int {
	binMax := format.MinBlockSize
	c := 0
	for size > binMax && c < format.NumFreeLists-1 {
		binMax <<= 1
		c++
	}
	return c
}

// insertFree pushes the free block at off onto the head of its size class.
// The block must not currently be linked into any list.
func (a *Allocator) insertFree(off int) {
	c := sizeClass(int(a.header(off).BlockSize))
	head := headRef(c)
	first := a.linkNext(head)

	a.setLinks(off, first, head)
	a.setLinkPrev(first, off)
	a.setLinkNext(head, off)
}

// removeFree unlinks the block at off from its free list and clears its
// links. No-op when the block is not linked.
func (a *Allocator) removeFree(off int) {
	next := a.linkNext(off)
	prev := a.linkPrev(off)
	if next == 0 || prev == 0 {
		return
	}
	a.setLinkNext(prev, next)
	a.setLinkPrev(next, prev)
	a.setLinks(off, 0, 0)
}

// findFit scans the size classes from the one matching eff upward and
// returns the first block large enough, unlinked from its list. Returns 0
// when no fit exists.
func (a *Allocator) findFit(eff int) int {
	for c := sizeClass(eff); c < format.NumFreeLists; c++ {
		head := headRef(c)
		for cur := a.linkNext(head); cur != head; cur = a.linkNext(cur) {
			if int(a.header(cur).BlockSize) >= eff {
				a.removeFree(cur)
				return cur
			}
		}
	}
	return 0
}
