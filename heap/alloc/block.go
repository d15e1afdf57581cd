package alloc

import (
	"github.com/tgrossb/mush/internal/buf"
	"github.com/tgrossb/mush/internal/format"
)

// Block offsets name the block's first row (the prev_footer). The header is
// one row in, the payload two. A block of size S ends where the next block
// begins, at offset+S; its footer row is the next block's prev_footer.
const (
	prologueOff   = 0
	firstBlockOff = format.PrologueSize
	payloadOffset = 2 * format.RowSize
)

// epilogueOff returns the offset of the epilogue sentinel.
func (a *Allocator) epilogueOff() int {
	return a.mem.Size() - format.EpilogueSize
}

// header decodes the header of the block at off.
func (a *Allocator) header(off int) format.Header {
	return format.Unpack(buf.U64LE(a.mem.Bytes()[off+format.RowSize:]))
}

// setHeader encodes and stores the header of the block at off.
func (a *Allocator) setHeader(off int, h format.Header) {
	buf.PutU64LE(a.mem.Bytes()[off+format.RowSize:], h.Pack())
}

// prevFooter decodes the footer of the physically previous block, stored in
// this block's first row. Meaningful only when the previous block is free.
func (a *Allocator) prevFooter(off int) format.Header {
	return format.Unpack(buf.U64LE(a.mem.Bytes()[off:]))
}

// setFooter mirrors the header of the block at off into its footer row,
// which is the next block's prev_footer.
func (a *Allocator) setFooter(off int) {
	h := a.header(off)
	buf.PutU64LE(a.mem.Bytes()[off+int(h.BlockSize):], h.Pack())
}

// setPrevAlloc rewrites the prev-allocated bit of the block at off,
// mirroring into its footer when the block is free.
func (a *Allocator) setPrevAlloc(off int, allocated bool) {
	h := a.header(off)
	h.PrevAlloc = allocated
	a.setHeader(off, h)
	if !h.Allocated {
		a.setFooter(off)
	}
}

// Free-list links are block offsets threaded through the first sixteen
// payload bytes of free blocks. Zero is "unlinked"; negative values name a
// size class's dummy head via headRef.

// headRef encodes the dummy head of size class c as a link value.
func headRef(c int) int { return -(c + 1) }

// headClass decodes a headRef back to its size class.
func headClass(ref int) int { return -ref - 1 }

// linkNext returns the next link of ref (a block offset or a head ref).
func (a *Allocator) linkNext(ref int) int {
	if ref < 0 {
		return a.heads[headClass(ref)].next
	}
	return int(int64(buf.U64LE(a.mem.Bytes()[ref+payloadOffset:])))
}

// linkPrev returns the prev link of ref.
func (a *Allocator) linkPrev(ref int) int {
	if ref < 0 {
		return a.heads[headClass(ref)].prev
	}
	return int(int64(buf.U64LE(a.mem.Bytes()[ref+payloadOffset+format.RowSize:])))
}

// setLinkNext stores v as the next link of ref.
func (a *Allocator) setLinkNext(ref, v int) {
	if ref < 0 {
		a.heads[headClass(ref)].next = v
		return
	}
	buf.PutU64LE(a.mem.Bytes()[ref+payloadOffset:], uint64(int64(v)))
}

// setLinkPrev stores v as the prev link of ref.
func (a *Allocator) setLinkPrev(ref, v int) {
	if ref < 0 {
		a.heads[headClass(ref)].prev = v
		return
	}
	buf.PutU64LE(a.mem.Bytes()[ref+payloadOffset+format.RowSize:], uint64(int64(v)))
}

// setLinks stores both links of a block at once.
func (a *Allocator) setLinks(off, next, prev int) {
	a.setLinkNext(off, next)
	a.setLinkPrev(off, prev)
}
