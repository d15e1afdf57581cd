package alloc

import (
	"fmt"
	"os"

	"github.com/tgrossb/mush/heap"
	"github.com/tgrossb/mush/internal/format"
)

// Allocation logging, controlled by the MUSH_LOG_ALLOC environment variable.
var logAlloc = os.Getenv("MUSH_LOG_ALLOC") != ""

// Ref identifies an allocated payload: its byte offset into the heap.
// Payloads are always 16-byte aligned, so a valid Ref is a positive multiple
// of 16.
type Ref int

// NilRef is the zero Ref. It never refers to a live payload.
const NilRef Ref = 0

// listHead anchors one free-list size class. An empty class points at
// itself through the negative head encoding (see headRef).
type listHead struct {
	next int
	prev int
}

// quickList is one bounded LIFO stack of exact-size quarantined blocks,
// chained through their payload next links.
type quickList struct {
	first  int
	length int
}

// Config carries allocator construction parameters.
type Config struct {
	// MaxPages bounds the heap reserve. Zero selects heap.DefaultMaxPages.
	MaxPages int
}

// DefaultConfig is used when New is given a nil config.
var DefaultConfig = Config{MaxPages: heap.DefaultMaxPages}

// Allocator is the mush heap engine. It owns its Region; block offsets are
// stable for the allocator's lifetime.
type Allocator struct {
	mem   *heap.Region
	heads [format.NumFreeLists]listHead
	quick [format.NumQuickLists]quickList

	// Peak sum of payload sizes of allocated, non-quick-list blocks.
	peakAggPayload float64
}

// New creates an allocator over a fresh region. The heap itself is built
// lazily by the first Malloc.
func New(config *Config) (*Allocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	mem, err := heap.NewRegion(config.MaxPages)
	if err != nil {
		return nil, err
	}
	a := &Allocator{mem: mem}
	for c := range a.heads {
		a.heads[c].next = headRef(c)
		a.heads[c].prev = headRef(c)
	}
	return a, nil
}

// Close releases the heap region. All refs are invalidated.
func (a *Allocator) Close() error {
	return a.mem.Close()
}

// Malloc allocates size payload bytes and returns the payload ref plus a
// writable slice over it. size <= 0 yields NilRef with no error. Returns
// ErrNoMem when the heap cannot be grown and ErrSizeOverflow when the
// request is too large to describe in a block header.
func (a *Allocator) Malloc(size int) (Ref, []byte, error) {
	if size <= 0 {
		return NilRef, nil, nil
	}

	if a.mem.Size() == 0 {
		if err := a.initHeap(); err != nil {
			return NilRef, nil, err
		}
	}

	eff, ok := effectiveSize(size)
	if !ok {
		return NilRef, nil, ErrSizeOverflow
	}

	if b := a.popQuick(eff); b != 0 {
		h := a.header(b)
		a.setHeader(b, format.Header{
			PayloadSize: uint32(size),
			BlockSize:   uint32(eff),
			Allocated:   true,
			PrevAlloc:   h.PrevAlloc,
		})
		a.setFooter(b)
		a.setPrevAlloc(b+eff, true)
		a.updatePeakPayload()
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[ALLOC] quick hit: size=%d block=%d\n", size, b)
		}
		return a.finish(b, size)
	}

	b := a.findFit(eff)
	for b == 0 {
		if err := a.extendHeap(); err != nil {
			return NilRef, nil, ErrNoMem
		}
		b = a.findFit(eff)
	}

	blockSize := int(a.header(b).BlockSize)
	if remainder := blockSize - eff; remainder >= format.MinBlockSize {
		a.split(b, size, eff, remainder)
	} else {
		h := a.header(b)
		a.setHeader(b, format.Header{
			PayloadSize: uint32(size),
			BlockSize:   uint32(blockSize),
			Allocated:   true,
			PrevAlloc:   h.PrevAlloc,
		})
		a.setFooter(b)
		a.setPrevAlloc(b+blockSize, true)
	}

	a.updatePeakPayload()
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] size=%d eff=%d block=%d\n", size, eff, b)
	}
	return a.finish(b, size)
}

// finish converts a block offset into the public payload ref and slice.
func (a *Allocator) finish(b, size int) (Ref, []byte, error) {
	off := b + payloadOffset
	return Ref(off), a.mem.Bytes()[off : off+size : off+size], nil
}

// effectiveSize computes the block size serving a request of size payload
// bytes: header plus payload, 16-aligned, at least the minimum block size.
// ok is false when the result does not fit the header's size field.
func effectiveSize(size int) (int, bool) {
	if size < 0 {
		return 0, false
	}
	eff := uint64(size) + format.HeaderSize
	eff = (eff + format.Align16Mask) &^ uint64(format.Align16Mask)
	if eff < format.MinBlockSize {
		eff = format.MinBlockSize
	}
	if eff > maxBlockSize {
		return 0, false
	}
	return int(eff), true
}

// maxBlockSize is the largest size the header's 28-bit size field can hold.
const maxBlockSize = 0xFFFFFFF0

// initHeap builds the initial heap in a fresh first page: pad row, prologue,
// one free block, epilogue.
func (a *Allocator) initHeap() error {
	if err := a.mem.Grow(); err != nil {
		return err
	}

	// Prologue: a minimum-sized, permanently allocated sentinel. Its
	// prev_footer row is the leading pad that 16-aligns all payloads.
	a.setHeader(prologueOff, format.Header{
		BlockSize: format.MinBlockSize,
		Allocated: true,
	})

	first := prologueOff + format.MinBlockSize
	blockSize := a.mem.Size() - firstBlockOff - format.EpilogueSize
	a.setHeader(first, format.Header{
		BlockSize: uint32(blockSize),
		PrevAlloc: true,
	})
	a.setFooter(first)
	a.setLinks(first, 0, 0)
	a.insertFree(first)

	epi := a.epilogueOff()
	a.setHeader(epi, format.Header{Allocated: true})
	return nil
}

// extendHeap grows the heap by one page, turning the old epilogue into a
// free block that coalesces backward, and writes a new epilogue.
func (a *Allocator) extendHeap() error {
	oldEpi := a.epilogueOff()
	if err := a.mem.Grow(); err != nil {
		return err
	}

	newEpi := a.epilogueOff()
	a.setHeader(newEpi, format.Header{Allocated: true})

	h := a.header(oldEpi)
	a.setHeader(oldEpi, format.Header{
		BlockSize: uint32(newEpi - oldEpi),
		PrevAlloc: h.PrevAlloc,
	})
	a.setFooter(oldEpi)
	a.setLinks(oldEpi, 0, 0)
	a.coalesce(oldEpi)
	return nil
}

// split carves an allocated prefix of eff bytes out of block b (free, or
// allocated when Realloc shrinks it) and routes the remainder through
// coalescing. The prefix gets no footer: its footer row is live payload.
func (a *Allocator) split(b, payloadSize, eff, remainder int) {
	h := a.header(b)
	a.setHeader(b, format.Header{
		PayloadSize: uint32(payloadSize),
		BlockSize:   uint32(eff),
		Allocated:   true,
		PrevAlloc:   h.PrevAlloc,
	})

	frag := b + eff
	a.setHeader(frag, format.Header{
		BlockSize: uint32(remainder),
		PrevAlloc: true,
	})
	a.setFooter(frag)
	a.setLinks(frag, 0, 0)
	a.setPrevAlloc(frag+remainder, false)
	a.coalesce(frag)
}
