package alloc

import "github.com/tgrossb/mush/internal/format"

// Realloc resizes the payload at ref to rsize bytes, preserving the first
// min(old payload, rsize) bytes. The returned ref equals the argument unless
// the block had to grow. rsize <= 0 frees the payload and returns NilRef.
//
// Invalid refs panic, as in Free.
func (a *Allocator) Realloc(ref Ref, rsize int) (Ref, []byte, error) {
	if rsize <= 0 {
		a.Free(ref)
		return NilRef, nil, nil
	}

	b := a.validate(ref)

	eff, ok := effectiveSize(rsize)
	if !ok {
		return NilRef, nil, ErrSizeOverflow
	}

	h := a.header(b)
	blockSize := int(h.BlockSize)

	// Growing: allocate elsewhere, copy the live payload prefix, release.
	if eff > blockSize {
		newRef, payload, err := a.Malloc(rsize)
		if err != nil {
			return NilRef, nil, err
		}
		old := a.mem.Bytes()[ref : int(ref)+int(h.PayloadSize)]
		copy(payload, old)
		a.Free(ref)
		return newRef, payload, nil
	}

	// Same block size: only the recorded payload size changes.
	if eff == blockSize {
		h.PayloadSize = uint32(rsize)
		a.setHeader(b, h)
		return a.finish(b, rsize)
	}

	// Shrinking: split when the tail is big enough to stand alone,
	// otherwise keep the slack inside the block.
	if remainder := blockSize - eff; remainder >= format.MinBlockSize {
		a.split(b, rsize, eff, remainder)
	} else {
		h.PayloadSize = uint32(rsize)
		a.setHeader(b, h)
	}
	return a.finish(b, rsize)
}
