// Package heap provides the growable memory region underlying the mush
// allocator.
//
// A Region reserves its maximum capacity once and then grows a logical end
// marker one page at a time. Reserving up front keeps the arena's base
// address stable, so block offsets handed out by the allocator stay valid
// across growth.
package heap

import (
	"errors"

	"github.com/tgrossb/mush/internal/format"
)

// PageSize is the granularity of Grow.
const PageSize = format.PageSize

// DefaultMaxPages bounds a Region created with NewRegion(0): 4 MiB.
const DefaultMaxPages = 1024

// ErrOutOfMemory indicates the region's reserve is exhausted.
var ErrOutOfMemory = errors.New("heap: out of memory")

// Region is a contiguous byte range [0, Size()) that can be extended in
// page-sized steps up to a fixed capacity.
type Region struct {
	data    []byte
	end     int
	release func() error
}

// NewRegion reserves maxPages pages of address space and returns an empty
// region. maxPages <= 0 selects DefaultMaxPages.
func NewRegion(maxPages int) (*Region, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	data, release, err := reserve(maxPages * PageSize)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, release: release}, nil
}

// Size returns the current logical heap size in bytes.
func (r *Region) Size() int { return r.end }

// Cap returns the reserved capacity in bytes.
func (r *Region) Cap() int { return len(r.data) }

// Bytes returns the live heap contents. The slice aliases the region; it is
// invalidated only by Close, never by Grow.
func (r *Region) Bytes() []byte { return r.data[:r.end] }

// Grow extends the region by one page. Returns ErrOutOfMemory when the
// reserve is exhausted.
func (r *Region) Grow() error {
	if r.end+PageSize > len(r.data) {
		return ErrOutOfMemory
	}
	r.end += PageSize
	return nil
}

// Close releases the reservation. The region must not be used afterwards.
func (r *Region) Close() error {
	r.data = nil
	r.end = 0
	if r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	return release()
}
