package alloc

import "errors"

var (
	// ErrNoMem indicates that the heap could not be grown to satisfy the
	// request.
	ErrNoMem = errors.New("alloc: out of memory")

	// ErrSizeOverflow indicates the effective-size computation wrapped past
	// the header size field's width.
	ErrSizeOverflow = errors.New("alloc: size overflow")
)
