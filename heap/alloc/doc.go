// Package alloc implements the mush heap: a segregated-fit allocator with
// deferred-free quick lists over a page-growable byte arena.
//
// # Overview
//
// The heap is a contiguous byte range tiled by 16-byte-aligned blocks of at
// least 32 bytes, bracketed by a permanently-allocated prologue and a
// zero-size epilogue sentinel. Every block carries an 8-byte header whose
// stored form is XOR'd with a fixed magic value; a free block mirrors its
// header into a footer that doubles as the next block's prev_footer row.
//
// # Free lists
//
// Free blocks live in one of ten size classes: class 0 holds exactly the
// minimum size (32), class i holds (32·2^(i-1), 32·2^i], and the last class
// is unbounded. Each class is a circular doubly-linked list threaded through
// the free blocks' payload bytes, anchored by a dummy head that points to
// itself when the class is empty. Insertion is LIFO and allocation is
// first-fit from the head.
//
// # Quick lists
//
// Small freed blocks (sizes 32, 48, …, 176) are parked in bounded LIFO quick
// lists instead of being coalesced. A quick-list block keeps its allocated
// bit and gains the quick-list bit; its neighbors are not updated. Pushing
// onto a full quick list first flushes the stack: every resident block is
// genuinely freed, coalesced and free-listed, and the incoming block becomes
// the sole entry.
//
// # Coalescing and growth
//
// Outside the quick lists, adjacent free blocks never persist: freeing and
// splitting route through a coalesce step that merges with free neighbors
// and re-inserts the survivor. When no fit exists the heap grows one page at
// a time, converting the old epilogue into a free block that coalesces
// backward.
//
// # Errors
//
// Malloc and Realloc return ErrNoMem when the region cannot grow and
// ErrSizeOverflow when the effective-size computation wraps. Handing Free or
// Realloc an invalid reference is caller UB and panics.
//
// # Diagnostics
//
// Setting MUSH_LOG_ALLOC in the environment enables allocation logging to
// stderr.
//
// Allocator instances are not safe for concurrent use.
package alloc
