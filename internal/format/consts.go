package format

// Block geometry constants for the mush heap.
// The heap is tiled by 16-byte-aligned blocks of at least 32 bytes, bracketed
// by a prologue and an epilogue sentinel.

const (
	// RowSize is the width of one header/footer row.
	RowSize = 8

	// HeaderSize is the size of a block header (one row).
	HeaderSize = RowSize

	// BlockAlign is the required alignment of blocks and payloads.
	BlockAlign = 16

	// Align16Mask is the mask used by Align16.
	Align16Mask = BlockAlign - 1

	// MinBlockSize is the minimum total block size. A free block must hold a
	// footer plus two list links, so nothing smaller can ever be freed.
	MinBlockSize = 32

	// PageSize is the granularity of heap growth.
	PageSize = 4096

	// PrologueSize covers the leading pad row plus the prologue block's
	// header and (unused) payload rows: the first real block starts here.
	PrologueSize = 4 * RowSize

	// EpilogueSize covers the epilogue's prev_footer and header rows.
	EpilogueSize = 2 * RowSize

	// NumFreeLists is the number of segregated free-list size classes.
	NumFreeLists = 10

	// NumQuickLists is the number of exact-size quick-list stacks.
	NumQuickLists = 10

	// QuickListMax is the depth bound of each quick list; pushing onto a
	// full stack flushes it first.
	QuickListMax = 5
)

// Magic is the process-wide value XOR'd into every stored header and footer.
// It is a corruption tripwire, not a secret: a header read back without the
// XOR applied decodes to garbage sizes that the validators reject. The value
// is fixed so that a persisted heap image stays readable.
const Magic uint64 = 0x7a36c84f91e05bd2

// Header flag bits (after de-obfuscation).
const (
	// ThisBlockAllocated marks the block as allocated.
	ThisBlockAllocated uint64 = 0x1

	// PrevBlockAllocated mirrors the allocated bit of the physically
	// preceding block.
	PrevBlockAllocated uint64 = 0x2

	// InQuickList marks an allocated block that is parked in a quick list.
	InQuickList uint64 = 0x4
)

// Align16 returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + Align16Mask) & ^Align16Mask
}
