package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrossb/mush/internal/format"
)

// bigPayload is sized so its block (192 bytes) is too large for any quick
// list and always takes the free-list path on Free.
const bigPayload = 184

func totalFreeBlocks(a *Allocator) int {
	total := 0
	for c := 0; c < format.NumFreeLists; c++ {
		total += a.FreeListCount(c)
	}
	return total
}

func Test_CoalesceForwardAndBackward(t *testing.T) {
	a := newTestAllocator(t, 2)

	ra, _, err := a.Malloc(bigPayload)
	require.NoError(t, err)
	rb, _, err := a.Malloc(bigPayload)
	require.NoError(t, err)
	rc, _, err := a.Malloc(bigPayload)
	require.NoError(t, err)

	// b alone: one new free block next to the initial remainder.
	a.Free(rb)
	require.NoError(t, a.Check())
	require.Equal(t, 2, totalFreeBlocks(a))

	// c merges backward with b and forward with the remainder: one block.
	a.Free(rc)
	require.NoError(t, a.Check())
	require.Equal(t, 1, totalFreeBlocks(a))

	// a merges forward into the rest: the heap is one free block again.
	a.Free(ra)
	require.NoError(t, a.Check())
	require.Equal(t, 1, totalFreeBlocks(a))
	require.Equal(t, 1, a.FreeListCount(sizeClass(a.HeapSize()-format.PrologueSize-format.EpilogueSize)))
}

func Test_CoalesceOnlyForward(t *testing.T) {
	a := newTestAllocator(t, 2)

	ra, _, err := a.Malloc(bigPayload)
	require.NoError(t, err)
	rb, _, err := a.Malloc(bigPayload)
	require.NoError(t, err)

	// Freeing b merges it with the trailing remainder (forward), while a
	// stays allocated behind it.
	a.Free(rb)
	require.NoError(t, a.Check())
	require.Equal(t, 1, totalFreeBlocks(a))

	a.Free(ra)
	require.NoError(t, a.Check())
	require.Equal(t, 1, totalFreeBlocks(a))
}

func Test_CoalesceAcrossGrowth(t *testing.T) {
	a := newTestAllocator(t, 4)

	// Consume the first page exactly: payload 4040 -> block 4048.
	ref, _, err := a.Malloc(4040)
	require.NoError(t, err)
	require.Equal(t, format.PageSize, a.HeapSize())
	require.Equal(t, 0, totalFreeBlocks(a))

	// The next allocation extends the heap; the new page's block absorbs
	// the old epilogue.
	ref2, _, err := a.Malloc(200)
	require.NoError(t, err)
	require.Equal(t, 2*format.PageSize, a.HeapSize())
	require.NoError(t, a.Check())

	a.Free(ref2)
	a.Free(ref)
	require.NoError(t, a.Check())
	require.Equal(t, 1, totalFreeBlocks(a))
}
