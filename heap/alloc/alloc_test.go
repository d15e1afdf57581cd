package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrossb/mush/internal/format"
)

func newTestAllocator(t *testing.T, maxPages int) *Allocator {
	t.Helper()
	a, err := New(&Config{MaxPages: maxPages})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func Test_MallocReturnsAlignedPayloads(t *testing.T) {
	a := newTestAllocator(t, 8)

	for _, size := range []int{1, 8, 16, 17, 100, 500, 1000} {
		ref, payload, err := a.Malloc(size)
		require.NoError(t, err)
		require.NotEqual(t, NilRef, ref)
		require.Zero(t, int(ref)%format.BlockAlign, "payload for size %d misaligned", size)
		require.Len(t, payload, size)
		require.NoError(t, a.Check())
	}
}

func Test_MallocZeroAndNegative(t *testing.T) {
	a := newTestAllocator(t, 2)

	ref, payload, err := a.Malloc(0)
	require.NoError(t, err)
	require.Equal(t, NilRef, ref)
	require.Nil(t, payload)

	ref, payload, err = a.Malloc(-5)
	require.NoError(t, err)
	require.Equal(t, NilRef, ref)
	require.Nil(t, payload)
}

func Test_FirstMallocBuildsHeap(t *testing.T) {
	a := newTestAllocator(t, 4)
	require.Zero(t, a.HeapSize())

	_, _, err := a.Malloc(16)
	require.NoError(t, err)
	require.Equal(t, format.PageSize, a.HeapSize())
	require.NoError(t, a.Check())
}

func Test_MallocGrowsHeapWhenNoFit(t *testing.T) {
	a := newTestAllocator(t, 4)

	// Larger than one page's free block, smaller than the reserve.
	ref, payload, err := a.Malloc(6000)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.Len(t, payload, 6000)
	require.Equal(t, 2*format.PageSize, a.HeapSize())
	require.NoError(t, a.Check())
}

func Test_MallocOutOfMemory(t *testing.T) {
	a := newTestAllocator(t, 2)

	_, _, err := a.Malloc(3 * format.PageSize)
	require.ErrorIs(t, err, ErrNoMem)

	// The failed attempt grew the heap; the allocator must still be usable.
	require.NoError(t, a.Check())
	_, payload, err := a.Malloc(64)
	require.NoError(t, err)
	require.Len(t, payload, 64)
}

func Test_MallocSizeOverflow(t *testing.T) {
	a := newTestAllocator(t, 2)

	_, _, err := a.Malloc(0xFFFFFFFF)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func Test_PayloadWritesDoNotClobberNeighbors(t *testing.T) {
	a := newTestAllocator(t, 8)

	type allocation struct {
		ref     Ref
		payload []byte
		fill    byte
	}
	var live []allocation
	for i, size := range []int{24, 200, 64, 512, 48, 1000} {
		ref, payload, err := a.Malloc(size)
		require.NoError(t, err)
		fill := byte(0xA0 + i)
		for k := range payload {
			payload[k] = fill
		}
		live = append(live, allocation{ref: ref, payload: payload, fill: fill})
	}

	for _, al := range live {
		for k := range al.payload {
			require.Equal(t, al.fill, al.payload[k],
				"allocation at ref %d corrupted at offset %d", al.ref, k)
		}
	}
	require.NoError(t, a.Check())
}

func Test_FreeMakesSpaceReusable(t *testing.T) {
	a := newTestAllocator(t, 2)

	refs := make([]Ref, 0, 8)
	for i := 0; i < 8; i++ {
		ref, _, err := a.Malloc(300)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	for _, ref := range refs {
		a.Free(ref)
		require.NoError(t, a.Check())
	}

	// Everything was returned; a large allocation must fit again without
	// growing past the two-page reserve.
	_, _, err := a.Malloc(3000)
	require.NoError(t, err)
	require.NoError(t, a.Check())
}
