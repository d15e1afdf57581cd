package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrossb/mush/internal/format"
)

func Test_QuickListRoundTrip(t *testing.T) {
	a := newTestAllocator(t, 2)

	// A 16-byte request yields a minimum-sized block.
	ref, _, err := a.Malloc(16)
	require.NoError(t, err)

	a.Free(ref)
	require.Equal(t, 1, a.QuickListDepth(0))
	require.NoError(t, a.Check())

	// The next same-size request pops the same block.
	again, _, err := a.Malloc(16)
	require.NoError(t, err)
	require.Equal(t, ref, again)
	require.Equal(t, 0, a.QuickListDepth(0))
	require.NoError(t, a.Check())
}

func Test_QuickListLIFO(t *testing.T) {
	a := newTestAllocator(t, 2)

	r1, _, err := a.Malloc(16)
	require.NoError(t, err)
	r2, _, err := a.Malloc(16)
	require.NoError(t, err)

	a.Free(r1)
	a.Free(r2)
	require.Equal(t, 2, a.QuickListDepth(0))

	// Last freed comes back first.
	pop, _, err := a.Malloc(16)
	require.NoError(t, err)
	require.Equal(t, r2, pop)
	pop, _, err = a.Malloc(16)
	require.NoError(t, err)
	require.Equal(t, r1, pop)
}

func Test_QuickListSizeClasses(t *testing.T) {
	a := newTestAllocator(t, 2)

	// Block sizes 32 and 48 land in quick lists 0 and 1.
	small, _, err := a.Malloc(16)
	require.NoError(t, err)
	medium, _, err := a.Malloc(40)
	require.NoError(t, err)

	a.Free(small)
	a.Free(medium)
	require.Equal(t, 1, a.QuickListDepth(0))
	require.Equal(t, 1, a.QuickListDepth(1))
	require.NoError(t, a.Check())
}

func Test_QuickListFlush(t *testing.T) {
	a := newTestAllocator(t, 2)

	refs := make([]Ref, 0, format.QuickListMax+1)
	for i := 0; i <= format.QuickListMax; i++ {
		ref, _, err := a.Malloc(16)
		require.NoError(t, err)
		refs = append(refs, ref)
	}

	// The first QuickListMax frees park; the next one flushes.
	for i := 0; i < format.QuickListMax; i++ {
		a.Free(refs[i])
		require.Equal(t, i+1, a.QuickListDepth(0))
	}
	a.Free(refs[format.QuickListMax])

	require.Equal(t, 1, a.QuickListDepth(0))
	require.NoError(t, a.Check())

	// The flushed blocks migrated into the free lists: adjacent blocks
	// coalesced, so at least one free block now exists outside quick lists.
	total := 0
	for c := 0; c < format.NumFreeLists; c++ {
		total += a.FreeListCount(c)
	}
	require.GreaterOrEqual(t, total, 1)

	// The sole quick-list entry is the last block freed.
	pop, _, err := a.Malloc(16)
	require.NoError(t, err)
	require.Equal(t, refs[format.QuickListMax], pop)
}

func Test_QuickListBlocksAreNotCoalesced(t *testing.T) {
	a := newTestAllocator(t, 2)

	r1, _, err := a.Malloc(16)
	require.NoError(t, err)
	r2, _, err := a.Malloc(16)
	require.NoError(t, err)
	r3, _, err := a.Malloc(16)
	require.NoError(t, err)

	// Adjacent quick-list blocks stay quarantined and distinct.
	a.Free(r1)
	a.Free(r2)
	a.Free(r3)
	require.Equal(t, 3, a.QuickListDepth(0))
	require.NoError(t, a.Check())
}
