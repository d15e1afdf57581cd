package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_InternalFragmentationBounds(t *testing.T) {
	a := newTestAllocator(t, 4)

	require.Zero(t, a.InternalFragmentation(), "empty heap has no fragmentation ratio")

	// payload 20 in a 32-byte block: ratio is exactly 20/32.
	ref := mustMalloc(t, a, 20)
	require.InDelta(t, 20.0/32.0, a.InternalFragmentation(), 1e-9)

	// A second allocation shifts the ratio but keeps it in (0, 1].
	mustMalloc(t, a, 500)
	frag := a.InternalFragmentation()
	require.Greater(t, frag, 0.0)
	require.LessOrEqual(t, frag, 1.0)

	// Quick-listed blocks leave the accounting.
	a.Free(ref)
	frag = a.InternalFragmentation()
	require.InDelta(t, 500.0/512.0, frag, 1e-9)
}

func Test_PeakUtilizationTracksHighWater(t *testing.T) {
	a := newTestAllocator(t, 4)

	require.Zero(t, a.PeakUtilization(), "empty heap has no utilization")

	r1 := mustMalloc(t, a, 1000)
	u1 := a.PeakUtilization()
	require.InDelta(t, 1000.0/4096.0, u1, 1e-9)

	mustMalloc(t, a, 1000)
	u2 := a.PeakUtilization()
	require.InDelta(t, 2000.0/4096.0, u2, 1e-9)

	// Freeing does not lower the recorded peak.
	a.Free(r1)
	require.InDelta(t, u2, a.PeakUtilization(), 1e-9)
}

func Test_PeakUtilizationWithinBounds(t *testing.T) {
	a := newTestAllocator(t, 4)

	var refs []Ref
	for i := 0; i < 10; i++ {
		refs = append(refs, mustMalloc(t, a, 200+i*40))
	}
	for i := 0; i < len(refs); i += 2 {
		a.Free(refs[i])
	}

	u := a.PeakUtilization()
	require.Greater(t, u, 0.0)
	require.LessOrEqual(t, u, 1.0)
}
