package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_HeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{},
		{BlockSize: MinBlockSize, Allocated: true},
		{PayloadSize: 20, BlockSize: 32, Allocated: true, PrevAlloc: true},
		{BlockSize: 4048, PrevAlloc: true},
		{PayloadSize: 184, BlockSize: 192, Allocated: true, QuickList: true},
		{PayloadSize: 0xFFFFFFFF, BlockSize: 0xFFFFFFF0, Allocated: true},
	}
	for _, h := range cases {
		require.Equal(t, h, Unpack(h.Pack()), "round trip of %+v", h)
	}
}

func Test_HeaderIsObfuscated(t *testing.T) {
	h := Header{PayloadSize: 100, BlockSize: 112, Allocated: true}
	stored := h.Pack()

	// The stored form must not expose the raw fields.
	require.NotEqual(t, uint64(100)<<32|112|ThisBlockAllocated, stored)
	require.Equal(t, uint64(100)<<32|112|ThisBlockAllocated, stored^Magic)
}

func Test_HeaderBlockSizeMasksFlagBits(t *testing.T) {
	// A block size with stray low bits cannot leak into the flags.
	h := Header{BlockSize: 48 | 0x7}
	got := Unpack(h.Pack())
	require.Equal(t, uint32(48), got.BlockSize)
	require.False(t, got.Allocated)
	require.False(t, got.PrevAlloc)
	require.False(t, got.QuickList)
}

func Test_Align16(t *testing.T) {
	require.Equal(t, 16, Align16(1))
	require.Equal(t, 16, Align16(16))
	require.Equal(t, 32, Align16(17))
	require.Equal(t, 0, Align16(0))
	require.Equal(t, 48, Align16(33))
}
