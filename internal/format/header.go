package format

// Header is a decoded block header. The stored form is the packed fields
// XOR'd with Magic; all code outside this file goes through Pack/Unpack so
// the obfuscation never leaks.
//
// Packed layout (before obfuscation):
//
//	bits 63..32  payload size (requested bytes; meaningful only when allocated)
//	bits 31..4   block size in bytes (always a multiple of 16)
//	bit  2       in quick list
//	bit  1       previous block allocated
//	bit  0       this block allocated
type Header struct {
	PayloadSize uint32
	BlockSize   uint32
	Allocated   bool
	PrevAlloc   bool
	QuickList   bool
}

// Pack encodes h into its obfuscated stored form.
func (h Header) Pack() uint64 {
	raw := uint64(h.PayloadSize)<<32 | uint64(h.BlockSize&^uint32(Align16Mask))
	if h.Allocated {
		raw |= ThisBlockAllocated
	}
	if h.PrevAlloc {
		raw |= PrevBlockAllocated
	}
	if h.QuickList {
		raw |= InQuickList
	}
	return raw ^ Magic
}

// Unpack decodes an obfuscated stored header.
func Unpack(stored uint64) Header {
	raw := stored ^ Magic
	return Header{
		PayloadSize: uint32(raw >> 32),
		BlockSize:   uint32(raw) &^ uint32(Align16Mask),
		Allocated:   raw&ThisBlockAllocated != 0,
		PrevAlloc:   raw&PrevBlockAllocated != 0,
		QuickList:   raw&InQuickList != 0,
	}
}
