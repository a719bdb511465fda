package silk

import "encoding/binary"

// Multi-byte scalar fields have a little-endian baseline on disk; a
// stream whose header declares the opposite order is fixed up by the
// per-version swap pass before extraction (read) or after insertion
// (write). IP address byte arrays are always network byte order and are
// never swapped.

func u16(ar []byte) uint16       { return binary.LittleEndian.Uint16(ar) }
func u32(ar []byte) uint32       { return binary.LittleEndian.Uint32(ar) }
func u64(ar []byte) uint64       { return binary.LittleEndian.Uint64(ar) }
func putU16(ar []byte, v uint16) { binary.LittleEndian.PutUint16(ar, v) }
func putU32(ar []byte, v uint32) { binary.LittleEndian.PutUint32(ar, v) }
func putU64(ar []byte, v uint64) { binary.LittleEndian.PutUint64(ar, v) }

// be32 and putBE32 read and write the trailing four octets of a
// network-order address field; they are exempt from the swap pass.
func be32(ar []byte) uint32       { return binary.BigEndian.Uint32(ar) }
func putBE32(ar []byte, v uint32) { binary.BigEndian.PutUint32(ar, v) }

// getMaskedBits returns the size-bit value starting at bit offset
// (0 = least significant) of x.
func getMaskedBits(x uint32, offset, size uint) uint32 {
	return (x >> offset) & (1<<size - 1)
}

// setMaskedBits overwrites the size-bit field at bit offset of x with v,
// leaving the other bits untouched. The caller must ensure v fits in
// size bits.
func setMaskedBits(x, v uint32, offset, size uint) uint32 {
	mask := uint32(1<<size-1) << offset
	return (x &^ mask) | (v << offset & mask)
}

func swap16(ar []byte) {
	ar[0], ar[1] = ar[1], ar[0]
}

func swap32(ar []byte) {
	ar[0], ar[3] = ar[3], ar[0]
	ar[1], ar[2] = ar[2], ar[1]
}

func swap64(ar []byte) {
	ar[0], ar[7] = ar[7], ar[0]
	ar[1], ar[6] = ar[6], ar[1]
	ar[2], ar[5] = ar[5], ar[2]
	ar[3], ar[4] = ar[4], ar[3]
}
