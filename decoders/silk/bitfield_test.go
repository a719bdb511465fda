package silk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskedBits(t *testing.T) {
	x := uint32(0xABCD1234)
	assert.Equal(t, uint32(0x34), getMaskedBits(x, 0, 8))
	assert.Equal(t, uint32(0xD12), getMaskedBits(x, 8, 12))
	assert.Equal(t, uint32(0xABC), getMaskedBits(x, 20, 12))
	assert.Equal(t, x, getMaskedBits(x, 0, 32))

	assert.Equal(t, uint32(0xABCD12FF), setMaskedBits(x, 0xFF, 0, 8))
	assert.Equal(t, uint32(0xFFCD1234), setMaskedBits(x, 0xFF, 24, 8))
	// bits above the field width must not leak
	assert.Equal(t, uint32(0xABCD1237), setMaskedBits(x, 0xFF, 0, 2))
}

func TestSwapInvolution(t *testing.T) {
	ar := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	swap16(ar)
	assert.Equal(t, []byte{2, 1, 3, 4, 5, 6, 7, 8}, ar)
	swap16(ar)

	swap32(ar)
	assert.Equal(t, []byte{4, 3, 2, 1, 5, 6, 7, 8}, ar)
	swap32(ar)

	swap64(ar)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, ar)
	swap64(ar)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, ar)
}

func TestScalarBaselineIsLittleEndian(t *testing.T) {
	ar := make([]byte, 4)
	putU32(ar, 0x0A0B0C0D)
	assert.Equal(t, []byte{0x0D, 0x0C, 0x0B, 0x0A}, ar)

	putBE32(ar, 0x0A0B0C0D)
	assert.Equal(t, []byte{0x0A, 0x0B, 0x0C, 0x0D}, ar)
	assert.Equal(t, uint32(0x0A0B0C0D), be32(ar))
}
