package precompute

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/assert"
)

func TestShiftBits(t *testing.T) {
	in := bitfield.NewBitvector4()
	in.SetBitAt(0, true)
	in.SetBitAt(2, true)

	out := shiftBits(in)
	assert.False(t, out.BitAt(0))
	assert.True(t, out.BitAt(1))
	assert.False(t, out.BitAt(2))
	assert.True(t, out.BitAt(3))
}

func TestShiftBitsDropsTopBit(t *testing.T) {
	in := bitfield.NewBitvector4()
	in.SetBitAt(3, true)

	out := shiftBits(in)
	assert.False(t, out.BitAt(0))
	assert.False(t, out.BitAt(1))
	assert.False(t, out.BitAt(2))
	assert.False(t, out.BitAt(3))
}
