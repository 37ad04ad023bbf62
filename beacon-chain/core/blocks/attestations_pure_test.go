package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitlistLen(t *testing.T) {
	assert.Equal(t, 0, bitlistLen(nil))
	assert.Equal(t, 8, bitlistLen([]byte{0xff}))
	assert.Equal(t, 16, bitlistLen([]byte{0xff, 0x00}))
}

func TestIntegerSqrtSlots(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{32, 5},
		{1000, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, integerSqrtSlots(tt.n), "integerSqrtSlots(%d)", tt.n)
	}
}
