package precompute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerSqrt(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{4, 2},
		{16, 4},
		{17, 4},
		{1_000_000, 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, integerSqrt(tt.n), "integerSqrt(%d)", tt.n)
	}
}
