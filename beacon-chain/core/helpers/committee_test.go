package helpers_test

import (
	"testing"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeShuffledIndex_OutOfBounds(t *testing.T) {
	_, err := helpers.ComputeShuffledIndex(5, 5, [32]byte{})
	assert.Error(t, err)

	_, err = helpers.ComputeShuffledIndex(0, 0, [32]byte{})
	assert.Error(t, err)
}

func TestComputeShuffledIndex_Permutation(t *testing.T) {
	const listSize = 32
	seed := [32]byte{0x42}

	seen := make(map[uint64]bool, listSize)
	for i := uint64(0); i < listSize; i++ {
		shuffled, err := helpers.ComputeShuffledIndex(i, listSize, seed)
		require.NoError(t, err)
		assert.Less(t, shuffled, uint64(listSize))
		assert.False(t, seen[shuffled], "index %d repeated in shuffled output", shuffled)
		seen[shuffled] = true
	}
	assert.Len(t, seen, listSize)
}

func TestComputeShuffledIndex_Deterministic(t *testing.T) {
	seed := [32]byte{0x01, 0x02, 0x03}
	a, err := helpers.ComputeShuffledIndex(7, 100, seed)
	require.NoError(t, err)
	b, err := helpers.ComputeShuffledIndex(7, 100, seed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeShuffledIndex_DifferentSeedsDiverge(t *testing.T) {
	a, err := helpers.ComputeShuffledIndex(3, 64, [32]byte{0x01})
	require.NoError(t, err)
	b, err := helpers.ComputeShuffledIndex(3, 64, [32]byte{0x02})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComputeCommittee_PartitionsWithoutOverlap(t *testing.T) {
	indices := make([]types.ValidatorIndex, 40)
	for i := range indices {
		indices[i] = types.ValidatorIndex(i)
	}
	seed := [32]byte{0x07}

	seen := make(map[types.ValidatorIndex]bool, 40)
	const count = 4
	for c := uint64(0); c < count; c++ {
		committee, err := helpers.ComputeCommittee(indices, seed, c, count)
		require.NoError(t, err)
		for _, idx := range committee {
			assert.False(t, seen[idx], "validator %d assigned to more than one committee", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, len(indices))
}

func TestComputeProposerIndex_EmptyCandidates(t *testing.T) {
	_, err := helpers.ComputeProposerIndex(nil, nil, [32]byte{})
	assert.Error(t, err)
}
