package blocks

import (
	"testing"

	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSlashableAttestationData_DoubleVote(t *testing.T) {
	d1 := rawblocks.AttestationData{
		Target: rawblocks.Checkpoint{Epoch: 5},
		Source: rawblocks.Checkpoint{Epoch: 4},
	}
	d2 := d1
	d2.BeaconBlockRoot = [32]byte{1}
	assert.True(t, isSlashableAttestationData(d1, d2))
}

func TestIsSlashableAttestationData_SurroundVote(t *testing.T) {
	outer := rawblocks.AttestationData{
		Source: rawblocks.Checkpoint{Epoch: 1},
		Target: rawblocks.Checkpoint{Epoch: 10},
	}
	inner := rawblocks.AttestationData{
		Source: rawblocks.Checkpoint{Epoch: 2},
		Target: rawblocks.Checkpoint{Epoch: 9},
	}
	assert.True(t, isSlashableAttestationData(outer, inner))
	assert.True(t, isSlashableAttestationData(inner, outer))
}

func TestIsSlashableAttestationData_NotSlashable(t *testing.T) {
	d1 := rawblocks.AttestationData{
		Source: rawblocks.Checkpoint{Epoch: 1},
		Target: rawblocks.Checkpoint{Epoch: 2},
	}
	d2 := rawblocks.AttestationData{
		Source: rawblocks.Checkpoint{Epoch: 2},
		Target: rawblocks.Checkpoint{Epoch: 3},
	}
	assert.False(t, isSlashableAttestationData(d1, d2))
}

func TestVerifySortedUnique(t *testing.T) {
	require.NoError(t, verifySortedUnique([]types.ValidatorIndex{1, 2, 3}))
	assert.Error(t, verifySortedUnique(nil))
	assert.Error(t, verifySortedUnique([]types.ValidatorIndex{2, 1}))
	assert.Error(t, verifySortedUnique([]types.ValidatorIndex{1, 1, 2}))
}

func TestSlashableIndices(t *testing.T) {
	as := &rawblocks.AttesterSlashing{
		Attestation1: rawblocks.IndexedAttestation{AttestingIndices: []types.ValidatorIndex{1, 2, 3}},
		Attestation2: rawblocks.IndexedAttestation{AttestingIndices: []types.ValidatorIndex{2, 3, 4}},
	}
	got := SlashableIndices(as)
	assert.Equal(t, []types.ValidatorIndex{2, 3}, got)
}
