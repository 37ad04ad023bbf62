package helpers_test

import (
	"testing"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/stretchr/testify/assert"
)

const farFutureEpoch = types.Epoch(1<<64 - 1)

func TestIsActiveValidator(t *testing.T) {
	assert.True(t, helpers.IsActiveValidator(0, 10, 5))
	assert.False(t, helpers.IsActiveValidator(5, 10, 4))
	assert.False(t, helpers.IsActiveValidator(0, 10, 10))
}

func TestIsEligibleForActivationQueue(t *testing.T) {
	assert.True(t, helpers.IsEligibleForActivationQueue(32000000000, farFutureEpoch, farFutureEpoch, 32000000000))
	assert.False(t, helpers.IsEligibleForActivationQueue(31000000000, farFutureEpoch, farFutureEpoch, 32000000000))
	assert.False(t, helpers.IsEligibleForActivationQueue(32000000000, 3, farFutureEpoch, 32000000000))
}

func TestIsEligibleForActivation(t *testing.T) {
	assert.True(t, helpers.IsEligibleForActivation(3, farFutureEpoch, 5, farFutureEpoch))
	assert.False(t, helpers.IsEligibleForActivation(6, farFutureEpoch, 5, farFutureEpoch))
	assert.False(t, helpers.IsEligibleForActivation(3, 10, 5, farFutureEpoch))
}

func TestIsSlashableValidator(t *testing.T) {
	assert.True(t, helpers.IsSlashableValidator(false, 10, 5))
	assert.False(t, helpers.IsSlashableValidator(true, 10, 5))
	assert.False(t, helpers.IsSlashableValidator(false, 5, 5))
}

func TestChurnLimitExitEpoch(t *testing.T) {
	const current = types.Epoch(10)
	// No queued exits: falls back to current+1+MAX_SEED_LOOKAHEAD.
	assert.Equal(t, types.Epoch(15), helpers.ChurnLimitExitEpoch(current, nil, 4))

	// Queued exits below the floor epoch don't move the assignment.
	assert.Equal(t, types.Epoch(15), helpers.ChurnLimitExitEpoch(current, []types.Epoch{12, 13}, 4))

	// Queue already at the churn limit for the target epoch pushes out one.
	queued := []types.Epoch{15, 15, 15, 15}
	assert.Equal(t, types.Epoch(16), helpers.ChurnLimitExitEpoch(current, queued, 4))
}
