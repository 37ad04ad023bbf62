// Package helpers implements the small pure functions the consensus
// spec calls "helper functions": active-validator filtering,
// committee shuffling, proposer selection, and balance aggregation.
// None of these mutate state; they only read a CachedBeaconState.
package helpers

import (
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// IsActiveValidator reports whether a validator with the given
// activation/exit epochs is active at epoch.
func IsActiveValidator(activationEpoch, exitEpoch, epoch types.Epoch) bool {
	return activationEpoch <= epoch && epoch < exitEpoch
}

// IsEligibleForActivationQueue reports whether a validator not yet
// queued for activation is eligible to be queued, given its current
// effective balance.
func IsEligibleForActivationQueue(effectiveBalance uint64, activationEligibilityEpoch, farFutureEpoch types.Epoch, maxEffectiveBalance uint64) bool {
	return activationEligibilityEpoch == farFutureEpoch && effectiveBalance == maxEffectiveBalance
}

// IsEligibleForActivation reports whether a queued validator is
// eligible to actually activate at epoch, given the state's
// finalized checkpoint epoch.
func IsEligibleForActivation(activationEligibilityEpoch, activationEpoch, finalizedEpoch, farFutureEpoch types.Epoch) bool {
	return activationEligibilityEpoch <= finalizedEpoch && activationEpoch == farFutureEpoch
}

// IsSlashableValidator reports whether a validator can still be
// slashed at epoch.
func IsSlashableValidator(slashed bool, withdrawableEpoch, epoch types.Epoch) bool {
	return !slashed && epoch < withdrawableEpoch
}

// ActiveValidatorIndices returns the indices of validators active at
// epoch, in registry order.
func ActiveValidatorIndices(st *state.CachedBeaconState, epoch types.Epoch) ([]types.ValidatorIndex, error) {
	var out []types.ValidatorIndex
	for i, v := range st.Validators() {
		if IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, epoch) {
			out = append(out, types.ValidatorIndex(i))
		}
	}
	return out, nil
}

// ActiveValidatorCount is ActiveValidatorIndices without the
// allocation, used by callers that only need the count (committee
// sizing, churn limit).
func ActiveValidatorCount(st *state.CachedBeaconState, epoch types.Epoch) uint64 {
	var n uint64
	for _, v := range st.Validators() {
		if IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, epoch) {
			n++
		}
	}
	return n
}

// ChurnLimit returns the number of validators that may enter or
// leave the active set in one epoch.
func ChurnLimit(st *state.CachedBeaconState, epoch types.Epoch) uint64 {
	cfg := st.Config()
	active := ActiveValidatorCount(st, epoch)
	limit := active / cfg.ChurnLimitQuotient
	if limit < cfg.MinPerEpochChurnLimit {
		return cfg.MinPerEpochChurnLimit
	}
	return limit
}

// TotalActiveBalance sums effective balances of validators active at
// epoch, floored at EffectiveBalanceIncrement so reward math never
// divides by zero.
func TotalActiveBalance(st *state.CachedBeaconState, epoch types.Epoch) uint64 {
	cfg := st.Config()
	var total uint64
	for _, v := range st.Validators() {
		if IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, epoch) {
			total += v.EffectiveBalance
		}
	}
	if total < cfg.EffectiveBalanceIncrement {
		return cfg.EffectiveBalanceIncrement
	}
	return total
}

// maxSeedLookahead is MAX_SEED_LOOKAHEAD, the delay between queuing
// an exit and the earliest epoch it can land on.
const maxSeedLookahead = 4

// MaxSeedLookahead exposes maxSeedLookahead to callers outside this
// package, such as the registry-update activation-epoch computation.
func MaxSeedLookahead() types.Epoch {
	return maxSeedLookahead
}

// ChurnLimitExitEpoch returns the exit epoch a newly-exiting
// validator should be assigned, given the exit epochs already queued
// by other validators and the churn limit for currentEpoch. A
// candidate epoch already at the churn limit pushes the assignment
// one epoch later, matching initiate_validator_exit.
func ChurnLimitExitEpoch(currentEpoch types.Epoch, queuedExitEpochs []types.Epoch, churnLimit uint64) types.Epoch {
	exitQueueEpoch := currentEpoch + 1 + maxSeedLookahead
	for _, e := range queuedExitEpochs {
		if e > exitQueueEpoch {
			exitQueueEpoch = e
		}
	}

	var churnAtEpoch uint64
	for _, e := range queuedExitEpochs {
		if e == exitQueueEpoch {
			churnAtEpoch++
		}
	}
	if churnAtEpoch >= churnLimit {
		exitQueueEpoch++
	}
	return exitQueueEpoch
}
