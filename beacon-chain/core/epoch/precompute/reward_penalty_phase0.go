package precompute

import (
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// integerSqrt computes floor(sqrt(n)) via Newton's method, the
// integer square root get_base_reward divides by.
func integerSqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// baseRewardPhase0 is BASE_REWARD for a validator with the given
// effective balance against the epoch's total active balance.
func baseRewardPhase0(effectiveBalance, totalActiveBalance, baseRewardFactor uint64) uint64 {
	return effectiveBalance * baseRewardFactor / integerSqrt(totalActiveBalance) / 4
}

// finalityDelay is the number of epochs since the last finalized
// checkpoint, the measure get_finality_delay uses to decide whether
// the chain is in an inactivity leak.
func finalityDelay(st *state.CachedBeaconState, currentEpoch types.Epoch) types.Epoch {
	return currentEpoch - 1 - st.FinalizedCheckpoint().Epoch
}

// ProcessRewardsAndPenaltiesPhase0 applies the Phase0 attestation
// reward/penalty deltas (source, target, head, inclusion-delay, and
// inactivity leak) to every eligible validator's balance, computed
// from the Validator/Balance precompute pair New builds.
func ProcessRewardsAndPenaltiesPhase0(st *state.CachedBeaconState, vals []*Validator, bal *Balance) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	if currentEpoch == 0 {
		return nil
	}
	cfg := st.Config()
	delay := finalityDelay(st, currentEpoch)
	leak := delay > cfg.MinEpochsToInactivityPenalty

	deltas := make([]int64, len(vals))

	for i, v := range vals {
		// Eligible validators are those active in the previous
		// epoch, or slashed ones whose withdrawable epoch is still
		// more than one epoch past the previous epoch.
		if !v.IsActivePrevEpoch {
			rv, err := st.ValidatorAtIndex(types.ValidatorIndex(i))
			if err != nil {
				return err
			}
			if !rv.Slashed || btime.PrevEpoch(st.Slot())+1 >= rv.WithdrawableEpoch {
				continue
			}
		}
		base := baseRewardPhase0(v.CurrentEpochEffectiveBalance, bal.ActivePrevEpoch, cfg.BaseRewardFactor)

		deltas[i] += attestationComponentDelta(v.IsPrevEpochSourceAttester, v.IsSlashed, leak, base, bal.PrevEpochSourceAttesters, bal.ActivePrevEpoch)
		deltas[i] += attestationComponentDelta(v.IsPrevEpochTargetAttester, v.IsSlashed, leak, base, bal.PrevEpochTargetAttesters, bal.ActivePrevEpoch)
		deltas[i] += attestationComponentDelta(v.IsPrevEpochHeadAttester, v.IsSlashed, leak, base, bal.PrevEpochHeadAttesters, bal.ActivePrevEpoch)

		if v.IsPrevEpochSourceAttester && !v.IsSlashed {
			proposerReward := base / cfg.ProposerRewardQuotient
			maxAttesterReward := base - proposerReward
			inclusionDelay := uint64(v.InclusionDelay)
			if inclusionDelay == 0 {
				inclusionDelay = 1
			}
			deltas[i] += int64(maxAttesterReward / inclusionDelay)
			deltas[int(v.InclusionProposerIndex)] += int64(proposerReward)
		}

		if leak {
			proposerReward := base / cfg.ProposerRewardQuotient
			deltas[i] -= int64(cfg.BaseRewardsPerEpoch*base) - int64(proposerReward)
			if !v.IsPrevEpochTargetAttester {
				deltas[i] -= int64(v.CurrentEpochEffectiveBalance * uint64(delay) / cfg.InactivityPenaltyQuotient)
			}
		}
	}

	for i, d := range deltas {
		idx := types.ValidatorIndex(i)
		if d > 0 {
			if err := st.IncreaseBalance(idx, uint64(d)); err != nil {
				return err
			}
		} else if d < 0 {
			if err := st.DecreaseBalance(idx, uint64(-d)); err != nil {
				return err
			}
		}
	}
	return nil
}

// attestationComponentDelta computes one of the three (source,
// target, head) reward/penalty components of get_attestation_deltas.
func attestationComponentDelta(attested, slashed, leak bool, base, attestingBalance, totalBalance uint64) int64 {
	if attested && !slashed {
		if leak {
			return int64(base)
		}
		return int64(base * attestingBalance / totalBalance)
	}
	return -int64(base)
}
