package precompute

import (
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// baseRewardAltair is identical math to Phase0's BASE_REWARD; Altair
// only changes how the three components are weighted and how
// inactivity scores (rather than a flat leak penalty) drive the
// penalty side.
func baseRewardAltair(effectiveBalance, totalActiveBalance, baseRewardFactor uint64) uint64 {
	return baseRewardPhase0(effectiveBalance, totalActiveBalance, baseRewardFactor)
}

// ProcessRewardsAndPenaltiesAltair applies the Altair attestation
// reward/penalty deltas, weighted by TimelySource/Target/HeadWeight
// over WeightDenominator, plus the inactivity-score-scaled penalty
// that replaces Phase0's flat inactivity leak.
func ProcessRewardsAndPenaltiesAltair(st *state.CachedBeaconState, vals []*Validator, bal *Balance) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	if currentEpoch == 0 {
		return nil
	}
	cfg := st.Config()
	leak := finalityDelay(st, currentEpoch) > cfg.MinEpochsToInactivityPenalty
	scores := st.InactivityScores()

	deltas := make([]int64, len(vals))

	components := []struct {
		attesting func(*Validator) bool
		weight    uint64
		balance   uint64
	}{
		{func(v *Validator) bool { return v.IsPrevEpochSourceAttester }, cfg.TimelySourceWeight, bal.PrevEpochSourceAttesters},
		{func(v *Validator) bool { return v.IsPrevEpochTargetAttester }, cfg.TimelyTargetWeight, bal.PrevEpochTargetAttesters},
		{func(v *Validator) bool { return v.IsPrevEpochHeadAttester }, cfg.TimelyHeadWeight, bal.PrevEpochHeadAttesters},
	}

	for i, v := range vals {
		if !v.IsActivePrevEpoch {
			continue
		}
		base := baseRewardAltair(v.CurrentEpochEffectiveBalance, bal.ActivePrevEpoch, cfg.BaseRewardFactor)

		for _, c := range components {
			if v.IsSlashed {
				deltas[i] -= int64(base * c.weight / cfg.WeightDenominator)
				continue
			}
			if c.attesting(v) {
				if !leak {
					deltas[i] += int64(base * c.weight / cfg.WeightDenominator * c.balance / bal.ActivePrevEpoch)
				} else {
					deltas[i] += int64(base * c.weight / cfg.WeightDenominator)
				}
			} else {
				deltas[i] -= int64(base * c.weight / cfg.WeightDenominator)
			}
		}

		if leak && i < len(scores) {
			penaltyNumerator := v.CurrentEpochEffectiveBalance * scores[i]
			penaltyDenominator := cfg.InactivityScoreBias * cfg.InactivityPenaltyQuotientAltair
			deltas[i] -= int64(penaltyNumerator / penaltyDenominator)
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
