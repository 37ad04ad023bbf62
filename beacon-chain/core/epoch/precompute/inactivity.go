package precompute

import (
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
)

// ProcessInactivityUpdates rolls each validator's inactivity score
// forward: active non-leaking validators recover, everyone else's
// score bumps up unless they were a timely-target attester. Altair+
// only; Phase0 tracks inactivity via PrevEpochTargetAttesters in the
// reward math instead.
func ProcessInactivityUpdates(st *state.CachedBeaconState, vals []*Validator, bal *Balance) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	if currentEpoch == 0 {
		return nil
	}
	cfg := st.Config()
	leak := finalityDelay(st, currentEpoch) > cfg.MinEpochsToInactivityPenalty

	scores := append([]uint64(nil), st.InactivityScores()...)
	for i, v := range vals {
		if !v.IsActivePrevEpoch {
			continue
		}
		if i >= len(scores) {
			continue
		}
		if v.IsPrevEpochTargetAttester {
			if scores[i] > 0 {
				scores[i]--
			}
		} else {
			scores[i] += cfg.InactivityScoreBias
		}
		if !leak {
			if scores[i] > cfg.InactivityScoreRecoveryRate {
				scores[i] -= cfg.InactivityScoreRecoveryRate
			} else {
				scores[i] = 0
			}
		}
	}
	return st.SetInactivityScores(scores)
}
