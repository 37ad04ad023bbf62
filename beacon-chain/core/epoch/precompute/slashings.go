package precompute

import (
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/runtime/version"
)

// ProcessSlashings applies the epoch-level collective slashing
// penalty: every slashed validator whose WithdrawableEpoch is exactly
// EPOCHS_PER_SLASHINGS_VECTOR/2 epochs after the current epoch pays a share of the total slashed balance in the
// slashings ring buffer, proportional to its effective balance. This
// is distinct from the immediate per-validator penalty SlashValidator
// already applied at block-processing time; it accounts for the
// portion of the penalty that depends on how many validators were
// slashed in the same EPOCHS_PER_SLASHINGS_VECTOR window.
func ProcessSlashings(st *state.CachedBeaconState, vals []*Validator, bal *Balance) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	cfg := st.Config()

	var totalSlashings uint64
	for _, s := range st.Slashings() {
		totalSlashings += s
	}

	multiplier := cfg.ProportionalSlashingMultiplier
	if st.Version() != version.Phase0 {
		multiplier = cfg.ProportionalSlashingMultiplierAltair
	}

	adjustedTotal := minUint64(totalSlashings*multiplier, bal.ActiveCurrentEpoch)

	for i, v := range vals {
		if !v.IsSlashed {
			continue
		}
		withdrawableCheck := currentEpoch + cfg.EpochsPerSlashingsVector/2
		validator, err := st.ValidatorAtIndex(types.ValidatorIndex(i))
		if err != nil {
			return err
		}
		if validator.WithdrawableEpoch != withdrawableCheck {
			continue
		}
		increment := cfg.EffectiveBalanceIncrement
		penaltyNumerator := v.CurrentEpochEffectiveBalance / increment * adjustedTotal
		penalty := penaltyNumerator / bal.ActiveCurrentEpoch * increment
		if err := st.DecreaseBalance(types.ValidatorIndex(i), penalty); err != nil {
			return err
		}
	}
	return nil
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
