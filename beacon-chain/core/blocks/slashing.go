package blocks

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/runtime/version"
)

// InitiateValidatorExit queues a validator for exit, assigning the
// earliest exit epoch that respects the churn limit among validators
// already queued to exit in the same or a later epoch.
func InitiateValidatorExit(st *state.CachedBeaconState, index types.ValidatorIndex) error {
	v, err := st.ValidatorAtIndex(index)
	if err != nil {
		return err
	}
	cfg := st.Config()
	if v.ExitEpoch != cfg.FarFutureEpoch {
		return nil
	}

	currentEpoch := btime.CurrentEpoch(st.Slot())
	exitEpochs := []types.Epoch{}
	for _, other := range st.Validators() {
		if other.ExitEpoch != cfg.FarFutureEpoch {
			exitEpochs = append(exitEpochs, other.ExitEpoch)
		}
	}
	exitQueueEpoch := helpers.ChurnLimitExitEpoch(currentEpoch, exitEpochs, helpers.ChurnLimit(st, currentEpoch))

	return st.UpdateValidatorAtIndex(index, func(mut *rawblocks.Validator) {
		mut.ExitEpoch = exitQueueEpoch
		mut.WithdrawableEpoch = exitQueueEpoch + cfg.MinValidatorWithdrawabilityDelay
	})
}

// SlashValidator applies the slash flag, effective-balance-scaled
// penalty, whistleblower reward, and exit initiation for a slashed
// validator, and adds its effective balance to the current epoch's
// slot of the slashings ring. The block-level callers pass the current
// proposer as whistleblowerIndex; when the two are equal the proposer
// receives the whole whistleblower reward.
func SlashValidator(st *state.CachedBeaconState, index types.ValidatorIndex, whistleblowerIndex types.ValidatorIndex) error {
	epoch := btime.CurrentEpoch(st.Slot())
	if err := InitiateValidatorExit(st, index); err != nil {
		return err
	}

	v, err := st.ValidatorAtIndex(index)
	if err != nil {
		return err
	}
	cfg := st.Config()

	withdrawableEpoch := epoch + cfg.EpochsPerSlashingsVector
	if v.WithdrawableEpoch > withdrawableEpoch {
		withdrawableEpoch = v.WithdrawableEpoch
	}

	minQuotient := cfg.MinSlashingPenaltyQuotient
	if st.Version() >= version.Altair {
		minQuotient = cfg.MinSlashingPenaltyQuotientAltair
	}

	if err := st.UpdateValidatorAtIndex(index, func(mut *rawblocks.Validator) {
		mut.Slashed = true
		mut.WithdrawableEpoch = withdrawableEpoch
	}); err != nil {
		return err
	}

	slashingsIdx := uint64(epoch) % uint64(cfg.EpochsPerSlashingsVector)
	var priorSlashed uint64
	if slashings := st.Slashings(); slashingsIdx < uint64(len(slashings)) {
		priorSlashed = slashings[slashingsIdx]
	}
	if err := st.SetSlashingAtIndex(slashingsIdx, priorSlashed+v.EffectiveBalance); err != nil {
		return err
	}

	slashingPenalty := v.EffectiveBalance / minQuotient
	if err := st.DecreaseBalance(index, slashingPenalty); err != nil {
		return err
	}

	proposerIndex, err := expectedProposerIndex(st)
	if err != nil {
		return err
	}
	whistleblowerReward := v.EffectiveBalance / cfg.WhistleBlowerRewardQuotient
	proposerReward := whistleblowerReward / cfg.ProposerRewardQuotient
	if err := st.IncreaseBalance(proposerIndex, proposerReward); err != nil {
		return err
	}
	if whistleblowerIndex != proposerIndex {
		return st.IncreaseBalance(whistleblowerIndex, whistleblowerReward-proposerReward)
	}
	return st.IncreaseBalance(proposerIndex, whistleblowerReward-proposerReward)
}
