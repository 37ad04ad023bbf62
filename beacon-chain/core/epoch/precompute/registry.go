package precompute

import (
	"sort"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// ProcessRegistryUpdates applies the three registry-update passes in
// spec order: ejection of validators below the ejection balance,
// queuing of eligible validators into the activation-eligibility
// queue, and activation of queued validators up to the epoch's churn
// limit, tie-broken by (activation_eligibility_epoch, index).
func ProcessRegistryUpdates(st *state.CachedBeaconState) error {
	cfg := st.Config()
	currentEpoch := btime.CurrentEpoch(st.Slot())
	n := len(st.Validators())

	for i := 0; i < n; i++ {
		v, err := st.ValidatorAtIndex(types.ValidatorIndex(i))
		if err != nil {
			return err
		}
		if helpers.IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, currentEpoch) && v.EffectiveBalance <= cfg.EjectionBalance {
			if err := ejectValidator(st, types.ValidatorIndex(i), currentEpoch); err != nil {
				return err
			}
		}
	}

	var activationEligible []types.ValidatorIndex
	for i := 0; i < n; i++ {
		v, err := st.ValidatorAtIndex(types.ValidatorIndex(i))
		if err != nil {
			return err
		}
		if helpers.IsEligibleForActivationQueue(v.EffectiveBalance, v.ActivationEligibilityEpoch, cfg.FarFutureEpoch, cfg.MaxEffectiveBalance) {
			idx := types.ValidatorIndex(i)
			if err := st.UpdateValidatorAtIndex(idx, func(v *rawblocks.Validator) {
				v.ActivationEligibilityEpoch = currentEpoch + 1
			}); err != nil {
				return err
			}
		}
		v, err = st.ValidatorAtIndex(types.ValidatorIndex(i))
		if err != nil {
			return err
		}
		if helpers.IsEligibleForActivation(v.ActivationEligibilityEpoch, v.ActivationEpoch, st.FinalizedCheckpoint().Epoch, cfg.FarFutureEpoch) {
			activationEligible = append(activationEligible, types.ValidatorIndex(i))
		}
	}

	sort.Slice(activationEligible, func(a, b int) bool {
		va, _ := st.ValidatorAtIndex(activationEligible[a])
		vb, _ := st.ValidatorAtIndex(activationEligible[b])
		if va.ActivationEligibilityEpoch != vb.ActivationEligibilityEpoch {
			return va.ActivationEligibilityEpoch < vb.ActivationEligibilityEpoch
		}
		return activationEligible[a] < activationEligible[b]
	})

	churnLimit := helpers.ChurnLimit(st, currentEpoch)
	activationEpoch := btime.NextEpoch(st.Slot()) + helpers.MaxSeedLookahead()

	for i, idx := range activationEligible {
		if uint64(i) >= churnLimit {
			break
		}
		if err := st.UpdateValidatorAtIndex(idx, func(v *rawblocks.Validator) {
			v.ActivationEpoch = activationEpoch
		}); err != nil {
			return err
		}
	}
	return nil
}

// ejectValidator queues idx for exit via the same churn-limited
// exit-queue logic voluntary exits and slashings use.
func ejectValidator(st *state.CachedBeaconState, idx types.ValidatorIndex, currentEpoch types.Epoch) error {
	v, err := st.ValidatorAtIndex(idx)
	if err != nil {
		return err
	}
	if v.ExitEpoch != st.Config().FarFutureEpoch {
		return nil
	}

	var queued []types.Epoch
	for i := range st.Validators() {
		other, err := st.ValidatorAtIndex(types.ValidatorIndex(i))
		if err != nil {
			return err
		}
		if other.ExitEpoch != st.Config().FarFutureEpoch {
			queued = append(queued, other.ExitEpoch)
		}
	}

	exitEpoch := helpers.ChurnLimitExitEpoch(currentEpoch, queued, helpers.ChurnLimit(st, currentEpoch))
	withdrawableEpoch := exitEpoch + st.Config().MinValidatorWithdrawabilityDelay
	return st.UpdateValidatorAtIndex(idx, func(v *rawblocks.Validator) {
		v.ExitEpoch = exitEpoch
		v.WithdrawableEpoch = withdrawableEpoch
	})
}
