package precompute

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// ProcessEffectiveBalanceUpdates recomputes every validator's
// effective balance from its real balance, applying hysteresis so a
// balance oscillating near an increment boundary doesn't flap the
// effective balance every epoch.
func ProcessEffectiveBalanceUpdates(st *state.CachedBeaconState) error {
	cfg := st.Config()
	balances := st.Balances()
	for i := range st.Validators() {
		idx := types.ValidatorIndex(i)
		if int(idx) >= len(balances) {
			continue
		}
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return err
		}
		newEffective := helpers.EffectiveBalanceForHysteresis(cfg, balances[idx], v.EffectiveBalance)
		if newEffective == v.EffectiveBalance {
			continue
		}
		if err := st.UpdateValidatorAtIndex(idx, func(mut *rawblocks.Validator) {
			mut.EffectiveBalance = newEffective
		}); err != nil {
			return err
		}
	}
	return nil
}
