package helpers

import (
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	"github.com/eth-clients/beaconstf/config/params"
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// AttestingIndices returns, in committee order (not sorted), the
// validator indices whose aggregation bit is set in att, resolved against the committee the
// attestation's slot/committee-index names.
func AttestingIndices(st *state.CachedBeaconState, att *blocks.Attestation) ([]types.ValidatorIndex, error) {
	committee, err := BeaconCommittee(st, att.Data.Slot, att.Data.CommitteeIndex)
	if err != nil {
		return nil, err
	}
	var out []types.ValidatorIndex
	for i, idx := range committee {
		if bitSet(att.AggregationBits, i) {
			out = append(out, idx)
		}
	}
	return out, nil
}

func bitSet(bits []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bits) {
		return false
	}
	return bits[byteIdx]&(1<<(uint(i)%8)) != 0
}

// EffectiveBalanceForHysteresis recomputes the effective balance for
// a validator given its raw balance, applying the
// hysteresis-quotient dead zone so small balance oscillations don't
// thrash the effective balance every epoch.
func EffectiveBalanceForHysteresis(cfg *params.BeaconChainConfig, balance, currentEffective uint64) uint64 {
	hysteresisIncrement := cfg.EffectiveBalanceIncrement / cfg.HysteresisQuotient
	downward := hysteresisIncrement * cfg.HysteresisDownwardMultiplier
	upward := hysteresisIncrement * cfg.HysteresisUpwardMultiplier

	if balance+downward < currentEffective || currentEffective+upward < balance {
		effective := balance - (balance % cfg.EffectiveBalanceIncrement)
		if effective > cfg.MaxEffectiveBalance {
			effective = cfg.MaxEffectiveBalance
		}
		return effective
	}
	return currentEffective
}
