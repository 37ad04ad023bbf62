package blocks

import (
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
)

// ProcessEth1Data appends the block's eth1 vote and, if it now has
// majority support (more than half of the voting period's slots), adopts it
// as the canonical Eth1Data.
func ProcessEth1Data(st *state.CachedBeaconState, body *rawblocks.BeaconBlockBody) error {
	if err := st.AppendEth1DataVote(body.Eth1Data); err != nil {
		return err
	}

	votes := st.Eth1DataVotes()
	count := 0
	for _, v := range votes {
		if v == body.Eth1Data {
			count++
		}
	}

	cfg := st.Config()
	votingPeriodSlots := uint64(cfg.SlotsPerEpoch) * uint64(epochsPerVotingPeriod)
	if uint64(count)*2 > votingPeriodSlots {
		return st.SetEth1Data(body.Eth1Data)
	}
	return nil
}

// epochsPerVotingPeriod is EPOCHS_PER_ETH1_VOTING_PERIOD, a mainnet
// constant small enough it isn't worth a config field of its own.
const epochsPerVotingPeriod = 64
