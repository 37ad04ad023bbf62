package bellatrix

import (
	"bytes"

	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/pkg/errors"
)

// VerifyExecutionPayload checks the payload links to the chain's
// current execution state: its parent hash must match the previous
// payload's block hash (skipped at the merge transition, when the
// stored header is still the zero value) and its randao mix must
// match the current epoch's mix as it stands before this block's
// RANDAO reveal is mixed in (ProcessBlock runs the payload check
// before randao processing). Timestamp
// validation against wall-clock genesis time is out of scope for a
// pure state transition function with no genesis-time field; a
// beacon node driving this module would check that separately against
// its own clock before ever calling ProcessBlock.
func VerifyExecutionPayload(st *state.CachedBeaconState, payload *rawblocks.ExecutionPayloadHeader) error {
	prev := st.LatestExecutionPayloadHeader()
	if prev != nil && prev.BlockHash != [32]byte{} {
		if payload.ParentHash != prev.BlockHash {
			return errors.New("bellatrix: execution payload parent hash does not match latest payload header")
		}
	}
	randaoMixes := st.RandaoMixes()
	if len(randaoMixes) > 0 {
		epoch := btime.CurrentEpoch(st.Slot())
		currentMix := randaoMixes[uint64(epoch)%uint64(len(randaoMixes))]
		if !bytes.Equal(payload.PrevRandao[:], currentMix[:]) {
			return errors.New("bellatrix: execution payload prev_randao does not match current randao mix")
		}
	}
	return nil
}

// ProcessExecutionPayload records the block's execution payload
// header as the state's latest after VerifyExecutionPayload accepts
// it. Eth1Data voting still runs for Bellatrix blocks alongside it.
func ProcessExecutionPayload(st *state.CachedBeaconState, payload *rawblocks.ExecutionPayloadHeader) error {
	if err := VerifyExecutionPayload(st, payload); err != nil {
		return err
	}
	return st.SetLatestExecutionPayloadHeader(payload)
}
