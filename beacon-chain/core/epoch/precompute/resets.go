package precompute

import (
	"crypto/sha256"

	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
)

// epochsPerVotingPeriod is EPOCHS_PER_ETH1_VOTING_PERIOD, mirrored
// here from core/blocks since it's a mainnet constant too small to
// warrant a config field.
const epochsPerVotingPeriod = 64

// ProcessEth1DataReset clears the Eth1 deposit-vote tally at the
// start of each new voting period.
func ProcessEth1DataReset(st *state.CachedBeaconState) error {
	nextEpoch := btime.NextEpoch(st.Slot())
	if uint64(nextEpoch)%epochsPerVotingPeriod == 0 {
		return st.ResetEth1DataVotes()
	}
	return nil
}

// ProcessSlashingsReset zeroes the slashings-ring-buffer slot this
// epoch is about to roll into, EPOCHS_PER_SLASHINGS_VECTOR epochs
// from now.
func ProcessSlashingsReset(st *state.CachedBeaconState) error {
	nextEpoch := btime.NextEpoch(st.Slot())
	slot := uint64(nextEpoch) % uint64(st.Config().EpochsPerSlashingsVector)
	return st.SetSlashingAtIndex(slot, 0)
}

// ProcessRandaoMixesReset copies the current mix forward into next
// epoch's ring-buffer slot, the default a block's RANDAO reveal
// overwrites as the chain advances into that epoch.
func ProcessRandaoMixesReset(st *state.CachedBeaconState) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	nextEpoch := btime.NextEpoch(st.Slot())
	mixes := st.RandaoMixes()
	if len(mixes) == 0 {
		return nil
	}
	currentMix := mixes[uint64(currentEpoch)%uint64(len(mixes))]
	return st.UpdateRandaoMixAtIndex(uint64(nextEpoch)%uint64(len(mixes)), currentMix)
}

// ProcessHistoricalRootsUpdate appends a new historical-roots entry
// once every SLOTS_PER_HISTORICAL_ROOT / SLOTS_PER_EPOCH epochs, the
// root summarizing the block/state root buffers that just filled up.
func ProcessHistoricalRootsUpdate(st *state.CachedBeaconState) error {
	cfg := st.Config()
	nextEpoch := btime.NextEpoch(st.Slot())
	epochsPerHistoricalRoot := uint64(cfg.SlotsPerHistoricalRoot) / uint64(cfg.SlotsPerEpoch)
	if uint64(nextEpoch)%epochsPerHistoricalRoot != 0 {
		return nil
	}
	root := historicalBatchRoot(st)
	return st.AppendHistoricalRoot(root)
}

// historicalBatchRoot hashes the block-root and state-root ring
// buffers together, the same simplified internal-only Merkleization
// core/blocks/roots.go uses for header and body roots; this is not
// the real HistoricalBatch SSZ root, which a full client would need
// for cross-client historical proofs but which this module has no
// caller for.
func historicalBatchRoot(st *state.CachedBeaconState) [32]byte {
	hh := sha256.New()
	for _, r := range st.BlockRoots() {
		hh.Write(r[:])
	}
	for _, r := range st.StateRoots() {
		hh.Write(r[:])
	}
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out
}

// ProcessParticipationRecordUpdates rolls Phase0's pending-attestation
// lists forward: the outgoing previous-epoch list is dropped, the
// current-epoch list becomes the new previous-epoch list, and the
// current-epoch list starts empty.
func ProcessParticipationRecordUpdates(st *state.CachedBeaconState) error {
	if err := st.SetPreviousEpochAttestations(st.CurrentEpochAttestations()); err != nil {
		return err
	}
	return st.SetCurrentEpochAttestations(nil)
}

// ProcessParticipationFlagUpdates is ProcessParticipationRecordUpdates's
// Altair+ equivalent: previous-epoch flags become the just-finished
// current-epoch flags, and a fresh all-zero byte slice starts the new
// current epoch.
func ProcessParticipationFlagUpdates(st *state.CachedBeaconState) error {
	if err := st.SetPreviousEpochParticipation(st.CurrentEpochParticipation()); err != nil {
		return err
	}
	return st.SetCurrentEpochParticipation(make([]byte, st.NumValidators()))
}
