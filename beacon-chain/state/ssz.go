package state

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/eth-clients/beaconstf/config/params"
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/runtime/version"
)

// HashTreeRoot computes the state's SSZ Merkle root. It requires
// Persistent mode: the whole point of the storage-mode contract is
// that hashing a record mid-mutation would observe a torn write, so
// this is the one place the mode guard doubles as a correctness
// check rather than just an API nicety.
func (c *CachedBeaconState) HashTreeRoot() ([32]byte, error) {
	if err := c.requirePersistent("HashTreeRoot"); err != nil {
		return [32]byte{}, err
	}
	hh := ssz.NewHasher()
	if err := c.hashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	root, err := hh.HashRoot()
	if err != nil {
		return [32]byte{}, err
	}
	return root, nil
}

// hashTreeRootWith merkleizes every top-level field in declaration
// order, matching the generated *_encoding.go HashTreeRootWith
// methods the teacher's stateutil package produces. Variable-length
// lists use MerkleizeWithMixin to fold in the list length.
func (c *CachedBeaconState) hashTreeRootWith(hh *ssz.Hasher) error {
	s := c.state
	cfg := c.config

	hh.PutUint64(s.GenesisTime)
	hh.PutBytes(s.GenesisValidatorsRoot[:])
	hh.PutUint64(uint64(s.Slot))

	{
		hh.PutBytes(s.Fork.PreviousVersion[:])
		hh.PutBytes(s.Fork.CurrentVersion[:])
		hh.PutUint64(uint64(s.Fork.Epoch))
	}

	{
		hh.PutUint64(uint64(s.LatestBlockHeader.Slot))
		hh.PutUint64(uint64(s.LatestBlockHeader.ProposerIndex))
		hh.PutBytes(s.LatestBlockHeader.ParentRoot[:])
		hh.PutBytes(s.LatestBlockHeader.StateRoot[:])
		hh.PutBytes(s.LatestBlockHeader.BodyRoot[:])
	}

	putRootVector(hh, s.BlockRoots)
	putRootVector(hh, s.StateRoots)

	{
		idx := hh.Index()
		for _, r := range s.HistoricalRoots {
			hh.PutBytes(r[:])
		}
		hh.MerkleizeWithMixin(idx, uint64(len(s.HistoricalRoots)), cfg.HistoricalRootsLimit)
	}

	{
		hh.PutBytes(s.Eth1Data.DepositRoot[:])
		hh.PutUint64(s.Eth1Data.DepositCount)
		hh.PutBytes(s.Eth1Data.BlockHash[:])
	}

	{
		idx := hh.Index()
		for _, v := range s.Eth1DataVotes {
			hh.PutBytes(v.DepositRoot[:])
			hh.PutUint64(v.DepositCount)
			hh.PutBytes(v.BlockHash[:])
		}
		hh.MerkleizeWithMixin(idx, uint64(len(s.Eth1DataVotes)), uint64(cfg.SlotsPerEpoch)*64)
	}

	hh.PutUint64(s.Eth1DepositIndex)

	{
		idx := hh.Index()
		for _, v := range s.Validators {
			vi := hh.Index()
			hh.PutBytes(v.PublicKey[:])
			hh.PutBytes(v.WithdrawalCredentials[:])
			hh.PutUint64(v.EffectiveBalance)
			hh.PutBool(v.Slashed)
			hh.PutUint64(uint64(v.ActivationEligibilityEpoch))
			hh.PutUint64(uint64(v.ActivationEpoch))
			hh.PutUint64(uint64(v.ExitEpoch))
			hh.PutUint64(uint64(v.WithdrawableEpoch))
			hh.Merkleize(vi)
		}
		hh.MerkleizeWithMixin(idx, uint64(len(s.Validators)), cfg.ValidatorRegistryLimit)
	}

	{
		idx := hh.Index()
		for _, b := range s.Balances {
			hh.AppendUint64(b)
		}
		hh.FillUpTo32()
		numItems := (cfg.ValidatorRegistryLimit*8 + 31) / 32
		hh.MerkleizeWithMixin(idx, uint64((len(s.Balances)*8+31)/32), numItems)
	}

	putRootVector(hh, s.RandaoMixes)

	{
		idx := hh.Index()
		for _, v := range s.Slashings {
			hh.AppendUint64(v)
		}
		hh.FillUpTo32()
		hh.Merkleize(idx)
	}

	if s.Version == version.Phase0 {
		hashPendingAttestations(hh, s.PreviousEpochAttestations, cfg)
		hashPendingAttestations(hh, s.CurrentEpochAttestations, cfg)
	} else {
		hashParticipation(hh, s.PreviousEpochParticipation, cfg.ValidatorRegistryLimit)
		hashParticipation(hh, s.CurrentEpochParticipation, cfg.ValidatorRegistryLimit)
	}

	hh.PutBytes(s.JustificationBits[:])

	{
		hh.PutUint64(uint64(s.PreviousJustifiedCheckpoint.Epoch))
		hh.PutBytes(s.PreviousJustifiedCheckpoint.Root[:])
	}
	{
		hh.PutUint64(uint64(s.CurrentJustifiedCheckpoint.Epoch))
		hh.PutBytes(s.CurrentJustifiedCheckpoint.Root[:])
	}
	{
		hh.PutUint64(uint64(s.FinalizedCheckpoint.Epoch))
		hh.PutBytes(s.FinalizedCheckpoint.Root[:])
	}

	if s.Version >= version.Altair {
		idx := hh.Index()
		for _, v := range s.InactivityScores {
			hh.AppendUint64(v)
		}
		hh.FillUpTo32()
		hh.Merkleize(idx)

		hashSyncCommittee(hh, s.CurrentSyncCommittee, cfg.SyncCommitteeSize)
		hashSyncCommittee(hh, s.NextSyncCommittee, cfg.SyncCommitteeSize)
	}

	if s.Version >= version.Bellatrix && s.LatestExecutionPayloadHeader != nil {
		h := s.LatestExecutionPayloadHeader
		hh.PutBytes(h.ParentHash[:])
		hh.PutBytes(h.FeeRecipient[:])
		hh.PutBytes(h.StateRoot[:])
		hh.PutBytes(h.ReceiptsRoot[:])
		hh.PutBytes(h.LogsBloom[:])
		hh.PutBytes(h.PrevRandao[:])
		hh.PutUint64(h.BlockNumber)
		hh.PutUint64(h.GasLimit)
		hh.PutUint64(h.GasUsed)
		hh.PutUint64(h.Timestamp)
		{
			elemIndx := hh.Index()
			hh.Append(h.ExtraData)
			hh.MerkleizeWithMixin(elemIndx, uint64(len(h.ExtraData)), (32+31)/32)
		}
		hh.PutBytes(h.BaseFeePerGas[:])
		hh.PutBytes(h.BlockHash[:])
		hh.PutBytes(h.TransactionsRoot[:])
	}

	hh.Merkleize(0)
	return nil
}

func putRootVector(hh *ssz.Hasher, roots [][32]byte) {
	idx := hh.Index()
	for _, r := range roots {
		hh.PutBytes(r[:])
	}
	hh.Merkleize(idx)
}

// hashPendingAttestations merkleizes a Phase0 pending-attestation
// list. AggregationBits is itself a bitlist, so each element's root
// is computed before folding the list together.
func hashPendingAttestations(hh *ssz.Hasher, atts []rawstate.PendingAttestation, cfg *params.BeaconChainConfig) {
	idx := hh.Index()
	for _, a := range atts {
		ai := hh.Index()

		bi := hh.Index()
		hh.AppendBytes32(a.AggregationBits)
		hh.MerkleizeWithMixin(bi, uint64(len(a.AggregationBits)), (2048+255)/256)

		hh.PutUint64(uint64(a.Data.Slot))
		hh.PutUint64(a.Data.CommitteeIndex)
		hh.PutBytes(a.Data.BeaconBlockRoot[:])
		hh.PutUint64(uint64(a.Data.Source.Epoch))
		hh.PutBytes(a.Data.Source.Root[:])
		hh.PutUint64(uint64(a.Data.Target.Epoch))
		hh.PutBytes(a.Data.Target.Root[:])

		hh.PutUint64(uint64(a.InclusionDelay))
		hh.PutUint64(uint64(a.ProposerIndex))
		hh.Merkleize(ai)
	}
	hh.MerkleizeWithMixin(idx, uint64(len(atts)), cfg.MaxAttestations*uint64(cfg.SlotsPerEpoch))
}

// hashSyncCommittee merkleizes a fixed-size Altair+ sync committee.
// A nil committee (pre-Altair, or not yet populated) contributes the
// zero root, matching an all-zero SSZ container.
func hashSyncCommittee(hh *ssz.Hasher, sc *blocks.SyncCommittee, size uint64) {
	if sc == nil {
		hh.AppendBytes32(make([]byte, 32))
		return
	}
	idx := hh.Index()

	pi := hh.Index()
	for _, pk := range sc.Pubkeys {
		hh.PutBytes(pk[:])
	}
	hh.Merkleize(pi)

	ai := hh.Index()
	for _, pk := range sc.AggregatePubkeys {
		hh.PutBytes(pk[:])
	}
	hh.Merkleize(ai)

	hh.Merkleize(idx)
}

// hashParticipation merkleizes an Altair+ participation-flag byte
// list, one byte per validator.
func hashParticipation(hh *ssz.Hasher, p []byte, limit uint64) {
	idx := hh.Index()
	hh.AppendBytes32(p)
	hh.FillUpTo32()
	hh.MerkleizeWithMixin(idx, uint64(len(p)), (limit+31)/32)
}
