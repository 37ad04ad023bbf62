// Package state defines the raw BeaconState record for every fork in
// scope. A single struct carries all fork fields; which are populated
// is determined by Version. This mirrors the teacher's approach of
// one generated protobuf message per fork, collapsed into one Go
// struct since our field set is fixed at three forks.
package state

import (
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/prysmaticlabs/go-bitfield"
)

// BeaconState is the canonical consensus record. Ring buffers
// (BlockRoots, StateRoots, RandaoMixes, Slashings) are always exactly
// their configured length; HistoricalRoots and the validator/balance
// lists grow without bound.
type BeaconState struct {
	Version version.Fork

	GenesisTime           uint64
	GenesisValidatorsRoot [32]byte
	Slot                  types.Slot
	Fork                  blocks.Fork

	LatestBlockHeader blocks.BeaconBlockHeader
	BlockRoots        [][32]byte
	StateRoots        [][32]byte
	HistoricalRoots   [][32]byte

	Eth1Data          blocks.Eth1Data
	Eth1DataVotes     []blocks.Eth1Data
	Eth1DepositIndex  uint64

	Validators []*blocks.Validator
	Balances   []uint64

	RandaoMixes [][32]byte
	Slashings   []uint64

	// Phase0 participation record.
	PreviousEpochAttestations []PendingAttestation
	CurrentEpochAttestations  []PendingAttestation

	// Altair+ participation record. One byte of flags per validator.
	PreviousEpochParticipation []byte
	CurrentEpochParticipation  []byte

	JustificationBits             bitfield.Bitvector4
	PreviousJustifiedCheckpoint   blocks.Checkpoint
	CurrentJustifiedCheckpoint    blocks.Checkpoint
	FinalizedCheckpoint           blocks.Checkpoint

	// Altair+.
	InactivityScores     []uint64
	CurrentSyncCommittee *blocks.SyncCommittee
	NextSyncCommittee    *blocks.SyncCommittee

	// Bellatrix+.
	LatestExecutionPayloadHeader *blocks.ExecutionPayloadHeader
}

// PendingAttestation is the Phase0 record of an attestation awaiting
// epoch-processing bookkeeping; superseded by participation flags in
// Altair.
type PendingAttestation struct {
	AggregationBits []byte
	Data            blocks.AttestationData
	InclusionDelay  types.Slot
	ProposerIndex   types.ValidatorIndex
}

// Clone performs a deep copy of every field, the "expand to flat
// arrays" operation the cached wrapper calls when it flips itself
// into transient mode.
func (s *BeaconState) Clone() *BeaconState {
	if s == nil {
		return nil
	}
	out := *s

	out.BlockRoots = append([][32]byte(nil), s.BlockRoots...)
	out.StateRoots = append([][32]byte(nil), s.StateRoots...)
	out.HistoricalRoots = append([][32]byte(nil), s.HistoricalRoots...)
	out.Eth1DataVotes = append([]blocks.Eth1Data(nil), s.Eth1DataVotes...)

	out.Validators = make([]*blocks.Validator, len(s.Validators))
	for i, v := range s.Validators {
		cp := *v
		out.Validators[i] = &cp
	}
	out.Balances = append([]uint64(nil), s.Balances...)

	out.RandaoMixes = append([][32]byte(nil), s.RandaoMixes...)
	out.Slashings = append([]uint64(nil), s.Slashings...)

	out.PreviousEpochAttestations = append([]PendingAttestation(nil), s.PreviousEpochAttestations...)
	out.CurrentEpochAttestations = append([]PendingAttestation(nil), s.CurrentEpochAttestations...)

	out.PreviousEpochParticipation = append([]byte(nil), s.PreviousEpochParticipation...)
	out.CurrentEpochParticipation = append([]byte(nil), s.CurrentEpochParticipation...)

	out.InactivityScores = append([]uint64(nil), s.InactivityScores...)
	if s.CurrentSyncCommittee != nil {
		cp := *s.CurrentSyncCommittee
		out.CurrentSyncCommittee = &cp
	}
	if s.NextSyncCommittee != nil {
		cp := *s.NextSyncCommittee
		out.NextSyncCommittee = &cp
	}
	if s.LatestExecutionPayloadHeader != nil {
		cp := *s.LatestExecutionPayloadHeader
		out.LatestExecutionPayloadHeader = &cp
	}
	return &out
}
