package state

import (
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/prysmaticlabs/go-bitfield"
)

// Read-only accessors. None of these require any particular storage
// mode: reading a shared persistent record is always safe, and a
// transient record is exclusively owned by its caller anyway.

func (c *CachedBeaconState) Slot() types.Slot                      { return c.state.Slot }
func (c *CachedBeaconState) GenesisTime() uint64                   { return c.state.GenesisTime }
func (c *CachedBeaconState) GenesisValidatorsRoot() [32]byte        { return c.state.GenesisValidatorsRoot }
func (c *CachedBeaconState) Fork() blocks.Fork                     { return c.state.Fork }
func (c *CachedBeaconState) LatestBlockHeader() blocks.BeaconBlockHeader { return c.state.LatestBlockHeader }
func (c *CachedBeaconState) Eth1Data() blocks.Eth1Data             { return c.state.Eth1Data }
func (c *CachedBeaconState) Eth1DataVotes() []blocks.Eth1Data      { return c.state.Eth1DataVotes }
func (c *CachedBeaconState) Eth1DepositIndex() uint64              { return c.state.Eth1DepositIndex }
func (c *CachedBeaconState) NumValidators() int                    { return len(c.state.Validators) }
func (c *CachedBeaconState) JustificationBits() bitfield.Bitvector4 { return c.state.JustificationBits }
func (c *CachedBeaconState) PreviousJustifiedCheckpoint() blocks.Checkpoint { return c.state.PreviousJustifiedCheckpoint }
func (c *CachedBeaconState) CurrentJustifiedCheckpoint() blocks.Checkpoint  { return c.state.CurrentJustifiedCheckpoint }
func (c *CachedBeaconState) FinalizedCheckpoint() blocks.Checkpoint        { return c.state.FinalizedCheckpoint }
func (c *CachedBeaconState) HistoricalRoots() [][32]byte           { return c.state.HistoricalRoots }
func (c *CachedBeaconState) RandaoMixes() [][32]byte               { return c.state.RandaoMixes }
func (c *CachedBeaconState) Slashings() []uint64                   { return c.state.Slashings }
func (c *CachedBeaconState) BlockRoots() [][32]byte                { return c.state.BlockRoots }
func (c *CachedBeaconState) StateRoots() [][32]byte                { return c.state.StateRoots }
func (c *CachedBeaconState) CurrentSyncCommittee() *blocks.SyncCommittee { return c.state.CurrentSyncCommittee }
func (c *CachedBeaconState) NextSyncCommittee() *blocks.SyncCommittee   { return c.state.NextSyncCommittee }
func (c *CachedBeaconState) LatestExecutionPayloadHeader() *blocks.ExecutionPayloadHeader {
	return c.state.LatestExecutionPayloadHeader
}

// ValidatorAtIndex returns a pointer to the validator record. Callers
// in transient mode may mutate through it; callers in persistent mode
// must not, though nothing at this layer enforces that — mutation
// safety beyond the mode flag is an internal-caller discipline, the
// way the teacher's fast native getters work too.
func (c *CachedBeaconState) ValidatorAtIndex(i types.ValidatorIndex) (*blocks.Validator, error) {
	if int(i) >= len(c.state.Validators) {
		return nil, indexOutOfRangeErr("ValidatorAtIndex", uint64(i), len(c.state.Validators))
	}
	return c.state.Validators[i], nil
}

func (c *CachedBeaconState) Validators() []*blocks.Validator { return c.state.Validators }

func (c *CachedBeaconState) BalanceAtIndex(i types.ValidatorIndex) (uint64, error) {
	if int(i) >= len(c.state.Balances) {
		return 0, indexOutOfRangeErr("BalanceAtIndex", uint64(i), len(c.state.Balances))
	}
	return c.state.Balances[i], nil
}

func (c *CachedBeaconState) Balances() []uint64 { return c.state.Balances }

func (c *CachedBeaconState) PreviousEpochParticipation() []byte { return c.state.PreviousEpochParticipation }
func (c *CachedBeaconState) CurrentEpochParticipation() []byte  { return c.state.CurrentEpochParticipation }
func (c *CachedBeaconState) PreviousEpochAttestations() []rawstate.PendingAttestation {
	return c.state.PreviousEpochAttestations
}
func (c *CachedBeaconState) CurrentEpochAttestations() []rawstate.PendingAttestation {
	return c.state.CurrentEpochAttestations
}
func (c *CachedBeaconState) InactivityScores() []uint64 { return c.state.InactivityScores }
